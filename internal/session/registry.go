// Package session implements the session registry and fanout layer:
// user<->socket and user<->room bookkeeping, broadcast/sendTo delivery,
// and the single choke point through which an engine OutboundEvent
// becomes a wire frame sent to a specific connection. Cross-process push
// routing is internal/eventbus's job, not this layer's.
package session

import (
	"encoding/json"
	"sync"

	"mahjong3p/internal/engine"
	"mahjong3p/internal/eventbus"
	"mahjong3p/internal/logging"
	"mahjong3p/internal/wire"
)

// Connection is the transport-agnostic send side of one client socket.
// internal/transport's websocket connection wrapper implements this.
type Connection interface {
	SendFrame(f wire.Frame) error
	Close() error
}

// RoomLookup resolves a roomId to its live Room; the registry uses it to
// answer RoomFor.
type RoomLookup interface {
	Room(roomId string) (*engine.Room, bool)
}

// Registry is the process-wide user<->connection and user<->room map. It
// implements engine.EventSink.
type Registry struct {
	mu       sync.RWMutex
	conns    map[string]Connection // userId -> active connection
	roomsOf  map[string]string     // userId -> roomId
	members  map[string]map[string]struct{} // roomId -> set of userId

	rooms RoomLookup
	clock engine.Clock
	bus   *eventbus.Bus
}

// NewRegistry builds an empty registry. rooms resolves roomId->Room for
// RoomFor. bus may be nil (single
// process deployment): events are then delivered only to locally-bound
// connections.
func NewRegistry(rooms RoomLookup, clock engine.Clock, bus *eventbus.Bus) *Registry {
	return &Registry{
		conns:   make(map[string]Connection),
		roomsOf: make(map[string]string),
		members: make(map[string]map[string]struct{}),
		rooms:   rooms,
		clock:   clock,
		bus:     bus,
	}
}

var _ engine.EventSink = (*Registry)(nil)

// Bind attaches conn as userId's active connection. Any prior connection
// for the same user is kicked: a new connection always supersedes the old
// one.
func (reg *Registry) Bind(userId string, conn Connection) {
	reg.mu.Lock()
	prior, had := reg.conns[userId]
	reg.conns[userId] = conn
	reg.mu.Unlock()

	if had && prior != conn {
		logging.Info("session: user %s reconnected, closing prior connection", userId)
		_ = prior.SendFrame(wire.Frame{Type: wire.TypeError, Cmd: "replaced", Timestamp: reg.now()})
		_ = prior.Close()
	}
}

// Unbind detaches conn if it is still the registered connection for
// userId. A stale Unbind (superseded by a newer Bind) is a no-op.
func (reg *Registry) Unbind(userId string, conn Connection) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if current, ok := reg.conns[userId]; ok && current == conn {
		delete(reg.conns, userId)
	}
}

// JoinRoom records that userId is a member of roomId, for room-scoped
// broadcast.
func (reg *Registry) JoinRoom(userId, roomId string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.roomsOf[userId] = roomId
	if reg.members[roomId] == nil {
		reg.members[roomId] = make(map[string]struct{})
	}
	reg.members[roomId][userId] = struct{}{}
}

// LeaveRoom removes userId from roomId's membership set.
func (reg *Registry) LeaveRoom(userId, roomId string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.members[roomId], userId)
	if len(reg.members[roomId]) == 0 {
		delete(reg.members, roomId)
	}
	if reg.roomsOf[userId] == roomId {
		delete(reg.roomsOf, userId)
	}
}

// RoomOf returns the roomId userId currently belongs to, if any.
func (reg *Registry) RoomOf(userId string) (string, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	roomId, ok := reg.roomsOf[userId]
	return roomId, ok
}

func (reg *Registry) connFor(userId string) (Connection, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.conns[userId]
	return c, ok
}

func (reg *Registry) membersOf(roomId string) []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]string, 0, len(reg.members[roomId]))
	for userId := range reg.members[roomId] {
		out = append(out, userId)
	}
	return out
}

func (reg *Registry) now() int64 {
	if reg.clock == nil {
		return 0
	}
	return reg.clock.NowMs()
}

// Publish implements engine.EventSink. It is called from the owning Room's
// actor goroutine after a commit; delivery itself must never block the
// room, so SendTo/errors here are logged, not propagated. It also republishes
// onto the eventbus (if configured) so other processes' registries, holding
// connections for the same room's users, can deliver their share locally.
func (reg *Registry) Publish(roomId string, evt engine.OutboundEvent) {
	reg.deliverLocal(roomId, evt)
	if reg.bus != nil {
		if err := reg.bus.Publish(eventbus.RoomEvent{
			RoomId: roomId, Name: evt.Name, Data: evt.Data, Recipients: evt.Recipients,
		}); err != nil {
			logging.Warn("session: eventbus publish failed for room %s: %v", roomId, err)
		}
	}
}

func (reg *Registry) deliverLocal(roomId string, evt engine.OutboundEvent) {
	recipients := evt.Recipients
	if len(recipients) == 0 {
		recipients = reg.membersOf(roomId)
	}
	for _, userId := range recipients {
		reg.deliver(roomId, userId, evt)
	}
}

// SubscribeRemote wires incoming eventbus events for roomId to this
// registry's local delivery, for the (not-room-owning) process instances
// that still hold client connections for that room.
func (reg *Registry) SubscribeRemote(roomId string) (func(), error) {
	if reg.bus == nil {
		return func() {}, nil
	}
	return reg.bus.Subscribe(roomId, func(evt eventbus.RoomEvent) {
		reg.deliverLocal(roomId, engine.OutboundEvent{Name: evt.Name, Data: evt.Data, Recipients: evt.Recipients})
	})
}

func (reg *Registry) deliver(roomId, userId string, evt engine.OutboundEvent) {
	conn, ok := reg.connFor(userId)
	if !ok {
		return // disconnected; state already persisted, reconnect fetches getSnapshot
	}
	data := evt.Data
	// gameSnapshot payloads are already pre-redacted per-recipient by the
	// engine (internal/engine.BuildSnapshot); events carrying raw per-seat
	// data the same way don't need a second pass here.
	raw, err := json.Marshal(data)
	if err != nil {
		logging.Error("session: marshal event %s for room %s: %v", evt.Name, roomId, err)
		return
	}
	frame := wire.Frame{
		Type:      wire.TypeEvent,
		Cmd:       evt.Name,
		RoomId:    roomId,
		Data:      raw,
		Timestamp: reg.now(),
	}
	if err := conn.SendFrame(frame); err != nil {
		logging.Warn("session: send to %s failed, dropping: %v", userId, err)
	}
}

// SendTo pushes a single frame to one user's connection directly, used by
// transport for request/response RESP frames that never go through the
// engine's event path.
func (reg *Registry) SendTo(userId string, frame wire.Frame) error {
	conn, ok := reg.connFor(userId)
	if !ok {
		return nil
	}
	return conn.SendFrame(frame)
}

// RoomFor resolves roomId to its live *engine.Room, for transport code that
// needs to call Submit directly rather than going through the event path.
func (reg *Registry) RoomFor(roomId string) (*engine.Room, bool) {
	if reg.rooms == nil {
		return nil, false
	}
	return reg.rooms.Room(roomId)
}

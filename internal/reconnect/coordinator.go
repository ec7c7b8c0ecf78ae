// Package reconnect implements the standalone reconnection coordinator: it
// watches for socket loss, tells the owning room's engine to mark the seat
// disconnected (arming the grace timer lives in the engine, since the
// timer must fire as a room action), and on a rejoining socket validates
// room membership before handing the seat back.
package reconnect

import (
	"mahjong3p/internal/engine"
	"mahjong3p/internal/session"
)

// RoomResolver finds the live room a user is (or was) seated in.
type RoomResolver interface {
	RoomFor(roomId string) (*engine.Room, bool)
	RoomOf(userId string) (string, bool)
}

// RecordLookup is the cold store's query surface, used to distinguish "no
// such room ever" from "your game already completed" when a reconnect
// names a room this process no longer holds live.
type RecordLookup interface {
	RecordsForRoom(roomId string, limit int64) ([]engine.GameRecord, error)
}

// Coordinator ties the session registry to room actions for the
// disconnect/reconnect lifecycle.
type Coordinator struct {
	registry *session.Registry
	rooms    RoomResolver
	records  RecordLookup
	clock    engine.Clock
}

// New builds a Coordinator. rooms is taken separately from registry so the
// caller can supply its own room resolution (cmd/gameserver passes the
// transport RoomManager). records may be nil (dead rooms then always report
// noSuchRoom).
func New(registry *session.Registry, rooms RoomResolver, records RecordLookup, clock engine.Clock) *Coordinator {
	return &Coordinator{registry: registry, rooms: rooms, records: records, clock: clock}
}

// HandleSocketClosed is called by transport when a client's websocket
// connection drops, for any reason (network loss, client crash,
// voluntary close). It posts a disconnect action to the user's room, if
// they're currently in one; the engine arms the grace timer.
func (c *Coordinator) HandleSocketClosed(userId string, conn session.Connection) {
	c.registry.Unbind(userId, conn)

	roomId, ok := c.rooms.RoomOf(userId)
	if !ok {
		return
	}
	room, ok := c.rooms.RoomFor(roomId)
	if !ok {
		return
	}
	room.Submit(engine.Action{
		Kind:        engine.ActionDisconnect,
		ActorUserId: userId,
		AtMs:        c.now(),
	})
}

// Reconnect validates that userId is still a member of roomId and, if so,
// rebinds conn as their active connection and tells the room's engine to
// restore the seat. Auth token verification happens upstream in
// internal/transport before this is called; this layer only checks room
// membership and grace-window validity, both of which the engine itself
// enforces and reports back as a typed EngineError.
func (c *Coordinator) Reconnect(userId, roomId string, conn session.Connection) *engine.EngineError {
	room, ok := c.rooms.RoomFor(roomId)
	if !ok {
		if c.records != nil {
			if recs, err := c.records.RecordsForRoom(roomId, 1); err == nil && len(recs) > 0 {
				return &engine.EngineError{Code: engine.ErrReconnectExpired, Message: "room " + roomId + " already completed"}
			}
		}
		return &engine.EngineError{Code: engine.ErrNoSuchRoom, Message: "room " + roomId + " not found"}
	}

	// Bind before submitting: the engine publishes the redacted snapshot
	// through the registry as soon as the reconnect action commits, and the
	// new connection must already be the user's delivery target by then.
	c.registry.Bind(userId, conn)
	c.registry.JoinRoom(userId, roomId)

	res := room.Submit(engine.Action{
		Kind:        engine.ActionReconnect,
		ActorUserId: userId,
		AtMs:        c.now(),
	})
	if res.Err != nil {
		return res.Err
	}
	return nil
}

func (c *Coordinator) now() int64 {
	if c.clock == nil {
		return 0
	}
	return c.clock.NowMs()
}

package transport

import (
	"fmt"
	"sync"
	"time"

	"mahjong3p/internal/config"
	"mahjong3p/internal/logging"
	"mahjong3p/internal/engine"
	"mahjong3p/internal/roomid"
	"mahjong3p/internal/rules"
	"mahjong3p/internal/scheduler"
	"mahjong3p/internal/session"
)

// RoomManager owns every live *engine.Room in this process and the
// playerId->roomId routing table, grounded on
// runtime/game/room_manager.go's RoomManager (rooms map + playerRoom map
// under one mutex), simplified because this repo has exactly one engine
// type to instantiate rather than a prototype registry of several.
type RoomManager struct {
	mu         sync.RWMutex
	rooms      map[string]*roomEntry
	playerRoom map[string]string

	clock engine.Clock
	sink  engine.EventSink
	hot   engine.SnapshotStore
	cold  engine.RecordStore
}

type roomEntry struct {
	room   *engine.Room
	timers *scheduler.RoomTimers
}

// NewRoomManager builds an empty RoomManager. sink is usually the process's
// *session.Registry; it may be nil here and filled in with SetSink once
// constructed, since the registry itself needs a RoomLookup to build (the
// composition root breaks the cycle this way).
func NewRoomManager(clock engine.Clock, sink engine.EventSink, hot engine.SnapshotStore, cold engine.RecordStore) *RoomManager {
	return &RoomManager{
		rooms:      make(map[string]*roomEntry),
		playerRoom: make(map[string]string),
		clock:      clock,
		sink:       sink,
		hot:        hot,
		cold:       cold,
	}
}

// SetSink assigns the event sink used by every room created afterward.
func (rm *RoomManager) SetSink(sink engine.EventSink) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.sink = sink
}

var _ session.RoomLookup = (*RoomManager)(nil)

// Room implements session.RoomLookup. RoomManager also satisfies
// reconnect.RoomResolver via RoomFor/RoomOf below, without a second
// concrete type.
func (rm *RoomManager) Room(roomId string) (*engine.Room, bool) {
	return rm.RoomFor(roomId)
}

// RoomFor implements reconnect.RoomResolver.
func (rm *RoomManager) RoomFor(roomId string) (*engine.Room, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	entry, ok := rm.rooms[roomId]
	if !ok {
		return nil, false
	}
	return entry.room, true
}

// RoomOf implements reconnect.RoomResolver.
func (rm *RoomManager) RoomOf(userId string) (string, bool) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	roomId, ok := rm.playerRoom[userId]
	return roomId, ok
}

// CreateRoom allocates a fresh room id and engine.Room, owned by ownerId.
func (rm *RoomManager) CreateRoom(ownerId string, cfg rules.Config, maxRounds int) (*engine.Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	id, err := roomid.Generate(func(candidate string) bool {
		_, exists := rm.rooms[candidate]
		return exists
	})
	if err != nil {
		return nil, fmt.Errorf("transport: allocate room id: %w", err)
	}

	timers := scheduler.NewRoomTimers()
	room := engine.NewRoom(id, ownerId, cfg, maxRounds, rm.clock, timers, rm.sink, rm.hot, rm.cold)
	rm.rooms[id] = &roomEntry{room: room, timers: timers}
	return room, nil
}

// BindPlayer records that userId currently occupies a seat in roomId,
// called once a join/reconnect action against that room has been accepted.
func (rm *RoomManager) BindPlayer(userId, roomId string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.playerRoom[userId] = roomId
}

// UnbindPlayer removes a player's room routing entry, called on leave or
// room teardown.
func (rm *RoomManager) UnbindPlayer(userId string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	delete(rm.playerRoom, userId)
}

// DeleteRoom tears down a finished or dissolved room's timers and actor
// loop and forgets it.
func (rm *RoomManager) DeleteRoom(roomId string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	entry, ok := rm.rooms[roomId]
	if !ok {
		return
	}
	for userId, rid := range rm.playerRoom {
		if rid == roomId {
			delete(rm.playerRoom, userId)
		}
	}
	entry.timers.CancelAll()
	entry.room.Close()
	delete(rm.rooms, roomId)
}

// StartJanitor sweeps every interval for rooms that are finished or whose
// last accepted player action is older than maxIdle, and tears them down.
// Returns a stop func. A maxIdle of zero disables the inactivity check
// (finished rooms are still reaped).
func (rm *RoomManager) StartJanitor(interval, maxIdle time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rm.reap(maxIdle)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

func (rm *RoomManager) reap(maxIdle time.Duration) {
	now := time.Now().UnixMilli()
	rm.mu.RLock()
	var doomed []string
	for id, entry := range rm.rooms {
		if entry.room.Finished() {
			doomed = append(doomed, id)
			continue
		}
		if maxIdle > 0 && now-entry.room.LastActivityMs() > maxIdle.Milliseconds() {
			doomed = append(doomed, id)
		}
	}
	rm.mu.RUnlock()

	for _, id := range doomed {
		logging.Info("transport: reaping room %s", id)
		rm.DeleteRoom(id)
	}
}

// CloseAll tears down every live room's timers and actor loop, for use
// during process shutdown.
func (rm *RoomManager) CloseAll() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	for id, entry := range rm.rooms {
		entry.timers.CancelAll()
		entry.room.Close()
		delete(rm.rooms, id)
	}
	rm.playerRoom = make(map[string]string)
}

// DefaultConfig exposes the hot-reloadable rule defaults for new rooms.
func DefaultConfig() rules.Config {
	if cfg := config.RulesSnapshot(); cfg.Players != 0 {
		return cfg
	}
	return rules.Default()
}

// DefaultMaxRounds bounds a room's lifetime when a client creates one via
// joinRoom without specifying its own.
const DefaultMaxRounds = 8

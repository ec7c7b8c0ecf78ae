// Package engine implements the per-room game engine: the single-threaded
// state machine that owns a game's authoritative state, processes inbound
// actions, computes claim windows, advances turns, and triggers settlement.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"mahjong3p/internal/logging"
	"mahjong3p/internal/rules"
)

// Room is a single-threaded actor: exactly one goroutine processes its
// inbound action queue and mutates its GameState.
type Room struct {
	RoomId string

	inbox  chan Action
	done   chan struct{}
	closed sync.Once

	state  *GameState
	clock  Clock
	timers TimerArmer
	sink   EventSink
	hot    SnapshotStore
	cold   RecordStore

	ownerId    string
	players    [3]string // userId by seat, empty if unseated
	maxRounds  int

	// timerGen tracks per-key timer generations; only the actor goroutine
	// touches it (see timers.go).
	timerGen map[string]int

	// finished/lastActivityMs are the only state the room exposes to other
	// goroutines without going through the inbox, for the room manager's
	// idle-reaping sweep.
	finished       atomic.Bool
	lastActivityMs atomic.Int64
}

// NewRoom constructs a room in phase `waiting` with no players seated yet.
func NewRoom(roomId, ownerId string, cfg rules.Config, maxRounds int, clock Clock, timers TimerArmer, sink EventSink, hot SnapshotStore, cold RecordStore) *Room {
	r := &Room{
		RoomId:    roomId,
		inbox:     make(chan Action, 64),
		done:      make(chan struct{}),
		clock:     clock,
		timers:    timers,
		sink:      sink,
		hot:       hot,
		cold:      cold,
		ownerId:   ownerId,
		maxRounds: maxRounds,
	}
	r.state = &GameState{
		RoomId: roomId,
		GameId: uuid.NewString(),
		Phase:  PhaseWaiting,
		Config: cfg,
	}
	for seat := range r.state.Players {
		r.state.Players[seat].Seat = seat
		r.state.Players[seat].Status = StatusWaiting
	}
	r.lastActivityMs.Store(r.clockNow())
	go r.actorLoop()
	return r
}

// Submit enqueues an action and blocks for its Result. Client-facing
// transport code calls this to learn whether its request was accepted.
func (r *Room) Submit(a Action) Result {
	reply := make(chan Result, 1)
	a.replyTo = reply
	select {
	case r.inbox <- a:
	case <-r.done:
		return Result{Err: newErr(ErrNoSuchRoom, "room %s is closed", r.RoomId)}
	}
	select {
	case res := <-reply:
		return res
	case <-r.done:
		return Result{Err: newErr(ErrNoSuchRoom, "room %s is closed", r.RoomId)}
	}
}

// PostTimer is called by scheduler-armed timer callbacks. It never blocks
// the caller on the room being busy beyond the channel buffer.
func (r *Room) PostTimer(a Action) {
	select {
	case r.inbox <- a:
	case <-r.done:
	default:
		// Inbox full: drop and log rather than block the timer goroutine.
		logging.Warn("engine: room %s timer action dropped, inbox full", r.RoomId)
	}
}

func (r *Room) actorLoop() {
	for {
		select {
		case a := <-r.inbox:
			res := r.processAction(a)
			if a.ActorUserId != "" && res.Err == nil {
				r.lastActivityMs.Store(r.clockNow())
			}
			if r.state.Phase == PhaseFinished {
				r.finished.Store(true)
			}
			if a.replyTo != nil {
				a.replyTo <- res
			}
			if r.sink != nil {
				for _, evt := range res.Events {
					r.sink.Publish(r.RoomId, evt)
				}
			}
		case <-r.done:
			return
		}
	}
}

// Close stops the actor loop. Idempotent.
func (r *Room) Close() {
	r.closed.Do(func() {
		close(r.done)
	})
}

// Finished reports whether the room's sequence has reached its terminal
// phase (maxRounds settled or dissolved), safe from any goroutine.
func (r *Room) Finished() bool {
	return r.finished.Load()
}

// LastActivityMs returns the clock reading at the last accepted
// player-submitted action, for the room manager's inactivity sweep.
func (r *Room) LastActivityMs() int64 {
	return r.lastActivityMs.Load()
}

// snapshotLocked returns a copy of the current GameState value. The copy is
// shallow: slices and maps are shared with the live state, and it takes no
// lock, so it is only safe against a quiesced room.
func (r *Room) snapshotLocked() GameState {
	return *r.state
}

package engine

import (
	"math/rand"

	"mahjong3p/internal/logging"
	"mahjong3p/internal/tile"
)

// handleJoin seats a userId in the first empty seat.
func (r *Room) handleJoin(a Action) Result {
	if r.state.Phase != PhaseWaiting {
		return Result{Err: newErr(ErrWrongPhase, "room %s is not accepting joins", r.RoomId)}
	}
	if r.seatOf(a.ActorUserId) != -1 {
		return Result{Err: newErr(ErrAlreadyInRoom, "user %s already joined", a.ActorUserId)}
	}
	seat := -1
	for i, id := range r.players {
		if id == "" {
			seat = i
			break
		}
	}
	if seat == -1 {
		return Result{Err: newErr(ErrRoomFull, "room %s is full", r.RoomId)}
	}
	r.players[seat] = a.ActorUserId
	r.state.Players[seat] = PlayerState{
		UserId: a.ActorUserId,
		Seat:   seat,
		Status: StatusWaiting,
	}
	r.commit(nil)
	return Result{Events: []OutboundEvent{
		{Name: "playerJoined", Data: map[string]any{"seat": seat, "userId": a.ActorUserId}},
	}}
}

// handleLeave removes a userId from the room while still in `waiting`.
func (r *Room) handleLeave(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}
	if r.state.Phase != PhaseWaiting {
		return Result{Err: newErr(ErrWrongPhase, "cannot leave room %s mid-game", r.RoomId)}
	}
	r.players[seat] = ""
	r.state.Players[seat] = PlayerState{Seat: seat, Status: StatusWaiting}
	r.commit(nil)
	return Result{Events: []OutboundEvent{
		{Name: "playerLeft", Data: map[string]any{"seat": seat}},
	}}
}

// handleReady marks a seat ready; once all three are ready, the room
// transitions waiting -> dealing -> playing.
func (r *Room) handleReady(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}
	if r.state.Phase != PhaseWaiting {
		return Result{Err: newErr(ErrWrongPhase, "room %s is not in waiting", r.RoomId)}
	}
	r.state.Players[seat].Ready = true
	r.commit(nil)

	events := []OutboundEvent{{Name: "playerReady", Data: map[string]any{"seat": seat}}}
	allReady := true
	for _, id := range r.players {
		if id == "" {
			allReady = false
			break
		}
	}
	for _, p := range r.state.Players {
		if !p.Ready {
			allReady = false
		}
	}
	if allReady {
		dealEvents := r.startDealing()
		events = append(events, dealEvents...)
	}
	return Result{Events: events}
}

// startDealing builds a fresh deck, shuffles with a new seed, deals 13
// tiles to each non-dealer and 14 to the dealer, and opens play.
func (r *Room) startDealing() []OutboundEvent {
	deck := tile.BuildDeck(r.state.Config.WanOnly)
	if len(deck) < 41 {
		// A wanOnly universe (36 tiles) cannot cover a 14+13+13 deal plus a
		// live wall; rules.Config.Validate rejects it for live rooms, this
		// guard keeps a hand-built config from panicking the actor.
		logging.Error("engine: room %s deck of %d tiles cannot cover a three-player deal", r.RoomId, len(deck))
		return []OutboundEvent{{Name: "error", Data: map[string]any{
			"code": string(ErrInternal), "message": "configured tile universe cannot cover a deal",
		}}}
	}
	r.state.Phase = PhaseDealing

	seed := rand.Int63()
	tile.Shuffle(deck, tile.NewRNG(seed))
	r.state.RngSeed = seed

	idx := 0
	for seat := 0; seat < 3; seat++ {
		count := 13
		if seat == r.state.DealerSeat {
			count = 14
		}
		r.state.Players[seat].Hand = append([]tile.Tile(nil), deck[idx:idx+count]...)
		r.state.Players[seat].Melds = nil
		r.state.Players[seat].IsDealer = seat == r.state.DealerSeat
		r.state.Players[seat].Status = StatusPlaying
		r.state.Players[seat].ConsecutiveTimeouts = 0
		idx += count
	}
	r.state.Wall = deck[idx:]
	r.state.DiscardPile = nil
	r.state.ActionLog = nil

	r.state.Phase = PhasePlaying
	r.state.TurnSeat = r.state.DealerSeat
	r.commit(nil)

	r.armTurnTimer()

	return []OutboundEvent{
		{Name: "gameStart", Data: map[string]any{"dealerSeat": r.state.DealerSeat, "roundIndex": r.state.RoundIndex}},
	}
}

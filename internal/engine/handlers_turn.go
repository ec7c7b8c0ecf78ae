package engine

import "mahjong3p/internal/tile"

// advanceTurnTo draws a tile for seat and opens its turn: the seat gaining
// the turn draws before it may discard. Returns the events produced, or
// settlement events if the wall is exhausted.
func (r *Room) advanceTurnTo(seat int) []OutboundEvent {
	if len(r.state.Wall) == 0 {
		return r.settleDraw()
	}
	drawn := r.state.Wall[len(r.state.Wall)-1]
	r.state.Wall = r.state.Wall[:len(r.state.Wall)-1]

	p := &r.state.Players[seat]
	p.Hand = append(p.Hand, drawn)
	r.state.TurnSeat = seat
	r.state.turnDrawnTile = drawn
	r.state.turnHasDrawn = true
	r.state.Phase = PhasePlaying
	if p.Status != StatusTrustee && p.Status != StatusDisconnected {
		p.Status = StatusPlaying
	}

	r.commit(nil)
	r.armTurnTimer()

	return []OutboundEvent{
		{Name: "tileDrawn", Data: map[string]any{"tile": tile.Format(drawn), "wallCount": len(r.state.Wall)}, Recipients: []string{p.UserId}},
		{Name: "turnChange", Data: map[string]any{"turnSeat": seat, "turnDeadline": r.state.TurnDeadlineMs}},
	}
}

// drawReplacement draws the kong-replacement tile for seat, who keeps the
// turn and returns to `playing` to discard/self-act again. Falls back to
// the same wall-exhaustion handling as an ordinary draw if the wall is
// empty.
func (r *Room) drawReplacement(seat int) []OutboundEvent {
	if len(r.state.Wall) == 0 {
		return r.settleDraw()
	}
	drawn := r.state.Wall[len(r.state.Wall)-1]
	r.state.Wall = r.state.Wall[:len(r.state.Wall)-1]

	p := &r.state.Players[seat]
	p.Hand = append(p.Hand, drawn)
	r.state.TurnSeat = seat
	r.state.turnDrawnTile = drawn
	r.state.turnHasDrawn = true
	r.state.Phase = PhasePlaying

	r.commit(nil)
	r.armTurnTimer()

	return []OutboundEvent{
		{Name: "tileDrawn", Data: map[string]any{"tile": tile.Format(drawn), "wallCount": len(r.state.Wall)}, Recipients: []string{p.UserId}},
	}
}

// handleDiscard implements the `play` wire command: discarding from the
// turn seat's hand opens the claim window for the other two seats.
func (r *Room) handleDiscard(a Action) Result {
	if r.state.Phase != PhasePlaying {
		return Result{Err: newErr(ErrWrongPhase, "room %s is not in playing phase", r.RoomId)}
	}
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}
	if seat != r.state.TurnSeat {
		return Result{Err: newErr(ErrNotYourTurn, "seat %d is not the turn player", seat)}
	}
	res := r.performDiscard(seat, a.Tile)
	if res.Err == nil {
		// A legal player-submitted action clears trustee mode immediately;
		// default discards performed on the player's behalf do not.
		r.exitTrustee(seat)
	}
	return res
}

// performDiscard removes t from seat's hand and opens the claim window for
// the other two seats.
func (r *Room) performDiscard(seat int, t tile.Tile) Result {
	p := &r.state.Players[seat]
	hand, ok := tile.Remove(p.Hand, t)
	if !ok {
		return Result{Err: newErr(ErrInvalidTile, "tile %s not in hand", tile.Format(t))}
	}
	p.Hand = hand

	r.state.DiscardPile = append(r.state.DiscardPile, DiscardEntry{Tile: t, DiscarderSeat: seat})
	r.cancelTurnTimer()

	events := []OutboundEvent{
		{Name: "tileDiscarded", Data: map[string]any{"tile": tile.Format(t), "discarderSeat": seat}},
	}

	eligible := r.openClaimWindow(t, seat, false)
	if len(eligible) == 0 {
		// Nobody else is seated to claim (degenerate/test configuration):
		// skip straight to the next turn.
		r.state.claim = claimWindow{}
		events = append(events, r.advanceTurnTo((seat+1)%3)...)
		return Result{Events: events}
	}

	r.commit(&LoggedAction{Seat: seat, Kind: ActionDiscard, Tile: t, AtMs: r.clockNow()})
	r.armClaimTimer()
	events = append(events, OutboundEvent{Name: "claimWindowOpen", Data: map[string]any{
		"tile": tile.Format(t), "discarderSeat": seat, "eligibleSeats": eligible,
		"windowDeadline": r.state.claim.DeadlineMs, "robbingKong": false,
	}})
	return Result{Events: events}
}

// openClaimWindow sets up claim-window bookkeeping and returns the
// eligible seats (every seat but the discarder/upgrader). Only one claim
// window can be open at a time.
func (r *Room) openClaimWindow(t tile.Tile, fromSeat int, robbing bool) []int {
	r.state.Phase = PhaseAwaitingClaims
	eligible := map[int]bool{}
	seats := []int{}
	for seat := 0; seat < 3; seat++ {
		if seat == fromSeat {
			continue
		}
		eligible[seat] = true
		seats = append(seats, seat)
	}
	r.state.claim = claimWindow{
		Open:          true,
		Tile:          t,
		DiscarderSeat: fromSeat,
		IsRobbingKong: robbing,
		Eligible:      eligible,
		Responses:     map[int]pendingClaim{},
	}
	return seats
}

// exitTrustee clears a seat's timeout streak and restores `playing` status
// after any legitimate player-submitted action.
func (r *Room) exitTrustee(seat int) {
	p := &r.state.Players[seat]
	p.ConsecutiveTimeouts = 0
	if p.Status == StatusTrustee {
		p.Status = StatusPlaying
	}
}

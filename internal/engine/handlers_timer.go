package engine

import "mahjong3p/internal/tile"

// handleTurnTimeout performs the default action for an unresponsive turn
// player: discard the just-drawn tile (or the rightmost tile if none was
// tracked), incrementing their timeout streak and flipping them to
// `trustee` once it reaches the configured threshold.
func (r *Room) handleTurnTimeout(a Action) Result {
	if !r.timerCurrent(timerKeyTurn, a) || r.state.Phase != PhasePlaying || r.state.TurnSeat != a.Seat {
		return Result{}
	}
	seat := a.Seat
	p := &r.state.Players[seat]
	p.ConsecutiveTimeouts++
	if r.state.Config.Turn.AutoTrustee && p.ConsecutiveTimeouts >= r.state.Config.Turn.TrusteeTimeoutCount {
		p.Status = StatusTrustee
	}
	return Result{Events: r.performDefaultDiscard(seat)}
}

// handleTrusteeTick is the shorter-delay equivalent of handleTurnTimeout
// for a player already in `trustee`: the same default policy fires
// without waiting for the full turn deadline.
func (r *Room) handleTrusteeTick(a Action) Result {
	if !r.timerCurrent(timerKeyTrustee, a) || r.state.Phase != PhasePlaying || r.state.TurnSeat != a.Seat {
		return Result{}
	}
	return Result{Events: r.performDefaultDiscard(a.Seat)}
}

// performDefaultDiscard picks the default discard tile (the tile most
// recently drawn this turn, else the highest-sorted tile) and discards it
// on the seat's behalf. Unlike a client-submitted discard this does not
// clear the seat's trustee state: only the player's own actions do that.
func (r *Room) performDefaultDiscard(seat int) []OutboundEvent {
	p := &r.state.Players[seat]
	target := r.state.turnDrawnTile
	if !r.state.turnHasDrawn || !containsTile(p.Hand, target) {
		sorted := append([]tile.Tile(nil), p.Hand...)
		tile.SortTiles(sorted)
		if len(sorted) == 0 {
			return nil
		}
		target = sorted[len(sorted)-1]
	}
	res := r.performDiscard(seat, target)
	return res.Events
}

func containsTile(tiles []tile.Tile, t tile.Tile) bool {
	for _, x := range tiles {
		if x == t {
			return true
		}
	}
	return false
}

// handleClaimWindowClose fires when the claim-window timer expires
// without every eligible seat having responded; silence counts as pass.
func (r *Room) handleClaimWindowClose(a Action) Result {
	if !r.timerCurrent(timerKeyClaim, a) || r.state.Phase != PhaseAwaitingClaims || !r.state.claim.Open {
		return Result{}
	}
	for seat := range r.state.claim.Eligible {
		if _, ok := r.state.claim.Responses[seat]; !ok {
			r.state.claim.Responses[seat] = pendingClaim{Seat: seat, Kind: ClaimPass}
		}
	}
	return Result{Events: r.resolveClaimWindow()}
}

// handleGraceExpired flips a still-disconnected seat into `trustee` mode
// once its reconnect grace period has elapsed without a reattach.
func (r *Room) handleGraceExpired(a Action) Result {
	if !r.timerCurrent(graceKey(a.Seat), a) {
		return Result{}
	}
	p := &r.state.Players[a.Seat]
	if p.Status != StatusDisconnected {
		return Result{}
	}
	p.Status = StatusTrustee
	r.commit(nil)
	return Result{Events: []OutboundEvent{
		{Name: "playerDisconnected", Data: map[string]any{"seat": a.Seat, "status": "trustee"}},
	}}
}

// handleDismissTimeout resolves an in-flight dissolution vote once its
// voting window elapses without reaching its quorum: the vote is dropped
// and play continues.
func (r *Room) handleDismissTimeout(a Action) Result {
	if !r.timerCurrent(timerKeyDismiss, a) || !r.state.dismiss.Active {
		return Result{}
	}
	r.state.dismiss = dismissState{}
	r.commit(nil)
	return Result{Events: []OutboundEvent{
		{Name: "error", Data: map[string]any{"code": string(ErrInvalidAction), "message": "dissolution vote timed out"}},
	}}
}

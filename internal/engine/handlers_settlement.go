package engine

import (
	"mahjong3p/internal/hand"
	"mahjong3p/internal/logging"
	"mahjong3p/internal/scoring"
	"mahjong3p/internal/tile"
)

// winClaim is one seat's validated winning hand, pending settlement.
type winClaim struct {
	Seat     int
	SelfDraw bool
	Result   hand.Result
}

// settleWins computes score deltas for one or more simultaneous winners,
// applies them, persists a GameRecord, and transitions the room out of
// play.
func (r *Room) settleWins(claims []winClaim, discarderSeat int, winningTile tile.Tile, robbed bool) []OutboundEvent {
	r.cancelTurnTimer()
	r.cancelClaimTimer()
	r.state.claim = claimWindow{}
	r.state.Phase = PhaseSettlement
	for _, c := range claims {
		r.logAction(c.Seat, ActionHu, winningTile)
	}

	playerMelds := [3]scoring.PlayerMelds{}
	for seat := 0; seat < 3; seat++ {
		playerMelds[seat] = scoring.PlayerMelds{Seat: seat, Melds: r.state.Players[seat].Melds}
	}

	wins := make([]scoring.WinResult, 0, len(claims))
	for _, c := range claims {
		wins = append(wins, scoring.WinResult{
			WinnerSeat:      c.Seat,
			DiscarderSeat:   discarderSeat,
			SelfDraw:        c.SelfDraw,
			IsDealer:        r.state.Players[c.Seat].IsDealer,
			DealerSeat:      r.state.DealerSeat,
			Result:          c.Result,
			RobbedBonusTile: robbed,
		})
	}

	deltas := scoring.SettleMultiple(r.state.Config, wins, playerMelds)
	for seat := 0; seat < 3; seat++ {
		r.state.Players[seat].Score += deltas[seat]
	}

	winnerSeat := claims[0].Seat
	nextDealer := r.nextDealerSeat(&winnerSeat)

	selfDrawWinners := map[int]bool{}
	for _, c := range claims {
		if c.SelfDraw {
			selfDrawWinners[c.Seat] = true
		}
	}

	record := r.buildRecord("win", winnerSeat, selfDrawWinners[winnerSeat], winningTile, claims[0].Result.Category, deltas)
	if r.cold != nil {
		if err := r.cold.SaveRecord(record); err != nil {
			logging.Warn("engine: room %s record save failed: %v", r.RoomId, err)
		}
	}

	events := []OutboundEvent{{Name: "claimResolved", Data: map[string]any{"winningKind": "hu", "actorSeat": winnerSeat}}}
	events = append(events, r.buildSettlementEvent(deltas, "win", &winnerSeat, winningTile, claims[0].Result.Category, selfDrawWinners, nextDealer))
	r.applyRoundTransition(nextDealer)
	return events
}

// settleDraw handles wall-exhaustion with no winner: kong bonuses still
// settle, but no base score transfers.
func (r *Room) settleDraw() []OutboundEvent {
	r.cancelTurnTimer()
	r.cancelClaimTimer()
	r.state.claim = claimWindow{}
	r.state.Phase = PhaseSettlement

	playerMelds := [3]scoring.PlayerMelds{}
	for seat := 0; seat < 3; seat++ {
		playerMelds[seat] = scoring.PlayerMelds{Seat: seat, Melds: r.state.Players[seat].Melds}
	}
	deltas := scoring.SettleDraw(r.state.Config, playerMelds)
	for seat := 0; seat < 3; seat++ {
		r.state.Players[seat].Score += deltas[seat]
	}

	nextDealer := r.nextDealerSeat(nil)

	record := r.buildRecord("draw", -1, false, tile.Tile{}, "", deltas)
	if r.cold != nil {
		if err := r.cold.SaveRecord(record); err != nil {
			logging.Warn("engine: room %s record save failed: %v", r.RoomId, err)
		}
	}

	events := []OutboundEvent{r.buildSettlementEvent(deltas, "draw", nil, tile.Tile{}, "", nil, nextDealer)}
	r.applyRoundTransition(nextDealer)
	return events
}

// buildSettlementEvent assembles the wire-facing `settlement` event
// payload.
func (r *Room) buildSettlementEvent(deltas [3]int, result string, winnerSeat *int, winningTile tile.Tile, category hand.Category, selfDrawWinners map[int]bool, nextDealer int) OutboundEvent {
	players := make([]map[string]any, 3)
	for seat := 0; seat < 3; seat++ {
		p := r.state.Players[seat]
		isWinner := winnerSeat != nil && *winnerSeat == seat
		players[seat] = map[string]any{
			"seat":       seat,
			"userId":     p.UserId,
			"delta":      deltas[seat],
			"score":      p.Score,
			"isDealer":   p.IsDealer,
			"isWinner":   isWinner,
			"isSelfDraw": isWinner && selfDrawWinners[seat],
		}
	}
	data := map[string]any{
		"result":         result,
		"players":        players,
		"nextDealerSeat": nextDealer,
		"roundIndex":     r.state.RoundIndex,
	}
	if winnerSeat != nil {
		data["winnerSeat"] = *winnerSeat
		data["winningTile"] = tile.Format(winningTile)
		data["winningCategory"] = string(category)
	}
	return OutboundEvent{Name: "settlement", Data: data}
}

// nextDealerSeat applies the configured dealer.rotate* policy: a winning
// dealer keeps the seat unless rotateOnWin is set; a winning non-dealer
// rotates the dealer seat if rotateOnLose is set (the old dealer "lost");
// a draw rotates if rotateOnDraw is set.
func (r *Room) nextDealerSeat(winnerSeat *int) int {
	cfg := r.state.Config.Dealer
	if winnerSeat == nil {
		if cfg.RotateOnDraw {
			return (r.state.DealerSeat + 1) % 3
		}
		return r.state.DealerSeat
	}
	if *winnerSeat == r.state.DealerSeat {
		if cfg.RotateOnWin {
			return (r.state.DealerSeat + 1) % 3
		}
		return r.state.DealerSeat
	}
	if cfg.RotateOnLose {
		return (r.state.DealerSeat + 1) % 3
	}
	return r.state.DealerSeat
}

// applyRoundTransition advances roundIndex, rotates the dealer, and either
// reopens `waiting` for the next round or moves to `finished`.
func (r *Room) applyRoundTransition(nextDealer int) {
	r.state.DealerSeat = nextDealer
	r.state.RoundIndex++

	if r.maxRounds > 0 && r.state.RoundIndex >= r.maxRounds {
		r.state.Phase = PhaseFinished
		for seat := range r.state.Players {
			r.state.Players[seat].Status = StatusFinished
		}
		r.commit(nil)
		return
	}

	for seat := range r.state.Players {
		r.state.Players[seat].Hand = nil
		r.state.Players[seat].Melds = nil
		r.state.Players[seat].Ready = false
		r.state.Players[seat].ConsecutiveTimeouts = 0
		if r.state.Players[seat].Status != StatusDisconnected {
			r.state.Players[seat].Status = StatusWaiting
		}
	}
	r.state.Wall = nil
	r.state.DiscardPile = nil
	r.state.ActionLog = nil
	r.state.Phase = PhaseWaiting
	r.commit(nil)
}

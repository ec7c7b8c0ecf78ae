package engine

import (
	"mahjong3p/internal/hand"
	"mahjong3p/internal/tile"
)

// handleClaimSubmit covers hu/peng/chi/pass submitted against an open claim
// window, plus the self-draw `hu` special case submitted by the turn
// player directly off a draw.
func (r *Room) handleClaimSubmit(a Action, kind ClaimKind) Result {
	if kind == ClaimHu && a.SelfDraw {
		return r.handleSelfDrawHu(a)
	}

	if r.state.Phase != PhaseAwaitingClaims || !r.state.claim.Open {
		return Result{Err: newErr(ErrWrongPhase, "room %s has no open claim window", r.RoomId)}
	}
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 || !r.state.claim.Eligible[seat] {
		return Result{Err: newErr(ErrInvalidAction, "seat %d cannot claim in room %s", seat, r.RoomId)}
	}
	if _, already := r.state.claim.Responses[seat]; already {
		return Result{Err: newErr(ErrInvalidAction, "seat %d already responded", seat)}
	}
	if r.state.claim.IsRobbingKong && kind != ClaimHu && kind != ClaimPass {
		return Result{Err: newErr(ErrInvalidAction, "robbing-kong window only accepts hu/pass")}
	}

	p := &r.state.Players[seat]
	claimTile := r.state.claim.Tile

	switch kind {
	case ClaimPass:
		// always legal
	case ClaimHu:
		res := hand.Validate(hand.Context{
			Hand:          append(append([]tile.Tile(nil), p.Hand...), claimTile),
			Melds:         p.Melds,
			WinningTile:   claimTile,
			SelfDraw:      false,
			IsRobbingKong: r.state.claim.IsRobbingKong,
			Config:        r.state.Config,
		})
		if !res.Valid {
			return Result{Err: newErr(ErrInvalidAction, "seat %d hand does not win on %s", seat, tile.Format(claimTile))}
		}
	case ClaimKong:
		if !r.state.Config.AllowGang || !tile.CanFormKong(p.Hand, claimTile) {
			return Result{Err: newErr(ErrInvalidMeld, "seat %d cannot kong %s", seat, tile.Format(claimTile))}
		}
	case ClaimPeng:
		if !r.state.Config.AllowPeng || !tile.CanFormTriplet(p.Hand, claimTile) {
			return Result{Err: newErr(ErrInvalidMeld, "seat %d cannot peng %s", seat, tile.Format(claimTile))}
		}
	case ClaimChi:
		if !r.state.Config.AllowChi || len(a.ChiTiles) != 2 {
			return Result{Err: newErr(ErrInvalidMeld, "seat %d cannot chi %s", seat, tile.Format(claimTile))}
		}
		if !validChiShape(a.ChiTiles, claimTile) {
			return Result{Err: newErr(ErrInvalidMeld, "seat %d chi tiles do not form a run with %s", seat, tile.Format(claimTile))}
		}
		counts := tile.Counts(p.Hand)
		if counts[a.ChiTiles[0]] < 1 || (a.ChiTiles[0] == a.ChiTiles[1] && counts[a.ChiTiles[0]] < 2) || counts[a.ChiTiles[1]] < 1 {
			return Result{Err: newErr(ErrInvalidMeld, "seat %d lacks tiles to chi %s", seat, tile.Format(claimTile))}
		}
	default:
		return Result{Err: newErr(ErrInvalidAction, "unknown claim kind %s", kind)}
	}

	r.state.claim.Responses[seat] = pendingClaim{Seat: seat, Kind: kind, Tiles: a.ChiTiles}

	if len(r.state.claim.Responses) >= len(r.state.claim.Eligible) {
		return Result{Events: r.resolveClaimWindow()}
	}
	r.commit(nil)
	return Result{}
}

// validChiShape checks that {a, b, claimTile} form three consecutive
// same-suit tiles.
func validChiShape(ab []tile.Tile, claim tile.Tile) bool {
	ranks := []int{ab[0].Rank, ab[1].Rank, claim.Rank}
	if ab[0].Suit != claim.Suit || ab[1].Suit != claim.Suit {
		return false
	}
	lo, mid, hi := minMax3(ranks)
	return hi-lo == 2 && mid-lo == 1
}

func minMax3(r []int) (lo, mid, hi int) {
	a, b, c := r[0], r[1], r[2]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return a, b, c
}

// handleSelfDrawHu validates and settles a win claimed off the turn
// player's own draw, without going through a claim window.
func (r *Room) handleSelfDrawHu(a Action) Result {
	if r.state.Phase != PhasePlaying {
		return Result{Err: newErr(ErrWrongPhase, "room %s is not in playing phase", r.RoomId)}
	}
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 || seat != r.state.TurnSeat {
		return Result{Err: newErr(ErrNotYourTurn, "seat %d cannot self-draw hu", seat)}
	}
	p := &r.state.Players[seat]
	res := hand.Validate(hand.Context{
		Hand:        p.Hand,
		Melds:       p.Melds,
		WinningTile: a.Tile,
		SelfDraw:    true,
		Config:      r.state.Config,
	})
	if !res.Valid {
		return Result{Err: newErr(ErrInvalidAction, "seat %d hand does not win by self-draw on %s", seat, tile.Format(a.Tile))}
	}
	r.exitTrustee(seat)
	r.cancelTurnTimer()
	return Result{Events: r.settleWins([]winClaim{{Seat: seat, SelfDraw: true, Result: res}}, -1, a.Tile, false)}
}

// resolveClaimWindow picks the winning response under the priority order
// hu > kong > peng > chi, applying the seat-order tie-break starting
// clockwise from the discarder, and otherwise advances the turn.
func (r *Room) resolveClaimWindow() []OutboundEvent {
	cw := r.state.claim
	r.cancelClaimTimer()

	order := []int{(cw.DiscarderSeat + 1) % 3, (cw.DiscarderSeat + 2) % 3}

	huSeats := seatsWithKind(cw, order, ClaimHu)
	if len(huSeats) > 0 {
		return r.resolveHuClaims(cw, huSeats)
	}

	if cw.IsRobbingKong {
		// No one robbed: the upgrade commits.
		r.state.claim = claimWindow{}
		return r.commitKongUpgrade()
	}

	if seat, ok := firstWithKind(cw, order, ClaimKong); ok {
		return r.commitClaimedKong(cw, seat)
	}
	if seat, ok := firstWithKind(cw, order, ClaimPeng); ok {
		return r.commitPeng(cw, seat)
	}
	if seat, ok := firstWithKind(cw, order, ClaimChi); ok {
		return r.commitChi(cw, seat)
	}

	r.state.claim = claimWindow{}
	events := []OutboundEvent{{Name: "claimResolved", Data: map[string]any{"winningKind": "none"}}}
	events = append(events, r.advanceTurnTo((cw.DiscarderSeat+1)%3)...)
	return events
}

func seatsWithKind(cw claimWindow, order []int, kind ClaimKind) []int {
	var out []int
	for _, seat := range order {
		if resp, ok := cw.Responses[seat]; ok && resp.Kind == kind {
			out = append(out, seat)
		}
	}
	return out
}

func firstWithKind(cw claimWindow, order []int, kind ClaimKind) (int, bool) {
	for _, seat := range order {
		if resp, ok := cw.Responses[seat]; ok && resp.Kind == kind {
			return seat, true
		}
	}
	return 0, false
}

// resolveHuClaims settles one or every hu claim depending on
// config.score.multipleWinners.
func (r *Room) resolveHuClaims(cw claimWindow, huSeats []int) []OutboundEvent {
	r.state.claim = claimWindow{}
	claimTile := cw.Tile
	winners := huSeats
	if !r.state.Config.Score.MultipleWinners {
		winners = huSeats[:1]
	}

	claims := make([]winClaim, 0, len(winners))
	for _, seat := range winners {
		p := &r.state.Players[seat]
		res := hand.Validate(hand.Context{
			Hand:          append(append([]tile.Tile(nil), p.Hand...), claimTile),
			Melds:         p.Melds,
			WinningTile:   claimTile,
			SelfDraw:      false,
			IsRobbingKong: cw.IsRobbingKong,
			Config:        r.state.Config,
		})
		claims = append(claims, winClaim{Seat: seat, SelfDraw: false, Result: res})
	}
	return r.settleWins(claims, cw.DiscarderSeat, claimTile, cw.IsRobbingKong)
}

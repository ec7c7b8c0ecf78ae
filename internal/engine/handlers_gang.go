package engine

import "mahjong3p/internal/tile"

// handleGang routes the `gang` wire command to its three sub-kinds: a
// concealed or upgraded kong formed by the turn player off their own
// hand/draw, or an exposed kong claimed onto a discard during an open
// claim window.
func (r *Room) handleGang(a Action) Result {
	if !r.state.Config.AllowGang {
		return Result{Err: newErr(ErrInvalidAction, "gang is disabled by room rules")}
	}

	if r.state.Phase == PhaseAwaitingClaims {
		return r.handleClaimSubmit(a, ClaimKong)
	}

	if r.state.Phase != PhasePlaying {
		return Result{Err: newErr(ErrWrongPhase, "room %s is not in playing phase", r.RoomId)}
	}
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 || seat != r.state.TurnSeat {
		return Result{Err: newErr(ErrNotYourTurn, "seat %d cannot gang", seat)}
	}

	switch a.GangKind {
	case GangConcealed:
		return r.handleConcealedKong(seat, a.Tile)
	case GangUpgraded:
		return r.handleUpgradeKong(seat, a.Tile)
	default:
		return Result{Err: newErr(ErrInvalidAction, "gang kind %s not valid from hand", a.GangKind)}
	}
}

// handleConcealedKong forms a fully-concealed kong from four matching
// tiles already in hand.
func (r *Room) handleConcealedKong(seat int, t tile.Tile) Result {
	p := &r.state.Players[seat]
	counts := tile.Counts(p.Hand)
	if counts[t] < 4 {
		return Result{Err: newErr(ErrInvalidMeld, "seat %d lacks four %s for a concealed kong", seat, tile.Format(t))}
	}
	hand := p.Hand
	for i := 0; i < 4; i++ {
		hand, _ = tile.Remove(hand, t)
	}
	p.Hand = hand
	p.Melds = append(p.Melds, tile.MeldSet{
		Kind:      tile.Kong,
		Tiles:     []tile.Tile{t, t, t, t},
		Concealed: true,
		KongSub:   tile.KongConcealed,
	})
	r.exitTrustee(seat)
	r.cancelTurnTimer()
	r.logAction(seat, ActionGang, t)

	events := []OutboundEvent{{Name: "meldFormed", Data: map[string]any{
		"seat": seat, "kind": "kong", "kongSub": "concealed", "tile": tile.Format(t),
	}}}
	events = append(events, r.drawReplacement(seat)...)
	return Result{Events: events}
}

// handleUpgradeKong attempts to upgrade an already-exposed triplet to a
// kong with the turn player's just-drawn tile, opening a one-shot
// hu-only robbing window first.
func (r *Room) handleUpgradeKong(seat int, t tile.Tile) Result {
	p := &r.state.Players[seat]
	meldIdx := -1
	for i, m := range p.Melds {
		if m.Kind == tile.Triplet && len(m.Tiles) > 0 && m.Tiles[0] == t {
			meldIdx = i
			break
		}
	}
	if meldIdx == -1 {
		return Result{Err: newErr(ErrInvalidMeld, "seat %d has no exposed triplet of %s to upgrade", seat, tile.Format(t))}
	}
	hand, ok := tile.Remove(p.Hand, t)
	if !ok {
		return Result{Err: newErr(ErrInvalidTile, "seat %d does not hold a drawn %s to upgrade with", seat, tile.Format(t))}
	}
	p.Hand = hand
	r.exitTrustee(seat)
	r.cancelTurnTimer()

	r.state.kongUpgradeSeat = seat
	r.state.kongUpgradeMeldIdx = meldIdx

	eligible := r.openClaimWindow(t, seat, true)
	r.logAction(seat, ActionGang, t)
	r.commit(nil)
	r.armClaimTimer()

	return Result{Events: []OutboundEvent{{Name: "claimWindowOpen", Data: map[string]any{
		"tile": tile.Format(t), "discarderSeat": seat, "eligibleSeats": eligible,
		"windowDeadline": r.state.claim.DeadlineMs, "robbingKong": true,
	}}}}
}

// commitKongUpgrade finalizes an upgrade no one robbed: the matching
// exposed Triplet becomes a Kong, and the upgrader draws a replacement.
func (r *Room) commitKongUpgrade() []OutboundEvent {
	seat := r.state.kongUpgradeSeat
	meldIdx := r.state.kongUpgradeMeldIdx
	p := &r.state.Players[seat]
	m := p.Melds[meldIdx]
	t := m.Tiles[0]
	p.Melds[meldIdx] = tile.MeldSet{
		Kind:        tile.Kong,
		Tiles:       append(append([]tile.Tile(nil), m.Tiles...), t),
		Concealed:   false,
		ClaimedFrom: m.ClaimedFrom,
		KongSub:     tile.KongUpgraded,
	}
	events := []OutboundEvent{{Name: "claimResolved", Data: map[string]any{"winningKind": "none"}},
		{Name: "meldFormed", Data: map[string]any{"seat": seat, "kind": "kong", "kongSub": "upgraded", "tile": tile.Format(t)}}}
	events = append(events, r.drawReplacement(seat)...)
	return events
}

// popClaimedDiscard removes the claimed tile from the discard pile: a
// claim always targets the most recent discard, and the tile lives on in
// the claimant's meld from here, not in the pile.
func (r *Room) popClaimedDiscard() {
	if n := len(r.state.DiscardPile); n > 0 {
		r.state.DiscardPile = r.state.DiscardPile[:n-1]
	}
}

// commitClaimedKong forms an exposed kong by claiming the discard onto a
// hand triplet, then the kong-former draws a replacement and keeps the
// turn.
func (r *Room) commitClaimedKong(cw claimWindow, seat int) []OutboundEvent {
	r.state.claim = claimWindow{}
	r.popClaimedDiscard()
	p := &r.state.Players[seat]
	t := cw.Tile
	hand := p.Hand
	for i := 0; i < 3; i++ {
		hand, _ = tile.Remove(hand, t)
	}
	p.Hand = hand
	p.Melds = append(p.Melds, tile.MeldSet{
		Kind:        tile.Kong,
		Tiles:       []tile.Tile{t, t, t, t},
		Concealed:   false,
		ClaimedFrom: r.state.Players[cw.DiscarderSeat].UserId,
		KongSub:     tile.KongExposed,
	})
	r.logAction(seat, ActionGang, t)
	events := []OutboundEvent{{Name: "claimResolved", Data: map[string]any{"winningKind": "kong", "actorSeat": seat}},
		{Name: "meldFormed", Data: map[string]any{"seat": seat, "kind": "kong", "kongSub": "exposed", "tile": tile.Format(t)}}}
	events = append(events, r.drawReplacement(seat)...)
	return events
}

// commitPeng forms an exposed triplet by claiming the discard, then the
// turn advances to the claimant (they must discard next).
func (r *Room) commitPeng(cw claimWindow, seat int) []OutboundEvent {
	r.state.claim = claimWindow{}
	r.popClaimedDiscard()
	p := &r.state.Players[seat]
	t := cw.Tile
	hand := p.Hand
	for i := 0; i < 2; i++ {
		hand, _ = tile.Remove(hand, t)
	}
	p.Hand = hand
	p.Melds = append(p.Melds, tile.MeldSet{
		Kind:        tile.Triplet,
		Tiles:       []tile.Tile{t, t, t},
		Concealed:   false,
		ClaimedFrom: r.state.Players[cw.DiscarderSeat].UserId,
	})
	r.state.TurnSeat = seat
	r.state.Phase = PhasePlaying
	r.state.turnHasDrawn = false
	r.logAction(seat, ActionPeng, t)
	r.commit(nil)
	r.armTurnTimer()

	return []OutboundEvent{
		{Name: "claimResolved", Data: map[string]any{"winningKind": "peng", "actorSeat": seat}},
		{Name: "meldFormed", Data: map[string]any{"seat": seat, "kind": "triplet", "tile": tile.Format(t)}},
		{Name: "turnChange", Data: map[string]any{"turnSeat": seat, "turnDeadline": r.state.TurnDeadlineMs}},
	}
}

// commitChi forms a sequence by claiming the discard (gated by allowChi),
// then the turn advances to the claimant.
func (r *Room) commitChi(cw claimWindow, seat int) []OutboundEvent {
	resp := cw.Responses[seat]
	r.state.claim = claimWindow{}
	r.popClaimedDiscard()
	p := &r.state.Players[seat]
	t := cw.Tile
	handTiles := p.Hand
	for _, rm := range resp.Tiles {
		handTiles, _ = tile.Remove(handTiles, rm)
	}
	p.Hand = handTiles
	seqTiles := append(append([]tile.Tile(nil), resp.Tiles...), t)
	tile.SortTiles(seqTiles)
	p.Melds = append(p.Melds, tile.MeldSet{
		Kind:        tile.Sequence,
		Tiles:       seqTiles,
		Concealed:   false,
		ClaimedFrom: r.state.Players[cw.DiscarderSeat].UserId,
	})
	r.state.TurnSeat = seat
	r.state.Phase = PhasePlaying
	r.state.turnHasDrawn = false
	r.logAction(seat, ActionChi, t)
	r.commit(nil)
	r.armTurnTimer()

	return []OutboundEvent{
		{Name: "claimResolved", Data: map[string]any{"winningKind": "chi", "actorSeat": seat}},
		{Name: "meldFormed", Data: map[string]any{"seat": seat, "kind": "sequence", "tiles": tile.Format(seqTiles[0]) + "," + tile.Format(seqTiles[1]) + "," + tile.Format(seqTiles[2])}},
		{Name: "turnChange", Data: map[string]any{"turnSeat": seat, "turnDeadline": r.state.TurnDeadlineMs}},
	}
}

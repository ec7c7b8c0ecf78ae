package engine

// handleHeartbeat just refreshes the seat's last-activity timestamp; a
// room is eligible for reaping once every seat is idle past the
// inactivity limit, enforced by the room registry, not the engine itself.
func (r *Room) handleHeartbeat(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}
	r.state.Players[seat].LastActionAtMs = a.AtMs
	return Result{}
}

// handleGetSnapshot answers the `getSnapshot` command with a redacted full
// snapshot delivered only to the requester.
func (r *Room) handleGetSnapshot(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}
	snap := BuildSnapshot(r.state, a.ActorUserId)
	return Result{Events: []OutboundEvent{
		{Name: "gameSnapshot", Data: snap, Recipients: []string{a.ActorUserId}},
	}}
}

// handleDisconnect marks a seat disconnected and arms the reconnect grace
// timer. It is posted by the transport/reconnection layer on socket
// close, not by a client frame.
func (r *Room) handleDisconnect(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{}
	}
	p := &r.state.Players[seat]
	if p.Status == StatusDisconnected || p.Status == StatusFinished {
		return Result{}
	}
	p.Status = StatusDisconnected
	r.commit(nil)
	r.armGraceTimer(seat)
	return Result{Events: []OutboundEvent{
		{Name: "playerDisconnected", Data: map[string]any{"seat": seat}},
	}}
}

// handleReconnect restores a seat to play within its grace period: prior
// status (`playing` or `waitingTurn`) is restored and the rejoining user
// gets one redacted full snapshot; no event replay is needed.
func (r *Room) handleReconnect(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrNotAMember, "user %s is not a member of room %s", a.ActorUserId, r.RoomId)}
	}
	p := &r.state.Players[seat]
	if p.Status == StatusFinished {
		return Result{Err: newErr(ErrReconnectExpired, "seat %d's game already finished", seat)}
	}
	if p.Status != StatusDisconnected && p.Status != StatusTrustee {
		return Result{Err: newErr(ErrInvalidAction, "seat %d is not disconnected", seat)}
	}
	wasTrustee := p.Status == StatusTrustee
	if seat == r.state.TurnSeat {
		p.Status = StatusPlaying
	} else {
		p.Status = StatusWaitingTurn
	}
	r.cancelGraceTimer(seat)
	r.commit(nil)

	snap := BuildSnapshot(r.state, a.ActorUserId)
	events := []OutboundEvent{
		{Name: "playerReconnected", Data: map[string]any{"seat": seat, "wasTrustee": wasTrustee}},
		{Name: "gameSnapshot", Data: snap, Recipients: []string{a.ActorUserId}},
	}
	return Result{Events: events}
}

package engine

// handleDismissVote implements room dissolution voting: any seat may
// propose ending the room early, and the room dissolves once either a
// simple majority agrees, or every seat agrees when
// config.dismiss.requireAllAgree is set.
func (r *Room) handleDismissVote(a Action) Result {
	seat := r.seatOf(a.ActorUserId)
	if seat == -1 {
		return Result{Err: newErr(ErrInvalidAction, "user %s is not in room %s", a.ActorUserId, r.RoomId)}
	}

	if !r.state.dismiss.Active {
		r.state.dismiss = dismissState{
			Active:       true,
			ProposerSeat: seat,
			Votes:        map[int]bool{seat: a.Vote},
		}
		r.commit(nil)
		r.armDismissTimer()
		return Result{Events: []OutboundEvent{
			{Name: "roomDissolved", Data: map[string]any{"status": "voteOpened", "proposerSeat": seat}},
		}}
	}

	if _, already := r.state.dismiss.Votes[seat]; already {
		return Result{Err: newErr(ErrInvalidAction, "seat %d already voted", seat)}
	}
	r.state.dismiss.Votes[seat] = a.Vote

	if !a.Vote && r.state.Config.Dismiss.RequireAllAgree {
		r.state.dismiss = dismissState{}
		r.commit(nil)
		return Result{Events: []OutboundEvent{
			{Name: "roomDissolved", Data: map[string]any{"status": "voteRejected", "rejectedBySeat": seat}},
		}}
	}

	agree := 0
	for _, v := range r.state.dismiss.Votes {
		if v {
			agree++
		}
	}
	quorum := 2
	if r.state.Config.Dismiss.RequireAllAgree {
		quorum = 3
	}
	if agree < quorum {
		r.commit(nil)
		return Result{}
	}

	r.cancelDismissTimer()
	r.state.dismiss = dismissState{}
	r.state.Phase = PhaseFinished
	for i := range r.state.Players {
		r.state.Players[i].Status = StatusFinished
	}
	r.commit(nil)
	return Result{Events: []OutboundEvent{
		{Name: "roomDissolved", Data: map[string]any{"status": "dissolved"}},
	}}
}

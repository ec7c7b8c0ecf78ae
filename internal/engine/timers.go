package engine

import "strconv"

// Timer keys are room-scoped; TimerArmer cancels any prior timer under the
// same key before arming a new one (one claim window per room at a time,
// one turn deadline, one trustee tick). The grace timer is keyed per seat:
// two seats can be inside their reconnect grace at once.
const (
	timerKeyTurn    = "turn"
	timerKeyClaim   = "claim"
	timerKeyTrustee = "trustee"
	timerKeyDismiss = "dismiss"
)

func graceKey(seat int) string { return "grace:" + strconv.Itoa(seat) }

// A timer can race its own cancellation: the scheduler goroutine may have
// fired and queued its action onto the inbox while the actor was committing
// the state change that obsoleted it. Every arm and cancel therefore bumps
// a per-key generation; the queued action carries the generation it was
// armed under, and the handler drops any firing whose generation is no
// longer current. Generations advance even when no TimerArmer is wired,
// keeping the bookkeeping identical in timer-less test setups.
func (r *Room) bumpTimerGen(key string) int {
	if r.timerGen == nil {
		r.timerGen = make(map[string]int)
	}
	r.timerGen[key]++
	return r.timerGen[key]
}

func (r *Room) timerCurrent(key string, a Action) bool {
	return r.timerGen != nil && int(a.ClientSeq) == r.timerGen[key]
}

func (r *Room) armTurnTimer() {
	seat := r.state.TurnSeat
	if r.state.Players[seat].Status == StatusTrustee {
		d := r.state.Config.Turn.TrusteeTickDelay
		gen := r.bumpTimerGen(timerKeyTrustee)
		r.state.TurnDeadlineMs = r.clockNow() + d.Milliseconds()
		if r.timers != nil {
			r.timers.Arm(timerKeyTrustee, d, func() {
				r.PostTimer(Action{Kind: actionTimerTrustee, Seat: seat, ClientSeq: int64(gen)})
			})
		}
		return
	}
	d := r.state.Config.Turn.TurnTimeLimit
	gen := r.bumpTimerGen(timerKeyTurn)
	r.state.TurnDeadlineMs = r.clockNow() + d.Milliseconds()
	if r.timers != nil {
		r.timers.Arm(timerKeyTurn, d, func() {
			r.PostTimer(Action{Kind: actionTimerTurn, Seat: seat, ClientSeq: int64(gen)})
		})
	}
}

func (r *Room) armClaimTimer() {
	d := r.state.Config.Turn.ActionTimeLimit
	gen := r.bumpTimerGen(timerKeyClaim)
	r.state.claim.DeadlineMs = r.clockNow() + d.Milliseconds()
	if r.timers != nil {
		r.timers.Arm(timerKeyClaim, d, func() {
			r.PostTimer(Action{Kind: actionTimerClaim, ClientSeq: int64(gen)})
		})
	}
}

func (r *Room) armGraceTimer(seat int) {
	key := graceKey(seat)
	gen := r.bumpTimerGen(key)
	d := r.state.Config.Reconnect.GracePeriod
	if r.timers != nil {
		r.timers.Arm(key, d, func() {
			r.PostTimer(Action{Kind: actionTimerGrace, Seat: seat, ClientSeq: int64(gen)})
		})
	}
}

func (r *Room) armDismissTimer() {
	gen := r.bumpTimerGen(timerKeyDismiss)
	d := r.state.Config.Dismiss.VoteTimeLimit
	if r.timers != nil {
		r.timers.Arm(timerKeyDismiss, d, func() {
			r.PostTimer(Action{Kind: actionTimerDismiss, ClientSeq: int64(gen)})
		})
	}
}

func (r *Room) cancelTurnTimer() {
	r.bumpTimerGen(timerKeyTurn)
	r.bumpTimerGen(timerKeyTrustee)
	if r.timers != nil {
		r.timers.Cancel(timerKeyTurn)
		r.timers.Cancel(timerKeyTrustee)
	}
}

func (r *Room) cancelClaimTimer() {
	r.bumpTimerGen(timerKeyClaim)
	if r.timers != nil {
		r.timers.Cancel(timerKeyClaim)
	}
}

func (r *Room) cancelGraceTimer(seat int) {
	key := graceKey(seat)
	r.bumpTimerGen(key)
	if r.timers != nil {
		r.timers.Cancel(key)
	}
}

func (r *Room) cancelDismissTimer() {
	r.bumpTimerGen(timerKeyDismiss)
	if r.timers != nil {
		r.timers.Cancel(timerKeyDismiss)
	}
}

func (r *Room) clockNow() int64 {
	if r.clock != nil {
		return r.clock.NowMs()
	}
	return SystemClock.NowMs()
}

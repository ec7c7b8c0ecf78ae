package engine

import (
	"mahjong3p/internal/logging"
	"mahjong3p/internal/tile"
)

// processAction is the engine's single mutation entry point: every Action
// enters here, is validated, and either mutates r.state (incrementing
// Version and producing events) or is rejected unchanged.
func (r *Room) processAction(a Action) Result {
	switch a.Kind {
	case ActionJoin:
		return r.handleJoin(a)
	case ActionLeave:
		return r.handleLeave(a)
	case ActionReady:
		return r.handleReady(a)
	case ActionDiscard:
		return r.handleDiscard(a)
	case ActionHu:
		return r.handleClaimSubmit(a, ClaimHu)
	case ActionGang:
		return r.handleGang(a)
	case ActionPeng:
		return r.handleClaimSubmit(a, ClaimPeng)
	case ActionChi:
		return r.handleClaimSubmit(a, ClaimChi)
	case ActionPass:
		return r.handleClaimSubmit(a, ClaimPass)
	case ActionHeartbeat:
		return r.handleHeartbeat(a)
	case ActionGetSnapshot:
		return r.handleGetSnapshot(a)
	case ActionDismissVote:
		return r.handleDismissVote(a)
	case ActionDisconnect:
		return r.handleDisconnect(a)
	case ActionReconnect:
		return r.handleReconnect(a)
	case actionTimerTurn:
		return r.handleTurnTimeout(a)
	case actionTimerClaim:
		return r.handleClaimWindowClose(a)
	case actionTimerGrace:
		return r.handleGraceExpired(a)
	case actionTimerTrustee:
		return r.handleTrusteeTick(a)
	case actionTimerDismiss:
		return r.handleDismissTimeout(a)
	default:
		return Result{Err: newErr(ErrInvalidAction, "unknown action kind %s", a.Kind)}
	}
}

// seatOf returns the seat a userId occupies, or -1.
func (r *Room) seatOf(userId string) int {
	for seat, id := range r.players {
		if id == userId {
			return seat
		}
	}
	return -1
}

// logAction appends one replay-relevant committed action to the game's
// action log when replay is enabled. Draws need no entries of their own:
// they are fully determined by RngSeed plus the logged decisions.
func (r *Room) logAction(seat int, kind ActionKind, t tile.Tile) {
	if r.state.Config.Replay {
		r.state.ActionLog = append(r.state.ActionLog, LoggedAction{Seat: seat, Kind: kind, Tile: t, AtMs: r.clockNow()})
	}
}

// commit bumps Version, writes the hot store synchronously on every
// committed mutation, and appends to the action log when replay is
// enabled.
func (r *Room) commit(logged *LoggedAction) {
	r.state.Version++
	if logged != nil && r.state.Config.Replay {
		r.state.ActionLog = append(r.state.ActionLog, *logged)
	}
	if r.hot != nil {
		snap := EncodeSnapshot(r.state)
		if err := r.hot.SaveSnapshot(r.RoomId, r.state.Version, snap); err != nil {
			// Hot-store unavailability never blocks play; the write is
			// best-effort here, retried by the store's own bounded queue
			// (internal/durability).
			logging.Warn("engine: hot store write failed for room %s: %v", r.RoomId, err)
		}
	}
}

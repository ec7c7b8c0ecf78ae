// Package scoring translates a win or draw into per-player signed score
// deltas under a rules.Config.
package scoring

import (
	"math"

	"mahjong3p/internal/hand"
	"mahjong3p/internal/rules"
	"mahjong3p/internal/tile"
)

// PlayerMelds is the minimal per-seat input scoring needs: only the melds,
// since kong bonuses are paid independent of who wins.
type PlayerMelds struct {
	Seat  int
	Melds []tile.MeldSet
}

// WinResult describes a single winning claim to be settled. DiscarderSeat
// is -1 for a self-draw.
type WinResult struct {
	WinnerSeat    int
	DiscarderSeat int
	SelfDraw      bool
	IsDealer      bool
	DealerSeat    int
	Result        hand.Result
	// RobbedBonusTile is set when this win cancelled another player's
	// kong upgrade mid-flight: the meld never becomes a Kong, so the
	// upgrade's bonus tier is credited to the winner directly instead of
	// waiting to be found among any player's melds.
	RobbedBonusTile bool
}

// Settle computes per-seat score deltas for a win. players supplies every
// seat's current melds (for kong-bonus computation); len(players) must be 3.
func Settle(cfg rules.Config, win WinResult, players [3]PlayerMelds) [3]int {
	deltas := [3]int{}

	base := float64(cfg.Score.BaseScore)
	fan := win.Result.Fan
	if fan < 1 {
		fan = 1
	}
	multiplier := math.Pow(2, float64(fan-1))
	score := base * multiplier
	if win.IsDealer {
		score *= cfg.Score.DealerMultiplier
	}
	if win.SelfDraw {
		score *= cfg.Score.SelfDrawBonus
	}
	final := int(math.Round(score))
	if final > cfg.Score.MaxScore {
		final = cfg.Score.MaxScore
	}

	if win.SelfDraw {
		applySelfDraw(&deltas, win, final, cfg)
	} else {
		applyDiscardClaim(&deltas, win, final)
	}

	applyKongBonuses(&deltas, cfg, players)
	if win.RobbedBonusTile {
		creditRobbedBonus(&deltas, cfg, win.WinnerSeat)
	}

	return deltas
}

// applySelfDraw splits a self-draw win across the two non-winning seats:
// the dealer-seat payer pays double a non-dealer payer's share whenever
// the dealer is not the winner; when the dealer is the winner, the two
// non-dealers each pay the full finalScore.
func applySelfDraw(deltas *[3]int, win WinResult, final int, cfg rules.Config) {
	for seat := 0; seat < 3; seat++ {
		if seat == win.WinnerSeat {
			continue
		}
		pay := final
		if seat == win.DealerSeat && win.DealerSeat != win.WinnerSeat {
			pay = final * 2
		}
		deltas[seat] -= pay
		deltas[win.WinnerSeat] += pay
	}
}

// applyDiscardClaim implements the single-discarder-pays rule. Ties among
// multiple winners are handled by the caller invoking Settle once per
// winning seat and summing results, since each winner's score is computed
// independently.
func applyDiscardClaim(deltas *[3]int, win WinResult, final int) {
	deltas[win.DiscarderSeat] -= final
	deltas[win.WinnerSeat] += final
}

// applyKongBonuses adds each meld-owner's kong bonus, paid equally by the
// other two seats, so bonuses net to zero regardless of how many (if any)
// players hold kongs.
func applyKongBonuses(deltas *[3]int, cfg rules.Config, players [3]PlayerMelds) {
	for _, p := range players {
		bonus := 0
		for _, m := range p.Melds {
			if m.Kind != tile.Kong {
				continue
			}
			switch m.KongSub {
			case tile.KongConcealed:
				bonus += 2 * cfg.Score.GangBonus
			default: // exposed or upgraded
				bonus += cfg.Score.GangBonus
			}
		}
		if bonus == 0 {
			continue
		}
		payToSeat(deltas, p.Seat, bonus)
	}
}

// creditRobbedBonus pays the winner the single bonus tier an upgraded kong
// would have earned its owner, since a successful rob cancels the upgrade
// before it ever becomes a Kong meld that applyKongBonuses could find.
func creditRobbedBonus(deltas *[3]int, cfg rules.Config, winnerSeat int) {
	if cfg.Score.GangBonus == 0 {
		return
	}
	payToSeat(deltas, winnerSeat, cfg.Score.GangBonus)
}

// payToSeat splits amount as evenly as possible across the other two
// seats and credits it to creditSeat, so every bonus payment nets to zero.
func payToSeat(deltas *[3]int, creditSeat int, amount int) {
	payEach := amount / 2
	remainder := amount - payEach*2
	for seat := 0; seat < 3; seat++ {
		if seat == creditSeat {
			continue
		}
		share := payEach
		if remainder > 0 {
			share++
			remainder--
		}
		deltas[seat] -= share
		deltas[creditSeat] += share
	}
}

// SettleDraw implements the wall-exhaustion path: kong bonuses still
// settle, but no base score transfers since there is no winner.
func SettleDraw(cfg rules.Config, players [3]PlayerMelds) [3]int {
	deltas := [3]int{}
	applyKongBonuses(&deltas, cfg, players)
	return deltas
}

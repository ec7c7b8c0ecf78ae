package scoring

import "mahjong3p/internal/rules"

// SettleMultiple settles one or more simultaneous winning claims against a
// single discard: every winner collects independently from the discarder,
// and ties are allowed. Kong bonuses are applied exactly once so the
// deltas still sum to zero no matter how many winners are settled
// together.
func SettleMultiple(cfg rules.Config, wins []WinResult, players [3]PlayerMelds) [3]int {
	deltas := [3]int{}
	for _, win := range wins {
		d := Settle(cfg, win, [3]PlayerMelds{})
		for seat := 0; seat < 3; seat++ {
			deltas[seat] += d[seat]
		}
	}
	applyKongBonuses(&deltas, cfg, players)
	return deltas
}

// Package rules defines the frozen RuleConfig consumed by every other
// component.
package rules

import (
	"fmt"
	"time"
)

// HuTypes toggles each win category independently.
type HuTypes struct {
	BasicWin    bool `mapstructure:"basicWin"`
	SevenPairs  bool `mapstructure:"sevenPairs"`
	AllPungs    bool `mapstructure:"allPungs"`
	AllHonors   bool `mapstructure:"allHonors"`
	EdgeWait    bool `mapstructure:"edgeWait"`
	PairWait    bool `mapstructure:"pairWait"`
	RobbingKong bool `mapstructure:"robbingKong"`
}

// ScoreConfig carries every knob consulted by internal/scoring.
type ScoreConfig struct {
	BaseScore        int     `mapstructure:"baseScore"`
	MaxScore         int     `mapstructure:"maxScore"`
	DealerMultiplier float64 `mapstructure:"dealerMultiplier"`
	SelfDrawBonus    float64 `mapstructure:"selfDrawBonus"`
	GangBonus        int     `mapstructure:"gangBonus"`
	MultipleWinners  bool    `mapstructure:"multipleWinners"`
}

// TurnConfig carries scheduler timing knobs.
type TurnConfig struct {
	TurnTimeLimit      time.Duration `mapstructure:"turnTimeLimit"`
	ActionTimeLimit    time.Duration `mapstructure:"actionTimeLimit"`
	AutoTrustee        bool          `mapstructure:"autoTrustee"`
	TrusteeTimeoutCount int          `mapstructure:"trusteeTimeoutCount"`
	TrusteeTickDelay   time.Duration `mapstructure:"trusteeTickDelay"`
}

// DealerConfig governs dealer-seat rotation between games.
type DealerConfig struct {
	RotateOnWin  bool `mapstructure:"rotateOnWin"`
	RotateOnDraw bool `mapstructure:"rotateOnDraw"`
	RotateOnLose bool `mapstructure:"rotateOnLose"`
}

// DismissConfig governs room dissolution voting (spec.md §6; the state
// machine for it is supplemental — see SPEC_FULL.md and internal/engine/dissolve.go).
type DismissConfig struct {
	RequireAllAgree     bool          `mapstructure:"requireAllAgree"`
	VoteTimeLimit       time.Duration `mapstructure:"voteTimeLimit"`
	AutoDissolveTimeout time.Duration `mapstructure:"autoDissolveTimeout"`
}

// ReconnectConfig governs the reconnection coordinator (spec.md §4.8).
type ReconnectConfig struct {
	GracePeriod    time.Duration `mapstructure:"gracePeriod"`
	MaxDisconnect  time.Duration `mapstructure:"maxDisconnect"`
}

// Config is the frozen options record. Reconnect.MaxDisconnect is loaded
// but read by no other package: reconnects are not refused for exceeding it.
type Config struct {
	Players     int             `mapstructure:"players"`
	WanOnly     bool            `mapstructure:"wanOnly"` // true <=> tiles=WAN_ONLY
	AllowPeng   bool            `mapstructure:"allowPeng"`
	AllowGang   bool            `mapstructure:"allowGang"`
	AllowChi    bool            `mapstructure:"allowChi"`
	HuTypes     HuTypes         `mapstructure:"huTypes"`
	Score       ScoreConfig     `mapstructure:"score"`
	Turn        TurnConfig      `mapstructure:"turn"`
	Dealer      DealerConfig    `mapstructure:"dealer"`
	Replay      bool            `mapstructure:"replay"`
	Dismiss     DismissConfig   `mapstructure:"dismiss"`
	Reconnect   ReconnectConfig `mapstructure:"reconnect"`
}

// Default returns the baseline configuration new rooms start from.
func Default() Config {
	return Config{
		Players:   3,
		WanOnly:   false,
		AllowPeng: true,
		AllowGang: true,
		AllowChi:  true,
		HuTypes: HuTypes{
			BasicWin:    true,
			SevenPairs:  true,
			AllPungs:    true,
			AllHonors:   true,
			EdgeWait:    true,
			PairWait:    true,
			RobbingKong: true,
		},
		Score: ScoreConfig{
			BaseScore:        2,
			MaxScore:         64,
			DealerMultiplier: 2,
			SelfDrawBonus:    2,
			GangBonus:        1,
			MultipleWinners:  false,
		},
		Turn: TurnConfig{
			TurnTimeLimit:       15 * time.Second,
			ActionTimeLimit:     8 * time.Second,
			AutoTrustee:         true,
			TrusteeTimeoutCount: 3,
			TrusteeTickDelay:    2 * time.Second,
		},
		Dealer: DealerConfig{
			RotateOnWin:  false,
			RotateOnDraw: true,
			RotateOnLose: true,
		},
		Replay: true,
		Dismiss: DismissConfig{
			RequireAllAgree:     true,
			VoteTimeLimit:       30 * time.Second,
			AutoDissolveTimeout: 10 * time.Minute,
		},
		Reconnect: ReconnectConfig{
			GracePeriod:   30 * time.Second,
			MaxDisconnect: 5 * time.Minute,
		},
	}
}

// Validate checks the invariants §6 implies (positive baseScore, cap at
// least baseScore, non-negative gangBonus, exactly 3 players).
func (c Config) Validate() error {
	if c.Players != 3 {
		return fmt.Errorf("rules: players must be 3, got %d", c.Players)
	}
	if c.Score.BaseScore <= 0 {
		return fmt.Errorf("rules: score.baseScore must be positive")
	}
	if c.Score.MaxScore < c.Score.BaseScore {
		return fmt.Errorf("rules: score.maxScore must be >= baseScore")
	}
	if c.Score.DealerMultiplier <= 0 || c.Score.SelfDrawBonus <= 0 {
		return fmt.Errorf("rules: score.dealerMultiplier and selfDrawBonus must be positive")
	}
	if c.Score.GangBonus < 0 {
		return fmt.Errorf("rules: score.gangBonus must be non-negative")
	}
	if c.Turn.TrusteeTimeoutCount <= 0 {
		return fmt.Errorf("rules: turn.trusteeTimeoutCount must be positive")
	}
	if c.WanOnly {
		// 36 tiles cannot cover a 14+13+13 three-player deal and leave a
		// wall to draw from. The wanOnly universe stays available to the
		// tile/hand/scoring layers; live rooms need all three suits.
		return fmt.Errorf("rules: tiles=WAN_ONLY leaves no wall after a three-player deal")
	}
	if c.AllHonorsRequested() {
		// AllHonors has no honor-tile subset to form in this variant's universe
		// (spec.md §3 defines suits W/T/D only, no honor tiles); the toggle is
		// accepted (mirroring the teacher's own dead/disabled checkers) but
		// internal/hand's AllHonors predicate always reports false.
		_ = struct{}{}
	}
	return nil
}

// AllHonorsRequested reports whether the config enables allHonors, purely
// so callers can log/acknowledge the always-false predicate without
// silently ignoring the toggle.
func (c Config) AllHonorsRequested() bool {
	return c.HuTypes.AllHonors
}

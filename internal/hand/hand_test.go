package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mahjong3p/internal/rules"
	"mahjong3p/internal/tile"
)

func w(rank int) tile.Tile { return tile.Tile{Suit: tile.Wan, Rank: rank} }

func TestValidateSevenPairs(t *testing.T) {
	hand := []tile.Tile{
		w(1), w(1), w(2), w(2), w(3), w(3), w(4), w(4),
		w(5), w(5), w(6), w(6), w(7), w(7),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(7),
		SelfDraw:    true,
		Config:      rules.Default(),
	})
	assert.True(t, res.Valid)
	assert.Equal(t, SevenPairs, res.Category)
}

func TestValidateBasicWin(t *testing.T) {
	// 1-2-3, 4-5-6, 7-8-9, 1-1-1, pair 2-2
	hand := []tile.Tile{
		w(1), w(2), w(3), w(4), w(5), w(6), w(7), w(8), w(9),
		w(1), w(1), w(1), w(2), w(2),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(2),
		Config:      rules.Default(),
	})
	assert.True(t, res.Valid)
}

func TestValidateRejectsIncompleteHand(t *testing.T) {
	hand := []tile.Tile{w(1), w(2), w(3), w(4)}
	res := Validate(Context{Hand: hand, WinningTile: w(4), Config: rules.Default()})
	assert.False(t, res.Valid)
}

func TestValidateAllPungs(t *testing.T) {
	hand := []tile.Tile{
		w(1), w(1), w(1), w(3), w(3), w(3), w(5), w(5), w(5),
		w(7), w(7), w(7), w(9), w(9),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(9),
		Config:      rules.Default(),
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Categories, AllPungs)
}

func TestAllHonorsNeverApplies(t *testing.T) {
	hand := []tile.Tile{
		w(1), w(1), w(1), w(3), w(3), w(3), w(5), w(5), w(5),
		w(7), w(7), w(7), w(9), w(9),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(9),
		Config:      rules.Default(),
	})
	assert.NotContains(t, res.Categories, AllHonors)
}

func TestRobbingKongReportedAsMostSpecificCategory(t *testing.T) {
	hand := []tile.Tile{
		w(1), w(1), w(1), w(2), w(3), w(4), w(5), w(6), w(7),
		w(9), w(9), w(9), w(8), w(8),
	}
	res := Validate(Context{
		Hand:          hand,
		WinningTile:   w(7),
		IsRobbingKong: true,
		Config:        rules.Default(),
	})
	assert.True(t, res.Valid)
	assert.Equal(t, RobbingKong, res.Category)
	assert.Contains(t, res.Categories, BasicWin)
}

func TestValidatePairWait(t *testing.T) {
	hand := []tile.Tile{
		w(1), w(2), w(3),
		w(4), w(5), w(6),
		w(7), w(7), w(7),
		w(9), w(9), w(9),
		w(8), w(8),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(8),
		Config:      rules.Default(),
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Categories, PairWait)
}

func TestValidateEdgeWait(t *testing.T) {
	// 1-2-3 completed on 3 (edge wait), plus pungs and a pair to fill 14.
	hand := []tile.Tile{
		w(1), w(2), w(3),
		w(4), w(4), w(4),
		w(5), w(5), w(5),
		w(6), w(6), w(6),
		w(7), w(7),
	}
	res := Validate(Context{
		Hand:        hand,
		WinningTile: w(3),
		Config:      rules.Default(),
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Categories, EdgeWait)
}

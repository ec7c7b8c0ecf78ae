package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	tl, err := Parse("5W")
	require.NoError(t, err)
	assert.Equal(t, Tile{Suit: Wan, Rank: 5}, tl)
	assert.Equal(t, "5W", Format(tl))
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse("X")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Parse("0W")
	assert.ErrorIs(t, err, ErrRankOutOfRange)

	_, err = Parse("5Z")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBuildDeckSizes(t *testing.T) {
	assert.Len(t, BuildDeck(true), 36)
	assert.Len(t, BuildDeck(false), 108)
}

func TestShuffleDeterministicForSameSeed(t *testing.T) {
	d1 := BuildDeck(true)
	d2 := BuildDeck(true)
	Shuffle(d1, NewRNG(42))
	Shuffle(d2, NewRNG(42))
	assert.Equal(t, d1, d2)
}

func TestShuffleDiffersAcrossSeeds(t *testing.T) {
	d1 := BuildDeck(true)
	d2 := BuildDeck(true)
	Shuffle(d1, NewRNG(1))
	Shuffle(d2, NewRNG(2))
	assert.NotEqual(t, d1, d2)
}

func TestCanFormTriplet(t *testing.T) {
	hand := []Tile{{Wan, 3}, {Wan, 3}, {Tiao, 1}}
	assert.True(t, CanFormTriplet(hand, Tile{Wan, 3}))
	assert.False(t, CanFormTriplet(hand, Tile{Tiao, 1}))
}

func TestCanFormSequence(t *testing.T) {
	hand := []Tile{{Wan, 1}, {Wan, 2}, {Wan, 4}}
	assert.True(t, CanFormSequence(hand, Tile{Wan, 3})) // 1-2-_-4 via 2,4
	assert.True(t, CanFormSequence(hand, Tile{Wan, 3}))
	assert.False(t, CanFormSequence(hand, Tile{Wan, 9}))
}

func TestCanUpgradeKong(t *testing.T) {
	melds := []MeldSet{{Kind: Triplet, Tiles: []Tile{{Wan, 7}, {Wan, 7}, {Wan, 7}}}}
	assert.True(t, CanUpgradeKong(melds, Tile{Wan, 7}))
	assert.False(t, CanUpgradeKong(melds, Tile{Wan, 8}))
}

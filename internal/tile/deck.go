package tile

import "math/rand"

// BuildDeck constructs the ordered initial deck for a universe. wanOnly
// restricts to suit W (36 tiles, 4 of each rank 1-9); otherwise all three
// suits are present (108 tiles). Deck order is deterministic (suit, rank,
// copy index) — shuffling is a separate, explicitly seeded step so replays
// can reproduce it.
func BuildDeck(wanOnly bool) []Tile {
	suits := Suits(wanOnly)
	deck := make([]Tile, 0, len(suits)*9*4)
	for _, s := range suits {
		for rank := 1; rank <= 9; rank++ {
			for copyIdx := 0; copyIdx < 4; copyIdx++ {
				deck = append(deck, Tile{Suit: s, Rank: rank})
			}
		}
	}
	return deck
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by rng. Callers
// must supply an *rand.Rand built from an explicit, recorded seed rather
// than a clock-derived one, so a game can be replayed bit-for-bit from its
// stored seed.
func Shuffle(deck []Tile, rng *rand.Rand) {
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// NewRNG builds the seedable PRNG from a recorded int64 seed.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

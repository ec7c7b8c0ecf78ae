// Package hand implements the win validator: decomposing a 14-tile hand
// into four sets plus one pair (and the sevenPairs variant), and detecting
// which win categories a completed hand satisfies.
package hand

import (
	"sort"

	"mahjong3p/internal/rules"
	"mahjong3p/internal/tile"
)

// Category names a toggleable win shape. Values are stable wire strings so
// payloads can carry them unchanged.
type Category string

const (
	BasicWin    Category = "basicWin"
	SevenPairs  Category = "sevenPairs"
	AllPungs    Category = "allPungs"
	AllHonors   Category = "allHonors"
	EdgeWait    Category = "edgeWait"
	PairWait    Category = "pairWait"
	RobbingKong Category = "robbingKong"
)

// categoryOrder ranks the categories. Among categories that apply to one
// partition, finalize reports the latest entry; between partitions of equal
// fan, the one whose reported category comes earliest wins.
var categoryOrder = []Category{BasicWin, SevenPairs, AllPungs, AllHonors, EdgeWait, PairWait, RobbingKong}

func categoryIndex(c Category) int {
	for i, x := range categoryOrder {
		if x == c {
			return i
		}
	}
	return len(categoryOrder)
}

// setShape is one completed meld discovered during partition search: either
// a Triplet or a Sequence over the hand's concealed tiles (as opposed to
// tile.MeldSet, which also covers already-exposed Kongs/Pengs/Chis).
type setShape struct {
	kind  tile.MeldKind // Triplet or Sequence
	tiles []tile.Tile
}

// Context is the full input to the validator.
type Context struct {
	Hand        []tile.Tile // concealed hand, winning tile already included
	Melds       []tile.MeldSet
	WinningTile tile.Tile
	SelfDraw    bool
	IsRobbingKong bool // set by the engine when validating a robbing-the-kong claim
	Config      rules.Config
}

// Result is the validator's verdict.
type Result struct {
	Valid      bool
	Category   Category
	Fan        int
	Categories []Category // every category the winning partition satisfied
}

// Validate returns whether (hand+winningTile, melds) forms a win, and if so
// under which category with what fan total.
func Validate(ctx Context) Result {
	if ctx.Config.HuTypes.SevenPairs && len(ctx.Melds) == 0 && len(ctx.Hand) == 14 {
		if cats, ok := sevenPairsShape(ctx.Hand); ok {
			return finalize(ctx, cats)
		}
	}

	needSets := 4 - len(ctx.Melds)
	if needSets < 0 {
		return Result{}
	}

	sorted := append([]tile.Tile(nil), ctx.Hand...)
	tile.SortTiles(sorted)

	best := Result{}
	seenPairs := map[tile.Tile]bool{}
	for _, t := range sorted {
		if seenPairs[t] {
			continue
		}
		seenPairs[t] = true
		counts := tile.Counts(sorted)
		if counts[t] < 2 {
			continue
		}
		remaining, _ := tile.Remove(sorted, t)
		remaining, _ = tile.Remove(remaining, t)

		var sets []setShape
		if extractSets(remaining, needSets, &sets) {
			cats := categoriesFor(ctx, t, sets)
			res := finalize(ctx, cats)
			if res.Fan > best.Fan || (res.Fan == best.Fan && categoryIndex(res.Category) < categoryIndex(best.Category)) {
				best = res
			}
		}
	}
	if best.Fan == 0 && !best.Valid {
		return Result{}
	}
	return best
}

// extractSets recursively removes triplets/sequences from remaining,
// preferring triplet over sequence when both fit at the lowest-ranked
// tile, backtracking on failure.
func extractSets(remaining []tile.Tile, need int, acc *[]setShape) bool {
	if need == 0 {
		return len(remaining) == 0
	}
	if len(remaining) == 0 {
		return false
	}
	tile.SortTiles(remaining)
	first := remaining[0]

	// Try triplet first.
	counts := tile.Counts(remaining)
	if counts[first] >= 3 {
		next := remaining
		for i := 0; i < 3; i++ {
			next, _ = tile.Remove(next, first)
		}
		*acc = append(*acc, setShape{kind: tile.Triplet, tiles: []tile.Tile{first, first, first}})
		if extractSets(next, need-1, acc) {
			return true
		}
		*acc = (*acc)[:len(*acc)-1]
	}

	// Try sequence starting at first.
	b := tile.Tile{Suit: first.Suit, Rank: first.Rank + 1}
	c := tile.Tile{Suit: first.Suit, Rank: first.Rank + 2}
	if counts[b] > 0 && counts[c] > 0 {
		next := remaining
		next, _ = tile.Remove(next, first)
		next, _ = tile.Remove(next, b)
		next, _ = tile.Remove(next, c)
		*acc = append(*acc, setShape{kind: tile.Sequence, tiles: []tile.Tile{first, b, c}})
		if extractSets(next, need-1, acc) {
			return true
		}
		*acc = (*acc)[:len(*acc)-1]
	}

	return false
}

func sevenPairsShape(hand []tile.Tile) ([]Category, bool) {
	counts := tile.Counts(hand)
	if len(counts) != 7 {
		return nil, false
	}
	for _, n := range counts {
		if n != 2 {
			return nil, false
		}
	}
	return []Category{SevenPairs}, true
}

// categoriesFor inspects the discovered partition (pair + sets, combined
// with already-exposed melds) to decide which toggleable categories apply,
// including edge/pair-wait detection by re-inspecting the shape the winning
// tile was removed from.
func categoriesFor(ctx Context, pairTile tile.Tile, sets []setShape) []Category {
	cats := []Category{BasicWin}

	allPung := true
	for _, s := range sets {
		if s.kind == tile.Sequence {
			allPung = false
		}
	}
	for _, m := range ctx.Melds {
		if m.Kind == tile.Sequence {
			allPung = false
		}
	}
	if allPung && ctx.Config.HuTypes.AllPungs {
		cats = append(cats, AllPungs)
	}

	// allHonors never applies: this variant's tile universe has no honor
	// suit, so the toggle is accepted by rules.Config but this predicate
	// is structurally always false.

	if ctx.Config.HuTypes.PairWait && pairTile == ctx.WinningTile {
		cats = append(cats, PairWait)
	}

	for _, s := range sets {
		if s.kind != tile.Sequence {
			continue
		}
		if !containsTile(s.tiles, ctx.WinningTile) {
			continue
		}
		if isEdgeWait(s.tiles, ctx.WinningTile) && ctx.Config.HuTypes.EdgeWait {
			cats = append(cats, EdgeWait)
		}
	}

	if ctx.IsRobbingKong && ctx.Config.HuTypes.RobbingKong {
		cats = append(cats, RobbingKong)
	}

	return cats
}

func containsTile(tiles []tile.Tile, t tile.Tile) bool {
	for _, x := range tiles {
		if x == t {
			return true
		}
	}
	return false
}

// isEdgeWait reports whether t completes seq only as the high tile of a
// 1-2-3 run or the low tile of a 7-8-9 run.
func isEdgeWait(seq []tile.Tile, t tile.Tile) bool {
	ranks := make([]int, len(seq))
	for i, s := range seq {
		ranks[i] = s.Rank
	}
	sort.Ints(ranks)
	if ranks[0] == 1 && ranks[1] == 2 && ranks[2] == 3 && t.Rank == 3 {
		return true
	}
	if ranks[0] == 7 && ranks[1] == 8 && ranks[2] == 9 && t.Rank == 7 {
		return true
	}
	return false
}

// fanFor sums the fan contribution of each satisfied category, this
// repo's own scoring convention for turning a category set into a
// multiplier.
func fanFor(cats []Category) int {
	fan := 0
	for _, c := range cats {
		switch c {
		case BasicWin:
			fan += 1
		case SevenPairs:
			fan += 2
		case AllPungs:
			fan += 1
		case AllHonors:
			fan += 2
		case EdgeWait:
			fan += 1
		case PairWait:
			fan += 1
		case RobbingKong:
			fan += 1
		}
	}
	return fan
}

// finalize reports the most specific satisfied category (highest index in
// categoryOrder); basicWin is the backstop every standard partition
// carries.
func finalize(ctx Context, cats []Category) Result {
	if len(cats) == 0 {
		return Result{}
	}
	best := cats[0]
	for _, c := range cats {
		if categoryIndex(c) > categoryIndex(best) {
			best = c
		}
	}
	return Result{
		Valid:      true,
		Category:   best,
		Fan:        fanFor(cats),
		Categories: cats,
	}
}

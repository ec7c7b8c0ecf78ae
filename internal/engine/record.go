package engine

import (
	"mahjong3p/internal/hand"
	"mahjong3p/internal/tile"
)

// GameRecord is the immutable completed-game record. ActionLog + RngSeed +
// Config is sufficient to replay it bit-identically.
type GameRecord struct {
	GameId          string
	RoomId          string
	RoundIndex      int
	Result          string // "win" | "draw"
	WinnerSeat      int    // -1 if draw
	WinningTile     tile.Tile
	WinningCategory string
	BaseScore       int
	Multiplier      float64
	FinalScore      int
	DealerSeat      int
	RngSeed         int64
	ActionLog       []LoggedAction
	FinalHands      [3][]tile.Tile
	PerPlayer       []PlayerRecord
	DurationMs      int64
	CreatedAtMs     int64
}

// PlayerRecord is one seat's settlement detail within a GameRecord.
type PlayerRecord struct {
	Seat       int
	UserId     string
	Score      int
	Delta      int
	IsDealer   bool
	IsSelfDraw bool
	WinningHand []tile.Tile
	FinalHand   []tile.Tile
	Melds       []tile.MeldSet
}

// buildRecord assembles the immutable GameRecord persisted at settlement.
// It carries ActionLog and RngSeed but not the rules Config; replaying the
// game also needs that Config, which only the hot-store snapshot holds.
func (r *Room) buildRecord(result string, winnerSeat int, selfDraw bool, winningTile tile.Tile, category hand.Category, deltas [3]int) GameRecord {
	finalHands := [3][]tile.Tile{}
	perPlayer := make([]PlayerRecord, 3)
	for seat := 0; seat < 3; seat++ {
		p := r.state.Players[seat]
		finalHands[seat] = append([]tile.Tile(nil), p.Hand...)
		perPlayer[seat] = PlayerRecord{
			Seat:        seat,
			UserId:      p.UserId,
			Score:       p.Score,
			Delta:       deltas[seat],
			IsDealer:    p.IsDealer,
			IsSelfDraw:  seat == winnerSeat && selfDraw,
			WinningHand: nil,
			FinalHand:   finalHands[seat],
			Melds:       append([]tile.MeldSet(nil), p.Melds...),
		}
	}
	return GameRecord{
		GameId:          r.state.GameId,
		RoomId:          r.RoomId,
		RoundIndex:      r.state.RoundIndex,
		Result:          result,
		WinnerSeat:      winnerSeat,
		WinningTile:     winningTile,
		WinningCategory: string(category),
		DealerSeat:      r.state.DealerSeat,
		RngSeed:         r.state.RngSeed,
		ActionLog:       append([]LoggedAction(nil), r.state.ActionLog...),
		FinalHands:      finalHands,
		PerPlayer:       perPlayer,
		CreatedAtMs:     r.clockNow(),
	}
}

package engine

import (
	"mahjong3p/internal/tile"
	"mahjong3p/internal/wire"
)

// BuildSnapshot is the sole entry point from GameState to the wire: every
// seat other than forUserId has its hand replaced with a count, melds and
// discards are always visible in full.
func BuildSnapshot(gs *GameState, forUserId string) wire.GameSnapshot {
	players := [3]wire.PlayerView{}
	for seat := 0; seat < 3; seat++ {
		p := gs.Players[seat]
		view := wire.PlayerView{
			UserId:    p.UserId,
			Seat:      seat,
			IsDealer:  p.IsDealer,
			Score:     p.Score,
			Status:    string(p.Status),
			HandCount: len(p.Hand),
			Melds:     meldViews(p.Melds),
		}
		if p.UserId == forUserId {
			view.HandTiles = tile.FormatAll(p.Hand)
		}
		players[seat] = view
	}

	discards := make([]wire.DiscardView, len(gs.DiscardPile))
	for i, d := range gs.DiscardPile {
		discards[i] = wire.DiscardView{Tile: tile.Format(d.Tile), DiscarderSeat: d.DiscarderSeat}
	}

	return wire.GameSnapshot{
		RoomId:      gs.RoomId,
		GameId:      gs.GameId,
		Phase:       string(gs.Phase),
		Players:     players,
		DealerSeat:  gs.DealerSeat,
		TurnSeat:    gs.TurnSeat,
		RoundIndex:  gs.RoundIndex,
		DiscardPile: discards,
		Version:     gs.Version,
		WallCount:   len(gs.Wall),
	}
}

func meldViews(melds []tile.MeldSet) []wire.MeldView {
	out := make([]wire.MeldView, len(melds))
	for i, m := range melds {
		kongSub := ""
		if m.Kind == tile.Kong {
			kongSub = m.KongSub.String()
		}
		out[i] = wire.MeldView{
			Kind:        m.Kind.String(),
			Tiles:       tile.FormatAll(m.Tiles),
			Concealed:   m.Concealed,
			ClaimedFrom: m.ClaimedFrom,
			KongSub:     kongSub,
		}
	}
	return out
}

package engine

import "encoding/json"

// EncodeSnapshot serializes the exported fields of GameState to JSON for
// the hot store. In-flight claim-window/dismiss-vote bookkeeping lives in
// unexported fields and is intentionally excluded: a warm restart or
// reconnect only needs the player-visible state, and resumes by re-arming
// timers for the restored phase rather than replaying internal timer
// state.
func EncodeSnapshot(gs *GameState) []byte {
	b, err := json.Marshal(gs)
	if err != nil {
		return nil
	}
	return b
}

// DecodeSnapshot is the counterpart of EncodeSnapshot, used by
// internal/transport to rebuild a GameState from a hot store read.
func DecodeSnapshot(data []byte) (*GameState, error) {
	var gs GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, err
	}
	return &gs, nil
}

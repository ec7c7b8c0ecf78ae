package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFrameEchoesReqId(t *testing.T) {
	f, err := NewError("play", "req-42", "invalidTile", "tile 0X not in hand", 1234)
	require.NoError(t, err)
	assert.Equal(t, TypeError, f.Type)
	assert.Equal(t, "req-42", f.ReqId)

	var data ErrorData
	require.NoError(t, json.Unmarshal(f.Data, &data))
	assert.Equal(t, "invalidTile", data.Code)
}

func TestEventFrameCarriesNoReqId(t *testing.T) {
	f, err := NewEvent("100001", EvtTileDiscarded, map[string]any{"tile": "5W"}, 1234)
	require.NoError(t, err)
	assert.Equal(t, TypeEvent, f.Type)
	assert.Empty(t, f.ReqId)
	assert.Equal(t, "100001", f.RoomId)

	raw, err := Encode(f)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "reqId")
}

func TestDecodeKeepsPayloadRaw(t *testing.T) {
	raw := []byte(`{"type":"REQ","cmd":"gang","reqId":"r1","roomId":"100001","data":{"type":"upgraded","tile":"7W"},"timestamp":99}`)
	f, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TypeReq, f.Type)
	assert.Equal(t, "gang", f.Cmd)

	var payload GangPayload
	require.NoError(t, json.Unmarshal(f.Data, &payload))
	assert.Equal(t, GangUpgraded, payload.Type)
	assert.Equal(t, "7W", payload.Tile)
}

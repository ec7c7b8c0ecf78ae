package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong3p/internal/engine"
	"mahjong3p/internal/rules"
)

type nopSink struct{}

func (nopSink) Publish(string, engine.OutboundEvent) {}

func newTestManager() *RoomManager {
	return NewRoomManager(nil, nopSink{}, nil, nil)
}

func TestCreateRoomAllocatesSixDigitId(t *testing.T) {
	rm := newTestManager()
	defer rm.CloseAll()

	room, err := rm.CreateRoom("u0", rules.Default(), 8)
	require.NoError(t, err)
	assert.Len(t, room.RoomId, 6)

	got, ok := rm.RoomFor(room.RoomId)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestPlayerRoutingLifecycle(t *testing.T) {
	rm := newTestManager()
	defer rm.CloseAll()

	room, err := rm.CreateRoom("u0", rules.Default(), 8)
	require.NoError(t, err)
	rm.BindPlayer("u0", room.RoomId)

	roomId, ok := rm.RoomOf("u0")
	require.True(t, ok)
	assert.Equal(t, room.RoomId, roomId)

	rm.UnbindPlayer("u0")
	_, ok = rm.RoomOf("u0")
	assert.False(t, ok)
}

func TestDeleteRoomDropsRoutingEntries(t *testing.T) {
	rm := newTestManager()
	defer rm.CloseAll()

	room, err := rm.CreateRoom("u0", rules.Default(), 8)
	require.NoError(t, err)
	rm.BindPlayer("u0", room.RoomId)
	rm.BindPlayer("u1", room.RoomId)

	rm.DeleteRoom(room.RoomId)

	_, ok := rm.RoomFor(room.RoomId)
	assert.False(t, ok)
	_, ok = rm.RoomOf("u0")
	assert.False(t, ok)
	_, ok = rm.RoomOf("u1")
	assert.False(t, ok)
}

func TestCreateRoomIdsDoNotCollide(t *testing.T) {
	rm := newTestManager()
	defer rm.CloseAll()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		room, err := rm.CreateRoom("owner", rules.Default(), 8)
		require.NoError(t, err)
		assert.False(t, seen[room.RoomId], "duplicate room id %s", room.RoomId)
		seen[room.RoomId] = true
	}
}

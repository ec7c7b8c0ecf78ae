package durability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHotStoreL1RoundTrip(t *testing.T) {
	hs, err := NewHotStore(nil)
	require.NoError(t, err)
	defer hs.Close()

	require.NoError(t, hs.SaveSnapshot("100001", 3, []byte(`{"phase":"playing"}`)))
	hs.l1.Wait()

	version, data, ok := hs.Read("100001")
	require.True(t, ok)
	assert.Equal(t, 3, version)
	assert.JSONEq(t, `{"phase":"playing"}`, string(data))
}

func TestHotStoreLastWriterWins(t *testing.T) {
	hs, err := NewHotStore(nil)
	require.NoError(t, err)
	defer hs.Close()

	require.NoError(t, hs.SaveSnapshot("100001", 1, []byte(`{"v":1}`)))
	require.NoError(t, hs.SaveSnapshot("100001", 2, []byte(`{"v":2}`)))
	hs.l1.Wait()

	version, data, ok := hs.Read("100001")
	require.True(t, ok)
	assert.Equal(t, 2, version)
	assert.JSONEq(t, `{"v":2}`, string(data))
}

func TestHotStoreMissingKey(t *testing.T) {
	hs, err := NewHotStore(nil)
	require.NoError(t, err)
	defer hs.Close()

	_, _, ok := hs.Read("999999")
	assert.False(t, ok)
}

func TestHotStoreReadyWithoutRedis(t *testing.T) {
	hs, err := NewHotStore(nil)
	require.NoError(t, err)
	defer hs.Close()
	assert.NoError(t, hs.Ready())
}

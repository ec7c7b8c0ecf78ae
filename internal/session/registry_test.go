package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mahjong3p/internal/engine"
	"mahjong3p/internal/wire"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []wire.Frame
	closed bool
}

func (c *fakeConn) SendFrame(f wire.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) frameNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, len(c.frames))
	for i, f := range c.frames {
		names[i] = f.Cmd
	}
	return names
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestRegistry() *Registry {
	return NewRegistry(nil, nil, nil)
}

func TestBindReplacesPriorConnection(t *testing.T) {
	reg := newTestRegistry()
	old := &fakeConn{}
	reg.Bind("u1", old)

	fresh := &fakeConn{}
	reg.Bind("u1", fresh)

	assert.True(t, old.isClosed())
	require.NotEmpty(t, old.frames)
	assert.Equal(t, "replaced", old.frames[len(old.frames)-1].Cmd)
	assert.False(t, fresh.isClosed())
}

func TestStaleUnbindIsNoOp(t *testing.T) {
	reg := newTestRegistry()
	old := &fakeConn{}
	fresh := &fakeConn{}
	reg.Bind("u1", old)
	reg.Bind("u1", fresh)

	// The old connection's deferred close must not detach the new one.
	reg.Unbind("u1", old)
	conn, ok := reg.connFor("u1")
	require.True(t, ok)
	assert.Same(t, fresh, conn.(*fakeConn))
}

func TestBroadcastReachesRoomMembers(t *testing.T) {
	reg := newTestRegistry()
	conns := map[string]*fakeConn{}
	for _, uid := range []string{"u0", "u1", "u2"} {
		c := &fakeConn{}
		conns[uid] = c
		reg.Bind(uid, c)
		reg.JoinRoom(uid, "100001")
	}
	outsider := &fakeConn{}
	reg.Bind("u9", outsider)

	reg.Publish("100001", engine.OutboundEvent{Name: "turnChange", Data: map[string]any{"turnSeat": 1}})

	for uid, c := range conns {
		assert.Contains(t, c.frameNames(), "turnChange", "member %s should receive the broadcast", uid)
	}
	assert.Empty(t, outsider.frames)
}

func TestRecipientRestrictedEvent(t *testing.T) {
	reg := newTestRegistry()
	c0, c1 := &fakeConn{}, &fakeConn{}
	reg.Bind("u0", c0)
	reg.Bind("u1", c1)
	reg.JoinRoom("u0", "100001")
	reg.JoinRoom("u1", "100001")

	reg.Publish("100001", engine.OutboundEvent{
		Name: "tileDrawn", Data: map[string]any{"tile": "5W"}, Recipients: []string{"u1"},
	})

	assert.Empty(t, c0.frames)
	assert.Contains(t, c1.frameNames(), "tileDrawn")
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	reg := newTestRegistry()
	c := &fakeConn{}
	reg.Bind("u0", c)
	reg.JoinRoom("u0", "100001")
	reg.LeaveRoom("u0", "100001")

	reg.Publish("100001", engine.OutboundEvent{Name: "turnChange", Data: map[string]any{}})
	assert.Empty(t, c.frames)

	_, ok := reg.RoomOf("u0")
	assert.False(t, ok)
}

func TestDeliveryToUnboundUserIsDropped(t *testing.T) {
	reg := newTestRegistry()
	reg.JoinRoom("u0", "100001")
	// No connection bound: must not panic, the snapshot path covers the
	// reconnecting user instead.
	reg.Publish("100001", engine.OutboundEvent{Name: "turnChange", Data: map[string]any{}})
}

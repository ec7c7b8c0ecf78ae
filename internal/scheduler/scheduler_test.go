package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func waitFired(t *testing.T, ch <-chan struct{}, within time.Duration) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(within):
		return false
	}
}

func TestArmFires(t *testing.T) {
	rt := NewRoomTimers()
	defer rt.CancelAll()

	fired := make(chan struct{}, 1)
	rt.Arm("turn", 10*time.Millisecond, func() { fired <- struct{}{} })
	assert.True(t, waitFired(t, fired, time.Second))
}

func TestRearmSupersedesPrior(t *testing.T) {
	rt := NewRoomTimers()
	defer rt.CancelAll()

	first := make(chan struct{}, 1)
	second := make(chan struct{}, 1)
	rt.Arm("turn", 50*time.Millisecond, func() { first <- struct{}{} })
	rt.Arm("turn", 10*time.Millisecond, func() { second <- struct{}{} })

	assert.True(t, waitFired(t, second, time.Second))
	assert.False(t, waitFired(t, first, 150*time.Millisecond), "superseded timer must not fire")
}

func TestCancelPreventsFiring(t *testing.T) {
	rt := NewRoomTimers()
	defer rt.CancelAll()

	fired := make(chan struct{}, 1)
	rt.Arm("claim", 20*time.Millisecond, func() { fired <- struct{}{} })
	rt.Cancel("claim")
	assert.False(t, waitFired(t, fired, 100*time.Millisecond))
}

func TestKeysAreIndependent(t *testing.T) {
	rt := NewRoomTimers()
	defer rt.CancelAll()

	turn := make(chan struct{}, 1)
	claim := make(chan struct{}, 1)
	rt.Arm("turn", 10*time.Millisecond, func() { turn <- struct{}{} })
	rt.Arm("claim", 10*time.Millisecond, func() { claim <- struct{}{} })
	rt.Cancel("turn")

	assert.True(t, waitFired(t, claim, time.Second))
	assert.False(t, waitFired(t, turn, 100*time.Millisecond))
}

func TestCancelAllStopsEverything(t *testing.T) {
	rt := NewRoomTimers()

	fired := make(chan struct{}, 2)
	rt.Arm("turn", 20*time.Millisecond, func() { fired <- struct{}{} })
	rt.Arm("grace:1", 20*time.Millisecond, func() { fired <- struct{}{} })
	rt.CancelAll()

	assert.False(t, waitFired(t, fired, 100*time.Millisecond))

	// Arming after CancelAll is a no-op: the room is shutting down.
	rt.Arm("turn", time.Millisecond, func() { fired <- struct{}{} })
	assert.False(t, waitFired(t, fired, 100*time.Millisecond))
}

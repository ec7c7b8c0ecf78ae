// Package durability implements the two-tier durability layer: a hot
// snapshot store (ristretto L1 + redis L2, TTL-refreshed, version-tagged
// last-writer-wins) and a cold append-only record store (mongo).
package durability

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/redis/go-redis/v9"

	"mahjong3p/internal/engine"
	"mahjong3p/internal/logging"
)

const hotTTL = 2 * time.Hour

// versionedSnapshot is what's actually stored: the engine's raw
// snapshot bytes plus the version they were written at. Read returns the
// version to its caller; the store itself does not compare versions.
type versionedSnapshot struct {
	Version int    `json:"version"`
	Data    []byte `json:"data"`
}

// retryItem is one queued write the background retrier will attempt again.
type retryItem struct {
	key     string
	version int
	data    []byte
}

// HotStore is the engine.SnapshotStore implementation: L1 is a local
// ristretto cache (sub-microsecond reads for the owning process), L2 is
// redis shared across processes. Hot-store unavailability never blocks
// play: a failed redis write is queued for bounded retry rather than
// propagated as a fatal error.
type HotStore struct {
	l1 *ristretto.Cache
	l2 *redis.Client

	mu    sync.Mutex
	queue []retryItem
	done  chan struct{}
}

// NewHotStore builds a HotStore. redisClient may be nil, in which case the
// store operates purely out of the local L1 cache (single-process/testing
// mode).
func NewHotStore(redisClient *redis.Client) (*HotStore, error) {
	l1, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 28, // 256MB of room snapshots
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("durability: ristretto init: %w", err)
	}
	hs := &HotStore{l1: l1, l2: redisClient, done: make(chan struct{})}
	if redisClient != nil {
		go hs.retryLoop()
	}
	return hs, nil
}

var _ engine.SnapshotStore = (*HotStore)(nil)

func hotKey(roomId string) string { return "game:" + roomId }

// SaveSnapshot implements engine.SnapshotStore. It writes L1 synchronously
// and attempts L2 synchronously; an L2 failure is queued for retry rather
// than returned as an error.
func (hs *HotStore) SaveSnapshot(roomId string, version int, snapshot []byte) error {
	key := hotKey(roomId)
	vs := versionedSnapshot{Version: version, Data: snapshot}
	encoded, err := json.Marshal(vs)
	if err != nil {
		return err
	}
	hs.l1.SetWithTTL(key, encoded, int64(len(encoded)), hotTTL)
	hs.l1.Wait()

	if hs.l2 == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	if err := hs.l2.Set(ctx, key, encoded, hotTTL).Err(); err != nil {
		hs.enqueueRetry(key, version, encoded)
		logging.Warn("durability: hot store L2 write deferred for %s: %v", key, err)
	}
	return nil
}

// Read returns the most recent snapshot for roomId, preferring L1 (fresher
// for the owning process), falling back to L2.
func (hs *HotStore) Read(roomId string) (version int, data []byte, ok bool) {
	key := hotKey(roomId)
	if raw, found := hs.l1.Get(key); found {
		if vs, ok := decodeVersioned(raw); ok {
			return vs.Version, vs.Data, true
		}
	}
	if hs.l2 == nil {
		return 0, nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	raw, err := hs.l2.Get(ctx, key).Bytes()
	if err != nil {
		return 0, nil, false
	}
	var vs versionedSnapshot
	if err := json.Unmarshal(raw, &vs); err != nil {
		return 0, nil, false
	}
	return vs.Version, vs.Data, true
}

func decodeVersioned(raw any) (versionedSnapshot, bool) {
	b, ok := raw.([]byte)
	if !ok {
		return versionedSnapshot{}, false
	}
	var vs versionedSnapshot
	if err := json.Unmarshal(b, &vs); err != nil {
		return versionedSnapshot{}, false
	}
	return vs, true
}

func (hs *HotStore) enqueueRetry(key string, version int, data []byte) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	// Bound the queue; newest write for a key wins, older entries for the
	// same key are superseded rather than replayed out of order.
	filtered := hs.queue[:0]
	for _, item := range hs.queue {
		if item.key != key {
			filtered = append(filtered, item)
		}
	}
	hs.queue = append(filtered, retryItem{key: key, version: version, data: data})
	if len(hs.queue) > 256 {
		hs.queue = hs.queue[len(hs.queue)-256:]
	}
}

func (hs *HotStore) retryLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			hs.drainRetryQueue()
		case <-hs.done:
			return
		}
	}
}

func (hs *HotStore) drainRetryQueue() {
	hs.mu.Lock()
	pending := hs.queue
	hs.queue = nil
	hs.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, item := range pending {
		if err := hs.l2.Set(ctx, item.key, item.data, hotTTL).Err(); err != nil {
			hs.enqueueRetry(item.key, item.version, item.data)
		}
	}
}

// Close stops the retry loop.
func (hs *HotStore) Close() {
	close(hs.done)
}

// Ready implements transport.HealthChecker: the hot store is ready as long
// as L1 is up (always) and, if configured, L2 answers a ping. A process
// with no redis configured is always ready.
func (hs *HotStore) Ready() error {
	if hs.l2 == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := hs.l2.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("durability: redis unreachable: %w", err)
	}
	return nil
}

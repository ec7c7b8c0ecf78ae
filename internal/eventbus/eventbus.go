// Package eventbus wraps nats.go pub/sub so a room's committed events
// reach the session/fanout layer even when a future deployment splits
// transport and engine processes across a fleet: single process today,
// but the event path should not assume that stays true.
package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"mahjong3p/internal/logging"
)

// RoomEvent is the envelope published per room event, carrying enough for
// a remote subscriber to resolve delivery without re-deriving it from the
// engine.
type RoomEvent struct {
	RoomId     string   `json:"roomId"`
	Name       string   `json:"name"`
	Data       any      `json:"data"`
	Recipients []string `json:"recipients,omitempty"`
}

func subject(roomId string) string { return "mahjong3p.room." + roomId }

// Bus is a thin nats.Conn wrapper scoped to this process's room events.
type Bus struct {
	conn *nats.Conn
}

// Connect dials the nats server at url. An empty url means no bus
// (single-process deployments publish directly through internal/session
// without going over nats at all).
func Connect(url string) (*Bus, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("eventbus: connect %s: %w", url, err)
	}
	return &Bus{conn: conn}, nil
}

// Publish broadcasts a RoomEvent to every subscriber of roomId's subject.
func (b *Bus) Publish(evt RoomEvent) error {
	if b == nil || b.conn == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.conn.Publish(subject(evt.RoomId), data)
}

// Subscribe registers handler for every RoomEvent published on roomId's
// subject, until the returned unsubscribe func is called.
func (b *Bus) Subscribe(roomId string, handler func(RoomEvent)) (func(), error) {
	if b == nil || b.conn == nil {
		return func() {}, nil
	}
	sub, err := b.conn.Subscribe(subject(roomId), func(msg *nats.Msg) {
		var evt RoomEvent
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			logging.Warn("eventbus: malformed room event on %s: %v", msg.Subject, err)
			return
		}
		handler(evt)
	})
	if err != nil {
		return nil, fmt.Errorf("eventbus: subscribe %s: %w", roomId, err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Close disconnects the underlying nats connection.
func (b *Bus) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.conn.Close()
}

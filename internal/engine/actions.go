package engine

import "mahjong3p/internal/tile"

// ActionKind enumerates every inbound action the engine processes,
// including the scheduler's timer callbacks, which are delivered as
// ordinary actions on the room's queue so they serialize with client
// actions instead of racing them from a separate goroutine.
type ActionKind string

const (
	ActionJoin        ActionKind = "join"
	ActionLeave       ActionKind = "leave"
	ActionReady       ActionKind = "ready"
	ActionDiscard     ActionKind = "discard"
	ActionPeng        ActionKind = "peng"
	ActionGang        ActionKind = "gang"
	ActionChi         ActionKind = "chi"
	ActionHu          ActionKind = "hu"
	ActionPass        ActionKind = "pass"
	ActionHeartbeat   ActionKind = "heartbeat"
	ActionGetSnapshot ActionKind = "getSnapshot"
	ActionDismissVote ActionKind = "dismissVote"
	ActionDisconnect  ActionKind = "disconnect"
	ActionReconnect   ActionKind = "reconnect"

	actionTimerTurn    ActionKind = "timer:turn"
	actionTimerClaim   ActionKind = "timer:claim"
	actionTimerGrace   ActionKind = "timer:grace"
	actionTimerTrustee ActionKind = "timer:trustee"
	actionTimerDismiss ActionKind = "timer:dismiss"
)

// GangKind mirrors wire.GangType for the engine's own vocabulary, kept
// separate so internal/engine never imports internal/wire (transport-layer
// concerns stay out of the state machine).
type GangKind string

const (
	GangExposed   GangKind = "exposed"
	GangConcealed GangKind = "concealed"
	GangUpgraded  GangKind = "upgraded"
)

// Action is the engine's action contract: every inbound action carries
// (actorUserId, kind, payload, clientSeq).
type Action struct {
	ActorUserId string
	Kind        ActionKind
	ClientSeq   int64
	ReqId       string

	// Payload fields, only the ones relevant to Kind are set.
	Tile     tile.Tile
	GangKind GangKind
	ChiTiles []tile.Tile
	SelfDraw bool
	Vote     bool
	AtMs     int64
	Seat     int // used by timer actions, which have no actor user id

	replyTo chan Result // set by Room.Submit; nil for fire-and-forget timer posts
}

// Result is what processing an Action yields: either a committed mutation
// (with events to publish) or a rejection that leaves state unchanged.
type Result struct {
	Err    *EngineError
	Events []OutboundEvent
}

// OutboundEvent is a unit of fanout work the engine hands to its
// EventSink. Recipients nil/empty means "broadcast to the whole room";
// non-empty restricts delivery, as with recipient-only events like
// tileDrawn/gameSnapshot.
type OutboundEvent struct {
	Name       string
	Data       any
	Recipients []string
}

package engine

import "fmt"

// ErrorCode enumerates the engine's error taxonomy.
type ErrorCode string

const (
	// Validation
	ErrInvalidTile   ErrorCode = "invalidTile"
	ErrInvalidMeld   ErrorCode = "invalidMeld"
	ErrInvalidAction ErrorCode = "invalidAction"

	// State
	ErrWrongPhase    ErrorCode = "wrongPhase"
	ErrNotYourTurn   ErrorCode = "notYourTurn"
	ErrNoSuchRoom    ErrorCode = "noSuchRoom"
	ErrRoomFull      ErrorCode = "roomFull"
	ErrAlreadyInRoom ErrorCode = "alreadyInRoom"

	// Auth/Session
	ErrAuthFailed  ErrorCode = "authFailed"
	ErrTokenInvalid ErrorCode = "tokenInvalid"
	ErrNotAMember  ErrorCode = "notAMember"
	ErrReplaced    ErrorCode = "replaced"
	ErrRateLimited ErrorCode = "rateLimited"

	// Recovery
	ErrReconnectExpired   ErrorCode = "reconnectExpired"
	ErrSnapshotUnavailable ErrorCode = "snapshotUnavailable"

	// Internal
	ErrInternal ErrorCode = "internal"
)

// EngineError is the typed error the engine returns on a rejected action;
// it carries exactly the (code, message) pair the wire-level ErrorData
// wraps.
type EngineError struct {
	Code          ErrorCode
	Message       string
	CorrelationId string // set for Internal errors only
}

func (e *EngineError) Error() string {
	if e.CorrelationId != "" {
		return fmt.Sprintf("%s: %s (correlation=%s)", e.Code, e.Message, e.CorrelationId)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newErr(code ErrorCode, format string, args ...any) *EngineError {
	return &EngineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

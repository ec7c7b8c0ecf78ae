// Package wire defines the JSON frame shape exchanged with clients
// (spec.md §6), specialized from core/infrastructure/message/protocol's
// envelope to this spec's exact field names.
package wire

import "encoding/json"

// FrameType is one of REQ/RESP/EVENT/ERROR.
type FrameType string

const (
	TypeReq   FrameType = "REQ"
	TypeResp  FrameType = "RESP"
	TypeEvent FrameType = "EVENT"
	TypeError FrameType = "ERROR"
)

// Command names every client->server command (spec.md §6).
type Command string

const (
	CmdJoinRoom     Command = "joinRoom"
	CmdLeaveRoom    Command = "leaveRoom"
	CmdReady        Command = "ready"
	CmdPlay         Command = "play"
	CmdPeng         Command = "peng"
	CmdGang         Command = "gang"
	CmdChi          Command = "chi"
	CmdHu           Command = "hu"
	CmdPass         Command = "pass"
	CmdHeartbeat    Command = "heartbeat"
	CmdGetSnapshot  Command = "getSnapshot"
	CmdDismissVote  Command = "dismissVote"
)

// EventName names every server->client event (spec.md §6).
type EventName string

const (
	EvtGameStart          EventName = "gameStart"
	EvtTileDrawn          EventName = "tileDrawn"
	EvtTileDiscarded      EventName = "tileDiscarded"
	EvtClaimWindowOpen    EventName = "claimWindowOpen"
	EvtClaimResolved      EventName = "claimResolved"
	EvtMeldFormed         EventName = "meldFormed"
	EvtTurnChange         EventName = "turnChange"
	EvtPlayerDisconnected EventName = "playerDisconnected"
	EvtPlayerReconnected  EventName = "playerReconnected"
	EvtSettlement         EventName = "settlement"
	EvtGameSnapshot       EventName = "gameSnapshot"
	EvtRoomDissolved      EventName = "roomDissolved"
	EvtError              EventName = "error"
)

// Frame is the wire envelope. Data is kept as json.RawMessage so codec and
// routing layers stay decoupled from any one command's payload shape.
type Frame struct {
	Type      FrameType       `json:"type"`
	Cmd       string          `json:"cmd"`
	ReqId     string          `json:"reqId,omitempty"`
	RoomId    string          `json:"roomId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// ErrorData is the payload of a {type:"ERROR"} frame (spec.md §7).
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Encode marshals a frame.
func Encode(f Frame) ([]byte, error) {
	return json.Marshal(f)
}

// Decode unmarshals a frame.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(raw, &f)
	return f, err
}

// NewEvent builds a room-scoped or recipient-only event frame (no reqId,
// spec.md §7 "broadcast events carry no reqId").
func NewEvent(roomId string, name EventName, data any, nowMs int64) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:      TypeEvent,
		Cmd:       string(name),
		RoomId:    roomId,
		Data:      raw,
		Timestamp: nowMs,
	}, nil
}

// NewError builds an error frame, echoing reqId when the rejection
// corresponds to a specific request.
func NewError(cmd, reqId, code, message string, nowMs int64) (Frame, error) {
	raw, err := json.Marshal(ErrorData{Code: code, Message: message})
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:      TypeError,
		Cmd:       cmd,
		ReqId:     reqId,
		Data:      raw,
		Timestamp: nowMs,
	}, nil
}

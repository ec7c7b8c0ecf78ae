// Package transport terminates client WebSocket connections and bridges
// wire.Frame request frames to internal/engine Action submissions, and
// engine events back out through internal/session. Grounded on
// runtime/conn/worker.go's upgrade/bucket/dispatch shape and
// common/http/server.go's gin wiring (Logger/Recovery middleware,
// graceful Shutdown), collapsed to a single node with no connector/game
// node split.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"mahjong3p/internal/auth"
	"mahjong3p/internal/engine"
	"mahjong3p/internal/logging"
	"mahjong3p/internal/reconnect"
	"mahjong3p/internal/rules"
	"mahjong3p/internal/session"
	"mahjong3p/internal/tile"
	"mahjong3p/internal/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    4096,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

// HealthChecker reports whether a durability dependency is reachable, for
// the /readyz probe.
type HealthChecker interface {
	Ready() error
}

// SnapshotReader is the hot store's read path, consulted when getSnapshot
// is asked for a room this process no longer holds live (reaped after
// finishing, or a warm restart). internal/durability.HotStore implements
// it.
type SnapshotReader interface {
	Read(roomId string) (version int, data []byte, ok bool)
}

// Server is the process's HTTP+WebSocket front door.
type Server struct {
	addr     string
	verifier auth.TokenVerifier
	registry *session.Registry
	rooms    *RoomManager
	recon    *reconnect.Coordinator
	clock    engine.Clock
	ready    HealthChecker
	snapshots SnapshotReader

	engine *gin.Engine
	http   *http.Server
}

// NewServer wires a transport server. ready may be nil (always healthy);
// snapshots may be nil (no stored-snapshot fallback for dead rooms).
func NewServer(addr string, verifier auth.TokenVerifier, registry *session.Registry, rooms *RoomManager, recon *reconnect.Coordinator, clock engine.Clock, ready HealthChecker, snapshots SnapshotReader) *Server {
	s := &Server{
		addr:      addr,
		verifier:  verifier,
		registry:  registry,
		rooms:     rooms,
		recon:     recon,
		clock:     clock,
		ready:     ready,
		snapshots: snapshots,
	}
	s.engine = gin.New()
	s.engine.Use(gin.Logger(), gin.Recovery())
	s.engine.GET("/healthz", s.handleHealthz)
	s.engine.GET("/readyz", s.handleReadyz)
	s.engine.GET("/ws", s.handleUpgrade)
	return s
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReadyz(c *gin.Context) {
	if s.ready != nil {
		if err := s.ready.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "notReady", "reason": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleUpgrade(c *gin.Context) {
	token := c.Query("token")
	userId, err := s.verifier.Verify(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "authFailed"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("transport: upgrade failed for %s: %v", userId, err)
		return
	}

	wsConn := newWSConnection(userId, conn, s)

	// A user who already occupies a seat (tracked by the room manager's
	// playerRoom routing) is reattaching mid-game rather than starting a
	// fresh session; route through the coordinator so the engine restores
	// the seat and a redacted snapshot goes out, instead of just binding
	// the socket with no room membership.
	if roomId, ok := s.rooms.RoomOf(userId); ok {
		if engErr := s.recon.Reconnect(userId, roomId, wsConn); engErr != nil {
			logging.Warn("transport: reconnect for %s in room %s rejected: %v", userId, roomId, engErr)
			frame, err := wire.NewError("reconnect", "", string(engErr.Code), engErr.Message, s.now())
			if err == nil {
				_ = wsConn.SendFrame(frame)
			}
			_ = wsConn.Close()
			return
		}
		logging.Info("transport: user %s reconnected to room %s", userId, roomId)
	} else {
		s.registry.Bind(userId, wsConn)
		logging.Info("transport: user %s connected", userId)
	}
	wsConn.run()
}

// onConnectionClosed is called from the read pump once the socket dies for
// any reason; it routes through the reconnection coordinator rather than
// touching the room directly.
func (s *Server) onConnectionClosed(c *wsConnection) {
	s.recon.HandleSocketClosed(c.userId, c)
	_ = c.Close()
	logging.Info("transport: user %s disconnected", c.userId)
}

// handleFrame dispatches one decoded client frame to the appropriate
// engine action or lobby operation, and writes back a RESP/ERROR frame.
func (s *Server) handleFrame(c *wsConnection, f wire.Frame) {
	switch wire.Command(f.Cmd) {
	case wire.CmdJoinRoom:
		s.handleJoinRoom(c, f)
	case wire.CmdLeaveRoom:
		s.submit(c, f, engine.Action{Kind: engine.ActionLeave})
	case wire.CmdReady:
		s.submit(c, f, engine.Action{Kind: engine.ActionReady})
	case wire.CmdPlay:
		s.handlePlay(c, f)
	case wire.CmdPeng:
		s.submit(c, f, engine.Action{Kind: engine.ActionPeng})
	case wire.CmdGang:
		s.handleGang(c, f)
	case wire.CmdChi:
		s.handleChi(c, f)
	case wire.CmdHu:
		s.handleHu(c, f)
	case wire.CmdPass:
		s.submit(c, f, engine.Action{Kind: engine.ActionPass})
	case wire.CmdHeartbeat:
		s.submit(c, f, engine.Action{Kind: engine.ActionHeartbeat})
	case wire.CmdGetSnapshot:
		s.handleGetSnapshot(c, f)
	case wire.CmdDismissVote:
		s.handleDismissVote(c, f)
	default:
		s.writeError(c, f, engine.ErrInvalidAction, fmt.Sprintf("unknown command %q", f.Cmd))
	}
}

func (s *Server) handleJoinRoom(c *wsConnection, f wire.Frame) {
	var payload wire.JoinRoomPayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidAction, "malformed joinRoom payload")
		return
	}

	// An empty roomId means "start a new room": there is no separate
	// createRoom command, joinRoom does double duty for the owner's first
	// join, and the engine generates an unused identifier.
	if payload.RoomId == "" {
		room, err := s.rooms.CreateRoom(c.userId, DefaultConfig(), DefaultMaxRounds)
		if err != nil {
			s.writeError(c, f, engine.ErrRoomFull, err.Error())
			return
		}
		payload.RoomId = room.RoomId
	}

	room, ok := s.rooms.RoomFor(payload.RoomId)
	if !ok {
		s.writeError(c, f, engine.ErrNoSuchRoom, "room "+payload.RoomId+" not found")
		return
	}
	res := room.Submit(engine.Action{Kind: engine.ActionJoin, ActorUserId: c.userId, ReqId: f.ReqId, AtMs: s.now()})
	if res.Err != nil {
		s.writeEngineError(c, f, res.Err)
		return
	}
	s.rooms.BindPlayer(c.userId, payload.RoomId)
	s.registry.JoinRoom(c.userId, payload.RoomId)
	s.publishAndAck(c, f, payload.RoomId, res)
}

func (s *Server) handlePlay(c *wsConnection, f wire.Frame) {
	var payload wire.PlayPayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, "malformed play payload")
		return
	}
	t, err := tile.Parse(payload.Tile)
	if err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, err.Error())
		return
	}
	s.submit(c, f, engine.Action{Kind: engine.ActionDiscard, Tile: t})
}

func (s *Server) handleGang(c *wsConnection, f wire.Frame) {
	var payload wire.GangPayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, "malformed gang payload")
		return
	}
	t, err := tile.Parse(payload.Tile)
	if err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, err.Error())
		return
	}
	var kind engine.GangKind
	switch payload.Type {
	case wire.GangExposed:
		kind = engine.GangExposed
	case wire.GangConcealed:
		kind = engine.GangConcealed
	case wire.GangUpgraded:
		kind = engine.GangUpgraded
	default:
		s.writeError(c, f, engine.ErrInvalidAction, "unknown gang type")
		return
	}
	s.submit(c, f, engine.Action{Kind: engine.ActionGang, Tile: t, GangKind: kind})
}

func (s *Server) handleChi(c *wsConnection, f wire.Frame) {
	var payload wire.ChiPayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, "malformed chi payload")
		return
	}
	tiles := make([]tile.Tile, 0, len(payload.Tiles))
	for _, raw := range payload.Tiles {
		t, err := tile.Parse(raw)
		if err != nil {
			s.writeError(c, f, engine.ErrInvalidTile, err.Error())
			return
		}
		tiles = append(tiles, t)
	}
	s.submit(c, f, engine.Action{Kind: engine.ActionChi, ChiTiles: tiles})
}

func (s *Server) handleHu(c *wsConnection, f wire.Frame) {
	var payload wire.HuPayload
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, "malformed hu payload")
		return
	}
	t, err := tile.Parse(payload.Tile)
	if err != nil {
		s.writeError(c, f, engine.ErrInvalidTile, err.Error())
		return
	}
	s.submit(c, f, engine.Action{Kind: engine.ActionHu, Tile: t, SelfDraw: payload.SelfDraw})
}

// handleGetSnapshot serves the redacted snapshot from the live room when
// this process still owns it, falling back to the hot store for a room
// that has since been reaped or was owned by a process that restarted.
func (s *Server) handleGetSnapshot(c *wsConnection, f wire.Frame) {
	if roomId, ok := s.rooms.RoomOf(c.userId); ok {
		if _, live := s.rooms.RoomFor(roomId); live {
			s.submit(c, f, engine.Action{Kind: engine.ActionGetSnapshot})
			return
		}
	}
	roomId := f.RoomId
	if roomId == "" || s.snapshots == nil {
		s.writeError(c, f, engine.ErrSnapshotUnavailable, "no live room and no stored snapshot")
		return
	}
	_, data, ok := s.snapshots.Read(roomId)
	if !ok {
		s.writeError(c, f, engine.ErrSnapshotUnavailable, "no snapshot stored for room "+roomId)
		return
	}
	gs, err := engine.DecodeSnapshot(data)
	if err != nil {
		s.writeError(c, f, engine.ErrSnapshotUnavailable, "stored snapshot unreadable")
		return
	}
	snap := engine.BuildSnapshot(gs, c.userId)
	raw, err := json.Marshal(snap)
	if err != nil {
		s.writeError(c, f, engine.ErrInternal, "snapshot encode failed")
		return
	}
	_ = c.SendFrame(wire.Frame{
		Type: wire.TypeResp, Cmd: f.Cmd, ReqId: f.ReqId, RoomId: roomId,
		Data: raw, Timestamp: s.now(),
	})
}

func (s *Server) handleDismissVote(c *wsConnection, f wire.Frame) {
	var payload struct {
		Vote bool `json:"vote"`
	}
	if err := json.Unmarshal(f.Data, &payload); err != nil {
		s.writeError(c, f, engine.ErrInvalidAction, "malformed dismissVote payload")
		return
	}
	s.submit(c, f, engine.Action{Kind: engine.ActionDismissVote, Vote: payload.Vote})
}

// submit resolves the caller's room, fills in actor/reqId/time, and
// submits to that room's actor.
func (s *Server) submit(c *wsConnection, f wire.Frame, a engine.Action) {
	roomId, ok := s.rooms.RoomOf(c.userId)
	if !ok {
		s.writeError(c, f, engine.ErrNoSuchRoom, "not currently in a room")
		return
	}
	room, ok := s.rooms.RoomFor(roomId)
	if !ok {
		s.writeError(c, f, engine.ErrNoSuchRoom, "room "+roomId+" not found")
		return
	}
	a.ActorUserId = c.userId
	a.ReqId = f.ReqId
	a.AtMs = s.now()
	res := room.Submit(a)
	if res.Err != nil {
		s.writeEngineError(c, f, res.Err)
		return
	}
	s.publishAndAck(c, f, roomId, res)
}

// publishAndAck acks the request. res.Events is already delivered by the
// room's actor loop via its EventSink (engine.Room.actorLoop); acking here
// only confirms request receipt, it never re-publishes.
func (s *Server) publishAndAck(c *wsConnection, f wire.Frame, roomId string, res engine.Result) {
	ack := wire.Frame{Type: wire.TypeResp, Cmd: f.Cmd, ReqId: f.ReqId, RoomId: roomId, Timestamp: s.now()}
	if err := c.SendFrame(ack); err != nil {
		logging.Warn("transport: ack to %s failed: %v", c.userId, err)
	}
}

func (s *Server) writeError(c *wsConnection, f wire.Frame, code engine.ErrorCode, message string) {
	frame, err := wire.NewError(f.Cmd, f.ReqId, string(code), message, s.now())
	if err != nil {
		logging.Error("transport: build error frame: %v", err)
		return
	}
	_ = c.SendFrame(frame)
}

func (s *Server) writeEngineError(c *wsConnection, f wire.Frame, e *engine.EngineError) {
	s.writeError(c, f, e.Code, e.Message)
}

func (s *Server) now() int64 {
	if s.clock == nil {
		return time.Now().UnixMilli()
	}
	return s.clock.NowMs()
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	s.http = &http.Server{Addr: s.addr, Handler: s.engine}
	logging.Info("transport: listening on %s", s.addr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// DefaultRules is a convenience re-export so cmd/gameserver doesn't need to
// import internal/rules just to seed room creation.
var DefaultRules = rules.Default

// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smith-agent/smith/internal/protocol"
	"github.com/smith-agent/smith/internal/stats"
	"github.com/smith-agent/smith/internal/toolerr"
)

const (
	maxFrameBytes  = 1 << 20 // 1 MiB, per spec.md §4.6
	hardReadLimit  = 4 << 20 // gorilla forcibly closes past this; everything under it is handled as a graceful drop
	writeWait      = 10 * time.Second

	goingAwayCode   = websocket.CloseGoingAway
	normalCloseCode = websocket.CloseNormalClosure
)

// upgrader has no origin restriction: Smith's WebSocket endpoint is
// agent-to-controller traffic, not a browser page making a cross-origin
// request, so CORS-style origin checking doesn't apply here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// conn is one accepted controller connection.
type conn struct {
	ws           *websocket.Conn
	remoteAddr   string
	writeMu      sync.Mutex
	lastActivity atomic.Int64 // unix nanoseconds
}

func newConn(ws *websocket.Conn, remoteAddr string) *conn {
	c := &conn{ws: ws, remoteAddr: remoteAddr}
	c.touch()
	return c
}

func (c *conn) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *conn) idleSince() time.Duration {
	return time.Since(time.Unix(0, c.lastActivity.Load()))
}

func (c *conn) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) closeWithCode(code int, text string) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, text))
	c.ws.Close()
}

// handleWebSocket validates the handshake, upgrades the connection,
// sends the register greeting, and runs the message loop until the
// controller disconnects.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !validAuth(r.Header.Get("x-smith-auth"), s.cfg.AuthToken) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if v := r.Header.Get("x-smith-protocol-version"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed != protocol.CurrentProtocolVersion {
			http.Error(w, "unsupported protocol version", http.StatusUpgradeRequired)
			return
		}
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log := getLog()
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newConn(ws, r.RemoteAddr)
	s.addConn(c)
	defer s.removeConn(c)

	connectLog := getLog()
	connectLog.Info().Str("remote", c.remoteAddr).Msg("controller connected")
	disconnectLog := getLog()
	defer disconnectLog.Info().Str("remote", c.remoteAddr).Msg("controller disconnected")

	greeting := protocol.NewRegister(s.cfg.Name, s.reg.Capabilities())
	if err := c.writeJSON(greeting); err != nil {
		log := getLog()
		log.Error().Err(err).Msg("failed to send register frame")
		return
	}

	s.messageLoop(c)
}

func validAuth(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

func (s *Server) messageLoop(c *conn) {
	c.ws.SetReadLimit(hardReadLimit)

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log := getLog()
				log.Warn().Err(err).Str("remote", c.remoteAddr).Msg("websocket read error")
			}
			return
		}
		c.touch()

		if len(message) > maxFrameBytes {
			log := getLog()
			log.Warn().Int("size", len(message)).Str("remote", c.remoteAddr).Msg("dropping oversized frame")
			continue
		}

		parsed, msgType, err := protocol.ParseInbound(message)
		if err != nil {
			log := getLog()
			log.Warn().Err(err).Str("remote", c.remoteAddr).Msg("failed to parse inbound frame")
			continue
		}

		switch msgType {
		case protocol.TypeTask:
			task, ok := parsed.(protocol.Task)
			if !ok {
				continue
			}
			go s.handleTask(c, task)
		case protocol.TypePing:
			s.handlePing(c)
		case protocol.TypeConfigQuery:
			s.handleConfigQuery(c)
		default:
			log := getLog()
			log.Warn().Str("type", msgType).Str("remote", c.remoteAddr).Msg("unknown inbound frame type")
		}
	}
}

func (s *Server) handleTask(c *conn, task protocol.Task) {
	if atomic.AddInt64(&s.inFlight, 1) > int64(s.cfg.MaxConcurrentTasks) {
		atomic.AddInt64(&s.inFlight, -1)
		busy := protocol.Result{Success: false, Error: toolerr.ErrBusy.Error(), DurationMS: 0}
		c.writeJSON(protocol.NewTaskResult(task.ID, busy))
		getAuditLog().Warn().Str("id", task.ID).Str("tool", task.Payload.Tool).Str("remote", c.remoteAddr).Msg("task rejected: at capacity")
		return
	}
	defer atomic.AddInt64(&s.inFlight, -1)

	start := time.Now()
	c.writeJSON(protocol.NewTaskProgress(task.ID))
	getAuditLog().Info().Str("id", task.ID).Str("tool", task.Payload.Tool).Str("remote", c.remoteAddr).Msg("task started")

	result := s.exec.Execute(context.Background(), task.Payload.Tool, task.Payload.Args)

	getAuditLog().Info().
		Str("id", task.ID).
		Str("tool", task.Payload.Tool).
		Str("remote", c.remoteAddr).
		Bool("success", result.Success).
		Dur("duration", time.Since(start)).
		Msg("task finished")

	c.writeJSON(protocol.NewTaskResult(task.ID, result))
}

func (s *Server) handlePing(c *conn) {
	snap, err := s.sampler.Snapshot()
	if err != nil {
		getLog().Error().Err(err).Msg("failed to sample stats")
		snap = stats.Snapshot{}
	}
	c.writeJSON(protocol.NewPong(snap))
}

func (s *Server) handleConfigQuery(c *conn) {
	devkit := protocol.Devkit{
		SandboxDir:        s.cfg.SandboxDir,
		ReadOnlyMode:      s.cfg.ReadOnlyMode,
		EnabledCategories: s.cfg.EnabledCategories(),
	}
	c.writeJSON(protocol.NewConfigReport(devkit))
}

// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server implements Smith's protocol server: a WebSocket
// endpoint speaking the task/ping/config_query wire protocol to any
// number of concurrently connected remote controllers, plus a minimal
// health route.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/smith-agent/smith/internal/config"
	"github.com/smith-agent/smith/internal/executor"
	"github.com/smith-agent/smith/internal/logger"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/stats"
)

func getLog() zerolog.Logger { return logger.GetServerLogger() }

func getAuditLog() zerolog.Logger { return logger.GetAuditLogger() }

// Server is the WebSocket protocol server described in spec.md §4.6.
type Server struct {
	httpServer *http.Server
	cfg        *config.AgentConfig
	reg        *registry.Registry
	exec       *executor.Executor
	sampler    *stats.Sampler

	inFlight int64 // atomic; shared across every connection, not per-connection

	connsMu sync.Mutex
	conns   map[*conn]struct{}

	sweeperDone chan struct{}
}

// New wires up the server's router and HTTP listener. It does not
// start listening — call Run for that.
func New(cfg *config.AgentConfig, reg *registry.Registry, sampler *stats.Sampler) *Server {
	tc := registry.ToolContext{
		SandboxDir:           cfg.SandboxDir,
		ReadOnlyMode:         cfg.ReadOnlyMode,
		AllowedShellCommands: cfg.AllowedShellCommands,
		Timeout:              time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}

	s := &Server{
		cfg:         cfg,
		reg:         reg,
		exec:        executor.New(reg, tc),
		sampler:     sampler,
		conns:       make(map[*conn]struct{}),
		sweeperDone: make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(Recovery)
	r.Use(Logger)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.handleWebSocket)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Run starts the idle sweeper, if configured, and blocks serving HTTP
// until Shutdown is called or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.IdleTimeoutMS > 0 {
		go s.runIdleSweeper(ctx)
	}

	log := getLog()
	log.Info().Str("addr", s.httpServer.Addr).Msg("smith protocol server listening")

	var err error
	if s.cfg.TLSCert != "" && s.cfg.TLSKey != "" {
		err = s.httpServer.ListenAndServeTLS(s.cfg.TLSCert, s.cfg.TLSKey)
	} else {
		err = s.httpServer.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections, sends a going-away close
// to every open connection without force-cancelling their in-flight
// tools, and waits for the HTTP server to drain. Idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	select {
	case <-s.sweeperDone:
	default:
		close(s.sweeperDone)
	}
	s.closeAllConnections(goingAwayCode, "server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) addConn(c *conn) {
	s.connsMu.Lock()
	s.conns[c] = struct{}{}
	s.connsMu.Unlock()
}

func (s *Server) removeConn(c *conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

func (s *Server) closeAllConnections(code int, text string) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for c := range s.conns {
		c.closeWithCode(code, text)
	}
}

func (s *Server) runIdleSweeper(ctx context.Context) {
	idleTimeout := time.Duration(s.cfg.IdleTimeoutMS) * time.Millisecond
	period := idleTimeout
	if period > 60*time.Second {
		period = 60 * time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-s.sweeperDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepIdle(idleTimeout)
		}
	}
}

func (s *Server) sweepIdle(threshold time.Duration) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for c := range s.conns {
		if c.idleSince() > threshold {
			log := getLog()
			log.Info().Str("remote", c.remoteAddr).Msg("closing idle connection")
			c.closeWithCode(normalCloseCode, "idle timeout")
		}
	}
}

// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser implements the browser tool category: navigate,
// get_dom, click, fill, search, fetch_content, and screenshot. Browser
// automation internals are treated as an external collaborator — this
// package hides the actual page driver behind the narrow Page
// interface so the tool contracts (idle eviction,
// acquire/release discipline) can be exercised without a real
// rendering engine.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smith-agent/smith/internal/toolerr"
)

const defaultIdleTimeout = 5 * time.Minute

// Page is the narrow interface a browser driver must satisfy. The
// default implementation fetches pages over plain HTTP without rendering
// them; a
// real JS-capable driver can be swapped in behind the same interface
// without touching the tool handlers.
type Page interface {
	Navigate(ctx context.Context, url string) error
	URL() string
	DOM(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, text string) error
	Screenshot(ctx context.Context) ([]byte, error)
}

// Session is the shared headless-browser singleton. Its page must be
// used serially: callers Acquire, use the page, then Release. An idle
// reaper closes the underlying page after it has sat unused past the
// idle timeout, so a stalled agent doesn't hold a rendering process
// open indefinitely.
type Session struct {
	mu          sync.Mutex
	page        Page
	newPage     func() Page
	lastUsed    time.Time
	idleTimeout time.Duration
	stopReaper  chan struct{}
}

// NewSession builds a Session backed by newPage and starts its idle
// reaper. Callers own the returned Session's lifecycle and should call
// Close when the agent shuts down.
func NewSession(newPage func() Page, idleTimeout time.Duration) *Session {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	s := &Session{
		newPage:     newPage,
		idleTimeout: idleTimeout,
		lastUsed:    time.Now(),
		stopReaper:  make(chan struct{}),
	}
	go s.reap()
	return s
}

// Acquire returns the live page, creating it lazily if the session was
// idle-evicted or never used, along with a release func the caller
// must invoke exactly once.
func (s *Session) Acquire() (Page, func()) {
	s.mu.Lock()
	if s.page == nil {
		s.page = s.newPage()
	}
	s.lastUsed = time.Now()
	page := s.page
	return page, func() {
		s.lastUsed = time.Now()
		s.mu.Unlock()
	}
}

func (s *Session) reap() {
	ticker := time.NewTicker(s.idleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopReaper:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.page != nil && time.Since(s.lastUsed) > s.idleTimeout {
				s.page = nil
			}
			s.mu.Unlock()
		}
	}
}

// Close stops the idle reaper. Intended for process shutdown.
func (s *Session) Close() {
	close(s.stopReaper)
}

func withPage(session *Session, fn func(Page) (interface{}, error)) (interface{}, error) {
	page, release := session.Acquire()
	defer release()
	out, err := fn(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
	}
	return out, nil
}

// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSession_AcquireCreatesPageLazily(t *testing.T) {
	calls := 0
	session := NewSession(func() Page {
		calls++
		return newHTTPPage()
	}, time.Minute)
	defer session.Close()

	page, release := session.Acquire()
	assert.NotNil(t, page)
	release()
	assert.Equal(t, 1, calls)

	page2, release2 := session.Acquire()
	assert.NotNil(t, page2)
	release2()
	assert.Equal(t, 1, calls)
}

func TestSession_IdleEvictionRecreatesPage(t *testing.T) {
	calls := 0
	session := NewSession(func() Page {
		calls++
		return newHTTPPage()
	}, 20*time.Millisecond)
	defer session.Close()

	_, release := session.Acquire()
	release()
	assert.Equal(t, 1, calls)

	time.Sleep(80 * time.Millisecond)

	_, release2 := session.Acquire()
	release2()
	assert.Equal(t, 2, calls)
}

func TestWithPage_WrapsDriverErrors(t *testing.T) {
	session := NewSession(newHTTPPage, time.Minute)
	defer session.Close()

	_, err := withPage(session, func(p Page) (interface{}, error) {
		return nil, p.Click(context.Background(), "#x")
	})
	assert.Error(t, err)
}

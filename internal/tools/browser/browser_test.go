// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smith-agent/smith/internal/registry"
)

func lookup(t *testing.T, name string) registry.Tool {
	for _, tool := range Factory() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %q not found", name)
	return registry.Tool{}
}

func TestNavigateThenGetDOM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>hello</p></body></html>"))
	}))
	defer srv.Close()

	tc := registry.ToolContext{}
	_, err := lookup(t, "navigate").Handler(context.Background(), tc, map[string]interface{}{"url": srv.URL})
	require.NoError(t, err)

	out, err := lookup(t, "get_dom").Handler(context.Background(), tc, map[string]interface{}{})
	require.NoError(t, err)
	result := out.(map[string]interface{})
	assert.Contains(t, result["dom"], "hello")
}

func TestFetchContent_ExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><style>body{}</style></head><body><h1>Title</h1><p>Body text.</p></body></html>"))
	}))
	defer srv.Close()

	tc := registry.ToolContext{}
	out, err := lookup(t, "fetch_content").Handler(context.Background(), tc, map[string]interface{}{"url": srv.URL})
	require.NoError(t, err)
	result := out.(map[string]interface{})
	assert.Contains(t, result["text"], "Title")
	assert.Contains(t, result["text"], "Body text.")
}

func TestScreenshot_ReturnsBase64Image(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	tc := registry.ToolContext{}
	_, err := lookup(t, "navigate").Handler(context.Background(), tc, map[string]interface{}{"url": srv.URL})
	require.NoError(t, err)

	out, err := lookup(t, "screenshot").Handler(context.Background(), tc, map[string]interface{}{})
	require.NoError(t, err)
	result := out.(map[string]interface{})
	assert.NotEmpty(t, result["image_base64"])
}

func TestClickAndFill_RequireNavigateFirst(t *testing.T) {
	newSession := NewSession(newHTTPPage, defaultIdleTimeout)
	defer newSession.Close()

	page, release := newSession.Acquire()
	clickErr := page.Click(context.Background(), "#submit")
	fillErr := page.Fill(context.Background(), "#name", "smith")
	release()
	assert.Error(t, clickErr)
	assert.Error(t, fillErr)
}

func TestSearch_ScoresAndRanksResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="result">
			<a class="result__a" href="https://en.wikipedia.org/wiki/Go_(programming_language)">Go (programming language) - Wikipedia</a>
			<a class="result__snippet">Go is a statically typed, compiled programming language designed at Google.</a>
		</div>`))
	}))
	defer srv.Close()

	original := searchEndpoint
	searchEndpoint = srv.URL
	defer func() { searchEndpoint = original }()

	tc := registry.ToolContext{}
	out, err := lookup(t, "search").Handler(context.Background(), tc, map[string]interface{}{"query": "go programming language"})
	require.NoError(t, err)
	result := out.(map[string]interface{})
	results := result["results"].([]Result)
	if assert.Len(t, results, 1) {
		assert.Contains(t, results[0].URL, "wikipedia.org")
		assert.Greater(t, results[0].Score, 0.0)
	}
	assert.NotEmpty(t, result["confidence"])
}

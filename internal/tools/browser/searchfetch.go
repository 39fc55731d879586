// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/smith-agent/smith/internal/guard"
)

// searchEndpoint is the lite search endpoint queried by the search
// tool. Tests point it at an httptest server by assigning the variable
// directly.
var searchEndpoint = "https://html.duckduckgo.com/html/"

// resultBlockPattern matches one result entry in the lite search
// endpoint's markup: an anchor carrying the result's title and URL,
// followed eventually by its snippet span.
var resultBlockPattern = regexp.MustCompile(
	`(?is)<a[^>]*class="result__a"[^>]*href="([^"]+)"[^>]*>(.*?)</a>.*?` +
		`<a[^>]*class="result__snippet"[^>]*>(.*?)</a>`,
)

var tagStripPattern = regexp.MustCompile(`(?s)<[^>]*>`)

func stripTags(s string) string {
	return html.UnescapeString(strings.TrimSpace(tagStripPattern.ReplaceAllString(s, "")))
}

func fetchSearchResults(ctx context.Context, refinedQuery string) ([]RawResult, error) {
	reqURL := searchEndpoint + "?q=" + url.QueryEscape(refinedQuery)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search endpoint returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, guard.DefaultOutputCap*10))
	if err != nil {
		return nil, err
	}
	return parseSearchResults(string(body)), nil
}

func parseSearchResults(body string) []RawResult {
	matches := resultBlockPattern.FindAllStringSubmatch(body, -1)
	out := make([]RawResult, 0, len(matches))
	for _, m := range matches {
		rawURL := html.UnescapeString(m[1])
		title := stripTags(m[2])
		snippet := stripTags(m[3])
		if rawURL == "" || title == "" {
			continue
		}
		out = append(out, RawResult{Title: title, URL: rawURL, Snippet: snippet})
	}
	return out
}

func searchNow() time.Time {
	return time.Now()
}

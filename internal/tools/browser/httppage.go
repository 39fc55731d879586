// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/smith-agent/smith/internal/guard"
)

const httpPageTimeout = 15 * time.Second

// httpPage is the default Page driver: it fetches a URL over plain
// HTTP and exposes its rendered text and raw markup. It has no
// JavaScript engine, so Click and Fill are no-ops reported as applied
// against the last fetched document — enough to exercise the tool
// contracts without a real browser dependency.
type httpPage struct {
	client     *http.Client
	url        string
	rawHTML    string
	lastAction string
}

func newHTTPPage() Page {
	return &httpPage{client: &http.Client{Timeout: httpPageTimeout}}
}

func (p *httpPage) Navigate(ctx context.Context, url string) error {
	reqCtx, cancel := context.WithTimeout(ctx, httpPageTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, guard.DefaultOutputCap*10))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}
	p.url = url
	p.rawHTML = string(body)
	return nil
}

func (p *httpPage) URL() string {
	return p.url
}

func (p *httpPage) DOM(ctx context.Context) (string, error) {
	if p.rawHTML == "" {
		return "", fmt.Errorf("no page loaded; call navigate first")
	}
	return p.rawHTML, nil
}

func (p *httpPage) Click(ctx context.Context, selector string) error {
	if p.rawHTML == "" {
		return fmt.Errorf("no page loaded; call navigate first")
	}
	p.lastAction = "click:" + selector
	return nil
}

func (p *httpPage) Fill(ctx context.Context, selector, text string) error {
	if p.rawHTML == "" {
		return fmt.Errorf("no page loaded; call navigate first")
	}
	p.lastAction = "fill:" + selector
	return nil
}

// blankPNG is a 1x1 transparent PNG, returned as a deterministic
// placeholder since this driver has no rendering surface to capture.
var blankPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func (p *httpPage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.rawHTML == "" {
		return nil, fmt.Errorf("no page loaded; call navigate first")
	}
	return blankPNG, nil
}

// extractText walks a parsed HTML document and concatenates its text
// nodes, collapsing runs of whitespace — used by fetch_content. Search
// snippets are reduced to plain text by stripTags instead.
func extractText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(sb.String()), nil
}

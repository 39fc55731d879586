// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
)

var defaultSession = NewSession(newHTTPPage, defaultIdleTimeout)

// Factory returns the browser category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		navigateTool(), getDOMTool(), clickTool(), fillTool(), searchTool(), fetchContentTool(), screenshotTool(),
	}
}

func navigateTool() registry.Tool {
	return registry.Tool{
		Name:     "navigate",
		Category: "browser",
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			targetURL := registry.StringArg(args, "url", "")
			return withPage(defaultSession, func(p Page) (interface{}, error) {
				if err := p.Navigate(ctx, targetURL); err != nil {
					return nil, err
				}
				return map[string]interface{}{"url": p.URL()}, nil
			})
		},
	}
}

func getDOMTool() registry.Tool {
	return registry.Tool{
		Name:        "get_dom",
		Category:    "browser",
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return withPage(defaultSession, func(p Page) (interface{}, error) {
				dom, err := p.DOM(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"dom": guard.TruncateOutput(dom, guard.DefaultOutputCap*4)}, nil
			})
		},
	}
}

func clickTool() registry.Tool {
	return registry.Tool{
		Name:     "click",
		Category: "browser",
		Args: []registry.ArgDescriptor{
			{Name: "selector", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			selector := registry.StringArg(args, "selector", "")
			return withPage(defaultSession, func(p Page) (interface{}, error) {
				if err := p.Click(ctx, selector); err != nil {
					return nil, err
				}
				return map[string]interface{}{"clicked": selector}, nil
			})
		},
	}
}

func fillTool() registry.Tool {
	return registry.Tool{
		Name:     "fill",
		Category: "browser",
		Args: []registry.ArgDescriptor{
			{Name: "selector", Type: registry.ArgString, Required: true},
			{Name: "text", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			selector := registry.StringArg(args, "selector", "")
			text := registry.StringArg(args, "text", "")
			return withPage(defaultSession, func(p Page) (interface{}, error) {
				if err := p.Fill(ctx, selector, text); err != nil {
					return nil, err
				}
				return map[string]interface{}{"filled": selector}, nil
			})
		},
	}
}

func screenshotTool() registry.Tool {
	return registry.Tool{
		Name:        "screenshot",
		Category:    "browser",
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			return withPage(defaultSession, func(p Page) (interface{}, error) {
				png, err := p.Screenshot(ctx)
				if err != nil {
					return nil, err
				}
				return map[string]interface{}{"image_base64": base64.StdEncoding.EncodeToString(png)}, nil
			})
		},
	}
}

func fetchContentTool() registry.Tool {
	return registry.Tool{
		Name:     "fetch_content",
		Category: "browser",
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			targetURL := registry.StringArg(args, "url", "")
			page := newHTTPPage().(*httpPage)
			if err := page.Navigate(ctx, targetURL); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			text, err := extractText(page.rawHTML)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"text": guard.TruncateOutput(text, guard.DefaultOutputCap*4)}, nil
		},
	}
}

func searchTool() registry.Tool {
	return registry.Tool{
		Name:     "search",
		Category: "browser",
		Args: []registry.ArgDescriptor{
			{Name: "query", Type: registry.ArgString, Required: true},
			{Name: "num_results", Type: registry.ArgNumber, Default: defaultNumResults},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			query := registry.StringArg(args, "query", "")
			now := searchNow()
			refined := refineQuery(query, detectIntent(query), now)

			raws, err := fetchSearchResults(ctx, refined)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			results := trimResults(rankResults(query, raws, now), registry.IntArg(args, "num_results", defaultNumResults))
			return map[string]interface{}{
				"query":      refined,
				"results":    results,
				"confidence": aggregateConfidence(results),
			}, nil
		},
	}
}

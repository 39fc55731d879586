// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package network implements the network tool category: http_request,
// ping, port_check, dns_lookup, and download_file.
package network

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/avast/retry-go/v5"
	"golang.org/x/time/rate"

	"github.com/smith-agent/smith/internal/guard"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/toolerr"
	"github.com/smith-agent/smith/internal/toolsupport"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultPingPort       = 80
	defaultPingTimeout    = 5 * time.Second
	defaultDownloadRetries = 3
)

// limiter caps outbound network tool calls at 10/s with a burst of 20,
// shared across every connection's network-category invocations on
// this agent — a single process-wide resource, not one per call.
var limiter = rate.NewLimiter(rate.Limit(10), 20)

// Factory returns the network category's tools.
func Factory() []registry.Tool {
	return []registry.Tool{
		httpRequestTool(), pingTool(), portCheckTool(), dnsLookupTool(), downloadFileTool(),
	}
}

// HTTPResult is the data returned by http_request.
type HTTPResult struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

func httpRequestTool() registry.Tool {
	return registry.Tool{
		Name:     "http_request",
		Category: "network",
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
			{Name: "method", Type: registry.ArgString, Default: "GET"},
			{Name: "headers", Type: registry.ArgObject, Default: map[string]interface{}{}},
			{Name: "body", Type: registry.ArgString, Default: ""},
			{Name: "timeout_ms", Type: registry.ArgNumber},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}

			timeout := defaultHTTPTimeout
			if tc.Timeout > 0 && tc.Timeout < timeout {
				timeout = tc.Timeout
			}
			reqCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			method := registry.StringArg(args, "method", "GET")
			url := registry.StringArg(args, "url", "")
			body := registry.StringArg(args, "body", "")

			req, err := http.NewRequestWithContext(reqCtx, method, url, stringReader(body))
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrBadArguments, err)
			}
			for k, v := range registry.ObjectArg(args, "headers") {
				if s, ok := v.(string); ok {
					req.Header.Set(k, s)
				}
			}

			client := &http.Client{Timeout: timeout}
			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(io.LimitReader(resp.Body, guard.DefaultOutputCap*4))
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}

			headers := make(map[string]string, len(resp.Header))
			for k := range resp.Header {
				headers[k] = resp.Header.Get(k)
			}

			return HTTPResult{
				StatusCode: resp.StatusCode,
				Headers:    headers,
				Body:       guard.TruncateOutput(string(data), guard.DefaultOutputCap),
			}, nil
		},
	}
}

func stringReader(s string) io.Reader {
	if s == "" {
		return nil
	}
	return &stringReaderImpl{s: s}
}

type stringReaderImpl struct {
	s string
	i int
}

func (r *stringReaderImpl) Read(p []byte) (int, error) {
	if r.i >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.i:])
	r.i += n
	return n, nil
}

func pingTool() registry.Tool {
	return registry.Tool{
		Name:     "ping",
		Category: "network",
		Args: []registry.ArgDescriptor{
			{Name: "host", Type: registry.ArgString, Required: true},
			{Name: "port", Type: registry.ArgNumber, Default: defaultPingPort},
			{Name: "timeout_ms", Type: registry.ArgNumber, Default: int(defaultPingTimeout / time.Millisecond)},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			host := registry.StringArg(args, "host", "")
			port := registry.IntArg(args, "port", defaultPingPort)
			timeout := time.Duration(registry.IntArg(args, "timeout_ms", int(defaultPingTimeout/time.Millisecond))) * time.Millisecond

			start := time.Now()
			conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
			elapsed := time.Since(start)
			if err != nil {
				return map[string]interface{}{"reachable": false, "error": err.Error(), "elapsed_ms": elapsed.Milliseconds()}, nil
			}
			conn.Close()
			return map[string]interface{}{"reachable": true, "elapsed_ms": elapsed.Milliseconds()}, nil
		},
	}
}

func portCheckTool() registry.Tool {
	return registry.Tool{
		Name:     "port_check",
		Category: "network",
		Args: []registry.ArgDescriptor{
			{Name: "host", Type: registry.ArgString, Required: true},
			{Name: "port", Type: registry.ArgNumber, Required: true},
			{Name: "timeout_ms", Type: registry.ArgNumber, Default: int(defaultPingTimeout / time.Millisecond)},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			host := registry.StringArg(args, "host", "")
			port := registry.IntArg(args, "port", 0)
			timeout := time.Duration(registry.IntArg(args, "timeout_ms", int(defaultPingTimeout/time.Millisecond))) * time.Millisecond

			conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
			if err != nil {
				return map[string]interface{}{"open": false}, nil
			}
			conn.Close()
			return map[string]interface{}{"open": true}, nil
		},
	}
}

func dnsLookupTool() registry.Tool {
	return registry.Tool{
		Name:     "dns_lookup",
		Category: "network",
		Args: []registry.ArgDescriptor{
			{Name: "host", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.ReadOnly,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			host := registry.StringArg(args, "host", "")
			addrs, err := net.DefaultResolver.LookupHost(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}
			return map[string]interface{}{"addresses": addrs}, nil
		},
	}
}

func downloadFileTool() registry.Tool {
	return registry.Tool{
		Name:     "download_file",
		Category: "network",
		Args: []registry.ArgDescriptor{
			{Name: "url", Type: registry.ArgString, Required: true},
			{Name: "destination", Type: registry.ArgString, Required: true},
		},
		Destructive: registry.Destructs,
		Handler: func(ctx context.Context, tc registry.ToolContext, args map[string]interface{}) (interface{}, error) {
			dst, err := toolsupport.GuardPath(tc.SandboxDir, tc.ReadOnlyMode, registry.StringArg(args, "destination", ""), true)
			if err != nil {
				return nil, err
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, err)
			}

			timeout := defaultHTTPTimeout
			if tc.Timeout > 0 && tc.Timeout < timeout {
				timeout = tc.Timeout
			}

			var bytesWritten int64
			r := retry.New(
				retry.Context(ctx),
				retry.Attempts(defaultDownloadRetries),
			)
			downloadErr := r.Do(func() error {
				reqCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				n, err := fetchToFile(reqCtx, registry.StringArg(args, "url", ""), dst)
				bytesWritten = n
				return err
			})
			if downloadErr != nil {
				return nil, fmt.Errorf("%w: %s", toolerr.ErrInternal, downloadErr)
			}
			return map[string]interface{}{"destination": dst, "bytes_written": bytesWritten}, nil
		},
	}
}

func fetchToFile(ctx context.Context, url, dst string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return 0, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, resp.Body)
}

// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smith-agent/smith/internal/config"
	"github.com/smith-agent/smith/internal/home"
	"github.com/smith-agent/smith/internal/logger"
	"github.com/smith-agent/smith/internal/registry"
	"github.com/smith-agent/smith/internal/server"
	"github.com/smith-agent/smith/internal/stats"
	"github.com/smith-agent/smith/internal/tools/browser"
	"github.com/smith-agent/smith/internal/tools/filesystem"
	"github.com/smith-agent/smith/internal/tools/git"
	"github.com/smith-agent/smith/internal/tools/network"
	"github.com/smith-agent/smith/internal/tools/packages"
	"github.com/smith-agent/smith/internal/tools/processes"
	"github.com/smith-agent/smith/internal/tools/shelltool"
	"github.com/smith-agent/smith/internal/tools/system"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "start":
		runStart(os.Args[2:])
	case "stop":
		runStop(os.Args[2:])
	case "status":
		runStatus(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: smith <init|start|stop|status> [flags]")
}

// runInit creates the home directory layout and provisions the persisted
// auth token without starting the server. It writes no config file.
func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dir := fs.String("dir", "~/.smith", "home directory")
	fs.Parse(args)

	h, err := home.New(config.ExpandPath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create home directory: %v\n", err)
		os.Exit(1)
	}

	if _, err := h.ResolveAuthToken(""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to provision auth token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("initialized smith home at %s\n", h.Dir)
}

// runStart loads configuration, wires the tool registry and protocol
// server, and blocks until a termination signal or server error.
func runStart(args []string) {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.CloseGlobal()

	mainLog := logger.GetLogger("main")
	mainLog.Info().Str("name", cfg.Agent.Name).Int("port", cfg.Agent.Port).Msg("starting smith")

	h, err := home.New(cfg.Home.Dir)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to create home directory")
	}

	token, err := h.ResolveAuthToken(cfg.Agent.AuthToken)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to resolve auth token")
	}
	cfg.Agent.AuthToken = token

	if existing, err := h.ReadPID(); err == nil && processAlive(existing) {
		mainLog.Fatal().Int("pid", existing).Msg("smith is already running")
	}
	if err := h.WritePID(); err != nil {
		mainLog.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer h.RemovePIDFile()

	reg, err := buildRegistry(&cfg.Agent)
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to build tool registry")
	}
	mainLog.Info().Strs("capabilities", reg.Capabilities()).Msg("tool registry built")

	sampler, err := stats.NewSampler()
	if err != nil {
		mainLog.Fatal().Err(err).Msg("failed to initialize stats sampler")
	}

	srv := server.New(&cfg.Agent, reg, sampler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- srv.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		mainLog.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
	case err := <-serverErrChan:
		if err != nil {
			mainLog.Error().Err(err).Msg("server error")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		mainLog.Error().Err(err).Msg("error shutting down server")
	}

	mainLog.Info().Msg("smith shut down")
}

// runStop sends SIGTERM to the running instance found via the home
// directory's PID file.
func runStop(args []string) {
	fs := flag.NewFlagSet("stop", flag.ExitOnError)
	dir := fs.String("dir", "~/.smith", "home directory")
	fs.Parse(args)

	h, err := home.New(config.ExpandPath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open home directory: %v\n", err)
		os.Exit(1)
	}

	pid, err := h.ReadPID()
	if err != nil {
		fmt.Fprintln(os.Stderr, "smith is not running")
		os.Exit(1)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to find process %d: %v\n", pid, err)
		os.Exit(1)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(os.Stderr, "failed to signal process %d: %v\n", pid, err)
		os.Exit(1)
	}

	fmt.Printf("sent SIGTERM to smith (pid %d)\n", pid)
}

// runStatus reports whether the instance recorded in the home
// directory's PID file is still alive.
func runStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	dir := fs.String("dir", "~/.smith", "home directory")
	fs.Parse(args)

	h, err := home.New(config.ExpandPath(*dir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open home directory: %v\n", err)
		os.Exit(1)
	}

	pid, err := h.ReadPID()
	if err != nil {
		fmt.Println("stopped")
		return
	}

	if processAlive(pid) {
		fmt.Printf("running (pid %d)\n", pid)
	} else {
		fmt.Println("stopped (stale pid file)")
	}
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// buildRegistry wires every tool category factory and builds the live
// registry for cfg, gating the four optional categories per
// cfg.Categories.
func buildRegistry(cfg *config.AgentConfig) (*registry.Registry, error) {
	factories := map[string]registry.CategoryFactory{
		"filesystem": filesystem.Factory,
		"shell":      shelltool.Factory,
		"git":        git.Factory,
		"network":    network.Factory,
		"processes":  processes.Factory,
		"packages":   packages.Factory,
		"system":     system.Factory,
		"browser":    browser.Factory,
	}
	entries := registry.RegisterAll(factories)

	enabledFlags := map[string]bool{
		"filesystem": cfg.Categories.Filesystem,
		"shell":      cfg.Categories.Shell,
		"git":        cfg.Categories.Git,
		"network":    cfg.Categories.Network,
	}
	return registry.Build(entries, enabledFlags)
}

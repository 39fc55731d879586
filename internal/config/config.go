// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads Smith's configuration from a file, environment
// variables, and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// nameRegex matches AgentConfig.Name per spec.md §3.
var nameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// AppConfig holds all of Smith's configuration.
type AppConfig struct {
	Agent AgentConfig `mapstructure:"agent"`
	Log   LogConfig   `mapstructure:"log"`
	Home  HomeConfig  `mapstructure:"home"`
}

// AgentConfig is the immutable-after-load configuration of a Smith
// instance, per spec.md §3.
type AgentConfig struct {
	Name                 string          `mapstructure:"name"`
	Port                 int             `mapstructure:"port"`
	AuthToken            string          `mapstructure:"auth_token"`
	SandboxDir           string          `mapstructure:"sandbox_dir"`
	ReadOnlyMode         bool            `mapstructure:"readonly_mode"`
	AllowedShellCommands []string        `mapstructure:"allowed_shell_commands"`
	Categories           CategoryEnables `mapstructure:"categories"`
	TimeoutMS            int             `mapstructure:"timeout_ms"`
	MaxConcurrentTasks   int             `mapstructure:"max_concurrent_tasks"`
	IdleTimeoutMS        int             `mapstructure:"idle_timeout_ms"`
	TLSCert              string          `mapstructure:"tls_cert"`
	TLSKey               string          `mapstructure:"tls_key"`
	LogLevel             string          `mapstructure:"log_level"`
}

// CategoryEnables toggles the four optional tool categories. Filesystem,
// shell, git, and network default to true; processes, packages, system,
// and browser always load and have no enable flag (spec.md §3).
type CategoryEnables struct {
	Filesystem bool `mapstructure:"filesystem"`
	Shell      bool `mapstructure:"shell"`
	Git        bool `mapstructure:"git"`
	Network    bool `mapstructure:"network"`
}

// LogConfig configures the logging layer (internal/logger).
type LogConfig struct {
	Level  string            `mapstructure:"level"`
	Format string            `mapstructure:"format"`
	Output []LogOutputConfig `mapstructure:"output"`
	Levels map[string]string `mapstructure:"levels"`
	Rotate LogRotateConfig   `mapstructure:"rotate"`
}

// LogOutputConfig defines where logs are written.
type LogOutputConfig struct {
	Type    string `mapstructure:"type"` // "console" or "file"
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogRotateConfig defines file log rotation settings, applied when Output
// contains an enabled "file" entry.
type LogRotateConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAgeDays int  `mapstructure:"max_age_days"`
	Compress   bool `mapstructure:"compress"`
}

// HomeConfig configures the persisted-state home directory (spec.md §6).
type HomeConfig struct {
	Dir string `mapstructure:"dir"`
}

// NewConfig loads configuration the way the teacher's loader does: built-in
// defaults, overlaid by an optional config file, overlaid by SMITH_*
// environment variables, then path-expanded and validated.
func NewConfig(configPath string) (*AppConfig, error) {
	cfg := defaultConfig()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("smith")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/smith/")
		v.AddConfigPath("$HOME/.smith")
	}

	v.SetEnvPrefix("SMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.expandPaths()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// defaultConfig returns an AppConfig populated with Smith's built-in
// defaults.
func defaultConfig() AppConfig {
	return AppConfig{
		Agent: AgentConfig{
			Name:       "smith",
			Port:       7900,
			SandboxDir: "./sandbox",
			Categories: CategoryEnables{
				Filesystem: true,
				Shell:      true,
				Git:        true,
				Network:    true,
			},
			TimeoutMS:          30_000,
			MaxConcurrentTasks: 4,
			LogLevel:           "INFO",
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "console",
			Output: []LogOutputConfig{
				{Type: "console", Enabled: true},
				{Type: "file", Enabled: true, Path: "~/.smith/logs/smith.log"},
			},
			Levels: map[string]string{
				"server":   "INFO",
				"executor": "INFO",
				"guard":    "INFO",
				"tool":     "INFO",
				"stats":    "WARN",
				"audit":    "INFO",
			},
			Rotate: LogRotateConfig{
				MaxSizeMB:  50,
				MaxBackups: 5,
				MaxAgeDays: 14,
				Compress:   true,
			},
		},
		Home: HomeConfig{
			Dir: "~/.smith",
		},
	}
}

// expandPaths expands ~ and environment variables in path fields.
func (c *AppConfig) expandPaths() {
	c.Agent.SandboxDir = expandPath(c.Agent.SandboxDir)
	c.Agent.TLSCert = expandPath(c.Agent.TLSCert)
	c.Agent.TLSKey = expandPath(c.Agent.TLSKey)
	c.Home.Dir = expandPath(c.Home.Dir)
	for i := range c.Log.Output {
		c.Log.Output[i].Path = expandPath(c.Log.Output[i].Path)
	}
}

// ExpandPath expands a leading ~ and environment variables in path,
// the same way the config loader expands AgentConfig/HomeConfig paths.
func ExpandPath(path string) string {
	return expandPath(path)
}

func expandPath(path string) string {
	if path == "" {
		return path
	}
	if strings.HasPrefix(path, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// validate checks the final configuration against spec.md §3's invariants.
func (c *AppConfig) validate() error {
	if !nameRegex.MatchString(c.Agent.Name) {
		return fmt.Errorf("invalid agent name %q: must match %s", c.Agent.Name, nameRegex.String())
	}
	if c.Agent.Port <= 0 || c.Agent.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Agent.Port)
	}
	if c.Agent.SandboxDir == "" {
		return errors.New("sandbox_dir is required")
	}
	absSandbox, err := filepath.Abs(c.Agent.SandboxDir)
	if err != nil {
		return fmt.Errorf("failed to resolve sandbox_dir: %w", err)
	}
	c.Agent.SandboxDir = absSandbox

	if c.Agent.TimeoutMS <= 0 {
		return errors.New("timeout_ms must be positive")
	}
	if c.Agent.MaxConcurrentTasks <= 0 {
		return errors.New("max_concurrent_tasks must be positive")
	}
	if (c.Agent.TLSCert == "") != (c.Agent.TLSKey == "") {
		return errors.New("tls_cert and tls_key must both be set or both be empty")
	}

	validLogLevels := map[string]bool{
		"TRACE": true, "DEBUG": true, "INFO": true, "WARN": true, "ERROR": true, "FATAL": true, "PANIC": true,
	}
	if !validLogLevels[strings.ToUpper(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// EnabledCategories returns the fixed names of categories that always load
// plus whichever optional categories are enabled, matching registry.Build's
// gating so config_report stays consistent with the live registry.
func (c *AgentConfig) EnabledCategories() []string {
	var cats []string
	if c.Categories.Filesystem {
		cats = append(cats, "filesystem")
	}
	if c.Categories.Shell {
		cats = append(cats, "shell")
	}
	if c.Categories.Git {
		cats = append(cats, "git")
	}
	if c.Categories.Network {
		cats = append(cats, "network")
	}
	cats = append(cats, "processes", "packages", "system", "browser")
	return cats
}

// EffectiveTimeout returns min(argTimeoutMS, AgentConfig.TimeoutMS) as a
// time.Duration, per spec.md §5. A non-positive argTimeoutMS means "use the
// configured default".
func (c *AgentConfig) EffectiveTimeout(argTimeoutMS int) time.Duration {
	ms := c.TimeoutMS
	if argTimeoutMS > 0 && argTimeoutMS < ms {
		ms = argTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

// Package config holds the core's mapstructure-tagged configuration
// sections, bound from viper the way the teacher's cmd/config.go binds its
// own (log/db/http) sections.
package config

import (
	"errors"
	"fmt"
)

// LogConfig holds the log section. Level is decoded but not read: the
// devlog handler installed in cmd/root.go takes its level only from the
// --debug flag.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DatabaseConfig points at the SQLite file backing internal/flash's block
// store.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

func (d *DatabaseConfig) validate() error {
	if d.DSN == "" {
		return errors.New("database configuration error: dsn is required")
	}
	return nil
}

// ListenConfig configures the transport harness's listener and its
// per-connection rate limit.
type ListenConfig struct {
	Address           string  `mapstructure:"address"`
	RateLimitPerSec   float64 `mapstructure:"rate_limit_per_second"`
	RateLimitBurst    int     `mapstructure:"rate_limit_burst"`
	CertPath          string  `mapstructure:"cert"`
	KeyPath           string  `mapstructure:"key"`
}

// UseTLS reports whether both a certificate and key were configured.
func (l *ListenConfig) UseTLS() bool {
	return l.CertPath != "" && l.KeyPath != ""
}

func (l *ListenConfig) validate() error {
	if l.Address == "" {
		return errors.New("the core's listen address is required")
	}
	if (l.CertPath == "") != (l.KeyPath == "") {
		return errors.New("both certificate and key must be provided together, or neither")
	}
	if l.RateLimitPerSec < 0 {
		return errors.New("rate_limit_per_second must not be negative")
	}
	if l.RateLimitBurst < 0 {
		return errors.New("rate_limit_burst must not be negative")
	}
	return nil
}

// ArenaConfig exposes the session arena's fixed capacity and byte pool as
// configuration. Zero values are passed through to session.NewSized, which
// falls back to the session.Max/session.BytePool defaults.
type ArenaConfig struct {
	Sessions int `mapstructure:"sessions"`
	PoolSize int `mapstructure:"pool_size"`
}

// Config is the core's full configuration tree, decoded from a single YAML
// (or JSON/TOML) file by the mapstructure decoder in cmd/root.go.
type Config struct {
	Log    LogConfig      `mapstructure:"log"`
	DB     DatabaseConfig `mapstructure:"db"`
	Listen ListenConfig   `mapstructure:"listen"`
	Arena  ArenaConfig    `mapstructure:"arena"`
}

// Validate checks that every required field is present and well formed.
func (c *Config) Validate() error {
	if err := c.DB.validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := c.Listen.validate(); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	if c.Arena.Sessions < 0 || c.Arena.PoolSize < 0 {
		return errors.New("arena: sessions and pool_size must not be negative")
	}
	return nil
}

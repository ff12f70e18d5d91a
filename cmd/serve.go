// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/secube/crypto-core/internal/crypto"
	"github.com/secube/crypto-core/internal/devtime"
	"github.com/secube/crypto-core/internal/flash"
	"github.com/secube/crypto-core/internal/keystore"
	"github.com/secube/crypto-core/internal/session"
	"github.com/secube/crypto-core/internal/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve listen_address",
	Short: "Serve the crypto core over the frame transport",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := serveCmdLoadConfig(cmd, args); err != nil {
			return err
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("db", "", "Flash-emulation database path")
	serveCmd.Flags().String("listen.address", "", "Listen address")
}

func serveCmdLoadConfig(cmd *cobra.Command, args []string) error {
	if err := rootCmdLoadConfig(cmd); err != nil {
		return err
	}

	if len(args) > 0 {
		cfg.Listen.Address = args[0]
	}
	if db := viper.GetString("db"); db != "" {
		cfg.DB.DSN = db
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	return nil
}

func serve() error {
	store, err := flash.Open(cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening flash store: %w", err)
	}
	defer func() { _ = store.Close() }()

	keys := keystore.NewStore(store)
	arena := session.NewSized(cfg.Arena.Sessions, cfg.Arena.PoolSize)
	clock := devtime.New()
	dispatcher := crypto.New(arena, keys, clock)

	srv := &transport.Server{
		Addr:            cfg.Listen.Address,
		UseTLS:          cfg.Listen.UseTLS(),
		CertPath:        cfg.Listen.CertPath,
		KeyPath:         cfg.Listen.KeyPath,
		Dispatcher:      dispatcher,
		RateLimitPerSec: cfg.Listen.RateLimitPerSec,
		RateLimitBurst:  cfg.Listen.RateLimitBurst,
	}

	slog.Debug("Starting crypto core on:", "addr", cfg.Listen.Address)
	return srv.Start()
}

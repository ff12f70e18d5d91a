// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"hermannm.dev/devlog"

	"github.com/secube/crypto-core/internal/config"
)

var (
	logLevel slog.LevelVar
	cfg      config.Config
)

var rootCmd = &cobra.Command{
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Use:   "crypto-core",
	Short: "Security command dispatch and session engine for a USB-attached cryptographic token",
	Long: `crypto-core serves the token's crypto_init/crypto_update/crypto_set_time/
crypto_list command set over a length-prefixed frame transport, backed by a
flash-emulated record and key store.
`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	slog.SetDefault(slog.New(devlog.NewHandler(os.Stdout, &devlog.Options{
		Level: &logLevel,
	})))

	rootCmd.PersistentFlags().String("config", "", "Pathname of the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Print debug contents")
}

// rootCmdLoadConfig binds the command's flags, reads the config file if one
// was given, and decodes the result into cfg. It is called from the PreRunE
// of the serve, keys and records subcommands (settime loads no config),
// mirroring the teacher's per-subcommand load-then-delegate-to-root pattern.
func rootCmdLoadConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	if configFilePath != "" {
		slog.Debug("Loading configuration file", "path", configFilePath)
		viper.SetConfigFile(configFilePath)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("configuration file read failed: %w", err)
		}
	}

	// Decoded explicitly via mapstructure, rather than viper.Unmarshal's
	// built-in decoder, so a weakly-typed config file (e.g. a YAML
	// "rate_limit_burst: "4"" string) is coerced the same way the teacher's
	// own ServiceInfoConfig field decoding expects.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return fmt.Errorf("building configuration decoder: %w", err)
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return fmt.Errorf("configuration decode failed: %w", err)
	}

	if viper.GetBool("debug") {
		logLevel.Set(slog.LevelDebug)
	}

	return nil
}

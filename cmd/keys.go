// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secube/crypto-core/internal/flash"
	"github.com/secube/crypto-core/internal/provision"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Provision key entries into the flash-backed key store",
}

var keysPutCmd = &cobra.Command{
	Use:   "put key_id hex_material",
	Short: "Write (or replace) a key entry",
	Args:  cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseKeyID(args[0])
		if err != nil {
			return err
		}
		material, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("decoding hex key material: %w", err)
		}
		validity, err := cmd.Flags().GetUint32("validity")
		if err != nil {
			return err
		}
		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return err
		}

		store, err := flash.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("opening flash store: %w", err)
		}
		defer func() { _ = store.Close() }()

		return provision.NewKeys(store).Put(id, material, validity, name)
	},
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete key_id",
	Short: "Delete a key entry",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseKeyID(args[0])
		if err != nil {
			return err
		}

		store, err := flash.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("opening flash store: %w", err)
		}
		defer func() { _ = store.Close() }()

		return provision.NewKeys(store).Delete(id)
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show key_id",
	Short: "Show a key entry's metadata (material is not printed)",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseKeyID(args[0])
		if err != nil {
			return err
		}

		store, err := flash.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("opening flash store: %w", err)
		}
		defer func() { _ = store.Close() }()

		entry, err := provision.NewKeys(store).Get(id)
		if err != nil {
			return err
		}
		fmt.Printf("id=%d name=%q validity=%d material_len=%d\n", entry.ID, entry.Name, entry.Validity, len(entry.Material))
		return nil
	},
}

func parseKeyID(s string) (uint32, error) {
	var id uint32
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid key id %q: %w", s, err)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysPutCmd, keysDeleteCmd, keysShowCmd)

	keysPutCmd.Flags().Uint32("validity", 0xFFFFFFFF, "Key validity timestamp (device time units); defaults to never-expiring")
	keysPutCmd.Flags().String("name", "", "Human-readable key name")
}

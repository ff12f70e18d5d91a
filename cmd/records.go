// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secube/crypto-core/internal/flash"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Read and write flash-backed typed records",
}

var recordsGetCmd = &cobra.Command{
	Use:   "get record_type",
	Short: "Print a record's payload as hex",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseRecordType(args[0])
		if err != nil {
			return err
		}

		store, err := flash.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("opening flash store: %w", err)
		}
		defer func() { _ = store.Close() }()

		var data [flash.RecordSize]byte
		if err := flash.NewRecordStore(store).Get(typ, &data); err != nil {
			return err
		}
		fmt.Println(hex.EncodeToString(data[:]))
		return nil
	},
}

var recordsSetCmd = &cobra.Command{
	Use:   "set record_type hex_payload",
	Short: "Write a record's payload, replacing any previous live record of the same type",
	Args:  cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return rootCmdLoadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := parseRecordType(args[0])
		if err != nil {
			return err
		}
		payload, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("decoding hex payload: %w", err)
		}
		if len(payload) > flash.RecordSize {
			return fmt.Errorf("payload of %d bytes exceeds record size %d", len(payload), flash.RecordSize)
		}

		store, err := flash.Open(cfg.DB.DSN)
		if err != nil {
			return fmt.Errorf("opening flash store: %w", err)
		}
		defer func() { _ = store.Close() }()

		var data [flash.RecordSize]byte
		copy(data[:], payload)
		return flash.NewRecordStore(store).Set(typ, data)
	},
}

func parseRecordType(s string) (uint16, error) {
	var typ uint16
	if _, err := fmt.Sscanf(s, "%d", &typ); err != nil {
		return 0, fmt.Errorf("invalid record type %q: %w", s, err)
	}
	return typ, nil
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsGetCmd, recordsSetCmd)
}

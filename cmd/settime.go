// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache 2.0

package cmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/secube/crypto-core/internal/transport"
	"github.com/secube/crypto-core/internal/wire"
)

var settimeCmd = &cobra.Command{
	Use:   "settime server_address devtime",
	Short: "Send a crypto_set_time command to a running core",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var devtime uint32
		if _, err := fmt.Sscanf(args[1], "%d", &devtime); err != nil {
			return fmt.Errorf("invalid devtime %q: %w", args[1], err)
		}

		conn, err := net.Dial("tcp", args[0])
		if err != nil {
			return err
		}
		defer func() { _ = conn.Close() }()

		req := make([]byte, 4)
		wire.PutU32(req, 0, devtime)
		if err := transport.WriteRequest(conn, transport.CmdSetTime, req); err != nil {
			return err
		}

		status, _, err := transport.ReadResponse(conn)
		if err != nil {
			return err
		}
		if status != wire.OK {
			return wire.Error{Status: status}
		}
		fmt.Println("ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(settimeCmd)
}

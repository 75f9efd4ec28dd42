/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"unveil/internal/ipc"
	"unveil/internal/session"
)

const ctlTimeout = 5 * time.Second

func newCtlCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "ctl <command>",
		Short:     "Send one command to a running session",
		Long:      "Send one command to a running session: ping, about, status, open, toggle, hide or show.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ping", "about", "status", "open", "toggle", "hide", "show"},
		RunE: func(cmd *cobra.Command, args []string) error {
			socket := ctx.socketPath()
			command := strings.ToUpper(strings.TrimSpace(args[0]))

			reqCtx, cancel := context.WithTimeout(cmd.Context(), ctlTimeout)
			defer cancel()

			reply, err := ipc.Send(reqCtx, socket, command)
			if err != nil {
				if errors.Is(err, ipc.ErrRemote) {
					return err
				}
				return wrapDialError(err, socket)
			}

			out := cmd.OutOrStdout()
			if command == "STATUS" {
				var snap session.Snapshot
				if err := json.Unmarshal([]byte(reply), &snap); err != nil {
					return fmt.Errorf("decode status: %w", err)
				}
				fmt.Fprintln(out, renderStatus(snap))
				return nil
			}
			fmt.Fprintln(out, reply)
			return nil
		},
	}
}

/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"unveil/internal/countdown"
)

func newCountdownCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "countdown",
		Short: "Show the time left until the ceremony",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := cfg.Target()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			clock := ctx.clock

			fmt.Fprintf(out, "%s  %s  %s\n", cfg.Invitation.Couple(), cfg.Invitation.DateLine, target.Format("Mon 02 Jan 2006 15:04 MST"))

			if !watch {
				fmt.Fprintln(out, countdownLine(clock, target))
				if clock.Now().After(target) {
					fmt.Fprintln(out, "The day is here.")
				}
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine := countdown.New(clock, ctx.logger)
			states, err := engine.Start(runCtx, target)
			if err != nil {
				return err
			}
			defer engine.Stop()

			fmt.Fprint(out, countdownLine(clock, target))
			for st := range states {
				fmt.Fprintf(out, "\r%s", renderCountdown(st))
			}
			fmt.Fprintln(out)
			if engine.Expired() {
				fmt.Fprintln(out, "The day is here.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep counting down every second until the ceremony")
	return cmd
}

// countdownLine renders the time left at the clock's current instant; the
// watch loop prints it before the first tick arrives.
func countdownLine(clock clockwork.Clock, target time.Time) string {
	return renderCountdown(countdown.Compute(target.Sub(clock.Now())))
}

/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"unveil/internal/config"
	"unveil/internal/ipc"
	"unveil/internal/logging"
	"unveil/internal/session"
	"unveil/internal/visibility"
	"unveil/pkg/audioengine"
	"unveil/pkg/invite"
)

const promptRefresh = time.Second

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var noSocket bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run an interactive invitation session",
		Long: "Run an interactive invitation session. Type \"open\" to unveil the card and start the music.\n" +
			"SIGUSR1 hides the session (music pauses), SIGUSR2 shows it again.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), ctx, cfg, !noSocket)
		},
	}
	cmd.Flags().BoolVar(&noSocket, "no-socket", false, "Do not listen on the control socket")
	return cmd
}

var playCommands = []string{"open", "toggle", "hide", "show", "status", "card", "help", "quit"}

func runPlay(parent context.Context, cc *commandContext, cfg *config.Config, listen bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	target, err := cfg.Target()
	if err != nil {
		return err
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(playCommands))
	for _, c := range playCommands {
		items = append(items, readline.PcItem(c))
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "unveil> ",
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// log lines go through readline so the prompt is redrawn under them
	opts := cc.logOptions(rl.Stderr())
	if opts.Format == "" {
		opts.Format = "console"
	}
	log, err := logging.New(opts)
	if err != nil {
		return err
	}

	engine := audioengine.New(
		audioengine.WithLogger(log),
		audioengine.WithPassphrase(cfg.Playlist.Passphrase),
		audioengine.WithVolume(cfg.Playlist.VolumeDB),
	)
	defer engine.Close()

	vis := visibility.NewSource()
	sess, err := session.New(session.Options{
		Tracks:     cfg.Tracks(),
		Target:     target,
		Engine:     engine,
		Visibility: vis,
		Logger:     log,
	})
	if err != nil {
		return err
	}
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Close()

	go forwardVisibilitySignals(ctx, vis)

	if listen {
		startControlSocket(ctx, cc.socketPath(), sess, vis, cfg.Invitation, log)
	}

	go func() {
		ticker := time.NewTicker(promptRefresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				rl.Close()
				return
			case <-ticker.C:
				rl.SetPrompt(promptFor(sess.Snapshot()))
				rl.Refresh()
			}
		}
	}()

	out := rl.Stdout()
	fmt.Fprintf(out, "%s V.%s  %s\nThe invitation is sealed. Type \"open\" to unveil it.\n\n", appName, ipc.Version, cfg.Invitation.Couple())
	rl.SetPrompt(promptFor(sess.Snapshot()))

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if handleLine(sess, vis, cfg.Invitation, line, out) {
			return nil
		}
		rl.SetPrompt(promptFor(sess.Snapshot()))
	}
}

// handleLine runs one prompt command and reports whether to quit.
func handleLine(c ipc.Controls, vis ipc.Publisher, inv invite.Invitation, line string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
	case "open":
		wasOpen := c.Snapshot().Open
		c.Open()
		if !wasOpen {
			fmt.Fprintln(out, renderCard(inv))
		}
	case "toggle", "t":
		if !c.Snapshot().Open {
			fmt.Fprintln(out, "the invitation is still sealed; type \"open\" first")
			return false
		}
		c.TogglePlay()
	case "hide":
		vis.Publish(visibility.Hidden)
	case "show":
		vis.Publish(visibility.Visible)
	case "status":
		fmt.Fprintln(out, renderStatus(c.Snapshot()))
	case "card":
		if !c.Snapshot().Open {
			fmt.Fprintln(out, "the invitation is still sealed; type \"open\" first")
			return false
		}
		fmt.Fprintln(out, renderCard(inv))
	case "help", "?":
		fmt.Fprintln(out, "commands: "+strings.Join(playCommands, ", "))
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(out, "unknown command %q (try \"help\")\n", line)
	}
	return false
}

func forwardVisibilitySignals(ctx context.Context, vis *visibility.Source) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			if sig == syscall.SIGUSR1 {
				vis.Publish(visibility.Hidden)
			} else {
				vis.Publish(visibility.Visible)
			}
		}
	}
}

func startControlSocket(ctx context.Context, path string, sess *session.Session, vis *visibility.Source, inv invite.Invitation, log zerolog.Logger) {
	ln, err := ipc.Listen(path)
	if err != nil {
		log.Warn().Err(err).Msg("control socket disabled")
		return
	}
	about := fmt.Sprintf("%s V.%s %s", appName, ipc.Version, inv.Couple())
	srv := ipc.NewServer(sess, vis, about, log)
	go func() {
		if err := srv.Serve(ctx, ln); err != nil {
			log.Error().Err(err).Msg("control socket stopped")
		}
	}()
}

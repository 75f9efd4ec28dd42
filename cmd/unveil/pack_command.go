/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"unveil/pkg/audioengine"
	"unveil/pkg/invite"
)

type packRequest struct {
	Input      string
	Output     string
	Title      string
	Passphrase string
}

func newPackCommand(ctx *commandContext) *cobra.Command {
	var req packRequest
	var noPrompt bool
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Seal a 48 kHz wav into an encrypted " + invite.TrackExtension + " track",
		Long: "Seal a 48 kHz 16-bit wav into an encrypted " + invite.TrackExtension + " track.\n" +
			"Missing flags are asked for interactively unless --no-prompt is set.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if req.Passphrase == "" {
				req.Passphrase = cfg.Playlist.Passphrase
			}
			if !noPrompt && req.Input == "" {
				if err := runPackInterview(&req); err != nil {
					return err
				}
			}
			req.fillDefaults()
			if err := req.validate(); err != nil {
				return err
			}

			ctx.logger.Info().Str("input", req.Input).Str("output", req.Output).Msg("sealing track")
			res, err := audioengine.Seal(cmd.Context(), audioengine.SealRequest{
				Source:     req.Input,
				Dest:       req.Output,
				Title:      req.Title,
				Passphrase: req.Passphrase,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Track", "Frames", "Duration", "Size"}, [][]string{{
				req.Title,
				fmt.Sprintf("%d", res.Frames),
				res.Duration.Round(10 * time.Millisecond).String(),
				fmt.Sprintf("%d bytes", res.Bytes),
			}}))
			fmt.Fprintf(out, "sealed %s\n", res.Path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Input, "in", "i", "", "Source wav file")
	cmd.Flags().StringVarP(&req.Output, "out", "o", "", "Destination track (default: input with "+invite.TrackExtension+")")
	cmd.Flags().StringVarP(&req.Title, "title", "t", "", "Track title (default: input file name)")
	cmd.Flags().StringVarP(&req.Passphrase, "passphrase", "p", "", "Passphrase (default: playlist passphrase from config)")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Never ask for missing values")
	return cmd
}

func (r *packRequest) fillDefaults() {
	r.Input = strings.TrimSpace(r.Input)
	if r.Input == "" {
		return
	}
	base := strings.TrimSuffix(filepath.Base(r.Input), filepath.Ext(r.Input))
	if strings.TrimSpace(r.Output) == "" {
		r.Output = strings.TrimSuffix(r.Input, filepath.Ext(r.Input)) + invite.TrackExtension
	}
	if strings.TrimSpace(r.Title) == "" {
		r.Title = base
	}
}

func (r *packRequest) validate() error {
	var errs []error
	if r.Input == "" {
		errs = append(errs, errors.New("--in is required"))
	}
	if r.Passphrase == "" {
		errs = append(errs, errors.New("a passphrase is required (--passphrase or playlist.passphrase)"))
	}
	if r.Input != "" && filepath.Clean(r.Input) == filepath.Clean(r.Output) {
		errs = append(errs, errors.New("--out must differ from --in"))
	}
	return errors.Join(errs...)
}

func runPackInterview(req *packRequest) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: ">> "})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintf(rl.Stdout(), "\n%s pack\n", appName)
	if req.Input, err = ask(rl, "1. Source wav", req.Input); err != nil {
		return err
	}
	defOut := req.Output
	if defOut == "" && req.Input != "" {
		defOut = strings.TrimSuffix(req.Input, filepath.Ext(req.Input)) + invite.TrackExtension
	}
	if req.Output, err = ask(rl, "2. Destination", defOut); err != nil {
		return err
	}
	if req.Title, err = ask(rl, "3. Title", req.Title); err != nil {
		return err
	}
	if req.Passphrase == "" {
		pw, err := rl.ReadPassword("4. Passphrase: ")
		if err != nil {
			return err
		}
		req.Passphrase = strings.TrimSpace(string(pw))
	}
	return nil
}

func ask(rl *readline.Instance, prompt, def string) (string, error) {
	rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, def))
	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return "", errors.New("pack cancelled")
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

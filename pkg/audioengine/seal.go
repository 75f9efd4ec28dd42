/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"unveil/internal/container"
	"unveil/internal/security"
)

// SealRequest describes one wav to seal into a .unvl track.
type SealRequest struct {
	Source     string
	Dest       string
	Title      string
	Passphrase string
}

// SealResult summarises a sealed track.
type SealResult struct {
	Path     string
	Frames   int
	Duration time.Duration
	Bytes    int64
}

// Seal encodes req.Source to opus, encrypts every frame and writes the
// sealed track to req.Dest. A partially written file is removed on error.
func Seal(ctx context.Context, req SealRequest) (res SealResult, err error) {
	salt, err := security.NewSalt()
	if err != nil {
		return res, err
	}
	key, err := security.DeriveKey(req.Passphrase, salt)
	if err != nil {
		return res, err
	}
	sealer, err := security.NewSealer(key)
	if err != nil {
		return res, err
	}

	f, err := os.Create(req.Dest)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(req.Dest)
		}
	}()

	w, err := container.NewWriter(f, container.Header{Title: req.Title, Salt: salt})
	if err != nil {
		return res, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan []byte, 100)
	var writeErr error
	var writeWg sync.WaitGroup
	writeWg.Add(1)
	go func() {
		defer writeWg.Done()
		for frame := range frames {
			if writeErr != nil {
				continue
			}
			enc, err := sealer.Seal(frame)
			if err == nil {
				err = w.WriteFrame(enc)
			}
			if err != nil {
				writeErr = err
				cancel()
			}
		}
	}()

	dur, encErr := StreamEncodeWav(ctx, req.Source, frames)
	close(frames)
	writeWg.Wait()

	if writeErr != nil {
		return res, fmt.Errorf("write %s: %w", req.Dest, writeErr)
	}
	if encErr != nil {
		return res, fmt.Errorf("encode %s: %w", req.Source, encErr)
	}
	if err := w.Close(); err != nil {
		return res, err
	}

	info, err := f.Stat()
	if err != nil {
		return res, err
	}
	return SealResult{Path: req.Dest, Frames: w.Frames(), Duration: dur, Bytes: info.Size()}, nil
}

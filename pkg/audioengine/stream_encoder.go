/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hraban/opus"

	"unveil/pkg/invite"
)

// StreamEncodeWav encodes a 48 kHz 16-bit wav into 20 ms stereo opus
// frames sent on frames. Mono input is duplicated to both channels and
// the last frame is padded with silence. The caller owns frames.
func StreamEncodeWav(ctx context.Context, inputPath string, frames chan<- []byte) (time.Duration, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: not a valid wav file", inputPath)
	}
	if dec.SampleRate != invite.SampleRate || dec.BitDepth != 16 || dec.NumChans == 0 || dec.NumChans > 2 {
		return 0, fmt.Errorf("%s: need %d Hz 16-bit mono or stereo, got %d Hz %d-bit %d channels",
			inputPath, invite.SampleRate, dec.SampleRate, dec.BitDepth, dec.NumChans)
	}
	inChannels := int(dec.NumChans)

	enc, err := opus.NewEncoder(invite.SampleRate, invite.Channels, opus.AppAudio)
	if err != nil {
		return 0, err
	}

	pcmBuf := make([]int16, invite.FrameSize*invite.Channels)
	opusBuf := make([]byte, 1500)
	fill := 0

	// one second per read
	intBuf := &audio.IntBuffer{
		Data:   make([]int, invite.SampleRate*inChannels),
		Format: &audio.Format{NumChannels: inChannels, SampleRate: invite.SampleRate},
	}

	emit := func() error {
		n, err := enc.Encode(pcmBuf, opusBuf)
		if err != nil {
			return fmt.Errorf("opus encode: %w", err)
		}
		frameCopy := make([]byte, n)
		copy(frameCopy, opusBuf[:n])
		select {
		case frames <- frameCopy:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	totalSamples := 0
	for {
		n, err := dec.PCMBuffer(intBuf)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		if n == 0 {
			break
		}

		for i := 0; i+inChannels <= n; i += inChannels {
			left := int16(intBuf.Data[i])
			right := left
			if inChannels == 2 {
				right = int16(intBuf.Data[i+1])
			}
			pcmBuf[fill] = left
			pcmBuf[fill+1] = right
			fill += 2
			totalSamples++

			if fill == len(pcmBuf) {
				if err := emit(); err != nil {
					return 0, err
				}
				fill = 0
			}
		}

		if err != nil {
			break
		}
	}

	if fill > 0 {
		clear(pcmBuf[fill:])
		if err := emit(); err != nil {
			return 0, err
		}
	}

	duration := time.Duration(totalSamples) * time.Second / invite.SampleRate
	return duration, nil
}

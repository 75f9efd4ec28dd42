/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"github.com/hraban/opus"

	"unveil/pkg/invite"
)

// StreamDecoder turns opus frames back into stereo samples in [-1, 1].
type StreamDecoder struct {
	dec *opus.Decoder
	pcm []int16
}

func NewStreamDecoder() (*StreamDecoder, error) {
	d, err := opus.NewDecoder(invite.SampleRate, invite.Channels)
	if err != nil {
		return nil, err
	}
	return &StreamDecoder{dec: d, pcm: make([]int16, invite.MaxFrameLen*invite.Channels)}, nil
}

// DecodeFrame appends the decoded samples of one frame to dst.
func (sd *StreamDecoder) DecodeFrame(frame []byte, dst [][2]float64) ([][2]float64, error) {
	n, err := sd.dec.Decode(frame, sd.pcm)
	if err != nil {
		return dst, err
	}
	for i := 0; i < n; i++ {
		dst = append(dst, [2]float64{
			float64(sd.pcm[i*2]) / 32768.0,
			float64(sd.pcm[i*2+1]) / 32768.0,
		})
	}
	return dst, nil
}

/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"unveil/internal/container"
	"unveil/internal/security"
	"unveil/pkg/invite"
)

var (
	// ErrUnsupported is returned for sources with an unknown extension.
	ErrUnsupported = errors.New("unsupported source format")
	// ErrSealedKey is returned when the first frame of a sealed track does
	// not open, which almost always means the passphrase is wrong.
	ErrSealedKey = errors.New("sealed track does not open with this passphrase")
	// ErrEmptyTrack is returned for a sealed track without audio frames.
	ErrEmptyTrack = errors.New("sealed track has no frames")
)

// Open decodes a local source by extension: .mp3, .wav or a sealed .unvl
// track. The passphrase is only needed for sealed tracks.
func Open(url, passphrase string) (beep.StreamCloser, beep.Format, error) {
	path := strings.TrimPrefix(url, "file://")

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		f, err := os.Open(path)
		if err != nil {
			return nil, beep.Format{}, err
		}
		s, format, err := mp3.Decode(f)
		if err != nil {
			f.Close()
			return nil, beep.Format{}, fmt.Errorf("decode mp3 %s: %w", path, err)
		}
		return s, format, nil

	case ".wav":
		return openWav(path)

	case invite.TrackExtension:
		return openSealed(path, passphrase)

	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// wavStreamer streams PCM integers from a wav decoder, one second per read.
type wavStreamer struct {
	f        *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	pending  []int
	channels int
	scale    float64
	done     bool
	err      error
}

func openWav(path string) (beep.StreamCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: not a valid wav file", path)
	}
	if dec.NumChans == 0 || dec.NumChans > 2 || dec.BitDepth == 0 {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s: %d channels at %d bits not supported", path, dec.NumChans, dec.BitDepth)
	}

	channels := int(dec.NumChans)
	ws := &wavStreamer{
		f:   f,
		dec: dec,
		buf: &audio.IntBuffer{
			Data:   make([]int, int(dec.SampleRate)*channels),
			Format: &audio.Format{NumChannels: channels, SampleRate: int(dec.SampleRate)},
		},
		channels: channels,
		scale:    float64(int(1) << (dec.BitDepth - 1)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate),
		NumChannels: channels,
		Precision:   int(dec.BitDepth) / 8,
	}
	return ws, format, nil
}

func (w *wavStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(w.pending) < w.channels {
			if w.done || !w.fill() {
				break
			}
			continue
		}
		left := float64(w.pending[0]) / w.scale
		right := left
		if w.channels == 2 {
			right = float64(w.pending[1]) / w.scale
		}
		w.pending = w.pending[w.channels:]
		samples[filled] = [2]float64{left, right}
		filled++
	}
	return filled, filled > 0
}

func (w *wavStreamer) fill() bool {
	n, err := w.dec.PCMBuffer(w.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		w.err = err
		w.done = true
		return false
	}
	if n == 0 {
		w.done = true
		return false
	}
	w.pending = w.buf.Data[:n]
	return true
}

func (w *wavStreamer) Err() error { return w.err }
func (w *wavStreamer) Close() error { return w.f.Close() }

// sealedStreamer decrypts and decodes frames of a .unvl track lazily.
// The first frame is checked when the track is opened; later frames that
// fail to open or decode are skipped.
type sealedStreamer struct {
	f       *os.File
	track   *container.Reader
	sealer  *security.Sealer
	dec     *StreamDecoder
	buffer  [][2]float64
	skipped int
	err     error
}

func openSealed(path, passphrase string) (beep.StreamCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, err
	}
	s, err := newSealedStreamer(f, passphrase)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("open sealed track %s: %w", path, err)
	}
	return s, beep.Format{
		SampleRate:  invite.SampleRate,
		NumChannels: invite.Channels,
		Precision:   2,
	}, nil
}

func newSealedStreamer(f *os.File, passphrase string) (*sealedStreamer, error) {
	track, err := container.NewReader(f)
	if err != nil {
		return nil, err
	}
	key, err := security.DeriveKey(passphrase, track.Salt)
	if err != nil {
		return nil, err
	}
	sealer, err := security.NewSealer(key)
	if err != nil {
		return nil, err
	}
	dec, err := NewStreamDecoder()
	if err != nil {
		return nil, err
	}
	l := &sealedStreamer{f: f, track: track, sealer: sealer, dec: dec}

	frame, err := track.ReadFrame()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTrack
	}
	if err != nil {
		return nil, err
	}
	plain, err := sealer.Open(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedKey, err)
	}
	if l.buffer, err = dec.DecodeFrame(plain, nil); err != nil {
		return nil, fmt.Errorf("decode first frame: %w", err)
	}
	return l, nil
}

func (l *sealedStreamer) Stream(samples [][2]float64) (int, bool) {
	filled := 0

	for filled < len(samples) {
		if len(l.buffer) == 0 {
			frame, err := l.track.ReadFrame()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					l.err = err
				}
				break
			}
			plain, err := l.sealer.Open(frame)
			if err != nil {
				l.skipped++
				continue
			}
			l.buffer, err = l.dec.DecodeFrame(plain, l.buffer[:0])
			if err != nil {
				l.skipped++
				continue
			}
		}

		n := copy(samples[filled:], l.buffer)
		l.buffer = l.buffer[n:]
		filled += n
	}

	return filled, filled > 0
}

func (l *sealedStreamer) Err() error { return l.err }
func (l *sealedStreamer) Close() error { return l.f.Close() }

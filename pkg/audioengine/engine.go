/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package audioengine plays playlist sources through the local sound card.
package audioengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/rs/zerolog"

	"unveil/pkg/invite"
)

// ErrNoSource is returned by Play before any source was set.
var ErrNoSource = errors.New("no source loaded")

// Opener decodes a source URL into a stream.
type Opener func(url, passphrase string) (beep.StreamCloser, beep.Format, error)

// Engine is a single-stream player over beep. It satisfies the playback
// MediaEngine and EndedNotifier contracts.
type Engine struct {
	out        Output
	open       Opener
	log        zerolog.Logger
	passphrase string
	volumeDB   float64
	rate       beep.SampleRate

	initOnce sync.Once
	initErr  error
	ready    atomic.Bool

	mu       sync.Mutex
	source   string
	stream   beep.StreamCloser
	ctrl     *beep.Ctrl
	gen      uint64
	handlers map[int]func()
	nextID   int
	closed   bool
}

type Option func(*Engine)

func WithOutput(o Output) Option { return func(e *Engine) { e.out = o } }

func WithOpener(fn Opener) Option { return func(e *Engine) { e.open = fn } }

func WithLogger(l zerolog.Logger) Option { return func(e *Engine) { e.log = l } }

// WithPassphrase sets the passphrase used to open sealed tracks.
func WithPassphrase(p string) Option { return func(e *Engine) { e.passphrase = p } }

// WithVolume sets the gain exponent applied on top of every source (base 2).
func WithVolume(db float64) Option { return func(e *Engine) { e.volumeDB = db } }

func New(opts ...Option) *Engine {
	e := &Engine{
		out:      speakerOutput{},
		open:     Open,
		log:      zerolog.Nop(),
		rate:     beep.SampleRate(invite.SampleRate),
		handlers: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str("component", "audioengine").Logger()
	return e
}

// SetSource selects the source for the next Play. A different URL drops
// the current stream.
func (e *Engine) SetSource(url string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if url == e.source {
		return
	}
	e.source = url
	e.releaseLocked()
	e.log.Debug().Str("source", url).Msg("source set")
}

// Play resumes the current stream, or opens the source and starts it.
func (e *Engine) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.init(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.New("audioengine: closed")
	}
	if e.source == "" {
		return ErrNoSource
	}

	if e.ctrl != nil {
		e.out.Lock()
		e.ctrl.Paused = false
		e.out.Unlock()
		return nil
	}

	stream, format, err := e.open(e.source, e.passphrase)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.source, err)
	}
	if err := ctx.Err(); err != nil {
		stream.Close()
		return err
	}

	var s beep.Streamer = stream
	if format.SampleRate != e.rate {
		s = beep.Resample(4, format.SampleRate, e.rate, s)
	}
	vol := &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   e.volumeDB,
	}
	ctrl := &beep.Ctrl{Streamer: vol}

	e.gen++
	gen := e.gen
	e.stream = stream
	e.ctrl = ctrl

	e.out.Clear()
	e.out.Play(beep.Seq(ctrl, beep.Callback(func() {
		// runs on the mixer goroutine with the output locked
		go e.finished(gen)
	})))

	e.log.Info().Str("source", e.source).Int("rate", int(format.SampleRate)).Msg("stream started")
	return nil
}

func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return
	}
	e.out.Lock()
	e.ctrl.Paused = true
	e.out.Unlock()
}

// OnEnded registers fn to run each time a stream plays to its end.
func (e *Engine) OnEnded(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.handlers, id)
		})
	}
}

// Close stops playback and releases the output device.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.releaseLocked()
	e.mu.Unlock()

	if e.ready.Load() {
		e.out.Close()
	}
}

func (e *Engine) init() error {
	e.initOnce.Do(func() {
		e.initErr = e.out.Init(e.rate, e.rate.N(100*time.Millisecond))
		if e.initErr != nil {
			e.initErr = fmt.Errorf("init audio output: %w", e.initErr)
			return
		}
		e.ready.Store(true)
	})
	return e.initErr
}

func (e *Engine) finished(gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.ctrl == nil {
		e.mu.Unlock()
		return
	}
	source := e.source
	e.releaseLocked()
	handlers := make([]func(), 0, len(e.handlers))
	for _, fn := range e.handlers {
		handlers = append(handlers, fn)
	}
	e.mu.Unlock()

	e.log.Debug().Str("source", source).Msg("stream ended")
	for _, fn := range handlers {
		fn()
	}
}

// releaseLocked drops the current stream and invalidates its end callback.
func (e *Engine) releaseLocked() {
	e.gen++
	if e.ctrl == nil {
		return
	}
	e.out.Clear()
	if err := e.stream.Close(); err != nil {
		e.log.Warn().Err(err).Msg("close stream")
	}
	e.stream = nil
	e.ctrl = nil
}

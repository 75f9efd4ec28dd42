/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package countdown computes the time left until the ceremony and
// republishes it once per second until the target instant passes.
package countdown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	msPerDay    = int64(24 * time.Hour / time.Millisecond)
	msPerHour   = int64(time.Hour / time.Millisecond)
	msPerMinute = int64(time.Minute / time.Millisecond)
	msPerSecond = int64(time.Second / time.Millisecond)

	// TickInterval is the countdown cadence.
	TickInterval = time.Second
)

// ErrAlreadyStarted is returned when Start is called more than once.
var ErrAlreadyStarted = errors.New("countdown already started")

// State is the remaining time split into display units. Values are never negative.
type State struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// IsZero reports whether every unit is zero.
func (s State) IsZero() bool {
	return s == State{}
}

func (s State) String() string {
	return fmt.Sprintf("%dd %02d:%02d:%02d", s.Days, s.Hours, s.Minutes, s.Seconds)
}

// Compute splits a remaining duration into days, hours, minutes and seconds
// using whole milliseconds. Negative input yields the zero State.
func Compute(remaining time.Duration) State {
	ms := remaining.Milliseconds()
	if ms < 0 {
		return State{}
	}
	return State{
		Days:    int(ms / msPerDay),
		Hours:   int(ms % msPerDay / msPerHour),
		Minutes: int(ms % msPerHour / msPerMinute),
		Seconds: int(ms % msPerMinute / msPerSecond),
	}
}

// Engine owns the countdown state for one session.
type Engine struct {
	clock clockwork.Clock
	log   zerolog.Logger

	mu      sync.Mutex
	current State
	started bool
	expired bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an engine reading time from clock. A nil clock uses the wall clock.
func New(clock clockwork.Clock, logger zerolog.Logger) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		clock: clock,
		log:   logger.With().Str("component", "countdown").Logger(),
		done:  make(chan struct{}),
	}
}

// Start begins ticking toward target and returns the stream of states.
// The stream is closed when the target passes, ctx is cancelled or Stop
// is called. Slow readers only ever see the most recent state.
func (e *Engine) Start(ctx context.Context, target time.Time) (<-chan State, error) {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	e.started = true
	ctx, e.cancel = context.WithCancel(ctx)
	e.mu.Unlock()

	out := make(chan State, 1)

	if target.IsZero() {
		e.log.Warn().Msg("no target instant configured, countdown frozen at zero")
		e.expire()
		close(out)
		close(e.done)
		return out, nil
	}

	go e.run(ctx, target, out)

	e.log.Debug().Time("target", target).Msg("countdown started")
	return out, nil
}

func (e *Engine) run(ctx context.Context, target time.Time, out chan State) {
	ticker := e.clock.NewTicker(TickInterval)
	defer func() {
		ticker.Stop()
		close(out)
		close(e.done)
	}()

	for {
		select {
		case <-ctx.Done():
			e.log.Debug().Msg("countdown stopped")
			return
		case <-ticker.Chan():
			remaining := target.Sub(e.clock.Now())
			if remaining < 0 {
				e.expire()
				e.log.Info().Time("target", target).Msg("target instant reached, countdown frozen")
				return
			}

			st := Compute(remaining)
			e.mu.Lock()
			e.current = st
			e.mu.Unlock()
			publishLatest(out, st)
		}
	}
}

// publishLatest replaces an unread state instead of blocking the ticker.
func publishLatest(out chan State, st State) {
	select {
	case out <- st:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	out <- st
}

func (e *Engine) expire() {
	e.mu.Lock()
	e.expired = true
	e.mu.Unlock()
}

// Current returns the latest computed state, frozen once the target passed.
func (e *Engine) Current() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Expired reports whether ticking stopped because the target passed.
func (e *Engine) Expired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expired
}

// Done is closed once the tick loop has exited.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Stop cancels ticking and waits for the loop to exit. It is a no-op
// if the engine was never started.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel := e.cancel
	e.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-e.done
}

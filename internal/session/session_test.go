/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"unveil/internal/countdown"
	"unveil/internal/playback"
	"unveil/internal/visibility"
)

var ceremony = time.Date(2026, time.March, 7, 19, 0, 0, 0, time.UTC)

type stubEngine struct {
	mu       sync.Mutex
	plays    int
	handlers map[int]func()
	nextID   int
}

func newStubEngine() *stubEngine {
	return &stubEngine{handlers: make(map[int]func())}
}

func (e *stubEngine) SetSource(string) {}

func (e *stubEngine) Play(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.plays++
	return nil
}

func (e *stubEngine) Pause() {}

func (e *stubEngine) OnEnded(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.handlers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.handlers, id)
	}
}

func (e *stubEngine) finish() {
	e.mu.Lock()
	handlers := make([]func(), 0, len(e.handlers))
	for _, fn := range e.handlers {
		handlers = append(handlers, fn)
	}
	e.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (e *stubEngine) registered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

func newSession(t *testing.T, eng *stubEngine, vis *visibility.Source, clock clockwork.Clock) *Session {
	t.Helper()
	opts := Options{
		Tracks: []playback.Track{
			{Title: "Din Shagna Da", URL: "a.mp3"},
			{Title: "Chhaap Tilak", URL: "b.mp3"},
		},
		Target: ceremony,
		Engine: eng,
		Clock:  clock,
		Logger: zerolog.Nop(),
	}
	if vis != nil {
		opts.Visibility = vis
	}
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestSessionFlow(t *testing.T) {
	eng := newStubEngine()
	vis := visibility.NewSource()
	s := newSession(t, eng, vis, clockwork.NewFakeClockAt(ceremony.Add(-time.Hour)))
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	s.TogglePlay()
	if snap := s.Snapshot(); snap.Open || snap.Playback.Playing {
		t.Fatalf("toggle before open changed state: %+v", snap)
	}

	s.Open()
	s.Player().Wait()
	snap := s.Snapshot()
	if !snap.Open || !snap.Playback.Playing || snap.Track.Title != "Din Shagna Da" {
		t.Fatalf("unexpected snapshot after open: %+v", snap)
	}

	eng.finish()
	if got := s.Snapshot().Track.Title; got != "Chhaap Tilak" {
		t.Fatalf("expected advance on track end, got %q", got)
	}

	vis.Publish(visibility.Hidden)
	if st := s.Snapshot().Playback; st.Playing || !st.WasPlayingBeforeHidden {
		t.Fatalf("unexpected state after hide: %+v", st)
	}
	vis.Publish(visibility.Visible)
	if st := s.Snapshot().Playback; !st.Playing || st.WasPlayingBeforeHidden {
		t.Fatalf("unexpected state after show: %+v", st)
	}
}

func TestHiddenBeforeOpenNeverPlays(t *testing.T) {
	eng := newStubEngine()
	vis := visibility.NewSource()
	s := newSession(t, eng, vis, clockwork.NewFakeClockAt(ceremony.Add(-time.Hour)))
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	vis.Publish(visibility.Hidden)
	vis.Publish(visibility.Visible)
	s.Player().Wait()

	if s.Snapshot().Playback.Playing {
		t.Fatal("visibility round-trip must not start music before unveil")
	}
	eng.mu.Lock()
	defer eng.mu.Unlock()
	if eng.plays != 0 {
		t.Fatalf("expected no plays, got %d", eng.plays)
	}
}

func TestStartTwice(t *testing.T) {
	s := newSession(t, newStubEngine(), nil, clockwork.NewFakeClockAt(ceremony.Add(-time.Hour)))
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestStartAfterClose(t *testing.T) {
	s := newSession(t, newStubEngine(), nil, clockwork.NewFakeClock())
	s.Close()
	if err := s.Start(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestCloseDeregistersHandlers(t *testing.T) {
	eng := newStubEngine()
	vis := visibility.NewSource()

	for i := 0; i < 3; i++ {
		s := newSession(t, eng, vis, clockwork.NewFakeClockAt(ceremony.Add(-time.Hour)))
		if err := s.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		s.Open()
		if eng.registered() != 1 || vis.Subscribers() != 1 {
			t.Fatalf("cycle %d: expected one handler each, got ended=%d visibility=%d", i, eng.registered(), vis.Subscribers())
		}
		s.Close()
		s.Close()

		if eng.registered() != 0 || vis.Subscribers() != 0 {
			t.Fatalf("cycle %d: handlers leaked after Close", i)
		}
		if s.Countdown() == nil {
			t.Fatal("expected a countdown stream after Start")
		}
		if _, ok := <-s.Countdown(); ok {
			t.Fatal("countdown stream should be closed after Close")
		}

		eng.finish()
		vis.Publish(visibility.Hidden)
		vis.Publish(visibility.Visible)
		if got := s.Snapshot().Playback.CurrentTrack; got != 0 {
			t.Fatalf("cycle %d: notification reached a closed session", i)
		}
	}
}

func TestSnapshotCarriesCountdown(t *testing.T) {
	fc := clockwork.NewFakeClockAt(ceremony.Add(-72*time.Hour - time.Second))
	s := newSession(t, newStubEngine(), nil, fc)
	defer s.Close()
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := fc.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	fc.Advance(time.Second)

	select {
	case st := <-s.Countdown():
		if st != (countdown.State{Days: 3}) {
			t.Fatalf("unexpected countdown %+v", st)
		}
	case <-ctx.Done():
		t.Fatal("no countdown state")
	}
	if s.Snapshot().Countdown != (countdown.State{Days: 3}) {
		t.Fatalf("snapshot countdown = %+v", s.Snapshot().Countdown)
	}
}

/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package session wires the gate, playback controller and countdown of
// one invitation viewing, and owns the registration of the notifications
// that drive them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"unveil/internal/countdown"
	"unveil/internal/gate"
	"unveil/internal/playback"
	"unveil/internal/visibility"
)

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrClosed         = errors.New("session closed")
)

// VisibilitySource is where foreground/background changes come from.
type VisibilitySource interface {
	Subscribe(fn func(visibility.State)) (cancel func())
}

// Options configures a Session. Ended and Visibility are optional; when
// Ended is nil and Engine also implements playback.EndedNotifier, the
// engine is used.
type Options struct {
	Tracks     []playback.Track
	Target     time.Time
	Engine     playback.MediaEngine
	Ended      playback.EndedNotifier
	Visibility VisibilitySource
	Clock      clockwork.Clock
	Logger     zerolog.Logger
}

// Snapshot is everything the presentation layer reads each frame.
type Snapshot struct {
	Open       bool            `json:"open"`
	Playback   playback.State  `json:"playback"`
	Track      playback.Track  `json:"track"`
	TrackCount int             `json:"track_count"`
	Countdown  countdown.State `json:"countdown"`
	Expired    bool            `json:"countdown_expired"`
}

// Session is one viewing of the invitation.
type Session struct {
	log        zerolog.Logger
	target     time.Time
	gate       *gate.Gate
	player     *playback.Controller
	countdown  *countdown.Engine
	ended      playback.EndedNotifier
	visibility VisibilitySource

	mu         sync.Mutex
	started    bool
	closed     bool
	states     <-chan countdown.State
	unregister []func()
}

// New builds a closed, not yet started session.
func New(opts Options) (*Session, error) {
	logger := opts.Logger.With().Str("component", "session").Logger()

	g := gate.New()
	player, err := playback.New(opts.Engine, g, opts.Tracks, playback.WithLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("build playback: %w", err)
	}

	ended := opts.Ended
	if ended == nil {
		if n, ok := opts.Engine.(playback.EndedNotifier); ok {
			ended = n
		}
	}

	return &Session{
		log:        logger,
		target:     opts.Target,
		gate:       g,
		player:     player,
		countdown:  countdown.New(opts.Clock, opts.Logger),
		ended:      ended,
		visibility: opts.Visibility,
	}, nil
}

// Start begins the countdown and registers the track-ended and
// visibility handlers. It may be called once.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	states, err := s.countdown.Start(ctx, s.target)
	if err != nil {
		return fmt.Errorf("start countdown: %w", err)
	}
	s.states = states
	s.started = true

	if s.ended != nil {
		s.unregister = append(s.unregister, s.ended.OnEnded(s.player.OnTrackEnded))
	}
	if s.visibility != nil {
		s.unregister = append(s.unregister, s.visibility.Subscribe(s.onVisibility))
	}

	s.log.Info().
		Time("target", s.target).
		Int("tracks", len(s.player.Tracks())).
		Msg("session started")
	return nil
}

func (s *Session) onVisibility(st visibility.State) {
	s.log.Debug().Stringer("visibility", st).Msg("visibility changed")
	switch st {
	case visibility.Hidden:
		s.player.OnTabHidden()
	case visibility.Visible:
		s.player.OnTabVisible()
	}
}

// Close deregisters every handler, stops the countdown and silences
// playback. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unregister := s.unregister
	s.unregister = nil
	s.mu.Unlock()

	for _, fn := range unregister {
		fn()
	}
	s.countdown.Stop()
	s.player.Close()
	s.log.Info().Msg("session closed")
}

// Open unveils the invitation and starts the music.
func (s *Session) Open() {
	s.player.Open()
}

// TogglePlay pauses or resumes the music once the invitation is open.
func (s *Session) TogglePlay() {
	s.player.TogglePlay()
}

// Countdown returns the countdown stream, or nil before Start.
func (s *Session) Countdown() <-chan countdown.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states
}

// Player exposes the playback controller.
func (s *Session) Player() *playback.Controller {
	return s.player
}

// Target is the instant the countdown runs toward.
func (s *Session) Target() time.Time {
	return s.target
}

// Snapshot returns a consistent-enough view for rendering; each part is
// read under its owner's lock.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Open:       s.gate.IsOpen(),
		Playback:   s.player.State(),
		Track:      s.player.CurrentTrack(),
		TrackCount: len(s.player.Tracks()),
		Countdown:  s.countdown.Current(),
		Expired:    s.countdown.Expired(),
	}
}

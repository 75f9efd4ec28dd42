/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package playback owns the background-music lifecycle: which track is
// active, whether it should be playing, and how that reacts to the
// unveil gate, track endings and the page being hidden or shown.
package playback

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"unveil/internal/gate"
)

// Controller is the single authority over PlaybackState. Every exported
// method takes the state lock, so notifications arriving from different
// goroutines are applied one at a time.
type Controller struct {
	engine MediaEngine
	gate   *gate.Gate
	tracks []Track
	log    zerolog.Logger

	mu     sync.Mutex
	state  State
	seq    uint64
	closed bool

	disp   *dispatcher
	cancel context.CancelFunc
}

// Option customises a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// New builds a controller over a non-empty playlist and loads the first
// track into the engine.
func New(engine MediaEngine, g *gate.Gate, tracks []Track, opts ...Option) (*Controller, error) {
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}
	if engine == nil {
		return nil, errors.New("playback: nil media engine")
	}
	if g == nil {
		g = gate.New()
	}

	c := &Controller{
		engine: engine,
		gate:   g,
		tracks: append([]Track(nil), tracks...),
		log:    zerolog.Nop(),
		disp:   newDispatcher(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "playback").Logger()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go c.disp.run(ctx, c.exec)

	c.disp.enqueue(command{kind: cmdLoad, url: c.tracks[0].URL, reason: "initial"})
	return c, nil
}

// Open unveils the invitation and starts the current track. Only the
// first call has any effect.
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if !c.gate.Open() {
		c.log.Debug().Msg("gate already open")
		return
	}
	c.log.Info().Str("track", c.tracks[c.state.CurrentTrack].Title).Msg("gate opened")
	c.state.Playing = true
	c.playLocked("unveil")
}

// TogglePlay pauses or resumes playback. It does nothing before the gate opens.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.gate.IsOpen() {
		return
	}
	if c.state.Playing {
		c.state.Playing = false
		c.pauseLocked("toggle")
		return
	}
	c.state.Playing = true
	c.playLocked("toggle")
}

// OnTrackEnded advances to the next track, wrapping to the first, and
// keeps playing if playback was active.
func (c *Controller) OnTrackEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.CurrentTrack = (c.state.CurrentTrack + 1) % len(c.tracks)
	track := c.tracks[c.state.CurrentTrack]
	c.disp.enqueue(command{kind: cmdLoad, url: track.URL, reason: "track ended"})

	c.log.Info().
		Int("index", c.state.CurrentTrack).
		Str("track", track.Title).
		Msg("advanced to next track")

	if c.gate.IsOpen() && c.state.Playing {
		c.playLocked("track change")
	}
}

// OnTabHidden pauses playback and remembers that it should resume.
func (c *Controller) OnTabHidden() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.Playing {
		return
	}
	c.state.WasPlayingBeforeHidden = true
	c.state.Playing = false
	c.pauseLocked("hidden")
}

// OnTabVisible resumes playback paused by OnTabHidden. The flag cannot be
// set before the gate opens, but the gate is checked regardless so a
// visibility round-trip never starts music on a closed invitation.
func (c *Controller) OnTabVisible() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.state.WasPlayingBeforeHidden || !c.gate.IsOpen() {
		return
	}
	c.state.WasPlayingBeforeHidden = false
	c.state.Playing = true
	c.playLocked("visible")
}

// State returns a copy of the playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentTrack returns the active playlist entry.
func (c *Controller) CurrentTrack() Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracks[c.state.CurrentTrack]
}

// Tracks returns a copy of the playlist.
func (c *Controller) Tracks() []Track {
	return append([]Track(nil), c.tracks...)
}

// Gate exposes the gate the controller checks before playing.
func (c *Controller) Gate() *gate.Gate {
	return c.gate
}

// Wait blocks until every engine command issued so far has resolved.
func (c *Controller) Wait() {
	c.disp.wait()
}

// Close cancels in-flight plays, stops the dispatcher and silences the engine.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.seq++
	c.mu.Unlock()

	c.cancel()
	<-c.disp.done
	c.engine.Pause()
	c.log.Debug().Msg("playback closed")
}

// playLocked queues a play for the current source. It must be called with c.mu held.
func (c *Controller) playLocked(reason string) {
	c.seq++
	c.disp.enqueue(command{kind: cmdPlay, seq: c.seq, reason: reason})
}

// pauseLocked queues a pause, superseding any play still waiting in the queue.
func (c *Controller) pauseLocked(reason string) {
	c.seq++
	c.disp.enqueue(command{kind: cmdPause, seq: c.seq, reason: reason})
}

func (c *Controller) exec(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdLoad:
		c.engine.SetSource(cmd.url)
	case cmdPause:
		c.engine.Pause()
	case cmdPlay:
		if c.stale(cmd.seq) {
			c.log.Debug().Str("reason", cmd.reason).Msg("dropping superseded play")
			return
		}
		if err := c.engine.Play(ctx); err != nil {
			c.playFailed(cmd, err)
			return
		}
		c.log.Debug().Str("reason", cmd.reason).Msg("playback started")
	}
}

func (c *Controller) stale(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq != c.seq
}

// playFailed records a failed play. Playing drops to false unless a newer
// command has already replaced the one that failed.
func (c *Controller) playFailed(cmd command, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.log.Warn().
		Err(err).
		Str("reason", cmd.reason).
		Str("track", c.tracks[c.state.CurrentTrack].Title).
		Msg("play failed")

	if cmd.seq == c.seq {
		c.state.Playing = false
	}
}

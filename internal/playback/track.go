/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import (
	"context"
	"errors"
)

// ErrNoTracks is returned when a controller is built with an empty playlist.
var ErrNoTracks = errors.New("playlist has no tracks")

// Track is one entry of the background playlist.
type Track struct {
	Title string `json:"title" toml:"title"`
	URL   string `json:"url" toml:"url"`
}

// State is the playback state owned by the controller.
type State struct {
	CurrentTrack           int  `json:"current_track"`
	Playing                bool `json:"playing"`
	WasPlayingBeforeHidden bool `json:"was_playing_before_hidden"`
}

// MediaEngine plays the active source. Play may block until audio starts
// and can fail (missing file, decode error, output device refused);
// Pause takes effect immediately.
type MediaEngine interface {
	SetSource(url string)
	Play(ctx context.Context) error
	Pause()
}

// EndedNotifier reports when the active source played to its end.
// OnEnded returns a func that deregisters the handler.
type EndedNotifier interface {
	OnEnded(fn func()) (unregister func())
}

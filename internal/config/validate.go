/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package config

import (
	"errors"
	"fmt"

	"unveil/internal/logging"
)

const (
	minVolumeDB = -10
	maxVolumeDB = 5
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks the configuration for values the session cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Playlist.Tracks) == 0 {
		errs = append(errs, errors.New("playlist: at least one track is required"))
	}
	for i, t := range c.Playlist.Tracks {
		if t.URL == "" {
			errs = append(errs, fmt.Errorf("playlist: track %d has no url", i))
		}
		if t.Title == "" {
			errs = append(errs, fmt.Errorf("playlist: track %d has no title", i))
		}
	}
	if c.Playlist.VolumeDB < minVolumeDB || c.Playlist.VolumeDB > maxVolumeDB {
		errs = append(errs, fmt.Errorf("playlist: volume_db %.1f outside [%d, %d]", c.Playlist.VolumeDB, minVolumeDB, maxVolumeDB))
	}
	if _, err := c.Target(); err != nil {
		errs = append(errs, err)
	}
	if c.Control.Socket == "" {
		errs = append(errs, errors.New("control: socket path is required"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log format: unsupported value %q", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

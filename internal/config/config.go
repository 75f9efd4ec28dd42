/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package config loads the invitation settings from TOML, with .env and
// environment overrides for the values that differ per machine.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"unveil/internal/playback"
	"unveil/pkg/invite"
)

// Countdown holds the ceremony instant.
type Countdown struct {
	Target   string `toml:"target"`
	Timezone string `toml:"timezone"`
}

// Playlist holds the background music.
type Playlist struct {
	BaseDir    string           `toml:"base_dir"`
	VolumeDB   float64          `toml:"volume_db"`
	Passphrase string           `toml:"passphrase"`
	Tracks     []playback.Track `toml:"tracks"`
}

// Control holds the control socket settings.
type Control struct {
	Socket string `toml:"socket"`
}

// Logging holds logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Invitation invite.Invitation `toml:"invitation"`
	Countdown  Countdown         `toml:"countdown"`
	Playlist   Playlist          `toml:"playlist"`
	Control    Control           `toml:"control"`
	Logging    Logging           `toml:"logging"`
}

// Load reads path (or the default location when empty), applies .env and
// environment overrides, normalizes paths and validates the result. It
// reports the resolved path and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	exists := false

	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		exists = true
		// Lists decode by appending, so start them empty and refill the
		// ones the file leaves out.
		cfg.Playlist.Tracks = nil
		cfg.Invitation.Events = nil
		cfg.Invitation.Hosts = nil
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, exists, fmt.Errorf("parse config %s: %w", resolved, err)
		}
		cfg.fillDefaultLists()
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, resolved, exists, fmt.Errorf("read config %s: %w", resolved, err)
	}

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return nil, resolved, exists, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return &cfg, resolved, exists, nil
}

// Target parses the countdown target in the configured time zone.
func (c *Config) Target() (time.Time, error) {
	loc := time.Local
	if tz := strings.TrimSpace(c.Countdown.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("countdown timezone %q: %w", tz, err)
		}
		loc = l
	}
	t, err := time.ParseInLocation(targetLayout, strings.TrimSpace(c.Countdown.Target), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("countdown target %q: %w", c.Countdown.Target, err)
	}
	return t, nil
}

// Tracks returns the playlist with relative URLs resolved against BaseDir.
func (c *Config) Tracks() []playback.Track {
	out := make([]playback.Track, len(c.Playlist.Tracks))
	for i, t := range c.Playlist.Tracks {
		out[i] = t
		if c.Playlist.BaseDir != "" && !filepath.IsAbs(t.URL) && !strings.Contains(t.URL, "://") {
			out[i].URL = filepath.Join(c.Playlist.BaseDir, t.URL)
		}
	}
	return out
}

// Encode renders cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() (string, error) {
	return expandPath(defaultConfigPath)
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = os.Getenv(envConfig)
	}
	if path == "" {
		return DefaultPath()
	}
	return expandPath(path)
}

func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

func (c *Config) fillDefaultLists() {
	def := Default()
	if len(c.Playlist.Tracks) == 0 {
		c.Playlist.Tracks = def.Playlist.Tracks
	}
	if len(c.Invitation.Events) == 0 {
		c.Invitation.Events = def.Invitation.Events
	}
	if len(c.Invitation.Hosts) == 0 {
		c.Invitation.Hosts = def.Invitation.Hosts
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envTarget); v != "" {
		c.Countdown.Target = v
	}
	if v := os.Getenv(envTimezone); v != "" {
		c.Countdown.Timezone = v
	}
	if v := os.Getenv(envPassphrase); v != "" {
		c.Playlist.Passphrase = v
	}
	if v := os.Getenv(envSocket); v != "" {
		c.Control.Socket = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envLogFormat); v != "" {
		c.Logging.Format = v
	}
}

func (c *Config) normalize() error {
	var err error
	if c.Playlist.BaseDir, err = expandPath(c.Playlist.BaseDir); err != nil {
		return fmt.Errorf("playlist base_dir: %w", err)
	}
	if c.Control.Socket, err = expandPath(c.Control.Socket); err != nil {
		return fmt.Errorf("control socket: %w", err)
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	for i := range c.Playlist.Tracks {
		c.Playlist.Tracks[i].Title = strings.TrimSpace(c.Playlist.Tracks[i].Title)
		c.Playlist.Tracks[i].URL = strings.TrimSpace(c.Playlist.Tracks[i].URL)
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Clean(path), nil
}

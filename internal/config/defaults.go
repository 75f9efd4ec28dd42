/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package config

import (
	"unveil/internal/playback"
	"unveil/pkg/invite"
)

const (
	targetLayout = "2006-01-02T15:04:05"

	defaultConfigPath = "~/.config/unveil/config.toml"
	defaultTarget     = "2026-03-07T19:00:00"
	defaultTimezone   = "Asia/Kolkata"
	defaultBaseDir    = "~/.local/share/unveil/audio"
	defaultSocket     = "/tmp/unveil.sock"
	defaultLogLevel   = "info"

	envConfig     = "UNVEIL_CONFIG"
	envTarget     = "UNVEIL_TARGET"
	envTimezone   = "UNVEIL_TIMEZONE"
	envPassphrase = "UNVEIL_TRACK_PASSPHRASE"
	envSocket     = "UNVEIL_SOCKET"
	envLogLevel   = "UNVEIL_LOG_LEVEL"
	envLogFormat  = "UNVEIL_LOG_FORMAT"
)

func defaultTracks() []playback.Track {
	return []playback.Track{
		{Title: "Din Shagna Da", URL: "din-shagna-da-x-kabira.mp3"},
		{Title: "Chhaap Tilak", URL: "Chhaap-Tilak.mp3"},
		{Title: "Tenu Leke", URL: "Tenu-Leke.mp3"},
		{Title: "Mast Magan", URL: "mast-magan.mp3"},
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Invitation: invite.Default(),
		Countdown: Countdown{
			Target:   defaultTarget,
			Timezone: defaultTimezone,
		},
		Playlist: Playlist{
			BaseDir: defaultBaseDir,
			Tracks:  defaultTracks(),
		},
		Control: Control{
			Socket: defaultSocket,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}

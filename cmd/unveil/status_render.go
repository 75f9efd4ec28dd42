/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"fmt"

	"unveil/internal/session"
)

func nowPlaying(snap session.Snapshot) string {
	switch {
	case !snap.Open:
		return "sealed"
	case snap.Playback.Playing:
		return fmt.Sprintf("♪ %s (%d/%d)", snap.Track.Title, snap.Playback.CurrentTrack+1, snap.TrackCount)
	default:
		return fmt.Sprintf("paused: %s", snap.Track.Title)
	}
}

func promptFor(snap session.Snapshot) string {
	cd := snap.Countdown.String()
	if snap.Expired {
		cd = "today"
	}
	return fmt.Sprintf("[%s | %s] unveil> ", cd, nowPlaying(snap))
}

func renderStatus(snap session.Snapshot) string {
	countdownValue := renderCountdown(snap.Countdown)
	if snap.Expired {
		countdownValue += " (the day is here)"
	}
	rows := [][]string{
		{"Invitation", gateLabel(snap.Open)},
		{"Countdown", countdownValue},
		{"Track", fmt.Sprintf("%d/%d %s", snap.Playback.CurrentTrack+1, snap.TrackCount, snap.Track.Title)},
		{"Playing", yesNo(snap.Playback.Playing)},
		{"Resume on show", yesNo(snap.Playback.WasPlayingBeforeHidden)},
	}
	return renderTable([]string{"Field", "Value"}, rows)
}

func gateLabel(open bool) string {
	if open {
		return "open"
	}
	return "sealed"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

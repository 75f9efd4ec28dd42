/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestCountdownAfterTarget(t *testing.T) {
	env := setupCLITestEnv(t, "[countdown]\ntarget = \"2000-01-01T00:00:00\"\ntimezone = \"UTC\"\n")
	out, _, err := runCLI(t, env, "countdown")
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	requireContains(t, out, "00 Days  00 Hours  00 Mins  00 Secs")
	requireContains(t, out, "The day is here.")
}

func TestCountdownWatchAfterTargetReturns(t *testing.T) {
	env := setupCLITestEnv(t, "[countdown]\ntarget = \"2000-01-01T00:00:00\"\ntimezone = \"UTC\"\n")
	out, _, err := runCLI(t, env, "countdown", "--watch")
	if err != nil {
		t.Fatalf("countdown --watch: %v", err)
	}
	requireContains(t, out, "The day is here.")
}

func TestCountdownLineBeforeFirstTick(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 2, 11, 18, 0, 0, 0, time.UTC))
	target := clock.Now().Add(72*time.Hour + 5*time.Minute)

	want := "03 Days  00 Hours  05 Mins  00 Secs"
	if got := countdownLine(clock, target); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCountdownBeforeTarget(t *testing.T) {
	env := setupCLITestEnv(t, "[countdown]\ntarget = \"2999-01-01T00:00:00\"\ntimezone = \"UTC\"\n")
	out, _, err := runCLI(t, env, "countdown")
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	requireContains(t, out, "Shruti ♡ Rishu")
	if strings.Contains(out, "The day is here.") {
		t.Fatalf("future target reported as reached:\n%s", out)
	}
}

func TestCountdownRejectsBadConfig(t *testing.T) {
	env := setupCLITestEnv(t, "[countdown]\ntarget = \"soon\"\n")
	if _, _, err := runCLI(t, env, "countdown"); err == nil {
		t.Fatal("expected a validation error")
	}
}

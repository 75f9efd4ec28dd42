/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"unveil/internal/playback"
	"unveil/internal/session"
	"unveil/internal/visibility"
)

type fakeControls struct {
	mu      sync.Mutex
	open    bool
	playing bool
	opens   int
	toggles int
}

func (f *fakeControls) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if !f.open {
		f.open = true
		f.playing = true
	}
}

func (f *fakeControls) TogglePlay() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggles++
	f.playing = !f.playing
}

func (f *fakeControls) Snapshot() session.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return session.Snapshot{
		Open:       f.open,
		Playback:   playback.State{Playing: f.playing},
		Track:      playback.Track{Title: "Tenu Leke"},
		TrackCount: 4,
	}
}

func newTestServer() (*Server, *fakeControls, *visibility.Source) {
	ctl := &fakeControls{}
	vis := visibility.NewSource()
	return NewServer(ctl, vis, "Unveil V.1.0", zerolog.Nop()), ctl, vis
}

func TestHandle(t *testing.T) {
	srv, ctl, vis := newTestServer()

	var seen []visibility.State
	vis.Subscribe(func(st visibility.State) { seen = append(seen, st) })

	steps := []struct {
		line string
		want string
	}{
		{"ping", "PONG"},
		{"ABOUT", "Unveil V.1.0"},
		{"TOGGLE", "ERR GATE_CLOSED"},
		{"open", "OK"},
		{"OPEN", "OK"},
		{"toggle", "OK"},
		{"HIDE", "OK"},
		{"SHOW", "OK"},
		{"NEXT", "ERR UNKNOWN"},
		{"OPEN now", "ERR ARG"},
	}
	for _, st := range steps {
		if got := srv.Handle(st.line); got != st.want {
			t.Fatalf("%s: got %q want %q", st.line, got, st.want)
		}
	}

	if ctl.opens != 2 || ctl.toggles != 1 {
		t.Fatalf("opens=%d toggles=%d", ctl.opens, ctl.toggles)
	}
	if len(seen) != 2 || seen[0] != visibility.Hidden || seen[1] != visibility.Visible {
		t.Fatalf("unexpected visibility changes %v", seen)
	}
}

func TestHandleStatus(t *testing.T) {
	srv, _, _ := newTestServer()
	srv.Handle("OPEN")

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(srv.Handle("STATUS")), &snap); err != nil {
		t.Fatalf("STATUS is not JSON: %v", err)
	}
	if !snap.Open || !snap.Playback.Playing || snap.Track.Title != "Tenu Leke" {
		t.Fatalf("unexpected status %+v", snap)
	}
}

func TestServeOverSocket(t *testing.T) {
	srv, ctl, _ := newTestServer()
	path := filepath.Join(t.TempDir(), "unveil.sock")

	// a stale socket file from a previous run is replaced
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	ln, err := Listen(path)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer reqCancel()

	reply, err := Send(reqCtx, path, "PING")
	if err != nil || reply != "PONG" {
		t.Fatalf("PING: %q %v", reply, err)
	}
	if _, err := Send(reqCtx, path, "OPEN"); err != nil {
		t.Fatalf("OPEN: %v", err)
	}
	reply, err = Send(reqCtx, path, "REWIND")
	if !errors.Is(err, ErrRemote) || reply != "ERR UNKNOWN" {
		t.Fatalf("REWIND: %q %v", reply, err)
	}
	ctl.mu.Lock()
	opened := ctl.open
	ctl.mu.Unlock()
	if !opened {
		t.Fatal("OPEN over the socket did not reach the session")
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}

	if _, err := Send(reqCtx, path, "PING"); err == nil {
		t.Fatal("expected dial failure after shutdown")
	}
}

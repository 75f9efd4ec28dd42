/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package audioengine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/rs/zerolog"

	"unveil/internal/container"
	"unveil/internal/security"
)

func countSamples(t *testing.T, s beep.Streamer) int {
	t.Helper()
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			return total
		}
	}
}

func TestSealRoundTrip(t *testing.T) {
	src := writeWav(t, "kabira.wav", 48000, 2, 48000, 1000)
	dest := filepath.Join(t.TempDir(), "kabira.unvl")

	res, err := Seal(context.Background(), SealRequest{
		Source:     src,
		Dest:       dest,
		Title:      "Din Shagna Da x Kabira",
		Passphrase: "shagun",
	})
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if res.Frames != 50 || res.Duration != time.Second {
		t.Fatalf("unexpected result %+v", res)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	hdr, err := container.NewReader(f)
	f.Close()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Title != "Din Shagna Da x Kabira" {
		t.Fatalf("got %q", hdr.Title)
	}

	s, format, err := Open(dest, "shagun")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if format.SampleRate != 48000 || format.NumChannels != 2 {
		t.Fatalf("unexpected format %+v", format)
	}
	if got := countSamples(t, s); got != 48000 {
		t.Fatalf("decoded %d samples want 48000", got)
	}
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestSealedWrongPassphraseFailsOpen(t *testing.T) {
	src := writeWav(t, "a.wav", 48000, 1, 4800, 1000)
	dest := filepath.Join(t.TempDir(), "a.unvl")
	if _, err := Seal(context.Background(), SealRequest{Source: src, Dest: dest, Title: "a", Passphrase: "right"}); err != nil {
		t.Fatal(err)
	}

	s, _, err := Open(dest, "wrong")
	if !errors.Is(err, ErrSealedKey) {
		if s != nil {
			s.Close()
		}
		t.Fatalf("expected ErrSealedKey, got %v", err)
	}
	if _, _, err := Open(dest, ""); !errors.Is(err, security.ErrNoPassphrase) {
		t.Fatalf("expected ErrNoPassphrase, got %v", err)
	}
}

func TestPlaySealedWrongPassphraseFails(t *testing.T) {
	src := writeWav(t, "a.wav", 48000, 1, 4800, 1000)
	dest := filepath.Join(t.TempDir(), "a.unvl")
	if _, err := Seal(context.Background(), SealRequest{Source: src, Dest: dest, Title: "a", Passphrase: "right"}); err != nil {
		t.Fatal(err)
	}

	out := &recorder{}
	e := New(WithOutput(out), WithLogger(zerolog.Nop()), WithPassphrase("wrong"))
	e.SetSource(dest)
	if err := e.Play(context.Background()); !errors.Is(err, ErrSealedKey) {
		t.Fatalf("expected ErrSealedKey, got %v", err)
	}
	if len(out.streams) != 0 {
		t.Fatalf("%d streams reached the output", len(out.streams))
	}
}

func TestSealRejectsForeignRate(t *testing.T) {
	src := writeWav(t, "cd.wav", 44100, 2, 4410, 1000)
	dest := filepath.Join(t.TempDir(), "cd.unvl")
	if _, err := Seal(context.Background(), SealRequest{Source: src, Dest: dest, Title: "cd", Passphrase: "p"}); err == nil {
		t.Fatal("expected an error for 44.1 kHz input")
	}
	if _, err := os.Stat(dest); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("partial output left behind: %v", err)
	}
}

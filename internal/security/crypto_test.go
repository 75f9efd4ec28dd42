/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package security

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"unveil/pkg/invite"
)

func TestDeriveKey(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a, err := DeriveKey("shagun", salt)
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	if len(a) != invite.KeyLen {
		t.Fatalf("key length = %d want %d", len(a), invite.KeyLen)
	}
	b, _ := DeriveKey("shagun", salt)
	if !bytes.Equal(a, b) {
		t.Fatal("same passphrase and salt must derive the same key")
	}
	c, _ := DeriveKey("shagun", []byte("fedcba9876543210"))
	if bytes.Equal(a, c) {
		t.Fatal("different salts must derive different keys")
	}
	if _, err := DeriveKey("", salt); !errors.Is(err, ErrNoPassphrase) {
		t.Fatalf("expected ErrNoPassphrase, got %v", err)
	}
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewSalt()
	if len(a) != invite.SaltLen || bytes.Equal(a, b) {
		t.Fatalf("unexpected salts %x %x", a, b)
	}
}

func TestSealOpen(t *testing.T) {
	key, _ := DeriveKey("shagun", []byte("0123456789abcdef"))
	s, err := NewSealer(key)
	if err != nil {
		t.Fatal(err)
	}
	frame := []byte("opus frame payload")

	sealed, err := s.Seal(frame)
	if err != nil {
		t.Fatal(err)
	}
	if len(sealed) != len(frame)+s.Overhead() {
		t.Fatalf("sealed length = %d want %d", len(sealed), len(frame)+s.Overhead())
	}
	opened, err := s.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(opened, frame) {
		t.Fatalf("got %q want %q", opened, frame)
	}

	sealed[len(sealed)-1] ^= 0xff
	if _, err := s.Open(sealed); err == nil {
		t.Fatal("tampered frame must not open")
	}
	if _, err := s.Open([]byte{1, 2}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}

func TestEncryptWithWrongKey(t *testing.T) {
	k1, _ := DeriveKey("one", []byte("0123456789abcdef"))
	k2, _ := DeriveKey("two", []byte("0123456789abcdef"))
	sealed, err := Encrypt([]byte("x"), k1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decrypt(sealed, k2); err == nil {
		t.Fatal("decrypt with the wrong key must fail")
	}
	if _, err := Encrypt([]byte("x"), []byte("short")); err == nil {
		t.Fatal("invalid key size must fail")
	}
}

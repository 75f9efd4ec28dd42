/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"unveil/pkg/invite"

	"golang.org/x/crypto/pbkdf2"
)

// ErrNoPassphrase is returned when a sealed track is opened without a passphrase.
var ErrNoPassphrase = errors.New("track passphrase is empty")

// DeriveKey derives the AES-256 key of a sealed track from its passphrase and salt.
func DeriveKey(passphrase string, salt []byte) ([]byte, error) {
	if passphrase == "" {
		return nil, ErrNoPassphrase
	}
	return pbkdf2.Key([]byte(passphrase), salt, invite.KeyIterations, invite.KeyLen, sha256.New), nil
}

// NewSalt returns a random per-track salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, invite.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	return salt, nil
}

// Sealer encrypts and decrypts frames with one key. AES-GCM with a random
// nonce prepended to every ciphertext.
type Sealer struct {
	gcm cipher.AEAD
}

func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &Sealer{gcm: gcm}, nil
}

// Overhead is the number of bytes Seal adds to a frame.
func (s *Sealer) Overhead() int {
	return s.gcm.NonceSize() + s.gcm.Overhead()
}

func (s *Sealer) Seal(data []byte) ([]byte, error) {
	nonce := make([]byte, s.gcm.NonceSize(), s.gcm.NonceSize()+len(data)+s.gcm.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.gcm.Seal(nonce, nonce, data, nil), nil
}

func (s *Sealer) Open(data []byte) ([]byte, error) {
	nonceSize := s.gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, io.ErrUnexpectedEOF
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return s.gcm.Open(nil, nonce, ciphertext, nil)
}

// Encrypt seals data with a one-off Sealer.
func Encrypt(data []byte, key []byte) ([]byte, error) {
	s, err := NewSealer(key)
	if err != nil {
		return nil, err
	}
	return s.Seal(data)
}

// Decrypt opens data sealed by Encrypt.
func Decrypt(data []byte, key []byte) ([]byte, error) {
	s, err := NewSealer(key)
	if err != nil {
		return nil, err
	}
	return s.Open(data)
}

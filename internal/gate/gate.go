/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package gate holds the unveil gate: a one-way switch that unlocks
// playback and the invitation content for the rest of the session.
package gate

import "sync/atomic"

// Gate starts closed and can only be opened.
type Gate struct {
	open atomic.Bool
}

// New returns a closed gate.
func New() *Gate {
	return &Gate{}
}

// Open flips the gate open. It reports true only for the call that
// performed the transition; later calls are no-ops.
func (g *Gate) Open() bool {
	return g.open.CompareAndSwap(false, true)
}

// IsOpen reports whether the gate has been opened.
func (g *Gate) IsOpen() bool {
	return g.open.Load()
}

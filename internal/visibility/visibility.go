/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package visibility broadcasts foreground/background transitions of the
// invitation to whoever registered interest.
package visibility

import (
	"fmt"
	"strings"
	"sync"
)

// State is whether the invitation is in the foreground.
type State int

const (
	Visible State = iota
	Hidden
)

func (s State) String() string {
	switch s {
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	default:
		return "unknown"
	}
}

// Parse maps "hidden"/"hide" and "visible"/"show" to a State.
func Parse(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hidden", "hide":
		return Hidden, nil
	case "visible", "show":
		return Visible, nil
	default:
		return Visible, fmt.Errorf("visibility: unknown state %q", s)
	}
}

// Source fans a visibility change out to subscribers. Repeating the
// current state is not a change and is not delivered.
type Source struct {
	// deliver is held from recording a change until its handlers return,
	// so subscribers see changes in the order they were published.
	deliver sync.Mutex

	mu      sync.Mutex
	current State
	nextID  int
	subs    map[int]func(State)
}

// NewSource returns a source that starts visible.
func NewSource() *Source {
	return &Source{subs: make(map[int]func(State))}
}

// Subscribe registers fn and returns the func that removes it.
func (s *Source) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Publish records st and notifies subscribers if it differs from the
// current state. Handlers run on the caller's goroutine and must not
// publish themselves.
func (s *Source) Publish(st State) {
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	if st == s.current {
		s.mu.Unlock()
		return
	}
	s.current = st
	handlers := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(st)
	}
}

// Current returns the last published state.
func (s *Source) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribers reports how many handlers are registered.
func (s *Source) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

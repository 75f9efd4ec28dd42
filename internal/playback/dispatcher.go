/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package playback

import (
	"context"
	"sync"
)

type commandKind int

const (
	cmdLoad commandKind = iota
	cmdPlay
	cmdPause
)

func (k commandKind) String() string {
	switch k {
	case cmdLoad:
		return "load"
	case cmdPlay:
		return "play"
	case cmdPause:
		return "pause"
	default:
		return "unknown"
	}
}

type command struct {
	kind   commandKind
	seq    uint64
	url    string
	reason string
}

// dispatcher runs engine commands one at a time, in the order they were
// issued, on its own goroutine so callers never wait on the media engine.
type dispatcher struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []command
	pending int
	wake    chan struct{}
	done    chan struct{}
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

func (d *dispatcher) enqueue(cmd command) {
	d.mu.Lock()
	d.queue = append(d.queue, cmd)
	d.pending++
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) next() (command, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return command{}, false
	}
	cmd := d.queue[0]
	d.queue = d.queue[1:]
	return cmd, true
}

// run executes queued commands until ctx is done. Commands still queued
// at shutdown are discarded.
func (d *dispatcher) run(ctx context.Context, exec func(context.Context, command)) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.discard()
			return
		case <-d.wake:
		}

		for {
			cmd, ok := d.next()
			if !ok {
				break
			}
			if ctx.Err() == nil {
				exec(ctx, cmd)
			}
			d.finish(1)
		}
	}
}

func (d *dispatcher) discard() {
	d.mu.Lock()
	n := len(d.queue)
	d.queue = nil
	d.mu.Unlock()
	d.finish(n)
}

func (d *dispatcher) finish(n int) {
	if n == 0 {
		return
	}
	d.mu.Lock()
	d.pending -= n
	if d.pending == 0 {
		d.idle.Broadcast()
	}
	d.mu.Unlock()
}

// wait blocks until every enqueued command has been executed or discarded.
func (d *dispatcher) wait() {
	d.mu.Lock()
	for d.pending > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

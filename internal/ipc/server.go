/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

// Package ipc is the line protocol spoken on the control socket.
package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"unveil/internal/session"
	"unveil/internal/visibility"
)

const (
	Version   = "1.0"
	replyOK   = "OK"
	replyPong = "PONG"
)

// Controls is the part of a session the socket may drive.
type Controls interface {
	Open()
	TogglePlay()
	Snapshot() session.Snapshot
}

// Publisher feeds visibility changes into the session.
type Publisher interface {
	Publish(visibility.State)
}

type Server struct {
	controls Controls
	vis      Publisher
	about    string
	log      zerolog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewServer(controls Controls, vis Publisher, about string, log zerolog.Logger) *Server {
	return &Server{
		controls: controls,
		vis:      vis,
		about:    about,
		log:      log.With().Str("component", "ipc").Logger(),
		conns:    make(map[net.Conn]struct{}),
	}
}

// Listen removes a stale socket file and listens on path.
func Listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", path, err)
	}
	return ln, nil
}

// Serve accepts connections until ctx is cancelled, then closes the
// listener and every open connection.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("control socket listening")
	for {
		c, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			s.wg.Wait()
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(c)
		}()
	}
}

func (s *Server) handleConn(c net.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.Close()
	}()

	sc := bufio.NewScanner(c)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		reply := s.Handle(line)
		if _, err := io.WriteString(c, reply+"\n"); err != nil {
			s.log.Debug().Err(err).Msg("write reply")
			return
		}
	}
}

// Handle executes one command line and returns the reply without its
// trailing newline.
func (s *Server) Handle(line string) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "ERR EMPTY"
	}
	cmd := strings.ToUpper(parts[0])
	if len(parts) > 1 {
		return "ERR ARG"
	}
	s.log.Debug().Str("cmd", cmd).Msg("control command")

	switch cmd {
	case "PING":
		return replyPong

	case "ABOUT":
		return s.about

	case "STATUS":
		j, err := json.Marshal(s.controls.Snapshot())
		if err != nil {
			return "ERR INTERNAL"
		}
		return string(j)

	case "OPEN":
		s.controls.Open()
		return replyOK

	case "TOGGLE":
		if !s.controls.Snapshot().Open {
			return "ERR GATE_CLOSED"
		}
		s.controls.TogglePlay()
		return replyOK

	case "HIDE":
		s.vis.Publish(visibility.Hidden)
		return replyOK

	case "SHOW":
		s.vis.Publish(visibility.Visible)
		return replyOK

	default:
		return "ERR UNKNOWN"
	}
}

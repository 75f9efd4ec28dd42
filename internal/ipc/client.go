/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ErrRemote wraps an ERR reply from the server.
var ErrRemote = errors.New("control socket refused")

const dialTimeout = 2 * time.Second

// Send writes one command to the socket at path and returns the reply line.
func Send(ctx context.Context, path, command string) (string, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", path, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	return exchange(conn, command)
}

func exchange(conn io.ReadWriter, command string) (string, error) {
	command = strings.TrimSpace(command)
	if _, err := io.WriteString(conn, command+"\n"); err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && reply == "" {
			return "", fmt.Errorf("read: %w", io.ErrUnexpectedEOF)
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read: %w", err)
		}
	}
	reply = strings.TrimRight(reply, "\r\n")
	if reason, ok := strings.CutPrefix(reply, "ERR "); ok {
		return reply, fmt.Errorf("%w: %s", ErrRemote, reason)
	}
	return reply, nil
}

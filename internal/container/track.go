/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Unveil project.
 * This code is provided "as is", without warranty of any kind.
 */

package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"unveil/pkg/invite"
)

var (
	ErrBadMagic      = errors.New("not a sealed track")
	ErrNoAudio       = errors.New("sealed track has no audio block")
	ErrFrameTooLarge = errors.New("frame exceeds 65535 bytes")
	ErrTagTooLarge   = errors.New("header tag too large")
)

// maxTagLen caps the TITL and SALT tags read before the audio block.
const maxTagLen = 4096

// Header is the metadata stored before the audio block.
type Header struct {
	Title string
	Salt  []byte
}

// Writer writes a sealed track: magic, TLV tags, then the AUDI block of
// uint16 length-prefixed frames. The AUDI size is patched on Close.
type Writer struct {
	w       io.WriteSeeker
	sizePos int64
	start   int64
	frames  int
	closed  bool
}

func NewWriter(w io.WriteSeeker, h Header) (*Writer, error) {
	if len(h.Title) > maxTagLen || len(h.Salt) > maxTagLen {
		return nil, ErrTagTooLarge
	}
	if _, err := w.Write([]byte(invite.TrackMagic)); err != nil {
		return nil, fmt.Errorf("write magic: %w", err)
	}
	if err := writeTag(w, invite.TagTitle, []byte(h.Title)); err != nil {
		return nil, err
	}
	if err := writeTag(w, invite.TagSalt, h.Salt); err != nil {
		return nil, err
	}

	if _, err := w.Write([]byte(invite.TagAudio)); err != nil {
		return nil, fmt.Errorf("write audio tag: %w", err)
	}
	sizePos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(0)); err != nil {
		return nil, err
	}
	return &Writer{w: w, sizePos: sizePos, start: sizePos + 4}, nil
}

func (w *Writer) WriteFrame(frame []byte) error {
	if len(frame) > math.MaxUint16 {
		return ErrFrameTooLarge
	}
	if err := binary.Write(w.w, binary.BigEndian, uint16(len(frame))); err != nil {
		return fmt.Errorf("write frame size: %w", err)
	}
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	w.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int { return w.frames }

// Close patches the AUDI size. It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	end, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	size := end - w.start
	if size > math.MaxUint32 {
		return fmt.Errorf("audio block too large: %d bytes", size)
	}
	if _, err := w.w.Seek(w.sizePos, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.w, binary.BigEndian, uint32(size)); err != nil {
		return fmt.Errorf("patch audio size: %w", err)
	}
	_, err = w.w.Seek(end, io.SeekStart)
	return err
}

func writeTag(w io.Writer, tag string, data []byte) error {
	if _, err := w.Write([]byte(tag)); err != nil {
		return fmt.Errorf("write tag %s: %w", tag, err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("write tag %s: %w", tag, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write tag %s: %w", tag, err)
	}
	return nil
}

// Reader reads frames from a sealed track.
type Reader struct {
	Header
	audio *io.LimitedReader
}

// NewReader validates the magic and reads tags up to the audio block.
// Unknown tags are skipped.
func NewReader(r io.Reader) (*Reader, error) {
	magic := make([]byte, len(invite.TrackMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if string(magic) != invite.TrackMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadMagic, magic)
	}

	tr := &Reader{}
	for {
		tagBuf := make([]byte, 4)
		if _, err := io.ReadFull(r, tagBuf); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoAudio
			}
			return nil, fmt.Errorf("read tag: %w", err)
		}
		var size uint32
		if err := binary.Read(r, binary.BigEndian, &size); err != nil {
			return nil, fmt.Errorf("read tag size: %w", err)
		}

		switch tag := string(tagBuf); tag {
		case invite.TagAudio:
			tr.audio = &io.LimitedReader{R: r, N: int64(size)}
			return tr, nil
		case invite.TagTitle, invite.TagSalt:
			if size > maxTagLen {
				return nil, fmt.Errorf("%w: %s is %d bytes", ErrTagTooLarge, tag, size)
			}
			buf, err := readN(r, size)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", tag, err)
			}
			if tag == invite.TagTitle {
				tr.Title = string(buf)
			} else {
				tr.Salt = buf
			}
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("skip %s: %w", tag, err)
			}
		}
	}
}

// ReadFrame returns the next frame, or io.EOF at the end of the audio block.
func (r *Reader) ReadFrame() ([]byte, error) {
	var sz uint16
	if err := binary.Read(r.audio, binary.BigEndian, &sz); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame size: %w", err)
	}
	frame, err := readN(r.audio, uint32(sz))
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	return frame, nil
}

func readN(r io.Reader, n uint32) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

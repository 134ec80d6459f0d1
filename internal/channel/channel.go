// Package channel frames newline-delimited JSON messages over a byte stream.
package channel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Delimiter terminates every frame on the wire.
const Delimiter = '\n'

// readChunkSize is the size of a single transport read in ReadLoop.
const readChunkSize = 32 * 1024

// ErrClosed is returned by Write once the channel has been closed.
var ErrClosed = errors.New("channel closed")

// Message is one decoded frame. Requests use Cmd (and optionally Params);
// daemon replies use Type and Data, echoing Cmd and ID where available.
type Message struct {
	Type   string          `json:"type,omitempty"`
	Cmd    string          `json:"cmd,omitempty"`
	ID     string          `json:"id,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Encode serializes v to its wire form, including the trailing delimiter.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(data, Delimiter), nil
}

// Decode parses a single frame (without delimiter). Frames that are not JSON
// objects are rejected.
func Decode(frame []byte) (Message, error) {
	var msg Message
	trimmed := bytes.TrimSpace(frame)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return msg, fmt.Errorf("decode frame: not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return msg, fmt.Errorf("decode frame: %w", err)
	}
	return msg, nil
}

// Channel owns one transport connection: serialized frame writes on one side,
// a Deframer on the read side.
type Channel struct {
	rw io.ReadWriteCloser

	wmu       sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	deframer Deframer
}

// New wraps a connected transport. onDrop, if non-nil, is called from the
// reader for every malformed frame that is discarded.
func New(rw io.ReadWriteCloser, onDrop func(frame []byte, err error)) *Channel {
	return &Channel{rw: rw, deframer: Deframer{OnDrop: onDrop}}
}

// Write sends exactly one frame. The frame is written with a single call so
// concurrent writers never interleave.
func (c *Channel) Write(v any) error {
	frame, err := Encode(v)
	if err != nil {
		return err
	}

	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	if _, err := c.rw.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadLoop reads the transport until it fails, dispatching every complete
// frame in order. It returns the transport error (io.EOF on a clean close).
// Only one goroutine may run ReadLoop.
func (c *Channel) ReadLoop(dispatch func(Message)) error {
	buf := make([]byte, readChunkSize)
	for {
		n, err := c.rw.Read(buf)
		if n > 0 {
			c.deframer.Feed(buf[:n], dispatch)
		}
		if err != nil {
			return err
		}
	}
}

// Close marks the channel unwritable and closes the transport, unblocking
// any in-progress Write or ReadLoop. It does not wait for writers.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.closeErr = c.rw.Close()
	})
	return c.closeErr
}

package channel

import (
	"bytes"
	"errors"
)

// DefaultMaxPending bounds the bytes buffered for a single incomplete frame.
const DefaultMaxPending = 4 << 20

// ErrFrameTooLarge is reported to OnDrop for a frame that outgrew the buffer.
var ErrFrameTooLarge = errors.New("frame exceeds pending buffer limit")

// Deframer accumulates raw bytes and extracts delimiter-terminated frames.
// The zero value is ready to use. It is not safe for concurrent use; the
// channel's single reader owns it.
type Deframer struct {
	// OnDrop observes discarded frames. Optional.
	OnDrop func(frame []byte, err error)
	// MaxPending caps an incomplete frame; zero means DefaultMaxPending.
	MaxPending int

	pending []byte
	dropped int
	// skipping discards the tail of an oversized frame up to its delimiter.
	skipping bool
}

// Feed appends raw to the pending buffer and dispatches every complete frame
// in order. Incomplete trailing bytes are kept for the next call. Frames that
// fail to decode are dropped; extraction depends only on the delimiter, so a
// bad frame never affects its neighbours. Feed returns the number of messages
// dispatched. An incomplete frame larger than MaxPending is dropped along with
// everything up to its delimiter.
func (d *Deframer) Feed(raw []byte, dispatch func(Message)) int {
	if d.skipping {
		idx := bytes.IndexByte(raw, Delimiter)
		if idx < 0 {
			return 0
		}
		raw = raw[idx+1:]
		d.skipping = false
	}
	d.pending = append(d.pending, raw...)

	n := 0
	for {
		idx := bytes.IndexByte(d.pending, Delimiter)
		if idx < 0 {
			break
		}
		frame := d.pending[:idx]
		msg, err := Decode(frame)
		if err != nil {
			d.dropped++
			if d.OnDrop != nil {
				d.OnDrop(frame, err)
			}
		}
		// Drop exactly the consumed prefix (frame + delimiter).
		d.pending = d.pending[idx+1:]
		if err != nil {
			continue
		}
		n++
		if dispatch != nil {
			dispatch(msg)
		}
	}

	if len(d.pending) > d.maxPending() {
		d.dropOversized()
	}

	// Reclaim the backing array once drained.
	if len(d.pending) == 0 {
		d.pending = nil
	}
	return n
}

func (d *Deframer) maxPending() int {
	if d.MaxPending > 0 {
		return d.MaxPending
	}
	return DefaultMaxPending
}

func (d *Deframer) dropOversized() {
	d.dropped++
	if d.OnDrop != nil {
		d.OnDrop(d.pending[:min(len(d.pending), 64)], ErrFrameTooLarge)
	}
	d.pending = nil
	d.skipping = true
}

// Pending returns the number of buffered bytes not yet forming a frame.
func (d *Deframer) Pending() int {
	return len(d.pending)
}

// Dropped returns the number of malformed frames discarded so far.
func (d *Deframer) Dropped() int {
	return d.dropped
}

package framing

import (
	"errors"
	"fmt"

	"github.com/danmuck/linkctl/internal/checksum"
)

var ErrInvalidFrameSize = errors.New("framing: max frame size must be positive")

// Framer serializes payloads into byte-stuffed wire frames bounded by
// start/stop tags, each carrying a trailing check value. Framing
// cannot fail on well-formed input; every byte value is representable
// through stuffing.
type Framer struct {
	tags         TagSet
	engine       checksum.Engine
	maxFrameSize int
}

// NewFramer builds a framer that splits payloads into checksummed
// sub-frames of at most maxFrameSize bytes.
func NewFramer(tags TagSet, engine checksum.Engine, maxFrameSize int) (*Framer, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	if maxFrameSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameSize, maxFrameSize)
	}
	return &Framer{tags: tags, engine: engine, maxFrameSize: maxFrameSize}, nil
}

// Frame embeds payload into successive sub-frames, each independently
// bounded and checksummed. An empty payload produces a single empty
// sub-frame so that deframing yields the payload back.
func (f *Framer) Frame(payload []byte) []byte {
	var wire []byte
	for {
		n := len(payload)
		if n > f.maxFrameSize {
			n = f.maxFrameSize
		}
		sub := payload[:n]
		wire = append(wire, f.tags.Start)
		wire = f.stuffAll(wire, sub)
		wire = f.stuff(wire, f.engine.Compute(sub))
		wire = append(wire, f.tags.Stop)

		payload = payload[n:]
		if len(payload) == 0 {
			return wire
		}
	}
}

// FrameWithSeq embeds the whole payload into one frame whose trailer
// is the frame sequence number followed by a check value computed over
// payload plus sequence number.
func (f *Framer) FrameWithSeq(payload []byte, seq byte) []byte {
	wire := make([]byte, 0, len(payload)+5)
	wire = append(wire, f.tags.Start)
	wire = f.stuffAll(wire, payload)
	wire = f.stuff(wire, seq)

	check := f.engine.Compute(append(append([]byte{}, payload...), seq))
	wire = f.stuff(wire, check)
	wire = append(wire, f.tags.Stop)
	return wire
}

// AckFrame returns the minimal acknowledgment frame: start tag, ack
// tag, stop tag. No trailer, no stuffing.
func (f *Framer) AckFrame() []byte {
	return []byte{f.tags.Start, f.tags.Ack, f.tags.Stop}
}

// stuff appends b, preceded by an escape tag when b collides with a
// reserved value.
func (f *Framer) stuff(wire []byte, b byte) []byte {
	if f.tags.IsTag(b) {
		wire = append(wire, f.tags.Escape)
	}
	return append(wire, b)
}

func (f *Framer) stuffAll(wire []byte, data []byte) []byte {
	for _, b := range data {
		wire = f.stuff(wire, b)
	}
	return wire
}

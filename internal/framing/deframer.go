package framing

import (
	"bytes"

	"github.com/danmuck/linkctl/internal/checksum"
	"github.com/danmuck/linkctl/internal/observability"
)

// Result is one resolved frame.
type Result struct {
	// Payload is the extracted data, owned by the caller.
	Payload []byte
	// Seq is the carried frame number (sequence-numbered mode only).
	Seq byte
	// Ack marks a bare acknowledgment frame; Payload is empty.
	Ack bool
}

// Deframer consumes an append-only receive buffer, locating frame
// boundaries despite stuffing and corruption. Damaged frames are
// discarded and scanning continues; only "no complete frame yet"
// leaves bytes buffered.
type Deframer struct {
	tags    TagSet
	engine  checksum.Engine
	withSeq bool
	events  observability.Events
	buf     []byte
}

// NewDeframer builds a deframer. withSeq selects the trailer layout of
// the sequence-numbered (acknowledgment-aware) variant: one frame
// number byte followed by one check byte, plus bare ack frames.
func NewDeframer(tags TagSet, engine checksum.Engine, withSeq bool, events observability.Events) (*Deframer, error) {
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	if events == nil {
		events = observability.NopEvents{}
	}
	return &Deframer{tags: tags, engine: engine, withSeq: withSeq, events: events}, nil
}

// Append feeds raw bytes from the transport into the receive buffer.
func (d *Deframer) Append(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered reports how many received bytes are not yet resolved.
func (d *Deframer) Buffered() int {
	return len(d.buf)
}

// Next scans for the next complete verified frame. ok is false when
// the buffer holds no complete frame; buffered bytes that could still
// belong to a frame are preserved for the next call. Damaged frames
// are consumed internally and scanning continues.
func (d *Deframer) Next() (Result, bool) {
	for {
		start := bytes.IndexByte(d.buf, d.tags.Start)
		if start < 0 {
			// Nothing before a start tag can begin a frame.
			d.buf = d.buf[:0]
			return Result{}, false
		}
		if start > 0 {
			d.drain(start)
		}

		res, ok, damaged := d.scan()
		if damaged {
			continue
		}
		return res, ok
	}
}

// scan walks one frame beginning at the start tag at buf[0]. damaged
// reports that the frame resolved invalid and the remaining buffer
// should be rescanned.
func (d *Deframer) scan() (res Result, ok bool, damaged bool) {
	var extracted []byte
	pos := 1
	for pos < len(d.buf) {
		b := d.buf[pos]
		switch b {
		case d.tags.Escape:
			if pos+1 >= len(d.buf) {
				// Ends mid-escape; the partial frame must remain.
				return Result{}, false, false
			}
			extracted = append(extracted, d.buf[pos+1])
			pos += 2
		case d.tags.Stop:
			d.drain(pos + 1)
			return d.finish(extracted)
		case d.tags.Start:
			// A second start tag truncates the frame in progress.
			d.drain(pos)
			d.events.FrameDamaged("resync", len(extracted))
			extracted = extracted[:0]
			pos = 1
		default:
			extracted = append(extracted, b)
			pos++
		}
	}
	return Result{}, false, false
}

// finish strips and validates the trailer of a syntactically complete
// frame.
func (d *Deframer) finish(frame []byte) (Result, bool, bool) {
	if d.withSeq {
		if len(frame) == 1 && frame[0] == d.tags.Ack {
			return Result{Ack: true}, true, false
		}
		if len(frame) < 2 {
			d.events.FrameDamaged("short_trailer", len(frame))
			return Result{}, false, true
		}
		check := frame[len(frame)-1]
		body := frame[:len(frame)-1] // payload plus frame number
		if !d.engine.Verify(body, check) {
			d.events.FrameDamaged("checksum", len(body))
			return Result{}, false, true
		}
		payload := append([]byte(nil), body[:len(body)-1]...)
		return Result{Payload: payload, Seq: body[len(body)-1]}, true, false
	}

	if len(frame) < 1 {
		d.events.FrameDamaged("short_trailer", 0)
		return Result{}, false, true
	}
	check := frame[len(frame)-1]
	data := frame[:len(frame)-1]
	if !d.engine.Verify(data, check) {
		d.events.FrameDamaged("checksum", len(data))
		return Result{}, false, true
	}
	return Result{Payload: append([]byte(nil), data...)}, true, false
}

// drain removes n resolved bytes from the buffer front in one bulk
// move.
func (d *Deframer) drain(n int) {
	d.buf = append(d.buf[:0], d.buf[n:]...)
}

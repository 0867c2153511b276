package arq

import (
	"time"

	"github.com/danmuck/linkctl/internal/framing"
	"github.com/danmuck/linkctl/internal/observability"
)

// DefaultTimeout is the reference resend threshold.
const DefaultTimeout = 100 * time.Millisecond

// State identifies the controller's send-side mode.
type State int

const (
	// StateIdle permits a new outbound frame.
	StateIdle State = iota
	// StateAwaitingAck has one frame outstanding and the timer running.
	StateAwaitingAck
)

// Transmitter moves wire bytes toward the peer, fire and forget.
type Transmitter interface {
	Transmit(p []byte)
}

// Controller implements stop-and-wait automatic repeat request: at
// most one unacknowledged frame in flight, retransmitted on timeout,
// with duplicates on the receive side discarded but re-acknowledged.
//
// The controller is not safe for concurrent use; the owning link
// serializes send, receive, and tick paths under one lock.
type Controller struct {
	framer  *framing.Framer
	tx      Transmitter
	events  observability.Events
	timeout time.Duration
	now     func() time.Time

	sendFrameNum     byte
	expectedFrameNum byte
	waitingForAck    bool
	lastSent         []byte
	sentAt           time.Time
}

// Option adjusts controller construction.
type Option func(*Controller)

// WithClock substitutes the time source, for simulated-clock tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController wires a stop-and-wait controller over the given framer
// and transmitter. A non-positive timeout falls back to DefaultTimeout.
func NewController(framer *framing.Framer, tx Transmitter, timeout time.Duration, events observability.Events, opts ...Option) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if events == nil {
		events = observability.NopEvents{}
	}
	c := &Controller{
		framer:  framer,
		tx:      tx,
		events:  events,
		timeout: timeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports the current send-side mode.
func (c *Controller) State() State {
	if c.waitingForAck {
		return StateAwaitingAck
	}
	return StateIdle
}

// Send frames the payload with the current frame number and transmits
// it, keeping a copy for resend. It reports false, transmitting
// nothing, while a previous frame is still unacknowledged; the caller
// owns any retry.
func (c *Controller) Send(payload []byte) bool {
	if c.waitingForAck {
		return false
	}
	wire := c.framer.FrameWithSeq(payload, c.sendFrameNum)
	c.lastSent = wire
	c.sentAt = c.now()
	c.waitingForAck = true
	c.tx.Transmit(wire)
	return true
}

// OnAck resolves the outstanding frame: the frame number flips and the
// controller returns to idle. Acks arriving while idle are ignored.
func (c *Controller) OnAck() {
	if !c.waitingForAck {
		return
	}
	c.waitingForAck = false
	c.lastSent = nil
	c.sendFrameNum ^= 1
	c.events.AckReceived()
}

// Tick retransmits the stored frame unchanged once the resend
// threshold has elapsed. The frame number does not advance; it is the
// same logical frame. Retransmission is unbounded until acknowledged.
func (c *Controller) Tick() {
	if !c.waitingForAck {
		return
	}
	if c.now().Sub(c.sentAt) <= c.timeout {
		return
	}
	c.sentAt = c.now()
	c.events.TimeoutFired(c.sendFrameNum)
	c.tx.Transmit(c.lastSent)
}

// OnData handles a verified inbound data frame. In-order frames are
// returned for delivery and advance the expected number; duplicates
// are dropped. Either way an acknowledgment is transmitted, since the
// peer may have missed the previous one.
func (c *Controller) OnData(seq byte, payload []byte) ([]byte, bool) {
	deliver := seq == c.expectedFrameNum
	if deliver {
		c.expectedFrameNum ^= 1
	} else {
		c.events.DuplicateDiscarded(seq)
		payload = nil
	}
	c.tx.Transmit(c.framer.AckFrame())
	c.events.AckSent()
	return payload, deliver
}

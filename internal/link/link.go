package link

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danmuck/linkctl/internal/arq"
	"github.com/danmuck/linkctl/internal/checksum"
	"github.com/danmuck/linkctl/internal/framing"
	"github.com/danmuck/linkctl/internal/observability"
)

var (
	ErrNilTransport = errors.New("link: transport is required")
	ErrNilClient    = errors.New("link: client is required")
)

// Transport moves raw wire bytes toward the peer, fire and forget.
type Transport interface {
	Transmit(p []byte)
}

// Client consumes verified, in-order, non-duplicate payloads.
type Client interface {
	Receive(payload []byte)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(payload []byte)

func (f ClientFunc) Receive(payload []byte) { f(payload) }

// Config assembles one link endpoint.
type Config struct {
	Tags         framing.TagSet
	MaxFrameSize int
	Checksum     checksum.Config
	// Reliable enables stop-and-wait acknowledgment and retransmission.
	Reliable   bool
	ARQTimeout time.Duration
}

// DefaultConfig returns the reference link parameters: CRC-8/DVB-S2
// over sub-frames of at most eight bytes, unreliable.
func DefaultConfig() Config {
	return Config{
		Tags:         framing.DefaultTags(),
		MaxFrameSize: 8,
		Checksum:     checksum.DefaultConfig(),
		ARQTimeout:   arq.DefaultTimeout,
	}
}

// Link is one endpoint of a data link: framer, deframer and, when
// reliable, a stop-and-wait controller over a shared transport. One
// mutex guards the receive buffer and ARQ state; a timeout resend and
// an incoming ack touch the same fields.
type Link struct {
	mu       sync.Mutex
	framer   *framing.Framer
	deframer *framing.Deframer
	ctrl     *arq.Controller
	tx       Transport
	client   Client
	events   observability.Events
}

// Option adjusts link construction.
type Option func(*options)

type options struct {
	events observability.Events
	clock  func() time.Time
}

// WithEvents injects the observability sink shared by the deframer and
// controller.
func WithEvents(events observability.Events) Option {
	return func(o *options) {
		o.events = events
	}
}

// WithClock substitutes the ARQ time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// New validates cfg and assembles the endpoint variant it describes.
func New(cfg Config, tx Transport, client Client, opts ...Option) (*Link, error) {
	if tx == nil {
		return nil, ErrNilTransport
	}
	if client == nil {
		return nil, ErrNilClient
	}
	o := options{events: observability.NopEvents{}, clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.events == nil {
		o.events = observability.NopEvents{}
	}

	engine, err := checksum.New(cfg.Checksum)
	if err != nil {
		return nil, fmt.Errorf("link: %w", err)
	}
	framer, err := framing.NewFramer(cfg.Tags, engine, cfg.MaxFrameSize)
	if err != nil {
		return nil, err
	}
	deframer, err := framing.NewDeframer(cfg.Tags, engine, cfg.Reliable, o.events)
	if err != nil {
		return nil, err
	}

	l := &Link{
		framer:   framer,
		deframer: deframer,
		tx:       tx,
		client:   client,
		events:   o.events,
	}
	if cfg.Reliable {
		l.ctrl = arq.NewController(framer, tx, cfg.ARQTimeout, o.events, arq.WithClock(o.clock))
	}
	return l, nil
}

// Send frames and transmits one payload. Unreliable variants always
// accept; the reliable variant reports false, transmitting nothing,
// while a frame is outstanding.
func (l *Link) Send(payload []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctrl != nil {
		return l.ctrl.Send(payload)
	}
	l.tx.Transmit(l.framer.Frame(payload))
	return true
}

// Busy reports whether the reliable variant is awaiting an ack.
func (l *Link) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctrl != nil && l.ctrl.State() == arq.StateAwaitingAck
}

// Receive appends raw transport bytes to the receive buffer. It never
// blocks; frames are resolved on the next Poll.
func (l *Link) Receive(p []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deframer.Append(p)
}

// Poll drives the link one cooperative step: it drains every complete
// frame from the receive buffer, routes acks and data through the ARQ
// controller when present, then checks the resend timer. Client
// delivery happens after the link state settles, outside the lock.
func (l *Link) Poll() {
	l.mu.Lock()
	var deliveries [][]byte
	for {
		res, ok := l.deframer.Next()
		if !ok {
			break
		}
		switch {
		case res.Ack:
			l.ctrl.OnAck()
		case l.ctrl != nil:
			if payload, deliver := l.ctrl.OnData(res.Seq, res.Payload); deliver {
				deliveries = append(deliveries, payload)
			}
		default:
			deliveries = append(deliveries, res.Payload)
		}
	}
	if l.ctrl != nil {
		l.ctrl.Tick()
	}
	l.mu.Unlock()

	for _, payload := range deliveries {
		l.client.Receive(payload)
		l.events.FrameDelivered(len(payload))
	}
}

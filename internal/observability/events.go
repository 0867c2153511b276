package observability

import "github.com/rs/zerolog"

// Events receives link-layer protocol events at defined points.
//
// Implementations must be cheap and non-blocking; the link invokes the
// sink from its driving loop.
type Events interface {
	FrameDelivered(size int)
	FrameDamaged(reason string, size int)
	AckSent()
	AckReceived()
	TimeoutFired(frameNum byte)
	DuplicateDiscarded(frameNum byte)
}

// NopEvents discards every event.
type NopEvents struct{}

func (NopEvents) FrameDelivered(int)       {}
func (NopEvents) FrameDamaged(string, int) {}
func (NopEvents) AckSent()                 {}
func (NopEvents) AckReceived()             {}
func (NopEvents) TimeoutFired(byte)        {}
func (NopEvents) DuplicateDiscarded(byte)  {}

// LogEvents writes each event as a structured log line.
type LogEvents struct {
	Logger zerolog.Logger
	Link   string
}

func NewLogEvents(logger zerolog.Logger, link string) LogEvents {
	return LogEvents{Logger: logger, Link: link}
}

func (e LogEvents) FrameDelivered(size int) {
	e.Logger.Debug().Str("link", e.Link).Int("bytes", size).Msg("frame_delivered")
}

func (e LogEvents) FrameDamaged(reason string, size int) {
	e.Logger.Warn().Str("link", e.Link).Str("reason", reason).Int("bytes", size).Msg("frame_damaged")
}

func (e LogEvents) AckSent() {
	e.Logger.Debug().Str("link", e.Link).Msg("ack_sent")
}

func (e LogEvents) AckReceived() {
	e.Logger.Debug().Str("link", e.Link).Msg("ack_received")
}

func (e LogEvents) TimeoutFired(frameNum byte) {
	e.Logger.Warn().Str("link", e.Link).Uint8("frame_num", frameNum).Msg("timeout_resend")
}

func (e LogEvents) DuplicateDiscarded(frameNum byte) {
	e.Logger.Debug().Str("link", e.Link).Uint8("frame_num", frameNum).Msg("duplicate_discarded")
}

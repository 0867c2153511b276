package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "frames_delivered_total",
			Help:      "Verified in-order frames delivered to the client.",
		},
		[]string{"link"},
	)
	framesDamaged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "frames_damaged_total",
			Help:      "Frames discarded for checksum mismatch or resynchronization.",
		},
		[]string{"link", "reason"},
	)
	acksSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "acks_sent_total",
			Help:      "Acknowledgment frames transmitted.",
		},
		[]string{"link"},
	)
	acksReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "acks_received_total",
			Help:      "Acknowledgment frames received.",
		},
		[]string{"link"},
	)
	retransmits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "retransmits_total",
			Help:      "Timeout-driven frame retransmissions.",
		},
		[]string{"link"},
	)
	duplicatesDiscarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkctl",
			Subsystem: "link",
			Name:      "duplicates_discarded_total",
			Help:      "Duplicate data frames discarded (but re-acknowledged).",
		},
		[]string{"link"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesDelivered, framesDamaged,
			acksSent, acksReceived,
			retransmits, duplicatesDiscarded,
		)
	})
}

// MeteredEvents forwards events to Next while updating the link counters.
type MeteredEvents struct {
	Link string
	Next Events
}

func NewMeteredEvents(link string, next Events) MeteredEvents {
	RegisterMetrics()
	if next == nil {
		next = NopEvents{}
	}
	return MeteredEvents{Link: link, Next: next}
}

func (m MeteredEvents) FrameDelivered(size int) {
	framesDelivered.WithLabelValues(m.Link).Inc()
	m.Next.FrameDelivered(size)
}

func (m MeteredEvents) FrameDamaged(reason string, size int) {
	framesDamaged.WithLabelValues(m.Link, reason).Inc()
	m.Next.FrameDamaged(reason, size)
}

func (m MeteredEvents) AckSent() {
	acksSent.WithLabelValues(m.Link).Inc()
	m.Next.AckSent()
}

func (m MeteredEvents) AckReceived() {
	acksReceived.WithLabelValues(m.Link).Inc()
	m.Next.AckReceived()
}

func (m MeteredEvents) TimeoutFired(frameNum byte) {
	retransmits.WithLabelValues(m.Link).Inc()
	m.Next.TimeoutFired(frameNum)
}

func (m MeteredEvents) DuplicateDiscarded(frameNum byte) {
	duplicatesDiscarded.WithLabelValues(m.Link).Inc()
	m.Next.DuplicateDiscarded(frameNum)
}

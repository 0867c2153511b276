package network

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrNoLinks           = errors.New("network: host has no links")
	ErrNilChooser        = errors.New("network: chooser is required")
	ErrChooserOutOfRange = errors.New("network: chooser selected a link out of range")
)

// Sender is the outbound face of one data link.
type Sender interface {
	Send(payload []byte) bool
}

// Chooser picks the outbound link index for a destination. The policy
// itself lives with the caller.
type Chooser interface {
	Choose(destination uint32, numLinks int) int
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(destination uint32, numLinks int) int

func (f ChooserFunc) Choose(destination uint32, numLinks int) int {
	return f(destination, numLinks)
}

// Client consumes data addressed to this host.
type Client interface {
	Receive(data []byte)
}

// Host packs outbound data into addressed packets and resolves inbound
// link payloads: packets for its own address are handed to the client,
// anything else is forwarded on a chosen link. Host satisfies the
// link-layer client contract, so it can sit directly above links.
type Host struct {
	mu      sync.Mutex
	addr    uint32
	links   []Sender
	chooser Chooser
	client  Client
	logger  zerolog.Logger

	inbound []byte
}

// NewHost builds a host with the given address above one or more links.
func NewHost(addr uint32, links []Sender, chooser Chooser, client Client, logger zerolog.Logger) (*Host, error) {
	if len(links) == 0 {
		return nil, ErrNoLinks
	}
	if chooser == nil {
		return nil, ErrNilChooser
	}
	return &Host{
		addr:    addr,
		links:   append([]Sender(nil), links...),
		chooser: chooser,
		client:  client,
		logger:  logger,
	}, nil
}

// Addr returns the host address.
func (h *Host) Addr() uint32 {
	return h.addr
}

// Send packs data for destination and offers it to a chosen link.
// It reports whether the link accepted the packet.
func (h *Host) Send(destination uint32, data []byte) (bool, error) {
	packet := EncodePacket(h.addr, destination, data)
	return h.route(destination, packet)
}

func (h *Host) route(destination uint32, packet []byte) (bool, error) {
	h.mu.Lock()
	idx := h.chooser.Choose(destination, len(h.links))
	if idx < 0 || idx >= len(h.links) {
		h.mu.Unlock()
		return false, ErrChooserOutOfRange
	}
	link := h.links[idx]
	h.mu.Unlock()
	return link.Send(packet), nil
}

// Receive accumulates link-delivered bytes and resolves every whole
// packet: deliver upward when addressed here, forward otherwise.
func (h *Host) Receive(payload []byte) {
	h.mu.Lock()
	h.inbound = append(h.inbound, payload...)
	var packets [][]byte
	for {
		packet, rest, ok := ExtractPacket(h.inbound)
		if !ok {
			break
		}
		packets = append(packets, append([]byte(nil), packet...))
		h.inbound = append(h.inbound[:0], rest...)
	}
	h.mu.Unlock()

	for _, raw := range packets {
		h.resolve(raw)
	}
}

func (h *Host) resolve(raw []byte) {
	packet, err := DecodePacket(raw)
	if err != nil {
		h.logger.Warn().Err(err).Msg("packet_discarded")
		return
	}
	if packet.Destination == h.addr {
		if h.client != nil {
			h.client.Receive(packet.Data)
		}
		return
	}
	accepted, err := h.route(packet.Destination, raw)
	if err != nil {
		h.logger.Warn().Err(err).Uint32("destination", packet.Destination).Msg("forward_failed")
		return
	}
	if !accepted {
		// The chosen link is busy; stop-and-wait has no forwarding
		// queue, so the packet is lost here and recovered hop-by-hop.
		h.logger.Debug().Uint32("destination", packet.Destination).Msg("forward_link_busy")
	}
}

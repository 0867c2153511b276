package network

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	lengthOffset      = 0
	sourceOffset      = 4
	destinationOffset = 8

	// HeaderLen is the fixed packet header size: total length, source
	// address, destination address, each a big-endian uint32.
	HeaderLen = 12
)

var (
	ErrPacketTooShort = errors.New("network: packet shorter than header")
	ErrLengthMismatch = errors.New("network: header length disagrees with packet")
	ErrLengthTooSmall = errors.New("network: declared length smaller than header")
)

// Packet is one network-layer datagram.
type Packet struct {
	Source      uint32
	Destination uint32
	Data        []byte
}

// EncodePacket packs the header at fixed offsets ahead of data.
func EncodePacket(source, destination uint32, data []byte) []byte {
	buf := make([]byte, HeaderLen+len(data))
	binary.BigEndian.PutUint32(buf[lengthOffset:], uint32(len(buf)))
	binary.BigEndian.PutUint32(buf[sourceOffset:], source)
	binary.BigEndian.PutUint32(buf[destinationOffset:], destination)
	copy(buf[HeaderLen:], data)
	return buf
}

// ExtractPacket removes one whole packet from the front of buf. ok is
// false while buf lacks a full header or the declared packet length.
func ExtractPacket(buf []byte) (packet []byte, rest []byte, ok bool) {
	if len(buf) < HeaderLen {
		return nil, buf, false
	}
	total := int(binary.BigEndian.Uint32(buf[lengthOffset:]))
	if total < HeaderLen || len(buf) < total {
		return nil, buf, false
	}
	return buf[:total], buf[total:], true
}

// DecodePacket validates the header and splits out the addresses and
// data of one extracted packet.
func DecodePacket(packet []byte) (Packet, error) {
	if len(packet) < HeaderLen {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrPacketTooShort, len(packet))
	}
	total := int(binary.BigEndian.Uint32(packet[lengthOffset:]))
	if total < HeaderLen {
		return Packet{}, fmt.Errorf("%w: %d", ErrLengthTooSmall, total)
	}
	if total != len(packet) {
		return Packet{}, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, total, len(packet))
	}
	return Packet{
		Source:      binary.BigEndian.Uint32(packet[sourceOffset:]),
		Destination: binary.BigEndian.Uint32(packet[destinationOffset:]),
		Data:        packet[HeaderLen:],
	}, nil
}

package checksum

import (
	"errors"
	"fmt"
	"strings"
)

const bitsPerByte = 8

var (
	ErrUnknownKind      = errors.New("checksum: unknown kind")
	ErrInvalidGenerator = errors.New("checksum: invalid generator polynomial")
	ErrInvalidWidth     = errors.New("checksum: invalid generator width")
)

// Kind selects the error-detection strategy.
type Kind int

const (
	KindParity Kind = iota
	KindCRC
)

// ParseKind maps a config string to a Kind.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "parity":
		return KindParity, nil
	case "crc":
		return KindCRC, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Config selects and parameterizes an engine.
type Config struct {
	Kind Kind
	// Generator is the full-form polynomial, leading bit included
	// (e.g. 0x1D5 for CRC-8/DVB-S2). Ignored for parity.
	Generator uint16
	// Width is the generator length in bits, so the check value
	// occupies Width-1 bits. Ignored for parity.
	Width int
}

// DefaultConfig returns the CRC-8/DVB-S2 engine parameters.
func DefaultConfig() Config {
	return Config{Kind: KindCRC, Generator: 0x1D5, Width: 9}
}

// Engine computes and verifies a one-byte check value over a byte
// sequence. Engines are pure; a mismatch is a false Verify, never an
// error.
type Engine interface {
	Compute(data []byte) byte
	Verify(data []byte, check byte) bool
}

// New constructs the engine selected by cfg.
func New(cfg Config) (Engine, error) {
	switch cfg.Kind {
	case KindParity:
		return Parity{}, nil
	case KindCRC:
		return NewCRC(cfg.Generator, cfg.Width)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, cfg.Kind)
	}
}

// Parity detects single-bit errors via the XOR of every input bit.
type Parity struct{}

// Compute returns 1 when the input holds an odd number of set bits.
func (Parity) Compute(data []byte) byte {
	var parity byte
	for _, b := range data {
		for pos := 0; pos < bitsPerByte; pos++ {
			parity ^= (b >> pos) & 1
		}
	}
	return parity
}

func (p Parity) Verify(data []byte, check byte) bool {
	return p.Compute(data) == check
}

// CRC computes the remainder of binary polynomial division by a fixed
// generator, bit-serial and MSB first, identical to straight long
// division of the message with Width-1 appended zero bits.
type CRC struct {
	generator uint16
	width     int
}

// NewCRC validates the full-form generator against its width in bits.
// The check value must fit one byte, so 2 <= width <= 9.
func NewCRC(generator uint16, width int) (*CRC, error) {
	if width < 2 || width > bitsPerByte+1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if generator>>(width-1) != 1 {
		return nil, fmt.Errorf("%w: %#x does not have bit %d as its leading term", ErrInvalidGenerator, generator, width-1)
	}
	return &CRC{generator: generator, width: width}, nil
}

// Compute returns the division remainder over data with Width-1 zero
// bits appended.
func (c *CRC) Compute(data []byte) byte {
	return byte(c.remainder(data, c.width-1))
}

// Verify recomputes the remainder and compares it to the received
// check value.
func (c *CRC) Verify(data []byte, check byte) bool {
	return c.Compute(data) == check
}

// remainder shifts every message bit, then pad zero bits, through the
// working register, reducing by the generator whenever its leading
// position fills.
func (c *CRC) remainder(data []byte, pad int) uint16 {
	var reg uint16
	step := func(bit uint16) {
		reg = reg<<1 | bit
		if reg>>(c.width-1)&1 == 1 {
			reg ^= c.generator
		}
	}
	for _, b := range data {
		for pos := bitsPerByte - 1; pos >= 0; pos-- {
			step(uint16(b>>pos) & 1)
		}
	}
	for i := 0; i < pad; i++ {
		step(0)
	}
	return reg
}

package framing

import (
	"errors"
	"fmt"
)

var ErrTagCollision = errors.New("framing: tag values must be distinct")

// TagSet holds the four reserved framing byte values. Any payload or
// trailer byte equal to one of them is escaped on the wire.
type TagSet struct {
	Start  byte
	Stop   byte
	Escape byte
	Ack    byte
}

// DefaultTags returns the reference tag alphabet.
func DefaultTags() TagSet {
	return TagSet{
		Start:  '{',
		Stop:   '}',
		Escape: '\\',
		Ack:    '@',
	}
}

func (t TagSet) Validate() error {
	seen := map[byte]string{}
	for _, tag := range []struct {
		name  string
		value byte
	}{
		{"start", t.Start},
		{"stop", t.Stop},
		{"escape", t.Escape},
		{"ack", t.Ack},
	} {
		if prev, ok := seen[tag.value]; ok {
			return fmt.Errorf("%w: %s and %s are both %#x", ErrTagCollision, prev, tag.name, tag.value)
		}
		seen[tag.value] = tag.name
	}
	return nil
}

// IsTag reports whether b collides with a reserved framing value.
func (t TagSet) IsTag(b byte) bool {
	return b == t.Start || b == t.Stop || b == t.Escape || b == t.Ack
}

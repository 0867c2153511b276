package checksum

import (
	"errors"
	"testing"

	"github.com/sigurn/crc8"
)

func TestParityCompute(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want byte
	}{
		{"empty", nil, 0},
		{"single even", []byte{0x03}, 0},
		{"single odd", []byte{0x01}, 1},
		{"AB cancels", []byte{0x41, 0x42}, 0},
		{"hello odd", []byte("hello"), 1},
		{"all ones", []byte{0xFF}, 0},
	}
	p := Parity{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Compute(tc.data); got != tc.want {
				t.Fatalf("parity(%v) got=%d want=%d", tc.data, got, tc.want)
			}
			if !p.Verify(tc.data, tc.want) {
				t.Fatalf("verify rejected matching parity")
			}
			if p.Verify(tc.data, tc.want^1) {
				t.Fatalf("verify accepted wrong parity")
			}
		})
	}
}

// longDivision is an independent straight polynomial division used to
// pin the bit-serial engine to the textbook arithmetic.
func longDivision(msg uint32, msgBits int, generator uint32, width int) byte {
	val := msg << (width - 1)
	for i := msgBits - 1; i >= 0; i-- {
		if val>>(i+width-1)&1 == 1 {
			val ^= generator << i
		}
	}
	return byte(val)
}

func TestCRCMatchesLongDivision(t *testing.T) {
	engine, err := NewCRC(0x1A7, 9)
	if err != nil {
		t.Fatalf("new crc: %v", err)
	}
	got := engine.Compute([]byte{0x41, 0x42})
	if got != 0xA0 {
		t.Fatalf("crc(0x1A7, 4142) got=%#x want=0xa0", got)
	}
	if want := longDivision(0x4142, 16, 0x1A7, 9); got != want {
		t.Fatalf("bit-serial %#x != long division %#x", got, want)
	}
	if !engine.Verify([]byte{0x41, 0x42}, 0xA0) {
		t.Fatalf("verify rejected correct checksum")
	}
	if engine.Verify([]byte{0x41, 0x42}, 0xA1) {
		t.Fatalf("verify accepted wrong checksum")
	}
}

func TestCRCMatchesDVBS2Reference(t *testing.T) {
	engine, err := NewCRC(0x1D5, 9)
	if err != nil {
		t.Fatalf("new crc: %v", err)
	}
	table := crc8.MakeTable(crc8.CRC8_DVB_S2)

	if got := engine.Compute([]byte("123456789")); got != 0xBC {
		t.Fatalf("dvb-s2 check value got=%#x want=0xbc", got)
	}
	inputs := [][]byte{
		nil,
		{0x00},
		{0x41, 0x42},
		[]byte("hello"),
		{0x7B, 0x7D, 0x5C, 0x40},
		{0xFF, 0xFF, 0xFF, 0xFF},
	}
	for _, in := range inputs {
		if got, want := engine.Compute(in), crc8.Checksum(in, table); got != want {
			t.Fatalf("crc(%v) got=%#x want=%#x", in, got, want)
		}
	}
}

func TestCRCDetectsSingleBitAndShortBurstErrors(t *testing.T) {
	engine, err := NewCRC(0x1D5, 9)
	if err != nil {
		t.Fatalf("new crc: %v", err)
	}
	data := []byte("link-layer payload")
	check := engine.Compute(data)

	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), data...)
			flipped[i] ^= 1 << bit
			if engine.Verify(flipped, check) {
				t.Fatalf("single-bit error at byte %d bit %d undetected", i, bit)
			}
		}
	}
	// Burst errors shorter than the generator width.
	for span := 2; span <= 8; span++ {
		corrupted := append([]byte(nil), data...)
		corrupted[3] ^= byte(1<<span - 1)
		if engine.Verify(corrupted, check) {
			t.Fatalf("burst of %d bits undetected", span)
		}
	}
}

func TestNewCRCRejectsBadParameters(t *testing.T) {
	if _, err := NewCRC(0x1D5, 1); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("expected ErrInvalidWidth, got %v", err)
	}
	if _, err := NewCRC(0x1D5, 12); !errors.Is(err, ErrInvalidWidth) {
		t.Fatalf("expected ErrInvalidWidth, got %v", err)
	}
	if _, err := NewCRC(0x0D5, 9); !errors.Is(err, ErrInvalidGenerator) {
		t.Fatalf("expected ErrInvalidGenerator, got %v", err)
	}
	if _, err := NewCRC(0x3D5, 9); !errors.Is(err, ErrInvalidGenerator) {
		t.Fatalf("expected ErrInvalidGenerator, got %v", err)
	}
}

func TestParseKindAndNew(t *testing.T) {
	if k, err := ParseKind("  Parity "); err != nil || k != KindParity {
		t.Fatalf("parse parity: k=%v err=%v", k, err)
	}
	if k, err := ParseKind("crc"); err != nil || k != KindCRC {
		t.Fatalf("parse crc: k=%v err=%v", k, err)
	}
	if _, err := ParseKind("md5"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	if _, err := New(Config{Kind: KindParity}); err != nil {
		t.Fatalf("new parity: %v", err)
	}
	if _, err := New(DefaultConfig()); err != nil {
		t.Fatalf("new default crc: %v", err)
	}
	if _, err := New(Config{Kind: Kind(42)}); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

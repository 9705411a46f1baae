package bzpath

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidUUID is returned when a string cannot be parsed as a
// 16-, 32-, or 128-bit Bluetooth UUID.
var ErrInvalidUUID = fmt.Errorf("bzpath: invalid UUID")

// bluetoothBaseUUID is the SIG base UUID that short-form 16/32-bit
// UUIDs are embedded into: 0000XXXX-0000-1000-8000-00805F9B34FB.
const bluetoothBaseUUID = "00000000-0000-1000-8000-00805F9B34FB"

// GattUUID is a canonicalised Bluetooth UUID. Short (16/32-bit) forms
// remember their compact representation so Short16/Short32 can recover it.
type GattUUID struct {
	full  uuid.UUID
	short string // "" unless full sits in the Bluetooth base UUID range
}

// ParseUUID accepts a 4-hex-digit ("2A19"), 8-hex-digit ("0000180F"),
// or full 36-character hyphenated UUID string and returns its
// canonical GattUUID. Any other input fails with ErrInvalidUUID.
func ParseUUID(s string) (GattUUID, error) {
	switch len(s) {
	case 4, 8:
		if !isHex(s) {
			return GattUUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
		}
		padded := strings.Repeat("0", 8-len(s)) + strings.ToLower(s)
		full := strings.Replace(bluetoothBaseUUID, "00000000", padded, 1)
		u, err := uuid.Parse(full)
		if err != nil {
			return GattUUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
		}
		return GattUUID{full: u, short: shortFormOf(u)}, nil
	case 36:
		u, err := uuid.Parse(s)
		if err != nil {
			return GattUUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
		}
		return GattUUID{full: u, short: shortFormOf(u)}, nil
	default:
		return GattUUID{}, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
}

// MustParseUUID is like ParseUUID but panics on error; intended for
// compile-time-literal UUIDs in configurators and tests.
func MustParseUUID(s string) GattUUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// String renders the UUID in canonical uppercase 128-bit form, e.g.
// "00002A19-0000-1000-8000-00805F9B34FB".
func (g GattUUID) String() string {
	return strings.ToUpper(g.full.String())
}

// IsShort reports whether this UUID sits in the Bluetooth base UUID
// range and therefore has a compact 16- or 32-bit representation.
func (g GattUUID) IsShort() bool {
	return g.short != ""
}

// Short16 returns the 4-hex-digit form and true if this UUID is a
// 16-bit Bluetooth-assigned UUID.
func (g GattUUID) Short16() (string, bool) {
	if len(g.short) == 4 {
		return g.short, true
	}
	return "", false
}

// Short32 returns the 8-hex-digit form and true if this UUID has a
// compact 32-bit representation (includes 16-bit UUIDs zero-extended).
func (g GattUUID) Short32() (string, bool) {
	if g.short == "" {
		return "", false
	}
	if len(g.short) == 4 {
		return "0000" + g.short, true
	}
	return g.short, true
}

func (g GattUUID) Equal(other GattUUID) bool {
	return g.full == other.full
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func shortFormOf(u uuid.UUID) string {
	s := strings.ToUpper(u.String())
	// Bluetooth base UUID with the low 32 bits free: 0000XXXX-0000-1000-8000-00805F9B34FB
	const baseTail = "-0000-1000-8000-00805F9B34FB"
	if !strings.HasSuffix(s, strings.ToUpper(baseTail)) {
		return ""
	}
	head := s[:8]
	if strings.HasPrefix(head, "0000") {
		return head[4:]
	}
	return head
}

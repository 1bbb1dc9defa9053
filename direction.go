package dirz

import (
	"fmt"
	"strings"
)

// Direction tags a transformation with the way it moves state.
type Direction uint8

const (
	// Forward moves state from interior to exterior (top-down).
	Forward Direction = 0x01
	// Backward moves state from exterior to interior (bottom-up).
	Backward Direction = 0x02
)

// String returns the legacy tag, IN for Forward and OUT for Backward.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "IN"
	case Backward:
		return "OUT"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Valid reports whether d is Forward or Backward.
func (d Direction) Valid() bool {
	return d == Forward || d == Backward
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case Forward:
		return Backward
	case Backward:
		return Forward
	default:
		return d
	}
}

// ParseDirection accepts in, out, forward, and backward in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "forward":
		return Forward, nil
	case "out", "backward":
		return Backward, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

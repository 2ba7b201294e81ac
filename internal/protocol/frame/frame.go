// Package frame handles the opaque 4-byte prefix some transports put in
// front of a message body. The prefix is detected and preserved, never
// interpreted.
package frame

import (
	"errors"
	"fmt"
	"io"
)

const PrefixLen = 4

var (
	ErrPrefixLen      = errors.New("frame: prefix must be empty or 4 bytes")
	ErrPacketTooLarge = errors.New("frame: packet too large")
)

// Limits constrains how much packet data is read into memory.
type Limits struct {
	MaxPacketBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxPacketBytes: 8 * 1024 * 1024,
	}
}

// Allow reports whether a packet of n bytes is within limits. A
// non-positive MaxPacketBytes disables the check.
func (l Limits) Allow(n int) bool {
	return l.MaxPacketBytes <= 0 || int64(n) <= l.MaxPacketBytes
}

// HasPrefix reports whether b starts with a packet prefix: at least four
// bytes with a zero first byte.
func HasPrefix(b []byte) bool {
	return len(b) >= PrefixLen && b[0] == 0x00
}

// Split separates the prefix from the body. prefix is empty when none is
// detected. Both results are copies.
func Split(b []byte) (prefix, body []byte) {
	if !HasPrefix(b) {
		return []byte{}, clone(b)
	}
	return clone(b[:PrefixLen]), clone(b[PrefixLen:])
}

// Strip returns the body of b without its prefix, or b itself when no
// prefix is present.
func Strip(b []byte) []byte {
	if !HasPrefix(b) {
		return b
	}
	return b[PrefixLen:]
}

// Join puts prefix back in front of body.
func Join(prefix, body []byte) []byte {
	if len(prefix) == 0 {
		return body
	}
	out := make([]byte, 0, len(prefix)+len(body))
	out = append(out, prefix...)
	return append(out, body...)
}

// CheckPrefix validates a caller-supplied prefix.
func CheckPrefix(prefix []byte) error {
	if len(prefix) != 0 && len(prefix) != PrefixLen {
		return fmt.Errorf("%w: got %d", ErrPrefixLen, len(prefix))
	}
	return nil
}

// ReadPacket reads r to EOF, failing once more than limits allow has been
// read.
func ReadPacket(r io.Reader, limits Limits) ([]byte, error) {
	if limits.MaxPacketBytes <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limits.MaxPacketBytes+1))
	if err != nil {
		return nil, err
	}
	if !limits.Allow(len(b)) {
		return nil, ErrPacketTooLarge
	}
	return b, nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

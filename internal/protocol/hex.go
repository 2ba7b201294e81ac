package protocol

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidHex = errors.New("protocol: invalid hex input")

// HexMarker prefixes opaque bytes in the JSON projection.
const HexMarker = "hex->"

// EncodeHex renders b as uppercase hex digits.
func EncodeHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// DecodeHex keeps only hex digits from s and decodes them. An odd digit
// count is padded with a leading zero.
func DecodeHex(s string) []byte {
	digits := StripNonHex(s)
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	out, err := hex.DecodeString(digits)
	if err != nil {
		// Unreachable: digits holds only hex characters.
		return []byte{}
	}
	return out
}

// ParseHex decodes hex text typed by a user. Whitespace between digits is
// allowed; any other non-hex character or an odd digit count is an error.
func ParseHex(s string) ([]byte, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd digit count %d", ErrInvalidHex, len(digits))
	}
	out, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return out, nil
}

// StripNonHex drops every character of s that is not a hex digit.
func StripNonHex(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// setString applies the JSON string convention: a HexMarker prefix means
// opaque bytes, anything else is text.
func (lv *LenValue) setString(s string) {
	if rest, ok := strings.CutPrefix(s, HexMarker); ok {
		lv.setOpaque(DecodeHex(rest))
		return
	}
	lv.setText(s)
}

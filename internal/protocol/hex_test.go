package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestParseHexAcceptsWhitespace(t *testing.T) {
	got, err := ParseHex(" 08 96\n01\t12 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !bytes.Equal(got, []byte{0x08, 0x96, 0x01, 0x12}) {
		t.Fatalf("unexpected bytes: % x", got)
	}
	got, err = ParseHex("")
	if err != nil || len(got) != 0 {
		t.Fatalf("empty input: % x %v", got, err)
	}
}

func TestParseHexRejectsStrayCharacters(t *testing.T) {
	for _, in := range []string{"0x08", "08:96", "089", "zz", "08 9"} {
		if _, err := ParseHex(in); !errors.Is(err, ErrInvalidHex) {
			t.Fatalf("%q: expected ErrInvalidHex, got %v", in, err)
		}
	}
}

func TestDecodeHexIsLenient(t *testing.T) {
	if got := DecodeHex("0x08"); !bytes.Equal(got, []byte{0x00, 0x08}) {
		t.Fatalf("unexpected bytes: % x", got)
	}
	if got := DecodeHex("de:ad"); !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Fatalf("unexpected bytes: % x", got)
	}
}

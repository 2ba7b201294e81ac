package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danmuck/protoedit/internal/testutil/testlog"
)

var scenarioA = []byte{0x08, 0x96, 0x01, 0x12, 0x07, 0x74, 0x65, 0x73, 0x74, 0x69, 0x6e, 0x67}

func TestDecodeScenarioA(t *testing.T) {
	testlog.Start(t)
	m := mustDecode(t, scenarioA)

	want := []string{"1:0:150", `2:text:"testing"`}
	if diff := cmp.Diff(want, summary(m)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := jsonOf(m); got != `{"1":150,"2":"testing"}` {
		t.Fatalf("unexpected json: %s", got)
	}
	if got := mustEncode(t, m); !bytes.Equal(got, scenarioA) {
		t.Fatalf("round-trip mismatch: % x", got)
	}
	if len(m.Prefix()) != 0 {
		t.Fatalf("unexpected prefix: % x", m.Prefix())
	}
}

func TestRoundTripPreservesOrderAndRepeats(t *testing.T) {
	testlog.Start(t)
	nested := cat(varintField(3, 1), lenField(4, []byte("order-42")), varintField(3, 2))
	in := cat(
		varintField(1, 150),
		lenField(2, []byte("testing")),
		varintField(1, 1<<63), // negative int64 on the wire
		lenField(5, nested),
		fixed32Field(6, 0xFFFFFFFE),
		fixed64Field(7, 0x0102030405060708),
		lenField(8, []byte{0xFF, 0xFE, 0x00}),
		lenField(2, []byte{}),
		lenField(5, nested),
	)

	m := mustDecode(t, in)
	_ = m.ToJSON() // classify every payload before encoding
	if got := mustEncode(t, m); !bytes.Equal(got, in) {
		t.Fatalf("round-trip mismatch:\n got % x\nwant % x", got, in)
	}

	want := []string{
		"1:0:150",
		`2:text:"testing"`,
		"1:0:-9223372036854775808",
		`5:message:[3:0:1 4:text:"order-42" 3:0:2]`,
		"6:5:-2",
		"7:1:72623859790382856",
		"8:opaque:FFFE00",
		`2:text:""`,
		`5:message:[3:0:1 4:text:"order-42" 3:0:2]`,
	}
	if diff := cmp.Diff(want, summary(m)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDetectsPrefix(t *testing.T) {
	prefix := []byte{0x00, 0x00, 0x01, 0x2C}
	packet := cat(prefix, scenarioA)

	m := mustDecode(t, packet)
	if !bytes.Equal(m.Prefix(), prefix) {
		t.Fatalf("unexpected prefix: % x", m.Prefix())
	}
	if got := mustEncode(t, m); !bytes.Equal(got, scenarioA) {
		t.Fatalf("body mismatch: % x", got)
	}
	full, err := m.EncodePacket()
	if err != nil {
		t.Fatalf("encode packet: %v", err)
	}
	if !bytes.Equal(full, packet) {
		t.Fatalf("packet mismatch: % x", full)
	}
}

func TestDecodeMessageSkipsPrefixDetection(t *testing.T) {
	_, err := DecodeMessage([]byte{0x00, 0x00, 0x01, 0x2C})
	if !errors.Is(err, ErrInvalidFieldNumber) {
		t.Fatalf("expected ErrInvalidFieldNumber, got %v", err)
	}
}

func TestDecodeRejectsReservedWireTypes(t *testing.T) {
	for _, wt := range []byte{3, 4, 6, 7} {
		_, err := Decode(cat(scenarioA, []byte{0x18 | wt, 0x01}))
		if !errors.Is(err, ErrInvalidWireType) {
			t.Fatalf("wire type %d: expected ErrInvalidWireType, got %v", wt, err)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	for i := 1; i < len(scenarioA); i++ {
		if i == 3 {
			continue // clean boundary after field 1
		}
		_, err := Decode(scenarioA[:i])
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("cut at %d: expected ErrTruncated, got %v", i, err)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	m := mustDecode(t, nil)
	if m.Len() != 0 {
		t.Fatalf("expected no fields, got %d", m.Len())
	}
	if got := mustEncode(t, m); len(got) != 0 {
		t.Fatalf("expected empty encoding, got % x", got)
	}
}

func TestEncodeNegativeVarint(t *testing.T) {
	m := NewMessage()
	m.Append(NewVarint(1, -1))
	want := []byte{0x08, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01}
	if got := mustEncode(t, m); !bytes.Equal(got, want) {
		t.Fatalf("unexpected encoding: % x", got)
	}
}

func TestEncodeFixedWidthLittleEndian(t *testing.T) {
	m := NewMessage()
	m.Append(NewFixed32(1, -2))
	m.Append(NewFixed64(2, 0x0102030405060708))
	want := []byte{
		0x0D, 0xFE, 0xFF, 0xFF, 0xFF,
		0x11, 0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if got := mustEncode(t, m); !bytes.Equal(got, want) {
		t.Fatalf("unexpected encoding: % x", got)
	}
}

func TestEncodeReportsInvalidFieldNumber(t *testing.T) {
	testlog.Start(t)
	m := NewMessage()
	m.Append(NewVarint(1, 1))
	m.Append(NewVarint(0, 1))
	got, err := m.Encode()
	if !errors.Is(err, ErrInvalidFieldNumber) {
		t.Fatalf("expected ErrInvalidFieldNumber, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no output on error, got % x", got)
	}
}

func TestSetPrefixValidates(t *testing.T) {
	m := NewMessage()
	if err := m.SetPrefix([]byte{1, 2}); !errors.Is(err, ErrInvalidPrefix) {
		t.Fatalf("expected ErrInvalidPrefix, got %v", err)
	}
	if err := m.SetPrefix([]byte{0, 0, 0, 7}); err != nil {
		t.Fatalf("set prefix: %v", err)
	}
	m.Append(NewVarint(1, 1))
	full, err := m.EncodePacket()
	if err != nil {
		t.Fatalf("encode packet: %v", err)
	}
	if !bytes.Equal(full, []byte{0, 0, 0, 7, 0x08, 0x01}) {
		t.Fatalf("unexpected packet: % x", full)
	}
	m.Clear()
	if m.Len() != 0 || len(m.Prefix()) != 0 {
		t.Fatalf("clear left state behind")
	}
}

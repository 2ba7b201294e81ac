package tlv

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncodeDecodeRecordsRoundTripPreservesOrder(t *testing.T) {
	in := []Record{
		{Number: 2, Type: protowire.BytesType, Bytes: []byte("intent-1")},
		{Number: 1, Type: protowire.VarintType, Value: 150},
		{Number: 2, Type: protowire.BytesType, Bytes: []byte{0xAA, 0xBB}},
		{Number: 7, Type: protowire.Fixed32Type, Value: 0xDEADBEEF},
		{Number: 8, Type: protowire.Fixed64Type, Value: 1 << 63},
	}
	b, err := EncodeRecords(in)
	if err != nil {
		t.Fatalf("encode records: %v", err)
	}
	out, err := DecodeRecords(b)
	if err != nil {
		t.Fatalf("decode records: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d records, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i].Number != in[i].Number || out[i].Type != in[i].Type || out[i].Value != in[i].Value || !bytes.Equal(out[i].Bytes, in[i].Bytes) {
			t.Fatalf("record %d mismatch: got %+v want %+v", i, out[i], in[i])
		}
	}
	again, err := EncodeRecords(out)
	if err != nil {
		t.Fatalf("re-encode records: %v", err)
	}
	if !bytes.Equal(b, again) {
		t.Fatalf("round-trip mismatch: % x vs % x", b, again)
	}
}

func TestDecodeRecordsEmpty(t *testing.T) {
	out, err := DecodeRecords(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no records, got %d", len(out))
	}
}

func TestDecodeRecordsRejectsGroupMarkers(t *testing.T) {
	for _, wt := range []byte{3, 4, 6, 7} {
		_, err := DecodeRecords([]byte{0x08 | wt})
		if !errors.Is(err, ErrInvalidWireType) {
			t.Fatalf("wire type %d: expected ErrInvalidWireType, got %v", wt, err)
		}
	}
}

func TestDecodeRecordsTruncatedIsDeterministic(t *testing.T) {
	cases := [][]byte{
		{0x08},                         // tag without varint
		{0x08, 0x96},                   // varint continuation missing
		{0x12, 0x05, 'a', 'b'},         // length exceeds payload
		{0x0d, 0x01, 0x02},             // fixed32 short
		{0x09, 1, 2, 3, 4, 5, 6, 7},    // fixed64 short
		{0x08, 0x01, 0x92},             // second tag cut
	}
	for _, b := range cases {
		_, err := DecodeRecords(b)
		if !errors.Is(err, ErrTruncated) {
			t.Fatalf("% x: expected ErrTruncated, got %v", b, err)
		}
	}
}

func TestDecodeRecordsRejectsFieldZero(t *testing.T) {
	_, err := DecodeRecords([]byte{0x00, 0x01})
	if !errors.Is(err, ErrInvalidFieldNumber) {
		t.Fatalf("expected ErrInvalidFieldNumber, got %v", err)
	}
}

func TestAppendRecordValidates(t *testing.T) {
	if _, err := AppendRecord(nil, Record{Number: 0, Type: protowire.VarintType}); !errors.Is(err, ErrInvalidFieldNumber) {
		t.Fatalf("expected ErrInvalidFieldNumber, got %v", err)
	}
	if _, err := AppendRecord(nil, Record{Number: 1, Type: protowire.StartGroupType}); !errors.Is(err, ErrInvalidWireType) {
		t.Fatalf("expected ErrInvalidWireType, got %v", err)
	}
}

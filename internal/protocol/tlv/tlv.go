// Package tlv reads and writes raw protobuf wire records (tag, then value)
// without interpreting length-delimited payloads.
package tlv

import (
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	ErrTruncated          = errors.New("tlv: truncated record")
	ErrInvalidWireType    = errors.New("tlv: unsupported wire type")
	ErrInvalidFieldNumber = errors.New("tlv: invalid field number")
	ErrMalformed          = errors.New("tlv: malformed record")
)

// Record is one wire record. Value holds the varint or fixed-width integer
// for scalar types; Bytes holds the payload of a length-delimited record.
type Record struct {
	Number protowire.Number
	Type   protowire.Type
	Value  uint64
	Bytes  []byte
}

// Supported reports whether t is one of the four wire types this package
// handles. Group markers (3, 4) and 6, 7 are not supported.
func Supported(t protowire.Type) bool {
	switch t {
	case protowire.VarintType, protowire.Fixed64Type, protowire.BytesType, protowire.Fixed32Type:
		return true
	default:
		return false
	}
}

// ConsumeRecord parses one record from the front of b and returns it with
// the number of bytes consumed. Bytes is copied out of b.
func ConsumeRecord(b []byte) (Record, int, error) {
	tag, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return Record{}, 0, consumeError(n)
	}
	num, typ := protowire.DecodeTag(tag)
	if !num.IsValid() {
		return Record{}, 0, fmt.Errorf("%w: %d", ErrInvalidFieldNumber, num)
	}
	if !Supported(typ) {
		return Record{}, 0, fmt.Errorf("%w: %d (field %d)", ErrInvalidWireType, typ, num)
	}

	rec := Record{Number: num, Type: typ}
	rest := b[n:]
	var m int
	switch typ {
	case protowire.VarintType:
		rec.Value, m = protowire.ConsumeVarint(rest)
	case protowire.Fixed64Type:
		rec.Value, m = protowire.ConsumeFixed64(rest)
	case protowire.Fixed32Type:
		var v uint32
		v, m = protowire.ConsumeFixed32(rest)
		rec.Value = uint64(v)
	case protowire.BytesType:
		var v []byte
		v, m = protowire.ConsumeBytes(rest)
		if m >= 0 {
			rec.Bytes = make([]byte, len(v))
			copy(rec.Bytes, v)
		}
	}
	if m < 0 {
		return Record{}, 0, fmt.Errorf("field %d: %w", num, consumeError(m))
	}
	return rec, n + m, nil
}

// DecodeRecords parses b to its end. An empty buffer yields no records.
func DecodeRecords(b []byte) ([]Record, error) {
	records := make([]Record, 0, 4)
	for off := 0; off < len(b); {
		rec, n, err := ConsumeRecord(b[off:])
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", off, err)
		}
		records = append(records, rec)
		off += n
	}
	return records, nil
}

// AppendRecord appends the wire form of r to b.
func AppendRecord(b []byte, r Record) ([]byte, error) {
	if !r.Number.IsValid() {
		return b, fmt.Errorf("%w: %d", ErrInvalidFieldNumber, r.Number)
	}
	if !Supported(r.Type) {
		return b, fmt.Errorf("%w: %d (field %d)", ErrInvalidWireType, r.Type, r.Number)
	}
	b = protowire.AppendTag(b, r.Number, r.Type)
	switch r.Type {
	case protowire.VarintType:
		b = protowire.AppendVarint(b, r.Value)
	case protowire.Fixed64Type:
		b = protowire.AppendFixed64(b, r.Value)
	case protowire.Fixed32Type:
		b = protowire.AppendFixed32(b, uint32(r.Value))
	case protowire.BytesType:
		b = protowire.AppendBytes(b, r.Bytes)
	}
	return b, nil
}

func EncodeRecords(records []Record) ([]byte, error) {
	out := make([]byte, 0, 16*len(records))
	for _, r := range records {
		var err error
		out, err = AppendRecord(out, r)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func consumeError(n int) error {
	err := protowire.ParseError(n)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

package protocol

import (
	"fmt"

	"github.com/danmuck/protoedit/internal/protocol/frame"
	"github.com/danmuck/protoedit/internal/protocol/tlv"
)

// Decode parses a packet. A leading 4-byte prefix (first byte 0x00) is
// stripped and kept on the message for EncodePacket.
func Decode(b []byte) (*Message, error) {
	prefix, body := frame.Split(b)
	m, err := DecodeMessage(body)
	if err != nil {
		return nil, err
	}
	m.prefix = prefix
	return m, nil
}

// DecodeMessage parses b as a bare message body with no prefix detection.
// Fields keep their wire order; length-delimited values are classified on
// first use.
func DecodeMessage(b []byte) (*Message, error) {
	records, err := tlv.DecodeRecords(b)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode: %w", err)
	}
	m := &Message{fields: make([]*Field, 0, len(records))}
	for _, rec := range records {
		m.fields = append(m.fields, fieldFromRecord(rec))
	}
	return m, nil
}

func fieldFromRecord(rec tlv.Record) *Field {
	f := &Field{Number: rec.Number, Type: rec.Type}
	switch rec.Type {
	case Varint, Fixed64:
		f.value = int64(rec.Value)
	case Fixed32:
		f.value = int64(int32(uint32(rec.Value)))
	case Bytes:
		f.lv = newLenValue(rec.Bytes)
	}
	return f
}

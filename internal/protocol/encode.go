package protocol

import (
	"fmt"

	"github.com/danmuck/protoedit/internal/logging"
	"github.com/danmuck/protoedit/internal/protocol/frame"
	"github.com/danmuck/protoedit/internal/protocol/tlv"
)

// Encode serializes the fields in order. Nested messages and text overlays
// are re-serialized fresh; untouched payloads are written verbatim.
func (m *Message) Encode() ([]byte, error) {
	out, err := m.encode()
	if err != nil {
		logging.Errf("protocol.Message.Encode fields=%d err=%v", m.Len(), err)
		return nil, err
	}
	return out, nil
}

// EncodePacket is Encode with the packet prefix, if any, put back in front.
func (m *Message) EncodePacket() ([]byte, error) {
	body, err := m.Encode()
	if err != nil {
		return nil, err
	}
	return frame.Join(m.prefix, body), nil
}

func (m *Message) encode() ([]byte, error) {
	out := make([]byte, 0, 16*m.Len())
	if m == nil {
		return out, nil
	}
	for i, f := range m.fields {
		rec, err := f.record()
		if err != nil {
			return nil, fmt.Errorf("protocol: encode field[%d] #%d: %w", i, f.Number, err)
		}
		out, err = tlv.AppendRecord(out, rec)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode field[%d] #%d: %w", i, f.Number, err)
		}
	}
	return out, nil
}

func (f *Field) record() (tlv.Record, error) {
	rec := tlv.Record{Number: f.Number, Type: f.Type}
	switch f.Type {
	case Varint, Fixed64:
		// Negative values go out as their two's-complement bit pattern.
		rec.Value = uint64(f.value)
	case Fixed32:
		rec.Value = uint64(uint32(f.value))
	case Bytes:
		if f.lv == nil {
			rec.Bytes = []byte{}
			return rec, nil
		}
		payload, err := f.lv.payload()
		if err != nil {
			return tlv.Record{}, err
		}
		rec.Bytes = payload
	}
	return rec, nil
}

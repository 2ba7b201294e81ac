package protocol

import (
	"fmt"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/jsonvalue"
)

func varintField(num protowire.Number, v uint64) []byte {
	b := protowire.AppendTag(nil, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func fixed32Field(num protowire.Number, v uint32) []byte {
	b := protowire.AppendTag(nil, num, protowire.Fixed32Type)
	return protowire.AppendFixed32(b, v)
}

func fixed64Field(num protowire.Number, v uint64) []byte {
	b := protowire.AppendTag(nil, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, v)
}

func lenField(num protowire.Number, payload []byte) []byte {
	b := protowire.AppendTag(nil, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// summary renders fields as "num:type:value" strings for cmp.Diff.
func summary(m *Message) []string {
	out := make([]string, 0, m.Len())
	for _, f := range m.Fields() {
		switch f.Type {
		case Bytes:
			c, err := f.Content()
			if err != nil {
				out = append(out, fmt.Sprintf("%d:bytes:error(%v)", f.Number, err))
				continue
			}
			switch c.Kind {
			case KindMessage:
				out = append(out, fmt.Sprintf("%d:message:%v", f.Number, summary(c.Message)))
			case KindText:
				out = append(out, fmt.Sprintf("%d:text:%q", f.Number, c.Text))
			default:
				out = append(out, fmt.Sprintf("%d:opaque:%s", f.Number, EncodeHex(c.Raw)))
			}
		default:
			v, _ := f.Int64()
			out = append(out, fmt.Sprintf("%d:%d:%d", f.Number, f.Type, v))
		}
	}
	return out
}

func mustDecode(t *testing.T, b []byte) *Message {
	t.Helper()
	m, err := Decode(b)
	if err != nil {
		t.Fatalf("decode % x: %v", b, err)
	}
	return m
}

func mustEncode(t *testing.T, m *Message) []byte {
	t.Helper()
	b, err := m.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return b
}

func mustObject(t *testing.T, src string) *jsonvalue.Object {
	t.Helper()
	obj, err := jsonvalue.ParseObject([]byte(src))
	if err != nil {
		t.Fatalf("parse %s: %v", src, err)
	}
	return obj
}

func jsonOf(m *Message) string {
	return string(jsonvalue.Marshal(m.ToJSON()))
}

package protocol

import (
	"strconv"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/jsonvalue"
	"github.com/danmuck/protoedit/internal/logging"
)

// ToJSON projects m to a JSON object keyed by field number, in order of
// first appearance. Repeated numbers collapse into an array in wire order.
// Length-delimited values are classified here if they were not already.
func (m *Message) ToJSON() *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	if m == nil {
		return obj
	}
	for _, f := range m.fields {
		key := strconv.Itoa(int(f.Number))
		v := f.jsonValue()
		existing, ok := obj.Get(key)
		switch {
		case !ok:
			obj.Set(key, v)
		case existing.Kind() == jsonvalue.KindArray:
			obj.Set(key, append(existing.(jsonvalue.Array), v))
		default:
			obj.Set(key, jsonvalue.Array{existing, v})
		}
	}
	return obj
}

func (f *Field) jsonValue() jsonvalue.Value {
	if f.Type != Bytes {
		return jsonvalue.Int(f.value)
	}
	if f.lv == nil {
		return jsonvalue.Text("")
	}
	c := f.lv.content()
	switch c.Kind {
	case KindMessage:
		return c.Message.ToJSON()
	case KindText:
		return jsonvalue.Text(c.Text)
	default:
		return jsonvalue.Text(HexMarker + EncodeHex(c.Raw))
	}
}

// FromJSON builds a message from its JSON projection. Objects become nested
// messages, arrays expand to repeated fields, strings become text (or
// opaque bytes behind HexMarker) and numbers become varints. Nulls are
// dropped; keys that are not field numbers and other value shapes are
// skipped with a warning.
func FromJSON(obj *jsonvalue.Object) *Message {
	m := NewMessage()
	obj.Each(func(key string, v jsonvalue.Value) {
		num, ok := parseFieldNumber(key)
		if !ok {
			logging.Warnf("protocol.FromJSON skip key=%q reason=%q", key, "not a field number")
			return
		}
		if arr, ok := v.(jsonvalue.Array); ok {
			for _, el := range arr {
				m.appendJSON(num, el)
			}
			return
		}
		m.appendJSON(num, v)
	})
	return m
}

func (m *Message) appendJSON(num protowire.Number, v jsonvalue.Value) {
	switch t := v.(type) {
	case *jsonvalue.Object:
		m.Append(NewSubMessage(num, FromJSON(t)))
	case jsonvalue.Number:
		n, err := t.Int64()
		if err != nil {
			logging.Warnf("protocol.FromJSON skip field=%d value=%q err=%v", num, string(t), err)
			return
		}
		m.Append(NewVarint(num, n))
	case jsonvalue.Text:
		f := &Field{Number: num, Type: Bytes, lv: newLenValue(nil)}
		f.lv.setString(string(t))
		m.Append(f)
	case jsonvalue.Null:
	default:
		logging.Warnf("protocol.FromJSON skip field=%d reason=%q kind=%s", num, "unsupported value", v.Kind())
	}
}

func parseFieldNumber(key string) (protowire.Number, bool) {
	n, err := strconv.ParseInt(key, 10, 32)
	if err != nil {
		return 0, false
	}
	num := protowire.Number(n)
	return num, num.IsValid()
}

package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Wire types understood by the editor.
const (
	Varint  = protowire.VarintType
	Fixed64 = protowire.Fixed64Type
	Bytes   = protowire.BytesType
	Fixed32 = protowire.Fixed32Type
)

// View is the chosen interpretation of a length-delimited value.
type View uint8

const (
	ViewAuto View = iota
	ViewSub
	ViewUTF8
	ViewHex
)

func (v View) String() string {
	switch v {
	case ViewAuto:
		return "auto"
	case ViewSub:
		return "sub"
	case ViewUTF8:
		return "utf8"
	case ViewHex:
		return "hex"
	default:
		return "unknown"
	}
}

// Field is one decoded wire record. Scalar wire types keep their integer in
// value; length-delimited fields keep a *LenValue.
type Field struct {
	Number protowire.Number
	Type   protowire.Type
	value  int64
	lv     *LenValue
}

type lenState uint8

const (
	lenRaw lenState = iota
	lenMessage
	lenText
)

// LenValue holds the bytes of a length-delimited field plus at most one
// decoded overlay. When the overlay is set it is authoritative and raw is
// re-derived from it on encode.
type LenValue struct {
	raw   []byte
	state lenState
	msg   *Message
	text  string
	view  View
}

// Message is an ordered field sequence with an optional opaque packet
// prefix. The zero value is an empty message.
type Message struct {
	fields []*Field
	prefix []byte
}

func NewMessage() *Message {
	return &Message{}
}

// Fields returns the fields in wire order. The slice is a copy; the fields
// are shared.
func (m *Message) Fields() []*Field {
	if m == nil {
		return nil
	}
	out := make([]*Field, len(m.fields))
	copy(out, m.fields)
	return out
}

func (m *Message) Len() int {
	if m == nil {
		return 0
	}
	return len(m.fields)
}

// Append adds f after the last field.
func (m *Message) Append(f *Field) {
	if f == nil {
		return
	}
	m.fields = append(m.fields, f)
}

// Clear drops all fields and the prefix.
func (m *Message) Clear() {
	m.fields = nil
	m.prefix = nil
}

// Prefix returns a copy of the packet prefix, empty when none was detected.
func (m *Message) Prefix() []byte {
	if m == nil || len(m.prefix) == 0 {
		return []byte{}
	}
	out := make([]byte, len(m.prefix))
	copy(out, m.prefix)
	return out
}

func newLenValue(raw []byte) *LenValue {
	if raw == nil {
		raw = []byte{}
	}
	return &LenValue{raw: raw, view: ViewAuto}
}

func (lv *LenValue) View() View {
	return lv.view
}

// payload returns the bytes to put on the wire, re-serializing the overlay
// when one is set.
func (lv *LenValue) payload() ([]byte, error) {
	switch lv.state {
	case lenMessage:
		b, err := lv.msg.encode()
		if err != nil {
			return nil, err
		}
		lv.raw = b
	case lenText:
		lv.raw = []byte(lv.text)
	}
	return lv.raw, nil
}

func (lv *LenValue) setOpaque(raw []byte) {
	if raw == nil {
		raw = []byte{}
	}
	lv.raw = raw
	lv.state = lenRaw
	lv.msg = nil
	lv.text = ""
	lv.view = ViewHex
}

func (lv *LenValue) setText(s string) {
	lv.raw = []byte(s)
	lv.state = lenText
	lv.msg = nil
	lv.text = s
	lv.view = ViewUTF8
}

func (lv *LenValue) setMessage(m *Message) {
	if m == nil {
		m = NewMessage()
	}
	lv.state = lenMessage
	lv.msg = m
	lv.text = ""
	lv.view = ViewSub
	if b, err := m.encode(); err == nil {
		lv.raw = b
	}
}

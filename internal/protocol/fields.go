package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/danmuck/protoedit/internal/protocol/frame"
)

// NewVarint creates a varint field.
func NewVarint(num protowire.Number, v int64) *Field {
	return &Field{Number: num, Type: Varint, value: v}
}

// NewFixed64 creates a fixed64 field.
func NewFixed64(num protowire.Number, v int64) *Field {
	return &Field{Number: num, Type: Fixed64, value: v}
}

// NewFixed32 creates a fixed32 field.
func NewFixed32(num protowire.Number, v int32) *Field {
	return &Field{Number: num, Type: Fixed32, value: int64(v)}
}

// NewBytes creates a length-delimited field that is classified on first use.
func NewBytes(num protowire.Number, raw []byte) *Field {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &Field{Number: num, Type: Bytes, lv: newLenValue(buf)}
}

// NewOpaque creates a length-delimited field pinned to the hex view.
func NewOpaque(num protowire.Number, raw []byte) *Field {
	f := NewBytes(num, raw)
	f.lv.view = ViewHex
	return f
}

// NewText creates a length-delimited text field.
func NewText(num protowire.Number, s string) *Field {
	f := &Field{Number: num, Type: Bytes, lv: newLenValue(nil)}
	f.lv.setText(s)
	return f
}

// NewSubMessage creates a length-delimited field holding m.
func NewSubMessage(num protowire.Number, m *Message) *Field {
	f := &Field{Number: num, Type: Bytes, lv: newLenValue(nil)}
	f.lv.setMessage(m)
	return f
}

// Int64 returns the stored integer of a scalar field.
func (f *Field) Int64() (int64, error) {
	if f.Type == Bytes {
		return 0, ErrFieldTypeMismatch
	}
	return f.value, nil
}

// Int32 returns the low 32 bits of a scalar field.
func (f *Field) Int32() (int32, error) {
	v, err := f.Int64()
	return int32(v), err
}

// Uint64 returns the stored integer reinterpreted as unsigned.
func (f *Field) Uint64() (uint64, error) {
	v, err := f.Int64()
	return uint64(v), err
}

// View returns the current view of a length-delimited field, ViewAuto for
// scalar fields.
func (f *Field) View() View {
	if f.lv == nil {
		return ViewAuto
	}
	return f.lv.view
}

// Content classifies a length-delimited field, memoizing the result.
func (f *Field) Content() (Content, error) {
	if f.Type != Bytes || f.lv == nil {
		return Content{}, ErrFieldTypeMismatch
	}
	if _, err := f.lv.payload(); err != nil {
		return Content{}, err
	}
	return f.lv.content(), nil
}

// Text returns the field as text when it classifies as text.
func (f *Field) Text() (string, error) {
	c, err := f.Content()
	if err != nil {
		return "", err
	}
	if c.Kind != KindText {
		return "", ErrContentMismatch
	}
	return c.Text, nil
}

// Message returns the nested message when the field classifies as one.
// Edits to the returned message are reflected on the next encode.
func (f *Field) Message() (*Message, error) {
	c, err := f.Content()
	if err != nil {
		return nil, err
	}
	if c.Kind != KindMessage {
		return nil, ErrContentMismatch
	}
	return c.Message, nil
}

// Bytes returns a copy of the current payload of a length-delimited field.
func (f *Field) Bytes() ([]byte, error) {
	if f.Type != Bytes || f.lv == nil {
		return nil, ErrFieldTypeMismatch
	}
	b, err := f.lv.payload()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	return buf, nil
}

// SetPrefix replaces the packet prefix. It must be empty or 4 bytes.
func (m *Message) SetPrefix(prefix []byte) error {
	if err := frame.CheckPrefix(prefix); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPrefix, err)
	}
	m.prefix = append([]byte(nil), prefix...)
	return nil
}

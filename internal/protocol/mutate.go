package protocol

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Point edits address a field by number and occurrence, the 0-based rank
// among fields sharing that number. Every edit reports false and leaves the
// message untouched when the occurrence does not exist.

func (m *Message) index(num protowire.Number, occurrence int) int {
	if m == nil || occurrence < 0 {
		return -1
	}
	seen := 0
	for i, f := range m.fields {
		if f.Number != num {
			continue
		}
		if seen == occurrence {
			return i
		}
		seen++
	}
	return -1
}

func (m *Message) indices(num protowire.Number) []int {
	var idxs []int
	for i, f := range m.fields {
		if f.Number == num {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// numbers returns each field number once, in order of first appearance.
func (m *Message) numbers() []protowire.Number {
	seen := make(map[protowire.Number]struct{}, len(m.fields))
	out := make([]protowire.Number, 0, len(m.fields))
	for _, f := range m.fields {
		if _, ok := seen[f.Number]; ok {
			continue
		}
		seen[f.Number] = struct{}{}
		out = append(out, f.Number)
	}
	return out
}

// Find returns the addressed field.
func (m *Message) Find(num protowire.Number, occurrence int) (*Field, bool) {
	idx := m.index(num, occurrence)
	if idx < 0 {
		return nil, false
	}
	return m.fields[idx], true
}

// Occurrences returns every field with number num in wire order.
func (m *Message) Occurrences(num protowire.Number) []*Field {
	var out []*Field
	for _, idx := range m.indices(num) {
		out = append(out, m.fields[idx])
	}
	return out
}

// SetVarint overwrites the integer of the addressed field. The field's own
// wire type is not checked; only length-delimited fields are refused.
func (m *Message) SetVarint(num protowire.Number, occurrence int, v int64) bool {
	return m.setScalar(num, occurrence, v)
}

// SetFixed64 is SetVarint under another name; both store a 64-bit integer.
func (m *Message) SetFixed64(num protowire.Number, occurrence int, v int64) bool {
	return m.setScalar(num, occurrence, v)
}

func (m *Message) SetFixed32(num protowire.Number, occurrence int, v int32) bool {
	return m.setScalar(num, occurrence, int64(v))
}

func (m *Message) setScalar(num protowire.Number, occurrence int, v int64) bool {
	f, ok := m.Find(num, occurrence)
	if !ok || f.Type == Bytes {
		return false
	}
	f.value = v
	return true
}

// SetHex replaces a length-delimited payload with the bytes spelled by the
// hex digits in hexText and pins the field to the hex view.
func (m *Message) SetHex(num protowire.Number, occurrence int, hexText string) bool {
	lv, ok := m.lenValue(num, occurrence)
	if !ok {
		return false
	}
	lv.setOpaque(DecodeHex(hexText))
	return true
}

// SetText replaces a length-delimited payload with text.
func (m *Message) SetText(num protowire.Number, occurrence int, text string) bool {
	lv, ok := m.lenValue(num, occurrence)
	if !ok {
		return false
	}
	lv.setText(text)
	return true
}

// SetMessageBytes replaces a length-delimited payload with b. The field
// switches to the message view when b round-trips as a message, otherwise
// to the hex view.
func (m *Message) SetMessageBytes(num protowire.Number, occurrence int, b []byte) bool {
	lv, ok := m.lenValue(num, occurrence)
	if !ok {
		return false
	}
	raw := append([]byte{}, b...)
	if sub, ok := parseSubMessage(raw); ok {
		lv.setMessage(sub)
		return true
	}
	lv.setOpaque(raw)
	return true
}

func (m *Message) lenValue(num protowire.Number, occurrence int) (*LenValue, bool) {
	f, ok := m.Find(num, occurrence)
	if !ok || f.Type != Bytes {
		return nil, false
	}
	if f.lv == nil {
		f.lv = newLenValue(nil)
	}
	return f.lv, true
}

// Remove drops exactly the addressed field.
func (m *Message) Remove(num protowire.Number, occurrence int) bool {
	idx := m.index(num, occurrence)
	if idx < 0 {
		return false
	}
	m.removeAt(idx)
	return true
}

// RemoveAll drops every occurrence of num and returns how many were removed.
func (m *Message) RemoveAll(num protowire.Number) int {
	if m == nil {
		return 0
	}
	kept := m.fields[:0]
	removed := 0
	for _, f := range m.fields {
		if f.Number == num {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	clear(m.fields[len(kept):])
	m.fields = kept
	return removed
}

func (m *Message) removeAt(idx int) {
	m.fields = append(m.fields[:idx], m.fields[idx+1:]...)
}

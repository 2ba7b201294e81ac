package jsonvalue

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Marshal encodes v as compact JSON, preserving object key order.
func Marshal(v Value) []byte {
	return MarshalIndent(v, "")
}

// MarshalIndent encodes v with one indent step per nesting level. An empty
// indent produces compact output.
func MarshalIndent(v Value, indent string) []byte {
	var buf bytes.Buffer
	w := writer{buf: &buf, indent: indent}
	w.value(v, 0)
	return buf.Bytes()
}

type writer struct {
	buf    *bytes.Buffer
	indent string
}

func (w writer) value(v Value, depth int) {
	switch t := v.(type) {
	case nil, Null:
		w.buf.WriteString("null")
	case Bool:
		if t {
			w.buf.WriteString("true")
		} else {
			w.buf.WriteString("false")
		}
	case Number:
		if t == "" {
			w.buf.WriteString("0")
			return
		}
		w.buf.WriteString(string(t))
	case Text:
		w.text(string(t))
	case Array:
		if len(t) == 0 {
			w.buf.WriteString("[]")
			return
		}
		w.buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			w.newline(depth + 1)
			w.value(el, depth+1)
		}
		w.newline(depth)
		w.buf.WriteByte(']')
	case *Object:
		if t.Len() == 0 {
			w.buf.WriteString("{}")
			return
		}
		w.buf.WriteByte('{')
		i := 0
		t.Each(func(k string, el Value) {
			if i > 0 {
				w.buf.WriteByte(',')
			}
			i++
			w.newline(depth + 1)
			w.text(k)
			w.buf.WriteByte(':')
			if w.indent != "" {
				w.buf.WriteByte(' ')
			}
			w.value(el, depth+1)
		})
		w.newline(depth)
		w.buf.WriteByte('}')
	}
}

func (w writer) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.buf.WriteByte('\n')
	w.buf.WriteString(strings.Repeat(w.indent, depth))
}

func (w writer) text(s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	w.buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
}

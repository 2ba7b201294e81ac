package protocol

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented, protoscope-like listing of m: one "N: value"
// line per field, braces around nested messages, quoted text, backquoted
// hex for opaque bytes and 0x..i32 / 0x..i64 for fixed-width values.
func (m *Message) Dump(w io.Writer) error {
	var b strings.Builder
	m.dump(&b, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

func (m *Message) dump(b *strings.Builder, depth int) {
	if m == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, f := range m.fields {
		fmt.Fprintf(b, "%s%d: ", indent, f.Number)
		switch f.Type {
		case Varint:
			fmt.Fprintf(b, "%d\n", f.value)
		case Fixed32:
			fmt.Fprintf(b, "0x%xi32\n", uint32(f.value))
		case Fixed64:
			fmt.Fprintf(b, "0x%xi64\n", uint64(f.value))
		case Bytes:
			if f.lv == nil {
				b.WriteString("\"\"\n")
				continue
			}
			c := f.lv.content()
			switch c.Kind {
			case KindMessage:
				b.WriteString("{\n")
				c.Message.dump(b, depth+1)
				fmt.Fprintf(b, "%s}\n", indent)
			case KindText:
				b.WriteString(strconv.Quote(c.Text) + "\n")
			default:
				fmt.Fprintf(b, "`%s`\n", EncodeHex(c.Raw))
			}
		}
	}
}

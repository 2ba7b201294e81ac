package protocol

import (
	"regexp"
	"strings"
)

// textEdit rewrites s and returns the result with the number of matches
// found in the original s.
type textEdit func(s string) (string, int)

// ReplaceLiteral replaces every non-overlapping occurrence of needle in all
// text leaves, including text inside nested messages, and returns the
// number of occurrences replaced. An empty needle changes nothing.
func (m *Message) ReplaceLiteral(needle, replacement string) int {
	if needle == "" {
		return 0
	}
	return m.rewrite(func(s string) (string, int) {
		n := strings.Count(s, needle)
		if n == 0 {
			return s, 0
		}
		return strings.ReplaceAll(s, needle, replacement), n
	})
}

// ReplaceRegex is ReplaceLiteral for a pattern. replacement may use $1
// style group references. A nil pattern changes nothing.
func (m *Message) ReplaceRegex(re *regexp.Regexp, replacement string) int {
	if re == nil {
		return 0
	}
	return m.rewrite(func(s string) (string, int) {
		n := len(re.FindAllStringIndex(s, -1))
		if n == 0 {
			return s, 0
		}
		return re.ReplaceAllString(s, replacement), n
	})
}

// rewrite visits every length-delimited field. A field is tried both as a
// nested message (recursing first) and as text; neither excludes the other.
func (m *Message) rewrite(edit textEdit) int {
	if m == nil {
		return 0
	}
	total := 0
	for _, f := range m.fields {
		if f.Type != Bytes || f.lv == nil {
			continue
		}
		lv := f.lv

		if sub, ok := lv.subMessage(); ok {
			if n := sub.rewrite(edit); n > 0 {
				lv.setMessage(sub)
				total += n
			}
		}

		if s, ok := lv.textContent(); ok {
			if out, n := edit(s); n > 0 && out != s {
				lv.setText(out)
				total += n
			}
		}
	}
	return total
}

package jsonvalue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrPointer = errors.New("jsonvalue: pointer does not resolve")

// Lookup resolves an RFC 6901 JSON Pointer such as "/5/4" against v. The
// empty pointer and "/" resolve to v itself.
func Lookup(v Value, pointer string) (Value, error) {
	if pointer == "" || pointer == "/" {
		return v, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("%w: %q must start with /", ErrPointer, pointer)
	}
	cur := v
	for _, token := range strings.Split(pointer[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		switch t := cur.(type) {
		case *Object:
			next, ok := t.Get(token)
			if !ok {
				return nil, fmt.Errorf("%w: no key %q", ErrPointer, token)
			}
			cur = next
		case Array:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(t) {
				return nil, fmt.Errorf("%w: bad index %q", ErrPointer, token)
			}
			cur = t[idx]
		default:
			return nil, fmt.Errorf("%w: %s has no member %q", ErrPointer, cur.Kind(), token)
		}
	}
	return cur, nil
}

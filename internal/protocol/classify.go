package protocol

import (
	"bytes"
	"unicode/utf8"
)

// ContentKind is the classification of a length-delimited payload.
type ContentKind uint8

const (
	KindOpaque ContentKind = iota
	KindMessage
	KindText
)

func (k ContentKind) String() string {
	switch k {
	case KindMessage:
		return "message"
	case KindText:
		return "text"
	default:
		return "opaque"
	}
}

// Content is a classified length-delimited payload. Message is set for
// KindMessage, Text for KindText; Raw is always set.
type Content struct {
	Kind    ContentKind
	Message *Message
	Text    string
	Raw     []byte
}

// Classify picks the first interpretation of raw that round-trips exactly:
// a non-empty nested message, then UTF-8 text, then opaque bytes.
func Classify(raw []byte) Content {
	if m, ok := parseSubMessage(raw); ok {
		return Content{Kind: KindMessage, Message: m, Raw: raw}
	}
	if s, ok := decodeText(raw); ok {
		return Content{Kind: KindText, Text: s, Raw: raw}
	}
	return Content{Kind: KindOpaque, Raw: raw}
}

// parseSubMessage accepts raw as a message only when it decodes to at least
// one field and re-encodes to the same bytes.
func parseSubMessage(raw []byte) (*Message, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	m, err := DecodeMessage(raw)
	if err != nil || m.Len() == 0 {
		return nil, false
	}
	re, err := m.encode()
	if err != nil || !bytes.Equal(re, raw) {
		return nil, false
	}
	return m, true
}

// decodeText accepts raw when it is well-formed UTF-8, which is exactly the
// condition under which string(raw) re-encodes to raw.
func decodeText(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// content resolves and memoizes the classification according to the
// current view. An explicit view wins when its overlay is present.
func (lv *LenValue) content() Content {
	switch {
	case lv.view == ViewSub && lv.state == lenMessage:
		return Content{Kind: KindMessage, Message: lv.msg, Raw: lv.raw}
	case lv.view == ViewUTF8 && lv.state == lenText:
		return Content{Kind: KindText, Text: lv.text, Raw: lv.raw}
	case lv.view == ViewHex:
		return Content{Kind: KindOpaque, Raw: lv.raw}
	}

	c := Classify(lv.raw)
	switch c.Kind {
	case KindMessage:
		lv.state, lv.msg, lv.text, lv.view = lenMessage, c.Message, "", ViewSub
	case KindText:
		lv.state, lv.msg, lv.text, lv.view = lenText, nil, c.Text, ViewUTF8
	default:
		lv.state, lv.msg, lv.text, lv.view = lenRaw, nil, "", ViewHex
	}
	return c
}

// subMessage returns the message overlay, or parses the current payload
// without memoizing a failed or unused attempt.
func (lv *LenValue) subMessage() (*Message, bool) {
	if lv.state == lenMessage {
		return lv.msg, true
	}
	raw, err := lv.payload()
	if err != nil {
		return nil, false
	}
	return parseSubMessage(raw)
}

// textContent returns the text overlay, or decodes the current payload.
func (lv *LenValue) textContent() (string, bool) {
	if lv.state == lenText {
		return lv.text, true
	}
	raw, err := lv.payload()
	if err != nil {
		return "", false
	}
	return decodeText(raw)
}

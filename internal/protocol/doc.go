// Package protocol is a schema-less protobuf wire editor.
//
// A Message is an ordered list of fields decoded straight from the wire,
// typed only by wire type. Length-delimited values are classified lazily as a
// nested message, UTF-8 text or opaque bytes; a classification is accepted
// only when re-encoding it reproduces the original bytes exactly, so an
// untouched message always re-encodes to its input.
//
// Ownership boundary:
// - field model and occurrence addressing
// - wire decode/encode (records via tlv, optional 4-byte prefix via frame)
// - JSON projection and JSON-driven patching
// - recursive text rewriting
package protocol

package protocol

import (
	"errors"

	"github.com/danmuck/protoedit/internal/protocol/tlv"
)

var (
	ErrTruncated          = tlv.ErrTruncated
	ErrInvalidWireType    = tlv.ErrInvalidWireType
	ErrInvalidFieldNumber = tlv.ErrInvalidFieldNumber
	ErrMalformed          = tlv.ErrMalformed
	ErrFieldTypeMismatch  = errors.New("protocol: field type mismatch")
	ErrContentMismatch    = errors.New("protocol: length-delimited content is not of the requested kind")
	ErrInvalidPrefix      = errors.New("protocol: invalid packet prefix")
)

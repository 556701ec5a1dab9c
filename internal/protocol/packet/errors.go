package packet

import (
	"errors"

	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
)

// Error kinds reported by ErrorKind.
const (
	KindSyntax     = "syntax"
	KindType       = "type"
	KindValidation = "validation"
	KindFraming    = "framing"
	KindEncoding   = "encoding"
	KindOther      = "other"
)

// ErrorKind classifies a codec error for logs, metrics and API responses.
// Validation is checked before type since validation errors wrap a
// TypeError.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, frame.ErrFraming):
		return KindFraming
	case errors.Is(err, frame.ErrEncoding):
		return KindEncoding
	case errors.Is(err, protocol.ErrSyntax):
		return KindSyntax
	case errors.Is(err, protocol.ErrValidation):
		return KindValidation
	case errors.Is(err, protocol.ErrType), errors.Is(err, protocol.ErrDuplicateKey):
		return KindType
	default:
		return KindOther
	}
}

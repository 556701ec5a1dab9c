package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyntax       = errors.New("protocol: syntax error")
	ErrType         = errors.New("protocol: type mismatch")
	ErrValidation   = errors.New("protocol: validation failed")
	ErrDuplicateKey = errors.New("protocol: duplicate map key")
)

// SyntaxError reports notation text the grammar cannot derive a value from.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("protocol: syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// TypeError reports a value of the wrong kind. Field is the list index the
// value was found at, or -1 for the top-level value.
type TypeError struct {
	Field int
	Want  []Kind
	Got   Kind
}

func (e *TypeError) Error() string {
	want := make([]string, 0, len(e.Want))
	for _, k := range e.Want {
		want = append(want, k.String())
	}
	if e.Field < 0 {
		return fmt.Sprintf("protocol: top-level value is %s, want %s", e.Got, strings.Join(want, " or "))
	}
	return fmt.Sprintf("protocol: field %d is %s, want %s", e.Field, e.Got, strings.Join(want, " or "))
}

func (e *TypeError) Is(target error) bool { return target == ErrType }

// ValidationError reports outbound packet data that breaks the envelope
// rules. Err carries the underlying TypeError for field kind mismatches.
type ValidationError struct {
	Field  int
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("protocol: invalid packet: %s", e.Reason)
	}
	return fmt.Sprintf("protocol: invalid packet field %d: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func (e *ValidationError) Unwrap() error { return e.Err }

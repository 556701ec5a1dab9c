// Package frame implements mudmode framing: a 4-byte big-endian length
// followed by the Windows-1252 bytes of the notation text and one NUL.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	HeaderLen = 4

	DefaultMaxPayloadBytes = 8 * 1024 * 1024
)

var (
	// ErrFraming marks every condition after which the byte stream can no
	// longer be re-synchronized.
	ErrFraming  = errors.New("frame: framing error")
	ErrEncoding = errors.New("frame: encoding error")

	ErrShortHeader     = fmt.Errorf("%w: short length prefix", ErrFraming)
	ErrTruncated       = fmt.Errorf("%w: truncated payload", ErrFraming)
	ErrPayloadTooLarge = fmt.Errorf("%w: payload too large", ErrFraming)
)

var codepage = charmap.Windows1252

// FramingError reports a declared payload length that does not match the
// bytes that follow the length prefix.
type FramingError struct {
	Declared uint32
	Actual   int
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("frame: declared length %d, have %d payload bytes", e.Declared, e.Actual)
}

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// EncodingError reports a character with no Windows-1252 form. Offset is the
// byte offset of the character in the source text. When Undefined is set,
// Rune holds a payload byte that Windows-1252 leaves unassigned and Offset
// is its position in the payload.
type EncodingError struct {
	Rune      rune
	Offset    int
	Undefined bool
}

func (e *EncodingError) Error() string {
	if e.Undefined {
		return fmt.Sprintf("frame: byte 0x%02X at payload offset %d is undefined in windows-1252", e.Rune, e.Offset)
	}
	return fmt.Sprintf("frame: character %U at offset %d has no windows-1252 form", e.Rune, e.Offset)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// IsFatal reports whether err leaves the stream unusable. Callers should
// drop the connection instead of skipping to the next frame.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFraming)
}

// Limits constrains how much a stream reader will buffer for one frame.
type Limits struct {
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: DefaultMaxPayloadBytes}
}

// ToFrame encodes text into one complete frame.
func ToFrame(text string) ([]byte, error) {
	out := make([]byte, HeaderLen, HeaderLen+len(text)+1)
	// Invalid UTF-8 ranges as U+FFFD, which has no code page form either.
	for i, r := range text {
		b, ok := codepage.EncodeRune(r)
		if !ok {
			return nil, &EncodingError{Rune: r, Offset: i}
		}
		out = append(out, b)
	}
	out = append(out, 0)
	payloadLen := len(out) - HeaderLen
	if uint64(payloadLen) > math.MaxUint32 {
		return nil, ErrPayloadTooLarge
	}
	binary.BigEndian.PutUint32(out[:HeaderLen], uint32(payloadLen))
	return out, nil
}

// FromFrame decodes one complete frame back to text. The buffer must hold
// exactly the declared payload; one trailing NUL is stripped. A byte that
// Windows-1252 leaves unassigned fails with an EncodingError.
func FromFrame(b []byte) (string, error) {
	if len(b) < HeaderLen {
		return "", ErrShortHeader
	}
	declared := binary.BigEndian.Uint32(b[:HeaderLen])
	if uint64(len(b)) != uint64(declared)+HeaderLen {
		return "", &FramingError{Declared: declared, Actual: len(b) - HeaderLen}
	}
	payload := b[HeaderLen:]
	if n := len(payload); n > 0 && payload[n-1] == 0 {
		payload = payload[:n-1]
	}
	return decodeText(payload)
}

// decodeText maps payload bytes to text. No Windows-1252 byte decodes to
// U+FFFD, so RuneError marks one of the five unassigned bytes.
func decodeText(payload []byte) (string, error) {
	ascii := true
	for _, c := range payload {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(payload), nil
	}
	buf := make([]byte, 0, len(payload)+len(payload)/2)
	for i, c := range payload {
		r := codepage.DecodeByte(c)
		if r == utf8.RuneError {
			return "", &EncodingError{Rune: rune(c), Offset: i, Undefined: true}
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), nil
}

// ReadFrame reads exactly one frame from r and returns it whole, length
// prefix included, ready for FromFrame. A clean EOF before any byte is
// returned as io.EOF.
func ReadFrame(r io.Reader, limits Limits) ([]byte, error) {
	var head [HeaderLen]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortHeader
		}
		return nil, err
	}
	n := binary.BigEndian.Uint32(head[:])
	if limits.MaxPayloadBytes > 0 && uint64(n) > limits.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: declared %d, max %d", ErrPayloadTooLarge, n, limits.MaxPayloadBytes)
	}
	buf := make([]byte, HeaderLen+int(n))
	copy(buf, head[:])
	if _, err := io.ReadFull(r, buf[HeaderLen:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return buf, nil
}

// WriteFrame writes one complete frame to w after checking its length
// prefix, so a malformed buffer never desynchronizes the peer.
func WriteFrame(w io.Writer, b []byte) error {
	if len(b) < HeaderLen {
		return ErrShortHeader
	}
	declared := binary.BigEndian.Uint32(b[:HeaderLen])
	if uint64(len(b)) != uint64(declared)+HeaderLen {
		return &FramingError{Declared: declared, Actual: len(b) - HeaderLen}
	}
	_, err := w.Write(b)
	return err
}

// Package packet holds one I3 message in its three equivalent forms:
// notation text, structured data and the mudmode byte stream.
//
// A Packet is built from exactly one form and derives the other two before
// the constructor returns. Construction is all-or-nothing and a built
// Packet is never mutated, so it can be shared between goroutines.
package packet

import (
	"fmt"

	"github.com/danmuck/i4/internal/protocol"
	"github.com/danmuck/i4/internal/protocol/frame"
)

type Packet struct {
	text  string
	data  protocol.List
	bytes []byte
}

// FromText builds a packet from notation text. The text is kept exactly as
// given and the bytes are framed from it, so Text and Bytes always agree.
// Data is parsed from the same text, but Encode(Data()) is the canonical
// form and differs from Text when the input carries extra whitespace.
func FromText(text string) (*Packet, error) {
	b, err := frame.ToFrame(text)
	if err != nil {
		return nil, err
	}
	data, err := parseList(text)
	if err != nil {
		return nil, err
	}
	return &Packet{text: text, data: data, bytes: b}, nil
}

// Decode builds a packet from one complete mudmode frame. Inbound packets
// are not envelope-checked; that is the dispatcher's job.
func Decode(raw []byte) (*Packet, error) {
	text, err := frame.FromFrame(raw)
	if err != nil {
		return nil, err
	}
	data, err := parseList(text)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(raw))
	copy(b, raw)
	return &Packet{text: text, data: data, bytes: b}, nil
}

// BuildOutbound builds a packet to send from structured data. The data is
// envelope-checked and field 1 is set to protocol.TTL. The caller's value
// is copied, never retained.
func BuildOutbound(data protocol.Value) (*Packet, error) {
	list, err := protocol.ValidateEnvelope(data)
	if err != nil {
		return nil, err
	}
	text, err := protocol.Encode(list)
	if err != nil {
		return nil, err
	}
	b, err := frame.ToFrame(text)
	if err != nil {
		return nil, err
	}
	return &Packet{text: text, data: list, bytes: b}, nil
}

func parseList(text string) (protocol.List, error) {
	v, err := protocol.Parse(text)
	if err != nil {
		return nil, err
	}
	list, ok := v.(protocol.List)
	if !ok {
		return nil, fmt.Errorf("packet: %w", &protocol.TypeError{
			Field: -1,
			Want:  []protocol.Kind{protocol.KindList},
			Got:   protocol.KindOf(v),
		})
	}
	return list, nil
}

// Text returns the notation form.
func (p *Packet) Text() string { return p.text }

// Data returns a copy of the structured form.
func (p *Packet) Data() protocol.List {
	return protocol.Clone(p.data).(protocol.List)
}

// Bytes returns a copy of the framed form.
func (p *Packet) Bytes() []byte {
	out := make([]byte, len(p.bytes))
	copy(out, p.bytes)
	return out
}

// Len returns the number of top-level fields.
func (p *Packet) Len() int { return len(p.data) }

// Field returns a copy of top-level field i.
func (p *Packet) Field(i int) (protocol.Value, bool) {
	if i < 0 || i >= len(p.data) {
		return nil, false
	}
	return protocol.Clone(p.data[i]), true
}

// Type returns the packet type name, or "" when field 0 is missing or not
// a string.
func (p *Packet) Type() string {
	if len(p.data) == 0 {
		return ""
	}
	return protocol.NameOf(p.data[protocol.FieldType])
}

// Envelope decodes the leading fields.
func (p *Packet) Envelope() (protocol.Envelope, error) {
	return protocol.EnvelopeOf(p.data)
}

// Size returns the framed length in bytes.
func (p *Packet) Size() int { return len(p.bytes) }

func (p *Packet) String() string { return p.text }

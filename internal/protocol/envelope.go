package protocol

import "fmt"

// Envelope field positions shared by every I3 packet.
const (
	FieldType = iota
	FieldTTL
	FieldOriginMud
	FieldOriginUser
	FieldTargetMud
	FieldTargetUser

	// EnvelopeLen is the minimum number of fields in a packet.
	EnvelopeLen
)

// TTL is asserted in field 1 of every outbound packet. Callers cannot
// override it.
const TTL Int = 5

// ValidateEnvelope checks outbound packet data and returns a copy with the
// TTL field set. Rules run in order: the value is a list, it has at least
// EnvelopeLen fields, field 0 is a string, and the originator mud,
// originator user and target mud fields are strings or integers (0 means
// "none").
func ValidateEnvelope(v Value) (List, error) {
	list, ok := v.(List)
	if !ok {
		return nil, &ValidationError{
			Field:  -1,
			Reason: "packet must be a list",
			Err:    &TypeError{Field: -1, Want: []Kind{KindList}, Got: KindOf(v)},
		}
	}
	if len(list) < EnvelopeLen {
		return nil, &ValidationError{
			Field:  -1,
			Reason: fmt.Sprintf("packet requires at least %d fields, got %d", EnvelopeLen, len(list)),
		}
	}
	if _, ok := list[FieldType].(String); !ok {
		return nil, &ValidationError{
			Field:  FieldType,
			Reason: "packet type must be a string",
			Err:    &TypeError{Field: FieldType, Want: []Kind{KindString}, Got: KindOf(list[FieldType])},
		}
	}

	out := Clone(list).(List)
	out[FieldTTL] = TTL

	for _, idx := range []int{FieldOriginMud, FieldOriginUser, FieldTargetMud} {
		switch out[idx].(type) {
		case String, Int:
		default:
			return nil, &ValidationError{
				Field:  idx,
				Reason: "must be a string or 0",
				Err:    &TypeError{Field: idx, Want: []Kind{KindString, KindInt}, Got: KindOf(out[idx])},
			}
		}
	}
	return out, nil
}

// Envelope is the decoded leading fields of a packet. Name fields hold ""
// when the packet carries the 0 sentinel.
type Envelope struct {
	Type       string `json:"type"`
	TTL        int64  `json:"ttl"`
	OriginMud  string `json:"origin_mud"`
	OriginUser string `json:"origin_user"`
	TargetMud  string `json:"target_mud"`
	TargetUser string `json:"target_user"`
}

// EnvelopeOf reads the leading fields of inbound packet data without the
// outbound rules. It fails only when the list is too short or the type
// field is not a string.
func EnvelopeOf(list List) (Envelope, error) {
	if len(list) < EnvelopeLen {
		return Envelope{}, &ValidationError{
			Field:  -1,
			Reason: fmt.Sprintf("packet requires at least %d fields, got %d", EnvelopeLen, len(list)),
		}
	}
	typ, ok := list[FieldType].(String)
	if !ok {
		return Envelope{}, &ValidationError{
			Field:  FieldType,
			Reason: "packet type must be a string",
			Err:    &TypeError{Field: FieldType, Want: []Kind{KindString}, Got: KindOf(list[FieldType])},
		}
	}
	env := Envelope{
		Type:       string(typ),
		OriginMud:  NameOf(list[FieldOriginMud]),
		OriginUser: NameOf(list[FieldOriginUser]),
		TargetMud:  NameOf(list[FieldTargetMud]),
		TargetUser: NameOf(list[FieldTargetUser]),
	}
	if ttl, ok := list[FieldTTL].(Int); ok {
		env.TTL = int64(ttl)
	}
	return env, nil
}

// NameOf returns the string held by v, or "" for the 0 sentinel and any
// non-string value.
func NameOf(v Value) string {
	if s, ok := v.(String); ok {
		return string(s)
	}
	return ""
}

// NameValue is the inverse of NameOf: "" becomes the 0 sentinel.
func NameValue(name string) Value {
	if name == "" {
		return Int(0)
	}
	return String(name)
}

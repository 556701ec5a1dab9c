package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// escaper applies \ -> \\, " -> \", CR -> \r, LF -> \n, NUL -> \x00 in one
// pass, so an escape written for one rule is never rewritten by another.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\r", `\r`,
	"\n", `\n`,
	"\x00", `\x00`,
)

// Encode writes v as I3 notation. A packet always serializes as an array,
// so v must be a List.
func Encode(v Value) (string, error) {
	list, ok := v.(List)
	if !ok {
		return "", &TypeError{Field: -1, Want: []Kind{KindList}, Got: KindOf(v)}
	}
	var b strings.Builder
	if err := writeValue(&b, list); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Format writes any value as notation without the top-level list rule.
func Format(v Value) (string, error) {
	var b strings.Builder
	if err := writeValue(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeValue(b *strings.Builder, v Value) error {
	switch tv := v.(type) {
	case String:
		b.WriteByte('"')
		escaper.WriteString(b, string(tv))
		b.WriteByte('"')
	case Int:
		b.WriteString(strconv.FormatInt(int64(tv), 10))
	case Float:
		s, err := formatFloat(float64(tv))
		if err != nil {
			return err
		}
		b.WriteString(s)
	case List:
		b.WriteString("({")
		for i, item := range tv {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, item); err != nil {
				return err
			}
		}
		b.WriteString("})")
	case Map:
		seen := make(map[String]struct{}, len(tv))
		b.WriteString("([")
		for i, p := range tv {
			if _, dup := seen[p.Key]; dup {
				return fmt.Errorf("%w: %q", ErrDuplicateKey, string(p.Key))
			}
			seen[p.Key] = struct{}{}
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeValue(b, p.Key); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeValue(b, p.Value); err != nil {
				return err
			}
		}
		b.WriteString("])")
	default:
		return fmt.Errorf("%w: cannot encode %s value", ErrType, KindOf(v))
	}
	return nil
}

// formatFloat renders f so it parses back as a Float: the result always
// carries a decimal point or an exponent.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: float %v has no notation form", ErrType, f)
	}
	abs := math.Abs(f)
	var s string
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s, nil
}

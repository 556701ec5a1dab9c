package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMaxDepth bounds list/map nesting accepted by Parse.
const DefaultMaxDepth = 512

// ParseOptions tunes the notation parser.
type ParseOptions struct {
	// MaxDepth is the deepest list/map nesting accepted. Zero means
	// DefaultMaxDepth.
	MaxDepth int
}

// Parse decodes one complete value from I3 notation text. The whole input
// must be consumed; surrounding whitespace is ignored.
func Parse(text string) (Value, error) {
	return ParseWith(text, ParseOptions{})
}

// ParseWith is Parse with explicit options.
func ParseWith(text string, opts ParseOptions) (Value, error) {
	p := parser{src: text, maxDepth: opts.MaxDepth}
	if p.maxDepth <= 0 {
		p.maxDepth = DefaultMaxDepth
	}
	return p.parse()
}

// container is one open list or map on the parser stack.
type container struct {
	kind   Kind
	list   List
	pairs  Map
	key    String
	keys   map[String]struct{}
	offset int
}

func (c *container) closer() string {
	if c.kind == KindMap {
		return "])"
	}
	return "})"
}

func (c *container) value() Value {
	if c.kind == KindMap {
		if c.pairs == nil {
			return Map{}
		}
		return c.pairs
	}
	if c.list == nil {
		return List{}
	}
	return c.list
}

type parser struct {
	src      string
	pos      int
	maxDepth int
}

// parse walks the input with an explicit stack so nesting depth on
// untrusted input never grows the goroutine stack.
func (p *parser) parse() (Value, error) {
	var stack []*container
	expectKey := false
	for {
		p.skipSpace()
		if expectKey {
			start := p.pos
			key, err := p.str()
			if err != nil {
				return nil, err
			}
			top := stack[len(stack)-1]
			if _, dup := top.keys[key]; dup {
				return nil, p.errorAt(start, fmt.Sprintf("duplicate map key %q", string(key)))
			}
			top.keys[key] = struct{}{}
			p.skipSpace()
			if !p.consume(":") {
				return nil, p.fail("expected ':' after map key")
			}
			top.key = key
			expectKey = false
			continue
		}

		var v Value
		start := p.pos
		switch {
		case p.consume("({"):
			if len(stack) >= p.maxDepth {
				return nil, p.errorAt(start, fmt.Sprintf("nesting deeper than %d", p.maxDepth))
			}
			p.skipSpace()
			if !p.consume("})") {
				stack = append(stack, &container{kind: KindList, offset: start})
				continue
			}
			v = List{}
		case p.consume("(["):
			if len(stack) >= p.maxDepth {
				return nil, p.errorAt(start, fmt.Sprintf("nesting deeper than %d", p.maxDepth))
			}
			p.skipSpace()
			if !p.consume("])") {
				stack = append(stack, &container{kind: KindMap, offset: start, keys: make(map[String]struct{})})
				expectKey = true
				continue
			}
			v = Map{}
		default:
			var err error
			if v, err = p.scalar(); err != nil {
				return nil, err
			}
		}

	fold:
		for {
			if len(stack) == 0 {
				p.skipSpace()
				if p.pos != len(p.src) {
					return nil, p.fail("unexpected trailing input")
				}
				return v, nil
			}
			top := stack[len(stack)-1]
			if top.kind == KindMap {
				top.pairs = append(top.pairs, Pair{Key: top.key, Value: v})
			} else {
				top.list = append(top.list, v)
			}

			p.skipSpace()
			switch {
			case p.consume(","):
				expectKey = top.kind == KindMap
				break fold
			case p.consume(top.closer()):
			default:
				if p.pos >= len(p.src) {
					return nil, p.errorAt(top.offset, fmt.Sprintf("unterminated %s", top.kind))
				}
				return nil, p.fail(fmt.Sprintf("expected ',' or %q", top.closer()))
			}
			stack = stack[:len(stack)-1]
			v = top.value()
		}
	}
}

func (p *parser) scalar() (Value, error) {
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end of input, expected value")
	}
	switch c := p.src[p.pos]; {
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		return s, nil
	case c == '-' || isDigit(c):
		return p.number()
	default:
		return nil, p.fail(fmt.Sprintf("unexpected character %q, expected value", c))
	}
}

// str lexes one quoted string and returns it unescaped.
func (p *parser) str() (String, error) {
	start := p.pos
	if p.pos >= len(p.src) || p.src[p.pos] != '"' {
		return "", p.fail("expected string")
	}
	p.pos++
	for {
		if p.pos >= len(p.src) {
			return "", p.errorAt(start, "unterminated string")
		}
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case '"':
			p.pos++
			return String(unescape(p.src[start+1 : p.pos-1])), nil
		}
		p.pos++
	}
}

// number lexes -?(0|[1-9][0-9]*)(.[0-9]+)?([eE][-+]?[0-9]+)? and coerces the
// lexeme to Int when it has no fraction or exponent, Float otherwise.
func (p *parser) number() (Value, error) {
	start := p.pos
	if p.peek() == '-' {
		p.pos++
	}
	switch c := p.peek(); {
	case c == '0':
		p.pos++
	case isDigit(c):
		p.digits()
	default:
		return nil, p.errorAt(start, "malformed number")
	}
	float := false
	if p.peek() == '.' {
		p.pos++
		if !isDigit(p.peek()) {
			return nil, p.fail("expected digit after decimal point")
		}
		p.digits()
		float = true
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			return nil, p.fail("expected digit in exponent")
		}
		p.digits()
		float = true
	}

	lexeme := p.src[start:p.pos]
	if !float {
		n, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(start, fmt.Sprintf("integer %s out of range", lexeme))
		}
		return Int(n), nil
	}
	f, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, p.errorAt(start, fmt.Sprintf("float %s out of range", lexeme))
	}
	return Float(f), nil
}

func (p *parser) digits() {
	for isDigit(p.peek()) {
		p.pos++
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) consume(tok string) bool {
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) fail(msg string) error {
	return p.errorAt(p.pos, msg)
}

func (p *parser) errorAt(offset int, msg string) error {
	return &SyntaxError{Offset: offset, Msg: msg}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// unescape reverses the notation string escapes in a single left-to-right
// pass: \" \r \n \x00 and \\. Any other backslash sequence is kept verbatim.
func unescape(raw string) string {
	if strings.IndexByte(raw, '\\') < 0 {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			b.WriteByte(c)
			continue
		}
		switch raw[i+1] {
		case '"':
			b.WriteByte('"')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'x':
			if strings.HasPrefix(raw[i:], `\x00`) {
				b.WriteByte(0)
				i += 3
				continue
			}
			b.WriteByte('\\')
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte('\\')
		}
	}
	return b.String()
}

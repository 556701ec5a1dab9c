package protocol

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindInt
	KindFloat
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// Value is one datum carried in I3 notation. The concrete types are
// String, Int, Float, List and Map.
type Value interface {
	Kind() Kind
	isValue()
}

type (
	String string
	Int    int64
	Float  float64
	// List is an LPC array, written ({ ... }).
	List []Value
	// Map is an LPC mapping, written ([ ... ]). Keys are unique and
	// insertion order is kept so re-encoding is deterministic.
	Map []Pair
)

// Pair is one member of a Map.
type Pair struct {
	Key   String
	Value Value
}

func (String) Kind() Kind { return KindString }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (List) Kind() Kind   { return KindList }
func (Map) Kind() Kind    { return KindMap }

func (String) isValue() {}
func (Int) isValue()    {}
func (Float) isValue()  {}
func (List) isValue()   {}
func (Map) isValue()    {}

// KindOf returns the kind of v, or KindInvalid for a nil Value.
func KindOf(v Value) Kind {
	if v == nil {
		return KindInvalid
	}
	return v.Kind()
}

// Get returns the value stored under key.
func (m Map) Get(key string) (Value, bool) {
	for _, p := range m {
		if string(p.Key) == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Set returns a copy of m with key bound to v. An existing key keeps its
// position; a new key is appended.
func (m Map) Set(key string, v Value) Map {
	out := make(Map, len(m), len(m)+1)
	copy(out, m)
	for i := range out {
		if string(out[i].Key) == key {
			out[i].Value = v
			return out
		}
	}
	return append(out, Pair{Key: String(key), Value: v})
}

// Keys returns the map keys in insertion order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, p := range m {
		keys = append(keys, string(p.Key))
	}
	return keys
}

// Equal reports whether a and b are structurally equal. Lists and maps
// compare element by element in order.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv, ok := b.(Map)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if av[i].Key != bv[i].Key || !Equal(av[i].Value, bv[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of v. Scalars are returned as is.
func Clone(v Value) Value {
	switch tv := v.(type) {
	case List:
		if tv == nil {
			return List(nil)
		}
		out := make(List, len(tv))
		for i, item := range tv {
			out[i] = Clone(item)
		}
		return out
	case Map:
		if tv == nil {
			return Map(nil)
		}
		out := make(Map, len(tv))
		for i, p := range tv {
			out[i] = Pair{Key: p.Key, Value: Clone(p.Value)}
		}
		return out
	default:
		return v
	}
}

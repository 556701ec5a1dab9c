package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestEqualIsStructural(t *testing.T) {
	a := List{String("x"), Map{{Key: "k", Value: List{Int(1), Float(1)}}}}
	b := List{String("x"), Map{{Key: "k", Value: List{Int(1), Float(1)}}}}
	if !Equal(a, b) {
		t.Fatalf("expected structurally equal values")
	}
	if Equal(Int(1), Float(1)) {
		t.Fatalf("int and float must differ")
	}
	if Equal(List{Int(1)}, List{Int(1), Int(2)}) {
		t.Fatalf("lists of different length must differ")
	}
	if Equal(
		Map{{Key: "a", Value: Int(1)}, {Key: "b", Value: Int(2)}},
		Map{{Key: "b", Value: Int(2)}, {Key: "a", Value: Int(1)}},
	) {
		t.Fatalf("map order is significant")
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := List{List{String("a")}, Map{{Key: "k", Value: List{Int(1)}}}}
	cp := Clone(orig).(List)
	cp[0].(List)[0] = String("b")
	cp[1].(Map)[0].Value.(List)[0] = Int(2)
	if !Equal(orig, List{List{String("a")}, Map{{Key: "k", Value: List{Int(1)}}}}) {
		t.Fatalf("clone shares storage with original: %#v", orig)
	}
}

func TestMapSetKeepsPosition(t *testing.T) {
	m := Map{{Key: "a", Value: Int(1)}, {Key: "b", Value: Int(2)}}
	updated := m.Set("a", Int(9)).Set("c", Int(3))
	if keys := strings.Join(updated.Keys(), ","); keys != "a,b,c" {
		t.Fatalf("unexpected key order: %s", keys)
	}
	if v, ok := updated.Get("a"); !ok || v != Int(9) {
		t.Fatalf("expected a=9, got %#v ok=%v", v, ok)
	}
	if old, _ := m.Get("a"); old != Int(1) {
		t.Fatalf("Set mutated the receiver: a=%#v", old)
	}
}

func TestNativeRoundTrip(t *testing.T) {
	in := List{
		String("x"), Int(5), Float(2), Float(-0.5),
		Map{{Key: "z", Value: Int(1)}, {Key: "a", Value: List{}}},
	}
	raw, err := json.Marshal(ToNative(in))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["x",5,2.0,-0.5,{"map":[["z",1],["a",[]]]}]`
	if string(raw) != want {
		t.Fatalf("native json mismatch:\n got=%s\nwant=%s", raw, want)
	}

	back, err := DecodeJSON(raw)
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if !Equal(in, back) {
		t.Fatalf("round trip mismatch: %#v", back)
	}
}

func TestFromNativeRejectsUnsupported(t *testing.T) {
	for _, doc := range []string{`true`, `null`, `{"a":1}`, `{"map":[[1,2]]}`, `{"map":[["a",1],["a",2]]}`} {
		if _, err := DecodeJSON([]byte(doc)); err == nil {
			t.Fatalf("expected error for %s", doc)
		}
	}
}

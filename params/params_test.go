package params

import (
	"errors"
	"image/color"
	"testing"

	"github.com/MeKo-Tech/proctex/graph"
)

func TestBindMergeAndPassthrough(t *testing.T) {
	defaults := Table{"a": 1, "b": 2, "$name": "Fire"}
	overrides := Table{"b": 5, "c": 9}

	b, err := Bind(defaults, overrides)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}

	for key, want := range map[string]float32{"a": 1, "b": 5, "c": 9} {
		n := b.Node(key)
		if n == nil {
			t.Fatalf("%q missing", key)
		}
		if n.Kind() != graph.KindLiteral || n.Type() != graph.TypeScalar {
			t.Fatalf("%q: kind/type = %v/%v, want scalar literal", key, n.Kind(), n.Type())
		}
		if got := n.Literal()[0]; got != want {
			t.Errorf("%q = %v, want %v", key, got, want)
		}
	}

	if b.Node("$name") != nil {
		t.Fatal("metadata was converted to a node")
	}
	if got := b.Meta("$name"); got != "Fire" {
		t.Fatalf("$name = %q, want Fire", got)
	}
}

func TestBindColorForms(t *testing.T) {
	b, err := Bind(Table{
		"arr":   [3]float64{0.2, 0.4, 0.6},
		"slice": []float32{1, 0, 0},
		"rgba":  color.RGBA{R: 255, G: 102, B: 0, A: 255},
	}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	for _, key := range []string{"arr", "slice", "rgba"} {
		n := b.Node(key)
		if n == nil || n.Type() != graph.TypeVec3 {
			t.Fatalf("%q: want vec3 literal, got %v", key, n)
		}
	}
	if got := b.Node("rgba").Literal(); got[0] != 1 || got[2] != 0 {
		t.Fatalf("rgba = %v, want components scaled to [0,1]", got)
	}
}

func TestBindNodePassesThrough(t *testing.T) {
	u := graph.UniformFloat("time", 0)
	b, err := Bind(Table{"time": u.Node()}, nil)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.Node("time") != u.Node() {
		t.Fatal("node value was not passed through unchanged")
	}
}

func TestBindRejectsUnsupported(t *testing.T) {
	cases := []Table{
		{"v": [4]float64{1, 2, 3, 4}},
		{"v": []float64{1, 2}},
		{"v": "red"},
		{"v": struct{ X int }{1}},
		{"$label": 7},
	}
	for _, tbl := range cases {
		b, err := Bind(Table{"kept": 1}, tbl)
		if !errors.Is(err, graph.ErrUnsupportedParameterType) {
			t.Fatalf("%v: err = %v, want ErrUnsupportedParameterType", tbl, err)
		}
		if b != nil {
			t.Fatalf("%v: partial table returned", tbl)
		}
	}
}

func TestBindDoesNotMutateInputs(t *testing.T) {
	defaults := Table{"a": 1}
	overrides := Table{"a": 2}
	if _, err := Bind(defaults, overrides); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if defaults["a"] != 1 || overrides["a"] != 2 {
		t.Fatal("input tables were mutated")
	}
}

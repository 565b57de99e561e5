package graph

import (
	"errors"
	"testing"
)

func TestApplyTypeChecks(t *testing.T) {
	s := Float(1)
	v2 := Vec2(1, 2)
	v3 := Vec3(1, 2, 3)
	v4 := Vec4(1, 2, 3, 4)
	b := Bool(true)
	m := Identity()

	ok := []struct {
		name string
		fn   func() *Node
		want Type
	}{
		{"scalar add", func() *Node { return s.Add(Float(2)) }, TypeScalar},
		{"scalar broadcast left", func() *Node { return s.Mul(v3) }, TypeVec3},
		{"scalar broadcast right", func() *Node { return v3.Mul(s) }, TypeVec3},
		{"vec2 componentwise", func() *Node { return v2.Sub(Vec2(0, 1)) }, TypeVec2},
		{"dot vec3", func() *Node { return Dot(v3, Vec3(0, 1, 0)) }, TypeScalar},
		{"cross", func() *Node { return Cross(v3, v3) }, TypeVec3},
		{"length vec2", func() *Node { return Length(v2) }, TypeScalar},
		{"normalize", func() *Node { return Normalize(v4) }, TypeVec4},
		{"mix vec scalar factor", func() *Node { return Mix(v3, Vec3(1, 0, 0), s) }, TypeVec3},
		{"clamp vec scalar edges", func() *Node { return Clamp(v3, Float(0), Float(1)) }, TypeVec3},
		{"smoothstep vec x", func() *Node { return Smoothstep(Float(0), Float(1), v3) }, TypeVec3},
		{"compare", func() *Node { return s.Less(Float(2)) }, TypeBool},
		{"logic", func() *Node { return And(b, Not(Bool(false))) }, TypeBool},
		{"select", func() *Node { return Select(b, v3, Vec3(0, 0, 0)) }, TypeVec3},
		{"vec4 from vec3 and scalar", func() *Node { return Vec4Of(v3, s) }, TypeVec4},
		{"vec3 from scalar parts", func() *Node { return Vec3Of(s, s, s) }, TypeVec3},
		{"mat mul mat", func() *Node { return MatMul(m, m) }, TypeMat4},
		{"mat transform vec3", func() *Node { return Transform(m, v3) }, TypeVec3},
		{"mat transform vec4", func() *Node { return Transform(m, v4) }, TypeVec4},
		{"noise", func() *Node { return Apply(OpNoise3, v3) }, TypeScalar},
	}
	for _, tc := range ok {
		t.Run(tc.name, func(t *testing.T) {
			n := tc.fn()
			if n.Type() != tc.want {
				t.Fatalf("type = %s, want %s", n.Type(), tc.want)
			}
		})
	}

	bad := []struct {
		name string
		fn   func()
	}{
		{"dot scalar left", func() { Dot(s, v3) }},
		{"dot width mismatch", func() { Dot(v2, v3) }},
		{"add width mismatch", func() { v2.Add(v3) }},
		{"cross vec2", func() { Cross(v2, v2) }},
		{"length scalar", func() { Length(s) }},
		{"mix endpoint mismatch", func() { Mix(v2, v3, s) }},
		{"mix mat endpoints", func() { Mix(m, m, s) }},
		{"select branch mismatch", func() { Select(b, s, v3) }},
		{"select scalar condition", func() { Select(s, v3, v3) }},
		{"compare vectors", func() { v3.Less(v3) }},
		{"and scalar", func() { And(s, b) }},
		{"sin bool", func() { Sin(b) }},
		{"add bool", func() { b.Add(s) }},
		{"transform vec2", func() { Transform(m, v2) }},
		{"transform left not mat", func() { Transform(v3, v3) }},
		{"vec3 too many parts", func() { Vec3Of(v2, v2) }},
		{"splat of vec", func() { Splat3(v2) }},
		{"mat4of arity", func() { Mat4Of(s, s, s) }},
		{"swizzle scalar", func() { s.Swizzle("x") }},
		{"swizzle out of range", func() { v2.Swizzle("xyz") }},
		{"swizzle bad letter", func() { v3.Swizzle("xq") }},
		{"swizzle too long", func() { v4.Swizzle("xxxxx") }},
		{"nil operand", func() { Apply(OpAdd, s, nil) }},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			err := Guard(tc.fn)
			if err == nil {
				t.Fatal("construction succeeded, want error")
			}
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("err = %v, want ErrTypeMismatch", err)
			}
		})
	}
}

func TestSwizzleTypesAndIndices(t *testing.T) {
	v := Vec4(1, 2, 3, 4)
	cases := []struct {
		sel  string
		want Type
	}{
		{"x", TypeScalar},
		{"xy", TypeVec2},
		{"zyx", TypeVec3},
		{"wzyx", TypeVec4},
		{"rgb", TypeVec3},
		{"yyy", TypeVec3},
	}
	for _, tc := range cases {
		n := v.Swizzle(tc.sel)
		if n.Type() != tc.want {
			t.Errorf("Swizzle(%q) type = %s, want %s", tc.sel, n.Type(), tc.want)
		}
	}

	n := Vec3(1, 2, 3).Swizzle("zxy")
	want := []int{2, 0, 1}
	got := n.Indices()
	if len(got) != len(want) {
		t.Fatalf("indices = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("indices = %v, want %v", got, want)
		}
	}
}

func TestConstructionIsPure(t *testing.T) {
	a, b := Float(1), Float(2)
	n1 := a.Add(b)
	n2 := a.Add(b)
	if n1.Kind() != n2.Kind() || n1.Type() != n2.Type() || n1.Op() != n2.Op() {
		t.Fatalf("repeated construction differs: %v/%v vs %v/%v", n1.Kind(), n1.Type(), n2.Kind(), n2.Type())
	}
}

func TestSharedOperandsStayShared(t *testing.T) {
	p := Position()
	left := p.Mul(Float(2))
	right := p.Add(Float(1))
	sum := left.Add(right)
	if sum.Args()[0].Args()[0] != sum.Args()[1].Args()[0] {
		t.Fatal("shared operand duplicated; graph should stay a DAG")
	}
}

func TestUniform(t *testing.T) {
	u := UniformVec3("tint", 1, 0, 0)
	if u.Node().Type() != TypeVec3 {
		t.Fatalf("node type = %s, want vec3", u.Node().Type())
	}
	if u.Node() != u.Node() {
		t.Fatal("Node() not stable across calls")
	}
	u.Set(0, 1, 0)
	if got := u.Value(); got != [4]float32{0, 1, 0, 0} {
		t.Fatalf("value = %v after Set", got)
	}

	err := Guard(func() { u.Set(1, 2) })
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("short Set: err = %v, want ErrTypeMismatch", err)
	}
	err = Guard(func() { NewUniform("m", TypeMat4, 1) })
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("mat4 uniform: err = %v, want ErrTypeMismatch", err)
	}
}

func TestRemapExpLiteralBounds(t *testing.T) {
	x := Float(0.5)
	for _, bad := range [][2]*Node{
		{Float(0), Float(2)},
		{Float(1), Float(-3)},
	} {
		err := Guard(func() { RemapExp(x, Float(0), Float(1), bad[0], bad[1]) })
		if !errors.Is(err, ErrInvalidDomainPrecondition) {
			t.Fatalf("bounds %v: err = %v, want ErrInvalidDomainPrecondition", bad, err)
		}
	}

	// Computed bounds are not checkable at construction and stay
	// unguarded; NaN propagation at evaluation is the contract.
	lo := UniformFloat("lo", -1)
	if err := Guard(func() { RemapExp(x, Float(0), Float(1), lo.Node(), Float(2)) }); err != nil {
		t.Fatalf("dynamic bound rejected: %v", err)
	}
}

func TestGuardPassesUnrelatedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("unrelated panic was swallowed")
		}
	}()
	_ = Guard(func() { panic("boom") })
}

func TestGraphErrorMessage(t *testing.T) {
	err := Guard(func() { Dot(Float(1), Vec3(0, 0, 0)) })
	if err == nil {
		t.Fatal("want error")
	}
	var ge *GraphError
	if !errors.As(err, &ge) {
		t.Fatalf("err = %T, want *GraphError", err)
	}
	if ge.Fn != "Dot" {
		t.Fatalf("Fn = %q, want Dot", ge.Fn)
	}
}

package graph

// Float returns a scalar literal node.
func Float(v float32) *Node {
	return &Node{kind: KindLiteral, typ: TypeScalar, lit: [4]float32{v}}
}

// Bool returns a boolean literal node.
func Bool(v bool) *Node {
	n := &Node{kind: KindLiteral, typ: TypeBool}
	if v {
		n.lit[0] = 1
	}
	return n
}

// Vec2 returns a vec2 literal node.
func Vec2(x, y float32) *Node {
	return &Node{kind: KindLiteral, typ: TypeVec2, lit: [4]float32{x, y}}
}

// Vec3 returns a vec3 literal node. Colors are vec3 literals with
// components in [0, 1].
func Vec3(x, y, z float32) *Node {
	return &Node{kind: KindLiteral, typ: TypeVec3, lit: [4]float32{x, y, z}}
}

// Vec4 returns a vec4 literal node.
func Vec4(x, y, z, w float32) *Node {
	return &Node{kind: KindLiteral, typ: TypeVec4, lit: [4]float32{x, y, z, w}}
}

// Splat3 returns a vec3 whose three components all evaluate to s.
func Splat3(s *Node) *Node {
	if s == nil || s.typ != TypeScalar {
		fail("Splat3", ErrTypeMismatch, "want a scalar operand")
	}
	return Vec3Of(s, s, s)
}

// Vec2Of, Vec3Of and Vec4Of assemble a vector node from scalar and vector
// parts whose component counts sum to the target width, in the manner of
// shader constructors like vec4(v.xyz, w).
func Vec2Of(parts ...*Node) *Node { return Apply(OpVec2, parts...) }
func Vec3Of(parts ...*Node) *Node { return Apply(OpVec3, parts...) }
func Vec4Of(parts ...*Node) *Node { return Apply(OpVec4, parts...) }

// Mat4 returns a mat4 literal from 16 values in column-major order.
func Mat4(elems ...float32) *Node {
	if len(elems) != 16 {
		fail("Mat4", ErrTypeMismatch, "want 16 elements, got %d", len(elems))
	}
	var m [16]float32
	copy(m[:], elems)
	return &Node{kind: KindLiteral, typ: TypeMat4, mat: &m}
}

// Identity returns the 4x4 identity matrix literal.
func Identity() *Node {
	return Mat4(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
}

// Mat4Of assembles a matrix node from 16 scalar nodes in column-major
// order, for matrices whose entries are computed (rotation by an animated
// angle, for example).
func Mat4Of(elems ...*Node) *Node { return Apply(OpMat4, elems...) }

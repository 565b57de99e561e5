// Package graph builds typed expression graphs for per-sample procedural
// computation. A graph is a DAG of immutable Nodes (literals, uniforms,
// operators, swizzles and selects) constructed once and evaluated many
// times, typically once per sample point per animation frame.
//
// Operator constructors check their operands against each operator's
// declared signature at construction time and panic with a *GraphError on
// misuse; Guard converts such panics into ordinary errors at package
// boundaries. Evaluation itself is plain IEEE-754 arithmetic and never
// fails: divides by zero, out-of-range pow and friends produce Inf/NaN
// and propagate, matching unguarded shader math.
package graph

// Kind discriminates the node variants of the expression graph.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindUniform
	KindInput
	KindOp
	KindSwizzle
	KindSelect
)

// Type is the value type a Node evaluates to.
type Type uint8

const (
	TypeScalar Type = iota
	TypeBool
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat4
)

var typeNames = [...]string{"scalar", "bool", "vec2", "vec3", "vec4", "mat4"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "invalid"
}

// Components returns the number of scalar components of t (16 for mat4).
func (t Type) Components() int {
	switch t {
	case TypeScalar, TypeBool:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	case TypeMat4:
		return 16
	}
	return 0
}

// vecWidth returns 2..4 for vector types and 0 for everything else.
func (t Type) vecWidth() int {
	switch t {
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4:
		return 4
	}
	return 0
}

// numericWidth returns the component count of a scalar or vector type.
// Bool and mat4 are not numeric.
func numericWidth(t Type) (int, bool) {
	switch t {
	case TypeScalar:
		return 1, true
	case TypeVec2:
		return 2, true
	case TypeVec3:
		return 3, true
	case TypeVec4:
		return 4, true
	}
	return 0, false
}

func vecType(width int) Type {
	switch width {
	case 1:
		return TypeScalar
	case 2:
		return TypeVec2
	case 3:
		return TypeVec3
	case 4:
		return TypeVec4
	}
	panic("graph: no vector type of width " + string(rune('0'+width)))
}

// Node is one operation or value in an expression graph. Nodes are
// immutable once constructed and may be shared between any number of
// parents, so a graph is a DAG rather than a tree. The only mutable state
// reachable from a graph is the payload of a Uniform, which evaluators
// snapshot once per evaluation batch.
type Node struct {
	kind Kind
	typ  Type
	op   Op
	args []*Node
	lit  [4]float32
	mat  *[16]float32
	sel  []int
	uni  *Uniform
}

func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Type() Type { return n.typ }

// Op returns the opcode of a KindOp node.
func (n *Node) Op() Op { return n.op }

// Args returns the operand nodes. The slice is shared, not copied;
// callers must treat it as read-only.
func (n *Node) Args() []*Node { return n.args }

// Literal returns the scalar/vector payload of a KindLiteral node.
// Unused components are zero.
func (n *Node) Literal() [4]float32 { return n.lit }

// MatLiteral returns the column-major payload of a mat4 literal.
func (n *Node) MatLiteral() [16]float32 {
	if n.mat == nil {
		return [16]float32{}
	}
	return *n.mat
}

// Indices returns the component indices selected by a KindSwizzle node.
func (n *Node) Indices() []int { return n.sel }

// Uniform returns the value cell backing a KindUniform node.
func (n *Node) Uniform() *Uniform { return n.uni }

// IsLiteralScalar reports whether n is a scalar literal and returns its
// value. Constructors use this for static domain checks on bounds that
// happen to be constants.
func (n *Node) IsLiteralScalar() (float32, bool) {
	if n.kind == KindLiteral && n.typ == TypeScalar {
		return n.lit[0], true
	}
	return 0, false
}

// Position returns the object-space sample position input (vec3). An
// evaluator substitutes the current sample point for every input leaf, so
// one graph serves all sample points of a surface.
func Position() *Node {
	return &Node{kind: KindInput, typ: TypeVec3}
}

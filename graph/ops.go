package graph

// Op identifies the operation computed by a KindOp node.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpMin
	OpMax
	OpStep
	OpNeg
	OpAbs
	OpFloor
	OpFract
	OpSqrt
	OpSin
	OpCos
	OpExp
	OpLog
	OpDot
	OpCross
	OpLength
	OpNormalize
	OpClamp
	OpMix
	OpSmoothstep
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpAnd
	OpOr
	OpNot
	OpVec2
	OpVec3
	OpVec4
	OpMat4
	OpMatMul
	OpNoise3
	OpSimplex3
	OpWorley3
)

var opNames = [...]string{
	OpAdd: "Add", OpSub: "Sub", OpMul: "Mul", OpDiv: "Div", OpMod: "Mod",
	OpPow: "Pow", OpMin: "Min", OpMax: "Max", OpStep: "Step", OpNeg: "Neg",
	OpAbs: "Abs", OpFloor: "Floor", OpFract: "Fract", OpSqrt: "Sqrt",
	OpSin: "Sin", OpCos: "Cos", OpExp: "Exp", OpLog: "Log", OpDot: "Dot",
	OpCross: "Cross", OpLength: "Length", OpNormalize: "Normalize",
	OpClamp: "Clamp", OpMix: "Mix", OpSmoothstep: "Smoothstep",
	OpLess: "Less", OpLessEq: "LessEq", OpGreater: "Greater",
	OpGreaterEq: "GreaterEq", OpAnd: "And", OpOr: "Or", OpNot: "Not",
	OpVec2: "Vec2Of", OpVec3: "Vec3Of", OpVec4: "Vec4Of", OpMat4: "Mat4Of",
	OpMatMul: "MatMul", OpNoise3: "Noise3", OpSimplex3: "Simplex3",
	OpWorley3: "Worley3",
}

func (o Op) String() string {
	if int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}
	return "invalid"
}

// Apply constructs an operator node, checking the operands against the
// operator's declared signature. It panics with a *GraphError wrapping
// ErrTypeMismatch when the signature is violated. Constructing a node
// never evaluates anything; the same operands and opcode always yield a
// node of the same kind and type, though not necessarily the same
// pointer.
func Apply(op Op, args ...*Node) *Node {
	for i, a := range args {
		if a == nil {
			fail(op.String(), ErrTypeMismatch, "operand %d is nil", i)
		}
	}
	return &Node{kind: KindOp, op: op, typ: checkOp(op, args), args: args}
}

func checkOp(op Op, args []*Node) Type {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpPow, OpMin, OpMax, OpStep:
		return broadcastBinary(op, args)
	case OpNeg, OpAbs, OpFloor, OpFract, OpSqrt, OpSin, OpCos, OpExp, OpLog:
		requireArgs(op, args, 1)
		if _, ok := numericWidth(args[0].typ); !ok {
			fail(op.String(), ErrTypeMismatch, "cannot apply to %s", args[0].typ)
		}
		return args[0].typ
	case OpDot:
		requireArgs(op, args, 2)
		if args[0].typ.vecWidth() == 0 || args[0].typ != args[1].typ {
			fail(op.String(), ErrTypeMismatch, "want two matching vectors, got %s and %s", args[0].typ, args[1].typ)
		}
		return TypeScalar
	case OpCross:
		requireArgs(op, args, 2)
		if args[0].typ != TypeVec3 || args[1].typ != TypeVec3 {
			fail(op.String(), ErrTypeMismatch, "want two vec3, got %s and %s", args[0].typ, args[1].typ)
		}
		return TypeVec3
	case OpLength:
		requireArgs(op, args, 1)
		if args[0].typ.vecWidth() == 0 {
			fail(op.String(), ErrTypeMismatch, "want a vector, got %s", args[0].typ)
		}
		return TypeScalar
	case OpNormalize:
		requireArgs(op, args, 1)
		if args[0].typ.vecWidth() == 0 {
			fail(op.String(), ErrTypeMismatch, "want a vector, got %s", args[0].typ)
		}
		return args[0].typ
	case OpClamp, OpSmoothstep:
		// clamp(x, lo, hi) and smoothstep(e0, e1, x): the two edge
		// operands are scalars broadcast over x, or match x exactly.
		requireArgs(op, args, 3)
		xi := 0
		if op == OpSmoothstep {
			xi = 2
		}
		x := args[xi]
		if _, ok := numericWidth(x.typ); !ok {
			fail(op.String(), ErrTypeMismatch, "cannot apply to %s", x.typ)
		}
		for i, a := range args {
			if i == xi {
				continue
			}
			if a.typ != TypeScalar && a.typ != x.typ {
				fail(op.String(), ErrTypeMismatch, "edge %d is %s, want scalar or %s", i, a.typ, x.typ)
			}
		}
		return x.typ
	case OpMix:
		requireArgs(op, args, 3)
		a, b, t := args[0], args[1], args[2]
		if _, ok := numericWidth(a.typ); !ok || a.typ != b.typ {
			fail(op.String(), ErrTypeMismatch, "want matching endpoints, got %s and %s", a.typ, b.typ)
		}
		if t.typ != TypeScalar && t.typ != a.typ {
			fail(op.String(), ErrTypeMismatch, "factor is %s, want scalar or %s", t.typ, a.typ)
		}
		return a.typ
	case OpLess, OpLessEq, OpGreater, OpGreaterEq:
		requireArgs(op, args, 2)
		if args[0].typ != TypeScalar || args[1].typ != TypeScalar {
			fail(op.String(), ErrTypeMismatch, "want two scalars, got %s and %s", args[0].typ, args[1].typ)
		}
		return TypeBool
	case OpAnd, OpOr:
		requireArgs(op, args, 2)
		if args[0].typ != TypeBool || args[1].typ != TypeBool {
			fail(op.String(), ErrTypeMismatch, "want two bools, got %s and %s", args[0].typ, args[1].typ)
		}
		return TypeBool
	case OpNot:
		requireArgs(op, args, 1)
		if args[0].typ != TypeBool {
			fail(op.String(), ErrTypeMismatch, "want bool, got %s", args[0].typ)
		}
		return TypeBool
	case OpVec2, OpVec3, OpVec4:
		want := 2 + int(op-OpVec2)
		total := 0
		for _, a := range args {
			w, ok := numericWidth(a.typ)
			if !ok {
				fail(op.String(), ErrTypeMismatch, "cannot pack %s", a.typ)
			}
			total += w
		}
		if total != want {
			fail(op.String(), ErrTypeMismatch, "parts supply %d components, want %d", total, want)
		}
		return vecType(want)
	case OpMat4:
		requireArgs(op, args, 16)
		for i, a := range args {
			if a.typ != TypeScalar {
				fail(op.String(), ErrTypeMismatch, "element %d is %s, want scalar", i, a.typ)
			}
		}
		return TypeMat4
	case OpMatMul:
		requireArgs(op, args, 2)
		if args[0].typ != TypeMat4 {
			fail(op.String(), ErrTypeMismatch, "left operand is %s, want mat4", args[0].typ)
		}
		switch args[1].typ {
		case TypeMat4:
			return TypeMat4
		case TypeVec3:
			// Affine point transform: (x, y, z, 1).
			return TypeVec3
		case TypeVec4:
			return TypeVec4
		}
		fail(op.String(), ErrTypeMismatch, "right operand is %s, want mat4, vec3 or vec4", args[1].typ)
	case OpNoise3, OpSimplex3, OpWorley3:
		requireArgs(op, args, 1)
		if args[0].typ != TypeVec3 {
			fail(op.String(), ErrTypeMismatch, "want vec3, got %s", args[0].typ)
		}
		return TypeScalar
	}
	fail(op.String(), ErrTypeMismatch, "unknown opcode %d", op)
	return 0
}

// broadcastBinary types a componentwise binary operator: a scalar operand
// broadcasts across a vector operand, two vector operands must agree in
// width.
func broadcastBinary(op Op, args []*Node) Type {
	requireArgs(op, args, 2)
	a, b := args[0].typ, args[1].typ
	wa, oka := numericWidth(a)
	wb, okb := numericWidth(b)
	if !oka || !okb {
		fail(op.String(), ErrTypeMismatch, "cannot apply to %s and %s", a, b)
	}
	switch {
	case wa == wb:
		return a
	case wa == 1:
		return b
	case wb == 1:
		return a
	}
	fail(op.String(), ErrTypeMismatch, "component counts differ: %s and %s", a, b)
	return 0
}

func requireArgs(op Op, args []*Node, n int) {
	if len(args) != n {
		fail(op.String(), ErrTypeMismatch, "want %d operands, got %d", n, len(args))
	}
}

// Chainable componentwise arithmetic. Scalar operands broadcast across
// vector operands.

func (n *Node) Add(b *Node) *Node { return Apply(OpAdd, n, b) }

func (n *Node) Sub(b *Node) *Node { return Apply(OpSub, n, b) }

func (n *Node) Mul(b *Node) *Node { return Apply(OpMul, n, b) }

func (n *Node) Div(b *Node) *Node { return Apply(OpDiv, n, b) }

func (n *Node) Neg() *Node { return Apply(OpNeg, n) }

// Mod computes the shader-style remainder x - y*floor(x/y), which keeps
// the sign of y. It is the wrap used for hue and phase arithmetic.
func (n *Node) Mod(b *Node) *Node { return Apply(OpMod, n, b) }

func (n *Node) Pow(e *Node) *Node { return Apply(OpPow, n, e) }

// Scalar comparisons, for feeding Select.

func (n *Node) Less(b *Node) *Node { return Apply(OpLess, n, b) }

func (n *Node) LessEq(b *Node) *Node { return Apply(OpLessEq, n, b) }

func (n *Node) Greater(b *Node) *Node { return Apply(OpGreater, n, b) }

func (n *Node) GreaterEq(b *Node) *Node { return Apply(OpGreaterEq, n, b) }

// Shader-style intrinsics in their usual argument order.

func Abs(x *Node) *Node { return Apply(OpAbs, x) }

func Floor(x *Node) *Node { return Apply(OpFloor, x) }

func Fract(x *Node) *Node { return Apply(OpFract, x) }

func Sqrt(x *Node) *Node { return Apply(OpSqrt, x) }

func Sin(x *Node) *Node { return Apply(OpSin, x) }

func Cos(x *Node) *Node { return Apply(OpCos, x) }

func Exp(x *Node) *Node { return Apply(OpExp, x) }

func Log(x *Node) *Node { return Apply(OpLog, x) }

func Pow(x, e *Node) *Node { return Apply(OpPow, x, e) }

func Min(a, b *Node) *Node { return Apply(OpMin, a, b) }

func Max(a, b *Node) *Node { return Apply(OpMax, a, b) }

func Step(edge, x *Node) *Node { return Apply(OpStep, edge, x) }

func Dot(a, b *Node) *Node { return Apply(OpDot, a, b) }

func Cross(a, b *Node) *Node { return Apply(OpCross, a, b) }

func Length(v *Node) *Node { return Apply(OpLength, v) }

func Normalize(v *Node) *Node { return Apply(OpNormalize, v) }

func Clamp(x, lo, hi *Node) *Node { return Apply(OpClamp, x, lo, hi) }

func Mix(a, b, t *Node) *Node { return Apply(OpMix, a, b, t) }

func Smoothstep(e0, e1, x *Node) *Node { return Apply(OpSmoothstep, e0, e1, x) }

func And(a, b *Node) *Node { return Apply(OpAnd, a, b) }

func Or(a, b *Node) *Node { return Apply(OpOr, a, b) }

func Not(a *Node) *Node { return Apply(OpNot, a) }

// Clamp01 clamps every component of x to [0, 1].
func Clamp01(x *Node) *Node { return Clamp(x, Float(0), Float(1)) }

// MatMul composes two mat4 nodes. Column-vector convention: applying
// MatMul(a, b) to a point transforms by b first, then a.
func MatMul(a, b *Node) *Node { return Apply(OpMatMul, a, b) }

// Transform applies a mat4 to a vec3 point (homogeneous w = 1, no
// perspective divide) or to a vec4.
func Transform(m, v *Node) *Node { return Apply(OpMatMul, m, v) }

// Select returns a node evaluating to whenTrue where cond holds and
// whenFalse elsewhere. The branches must share a type. Both branches are
// part of the graph and are always evaluated; Select chooses a value, it
// does not short-circuit.
func Select(cond, whenTrue, whenFalse *Node) *Node {
	if cond == nil || whenTrue == nil || whenFalse == nil {
		fail("Select", ErrTypeMismatch, "nil operand")
	}
	if cond.typ != TypeBool {
		fail("Select", ErrTypeMismatch, "condition is %s, want bool", cond.typ)
	}
	if whenTrue.typ != whenFalse.typ {
		fail("Select", ErrTypeMismatch, "branch types differ: %s and %s", whenTrue.typ, whenFalse.typ)
	}
	return &Node{kind: KindSelect, typ: whenTrue.typ, args: []*Node{cond, whenTrue, whenFalse}}
}

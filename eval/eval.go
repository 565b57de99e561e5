// Package eval executes expression graphs on the CPU. A graph is
// compiled once into a flat postorder program with one slot per node, so
// shared subexpressions are computed once per sample; the program is then
// run for as many sample points as needed.
//
// Arithmetic is float32 throughout, mirroring GPU shader semantics:
// divides by zero, logs of non-positive values and friends produce
// Inf/NaN and propagate, they never return errors. Uniform values are
// snapshotted by Begin, so a running batch never observes a torn or
// mid-batch write.
package eval

import (
	"errors"
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/MeKo-Tech/proctex/graph"
)

// Fixed lattice seed for the base noise sources. Graphs express seeding
// as position offsets, which keeps a given graph bit-stable across
// processes and makes golden-image tests possible.
const noiseSeed = 1043

// Vec3 is a host-side vector for sample positions and evaluated results.
type Vec3 struct {
	X, Y, Z float32
}

type instr struct {
	kind graph.Kind
	op   graph.Op
	typ  graph.Type
	n    int // component count, 0 for mat4
	args []int32
	lit  [4]float32
	mat  *[16]float32
	sel  []int
	uni  int
}

type program struct {
	instrs   []instr
	rootSlot map[*graph.Node]int32
	uniforms []*graph.Uniform
	hasMat   bool
}

// Evaluator runs a compiled program. It is not safe for concurrent use;
// parallel renderers give each worker its own Clone, which shares the
// immutable program.
type Evaluator struct {
	p     *program
	vals  [][4]float32
	mats  []*[16]float32
	usnap [][4]float32
	pos   Vec3

	perlin  *perlin.Perlin
	simplex opensimplex.Noise
}

// New compiles the given root nodes into one shared program and returns
// an evaluator for it. Roots may share subgraphs; shared nodes occupy a
// single slot. The initial uniform snapshot is taken immediately.
func New(roots ...*graph.Node) (*Evaluator, error) {
	p, err := compile(roots)
	if err != nil {
		return nil, err
	}
	return newEvaluator(p), nil
}

func compile(roots []*graph.Node) (*program, error) {
	if len(roots) == 0 {
		return nil, errors.New("eval: no roots")
	}
	p := &program{rootSlot: make(map[*graph.Node]int32, len(roots))}
	slots := make(map[*graph.Node]int32)
	uniformSlot := make(map[*graph.Uniform]int)

	var visit func(n *graph.Node) (int32, error)
	visit = func(n *graph.Node) (int32, error) {
		if n == nil {
			return 0, errors.New("eval: nil node in graph")
		}
		if s, ok := slots[n]; ok {
			return s, nil
		}
		in := instr{kind: n.Kind(), op: n.Op(), typ: n.Type()}
		if in.typ != graph.TypeMat4 {
			in.n = in.typ.Components()
		} else {
			p.hasMat = true
		}
		for _, a := range n.Args() {
			s, err := visit(a)
			if err != nil {
				return 0, err
			}
			in.args = append(in.args, s)
		}
		switch n.Kind() {
		case graph.KindLiteral:
			in.lit = n.Literal()
			if in.typ == graph.TypeMat4 {
				m := n.MatLiteral()
				in.mat = &m
			}
		case graph.KindSwizzle:
			in.sel = n.Indices()
		case graph.KindUniform:
			u := n.Uniform()
			idx, ok := uniformSlot[u]
			if !ok {
				idx = len(p.uniforms)
				uniformSlot[u] = idx
				p.uniforms = append(p.uniforms, u)
			}
			in.uni = idx
		}
		s := int32(len(p.instrs))
		p.instrs = append(p.instrs, in)
		slots[n] = s
		return s, nil
	}

	for _, r := range roots {
		s, err := visit(r)
		if err != nil {
			return nil, err
		}
		p.rootSlot[r] = s
	}
	return p, nil
}

func newEvaluator(p *program) *Evaluator {
	e := &Evaluator{
		p:       p,
		vals:    make([][4]float32, len(p.instrs)),
		usnap:   make([][4]float32, len(p.uniforms)),
		perlin:  perlin.NewPerlin(2, 2, 1, noiseSeed),
		simplex: opensimplex.New(noiseSeed),
	}
	if p.hasMat {
		e.mats = make([]*[16]float32, len(p.instrs))
	}
	for i := range p.instrs {
		in := &p.instrs[i]
		if in.typ == graph.TypeMat4 {
			m := new([16]float32)
			if in.kind == graph.KindLiteral && in.mat != nil {
				*m = *in.mat
			}
			e.mats[i] = m
		} else if in.kind == graph.KindLiteral {
			e.vals[i] = in.lit
		}
	}
	e.Begin()
	return e
}

// Clone returns an independent evaluator over the same program, carrying
// the current uniform snapshot. Clones never share mutable state, so each
// render worker can sample concurrently.
func (e *Evaluator) Clone() *Evaluator {
	c := newEvaluator(e.p)
	copy(c.usnap, e.usnap)
	return c
}

// Uniforms returns the uniform cells referenced by the compiled graph, in
// first-use order.
func (e *Evaluator) Uniforms() []*graph.Uniform { return e.p.uniforms }

// Begin starts an evaluation batch: it snapshots every referenced
// uniform. Writes made after Begin become visible at the next Begin.
func (e *Evaluator) Begin() {
	for i, u := range e.p.uniforms {
		e.usnap[i] = u.Value()
	}
}

// Sample evaluates the whole program at position p. Root values are read
// afterwards with Scalar, Vec3 or Vec4.
func (e *Evaluator) Sample(p Vec3) {
	e.pos = p
	e.run()
}

func (e *Evaluator) slot(root *graph.Node) int32 {
	s, ok := e.p.rootSlot[root]
	if !ok {
		panic(fmt.Sprintf("eval: node of type %s was not compiled as a root", root.Type()))
	}
	return s
}

// Scalar returns a scalar root's value for the current sample.
func (e *Evaluator) Scalar(root *graph.Node) float32 {
	return e.vals[e.slot(root)][0]
}

// Vec3 returns a vec3 root's value for the current sample.
func (e *Evaluator) Vec3(root *graph.Node) Vec3 {
	v := e.vals[e.slot(root)]
	return Vec3{v[0], v[1], v[2]}
}

// Vec4 returns a root's value as up to four components.
func (e *Evaluator) Vec4(root *graph.Node) [4]float32 {
	return e.vals[e.slot(root)]
}

// Mat4 returns a mat4 root's value for the current sample.
func (e *Evaluator) Mat4(root *graph.Node) [16]float32 {
	return *e.mats[e.slot(root)]
}

// ScalarAt is Sample followed by Scalar.
func (e *Evaluator) ScalarAt(root *graph.Node, p Vec3) float32 {
	e.Sample(p)
	return e.Scalar(root)
}

// Vec3At is Sample followed by Vec3.
func (e *Evaluator) Vec3At(root *graph.Node, p Vec3) Vec3 {
	e.Sample(p)
	return e.Vec3(root)
}

func (e *Evaluator) run() {
	for i := range e.p.instrs {
		in := &e.p.instrs[i]
		switch in.kind {
		case graph.KindLiteral:
			// Materialized at construction.
		case graph.KindInput:
			e.vals[i] = [4]float32{e.pos.X, e.pos.Y, e.pos.Z}
		case graph.KindUniform:
			e.vals[i] = e.usnap[in.uni]
		case graph.KindSwizzle:
			src := e.vals[in.args[0]]
			var out [4]float32
			for k, c := range in.sel {
				out[k] = src[c]
			}
			e.vals[i] = out
		case graph.KindSelect:
			pick := in.args[2]
			if e.vals[in.args[0]][0] != 0 {
				pick = in.args[1]
			}
			if in.typ == graph.TypeMat4 {
				*e.mats[i] = *e.mats[pick]
			} else {
				e.vals[i] = e.vals[pick]
			}
		case graph.KindOp:
			e.exec(i, in)
		}
	}
}

func (e *Evaluator) exec(i int, in *instr) {
	switch in.op {
	case graph.OpAdd:
		e.binary(i, in, func(x, y float32) float32 { return x + y })
	case graph.OpSub:
		e.binary(i, in, func(x, y float32) float32 { return x - y })
	case graph.OpMul:
		e.binary(i, in, func(x, y float32) float32 { return x * y })
	case graph.OpDiv:
		e.binary(i, in, func(x, y float32) float32 { return x / y })
	case graph.OpMod:
		e.binary(i, in, glslMod)
	case graph.OpPow:
		e.binary(i, in, math32.Pow)
	case graph.OpMin:
		e.binary(i, in, math32.Min)
	case graph.OpMax:
		e.binary(i, in, math32.Max)
	case graph.OpStep:
		e.binary(i, in, func(edge, x float32) float32 {
			if x < edge {
				return 0
			}
			return 1
		})
	case graph.OpNeg:
		e.unary(i, in, func(x float32) float32 { return -x })
	case graph.OpAbs:
		e.unary(i, in, math32.Abs)
	case graph.OpFloor:
		e.unary(i, in, math32.Floor)
	case graph.OpFract:
		e.unary(i, in, func(x float32) float32 { return x - math32.Floor(x) })
	case graph.OpSqrt:
		e.unary(i, in, math32.Sqrt)
	case graph.OpSin:
		e.unary(i, in, math32.Sin)
	case graph.OpCos:
		e.unary(i, in, math32.Cos)
	case graph.OpExp:
		e.unary(i, in, math32.Exp)
	case graph.OpLog:
		e.unary(i, in, math32.Log)
	case graph.OpDot:
		a, b := e.vals[in.args[0]], e.vals[in.args[1]]
		n := e.p.instrs[in.args[0]].n
		var sum float32
		for k := 0; k < n; k++ {
			sum += a[k] * b[k]
		}
		e.vals[i] = [4]float32{sum}
	case graph.OpCross:
		a, b := e.vals[in.args[0]], e.vals[in.args[1]]
		e.vals[i] = [4]float32{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
		}
	case graph.OpLength:
		v := e.vals[in.args[0]]
		n := e.p.instrs[in.args[0]].n
		var sum float32
		for k := 0; k < n; k++ {
			sum += v[k] * v[k]
		}
		e.vals[i] = [4]float32{math32.Sqrt(sum)}
	case graph.OpNormalize:
		v := e.vals[in.args[0]]
		var sum float32
		for k := 0; k < in.n; k++ {
			sum += v[k] * v[k]
		}
		inv := 1 / math32.Sqrt(sum)
		var out [4]float32
		for k := 0; k < in.n; k++ {
			out[k] = v[k] * inv
		}
		e.vals[i] = out
	case graph.OpClamp:
		e.ternary(i, in, 0, func(x, lo, hi float32) float32 {
			return math32.Min(math32.Max(x, lo), hi)
		})
	case graph.OpMix:
		e.ternary(i, in, 0, func(a, b, t float32) float32 {
			return a + (b-a)*t
		})
	case graph.OpSmoothstep:
		e.ternary(i, in, 2, func(e0, e1, x float32) float32 {
			t := math32.Min(math32.Max((x-e0)/(e1-e0), 0), 1)
			return t * t * (3 - 2*t)
		})
	case graph.OpLess:
		e.compare(i, in, func(x, y float32) bool { return x < y })
	case graph.OpLessEq:
		e.compare(i, in, func(x, y float32) bool { return x <= y })
	case graph.OpGreater:
		e.compare(i, in, func(x, y float32) bool { return x > y })
	case graph.OpGreaterEq:
		e.compare(i, in, func(x, y float32) bool { return x >= y })
	case graph.OpAnd:
		e.vals[i] = [4]float32{b2f(e.vals[in.args[0]][0] != 0 && e.vals[in.args[1]][0] != 0)}
	case graph.OpOr:
		e.vals[i] = [4]float32{b2f(e.vals[in.args[0]][0] != 0 || e.vals[in.args[1]][0] != 0)}
	case graph.OpNot:
		e.vals[i] = [4]float32{b2f(e.vals[in.args[0]][0] == 0)}
	case graph.OpVec2, graph.OpVec3, graph.OpVec4:
		var out [4]float32
		k := 0
		for _, ai := range in.args {
			av := e.vals[ai]
			for c := 0; c < e.p.instrs[ai].n; c++ {
				out[k] = av[c]
				k++
			}
		}
		e.vals[i] = out
	case graph.OpMat4:
		m := e.mats[i]
		for k, ai := range in.args {
			m[k] = e.vals[ai][0]
		}
	case graph.OpMatMul:
		e.matMul(i, in)
	case graph.OpNoise3:
		v := e.vals[in.args[0]]
		e.vals[i] = [4]float32{float32(e.perlin.Noise3D(float64(v[0]), float64(v[1]), float64(v[2])))}
	case graph.OpSimplex3:
		v := e.vals[in.args[0]]
		e.vals[i] = [4]float32{float32(e.simplex.Eval3(float64(v[0]), float64(v[1]), float64(v[2])))}
	case graph.OpWorley3:
		v := e.vals[in.args[0]]
		e.vals[i] = [4]float32{worley3(v[0], v[1], v[2])}
	}
}

// matMul handles mat4*mat4 composition and the mat4*vec3 (affine point,
// w=1) and mat4*vec4 transforms. Matrices are column-major.
func (e *Evaluator) matMul(i int, in *instr) {
	a := e.mats[in.args[0]]
	rt := e.p.instrs[in.args[1]].typ
	switch rt {
	case graph.TypeMat4:
		b := e.mats[in.args[1]]
		var out [16]float32
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				var sum float32
				for k := 0; k < 4; k++ {
					sum += a[k*4+r] * b[c*4+k]
				}
				out[c*4+r] = sum
			}
		}
		*e.mats[i] = out
	case graph.TypeVec3:
		v := e.vals[in.args[1]]
		var out [4]float32
		for r := 0; r < 3; r++ {
			out[r] = a[0*4+r]*v[0] + a[1*4+r]*v[1] + a[2*4+r]*v[2] + a[3*4+r]
		}
		e.vals[i] = out
	case graph.TypeVec4:
		v := e.vals[in.args[1]]
		var out [4]float32
		for r := 0; r < 4; r++ {
			out[r] = a[0*4+r]*v[0] + a[1*4+r]*v[1] + a[2*4+r]*v[2] + a[3*4+r]*v[3]
		}
		e.vals[i] = out
	}
}

func (e *Evaluator) binary(i int, in *instr, f func(x, y float32) float32) {
	x := e.vals[in.args[0]]
	y := e.vals[in.args[1]]
	bx := e.p.instrs[in.args[0]].n == 1
	by := e.p.instrs[in.args[1]].n == 1
	var out [4]float32
	for k := 0; k < in.n; k++ {
		xi, yi := k, k
		if bx {
			xi = 0
		}
		if by {
			yi = 0
		}
		out[k] = f(x[xi], y[yi])
	}
	e.vals[i] = out
}

func (e *Evaluator) unary(i int, in *instr, f func(x float32) float32) {
	x := e.vals[in.args[0]]
	var out [4]float32
	for k := 0; k < in.n; k++ {
		out[k] = f(x[k])
	}
	e.vals[i] = out
}

// compare is scalar-only; the constructors reject vector comparisons.
func (e *Evaluator) compare(i int, in *instr, f func(x, y float32) bool) {
	e.vals[i] = [4]float32{b2f(f(e.vals[in.args[0]][0], e.vals[in.args[1]][0]))}
}

// ternary applies f componentwise over three operands; principal names
// the operand whose width equals the result width, the other two
// broadcast when scalar.
func (e *Evaluator) ternary(i int, in *instr, principal int, f func(a, b, c float32) float32) {
	var v [3][4]float32
	var bc [3]bool
	for j := 0; j < 3; j++ {
		v[j] = e.vals[in.args[j]]
		bc[j] = j != principal && e.p.instrs[in.args[j]].n == 1
	}
	var out [4]float32
	for k := 0; k < in.n; k++ {
		idx := [3]int{k, k, k}
		for j := 0; j < 3; j++ {
			if bc[j] {
				idx[j] = 0
			}
		}
		out[k] = f(v[0][idx[0]], v[1][idx[1]], v[2][idx[2]])
	}
	e.vals[i] = out
}

// glslMod is the shader remainder x - y*floor(x/y); unlike math.Mod the
// result keeps the sign of y, which is what hue wrapping and phase
// arithmetic want.
func glslMod(x, y float32) float32 {
	return x - y*math32.Floor(x/y)
}

func b2f(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

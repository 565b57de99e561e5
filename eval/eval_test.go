package eval

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/proctex/graph"
)

func TestArithmeticAndBroadcast(t *testing.T) {
	p := graph.Position()
	n := p.Mul(graph.Float(2)).Add(graph.Vec3(1, 0, 0))
	e, err := New(n)
	require.NoError(t, err)
	require.Equal(t, Vec3{3, 4, 6}, e.Vec3At(n, Vec3{1, 2, 3}))
}

func TestSwizzleAndPack(t *testing.T) {
	p := graph.Position()
	zxy := p.Swizzle("zxy")
	packed := graph.Vec4Of(p.XY(), graph.Float(7), p.X())
	e, err := New(zxy, packed)
	require.NoError(t, err)
	e.Sample(Vec3{1, 2, 3})
	require.Equal(t, Vec3{3, 1, 2}, e.Vec3(zxy))
	require.Equal(t, [4]float32{1, 2, 7, 1}, e.Vec4(packed))
}

func TestSelect(t *testing.T) {
	x := graph.Position().X()
	n := graph.Select(x.Less(graph.Float(0)), graph.Float(-1), graph.Float(1))
	e, err := New(n)
	require.NoError(t, err)
	require.Equal(t, float32(-1), e.ScalarAt(n, Vec3{X: -2}))
	require.Equal(t, float32(1), e.ScalarAt(n, Vec3{X: 2}))
	require.Equal(t, float32(1), e.ScalarAt(n, Vec3{X: 0}))
}

func TestIntrinsics(t *testing.T) {
	x := graph.Position().X()

	sm := graph.Smoothstep(graph.Float(0), graph.Float(1), x)
	mx := graph.Mix(graph.Float(10), graph.Float(20), x)
	md := x.Mod(graph.Float(3))
	e, err := New(sm, mx, md)
	require.NoError(t, err)

	e.Sample(Vec3{X: 0})
	require.Equal(t, float32(0), e.Scalar(sm))
	require.Equal(t, float32(10), e.Scalar(mx))

	e.Sample(Vec3{X: 0.5})
	require.Equal(t, float32(0.5), e.Scalar(sm))
	require.Equal(t, float32(15), e.Scalar(mx))

	e.Sample(Vec3{X: 1})
	require.Equal(t, float32(1), e.Scalar(sm))

	// Shader mod keeps the sign of the divisor.
	e.Sample(Vec3{X: -1})
	require.Equal(t, float32(2), e.Scalar(md))
}

func TestVectorOps(t *testing.T) {
	p := graph.Position()
	d := graph.Dot(p, graph.Vec3(0, 1, 0))
	c := graph.Cross(graph.Vec3(1, 0, 0), graph.Vec3(0, 1, 0))
	l := graph.Length(p)
	nz := graph.Normalize(p)
	e, err := New(d, c, l, nz)
	require.NoError(t, err)
	e.Sample(Vec3{3, 4, 0})
	require.Equal(t, float32(4), e.Scalar(d))
	require.Equal(t, Vec3{0, 0, 1}, e.Vec3(c))
	require.Equal(t, float32(5), e.Scalar(l))
	require.InDelta(t, 0.6, e.Vec3(nz).X, 1e-6)
	require.InDelta(t, 0.8, e.Vec3(nz).Y, 1e-6)
}

func TestMatTransform(t *testing.T) {
	p := graph.Position()
	ident := graph.Transform(graph.Identity(), p)
	trans := graph.Transform(graph.Mat4(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		5, 6, 7, 1,
	), p)
	e, err := New(ident, trans)
	require.NoError(t, err)
	e.Sample(Vec3{1, 2, 3})
	require.Equal(t, Vec3{1, 2, 3}, e.Vec3(ident))
	require.Equal(t, Vec3{6, 8, 10}, e.Vec3(trans))
}

func TestUniformSnapshotPerBatch(t *testing.T) {
	u := graph.UniformFloat("speed", 1)
	n := u.Node().Mul(graph.Float(10))
	e, err := New(n)
	require.NoError(t, err)
	require.Equal(t, float32(10), e.ScalarAt(n, Vec3{}))

	// A write lands only at the next Begin, never mid-batch.
	u.SetFloat(5)
	require.Equal(t, float32(10), e.ScalarAt(n, Vec3{}))
	e.Begin()
	require.Equal(t, float32(50), e.ScalarAt(n, Vec3{}))
}

func TestCloneKeepsSnapshot(t *testing.T) {
	u := graph.UniformFloat("v", 2)
	n := u.Node()
	e, err := New(n)
	require.NoError(t, err)
	c := e.Clone()

	u.SetFloat(9)
	e.Begin()
	require.Equal(t, float32(9), e.ScalarAt(n, Vec3{}))
	require.Equal(t, float32(2), c.ScalarAt(n, Vec3{}))
}

func TestIEEEPropagation(t *testing.T) {
	x := graph.Position().X()

	div := graph.Float(1).Div(x)
	lg := graph.Log(x)
	e, err := New(div, lg)
	require.NoError(t, err)

	e.Sample(Vec3{X: 0})
	require.True(t, math32.IsInf(e.Scalar(div), 1))

	e.Sample(Vec3{X: -1})
	require.True(t, math32.IsNaN(e.Scalar(lg)))
}

func TestNoiseDeterministicAndLatticeZero(t *testing.T) {
	n := graph.Apply(graph.OpNoise3, graph.Position())
	e, err := New(n)
	require.NoError(t, err)

	p := Vec3{0.37, 1.21, -2.4}
	first := e.ScalarAt(n, p)
	require.Equal(t, first, e.ScalarAt(n, p))

	other, err := New(n)
	require.NoError(t, err)
	require.Equal(t, first, other.ScalarAt(n, p))

	// Gradient noise vanishes on the integer lattice.
	require.Equal(t, float32(0), e.ScalarAt(n, Vec3{}))
	require.Equal(t, float32(0), e.ScalarAt(n, Vec3{2, -3, 5}))
}

func TestSimplexDeterministic(t *testing.T) {
	n := graph.Apply(graph.OpSimplex3, graph.Position())
	e, err := New(n)
	require.NoError(t, err)
	p := Vec3{0.5, -1.25, 3.75}
	require.Equal(t, e.ScalarAt(n, p), e.ScalarAt(n, p))
	require.LessOrEqual(t, math32.Abs(e.ScalarAt(n, p)), float32(1))
}

func TestWorleyRange(t *testing.T) {
	n := graph.Apply(graph.OpWorley3, graph.Position())
	e, err := New(n)
	require.NoError(t, err)
	for _, p := range []Vec3{
		{0, 0, 0}, {0.5, 0.5, 0.5}, {-3.2, 1.7, 9.9}, {100, -50, 2.5},
	} {
		v := e.ScalarAt(n, p)
		require.GreaterOrEqual(t, v, float32(0), "at %v", p)
		require.Less(t, v, float32(1.8), "at %v", p)
		require.Equal(t, v, e.ScalarAt(n, p), "at %v", p)
	}
}

func TestMultipleRootsShareSubgraph(t *testing.T) {
	p := graph.Position()
	base := p.Mul(graph.Float(3))
	cr := base.Add(graph.Vec3(1, 1, 1))
	sr := graph.Length(base)
	e, err := New(cr, sr)
	require.NoError(t, err)
	e.Sample(Vec3{1, 0, 0})
	require.Equal(t, Vec3{4, 1, 1}, e.Vec3(cr))
	require.Equal(t, float32(3), e.Scalar(sr))
}

func TestNewRejectsEmptyAndNil(t *testing.T) {
	_, err := New()
	require.Error(t, err)
	_, err = New(nil)
	require.Error(t, err)
}

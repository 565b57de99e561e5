package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/noise"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/shade"
	"github.com/MeKo-Tech/proctex/tint"
)

var voronoiDefaults = params.Table{
	"$name":       "Voronoi",
	"scale":       3.0,
	"speed":       0.4,
	"centerColor": [3]float64{0.95, 0.90, 0.80},
	"cellColor":   [3]float64{0.40, 0.45, 0.55},
	"edgeColor":   [3]float64{0.08, 0.10, 0.14},
	"seed":        0.0,
}

// Voronoi composes drifting cellular shading: the distance to the
// nearest feature point runs through a three-stop gradient, bright at
// cell centers and dark along the far boundaries.
func Voronoi(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(voronoiDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("voronoi: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	drift := graph.Vec3Of(t.Mul(graph.Float(0.31)), t.Mul(graph.Float(0.17)), t.Mul(graph.Float(0.23)))
	p := graph.Position().Mul(b.Node("scale")).Add(seedOffset(b.Node("seed"))).Add(drift)
	w := graph.Clamp01(noise.Worley3(p))
	color := tint.Gradient(w, []tint.Stop{
		{Pos: 0.05, Color: b.Node("centerColor")},
		{Pos: 0.55, Color: b.Node("cellColor")},
		{Pos: 0.92, Color: b.Node("edgeColor")},
	})
	return animated(tm, color, nil), nil
}

var bricksDefaults = params.Table{
	"$name":       "Bricks",
	"rows":        6.0,
	"columns":     3.0,
	"mortar":      0.08,
	"jitter":      0.25,
	"brickColor":  [3]float64{0.62, 0.20, 0.14},
	"mortarColor": [3]float64{0.82, 0.80, 0.76},
	"seed":        0.0,
}

// Bricks composes a running-bond brick wall: every other row shifts by
// half a brick, mortar lines come from a smoothstep on the distance to
// the cell border, and each brick's tint is jittered by noise sampled
// at its cell center.
func Bricks(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(bricksDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("bricks: %w", err)
	}
	pos := graph.Position()
	gy := pos.Y().Mul(b.Node("rows"))
	row := graph.Floor(gy)
	shift := row.Mod(graph.Float(2)).Mul(graph.Float(0.5))
	gx := pos.X().Mul(b.Node("columns")).Add(shift).Add(b.Node("seed").Mul(graph.Float(7.31)))
	col := graph.Floor(gx)

	fx := graph.Fract(gx)
	fy := graph.Fract(gy)
	ex := graph.Min(fx, graph.Float(1).Sub(fx))
	ey := graph.Min(fy, graph.Float(1).Sub(fy))
	m := b.Node("mortar")
	mask := graph.Smoothstep(m.Mul(graph.Float(0.5)), m, ex).
		Mul(graph.Smoothstep(m.Mul(graph.Float(0.5)), m, ey))

	// Sampling at the cell center (half-integer coordinates) gives one
	// stable noise value per brick.
	half := graph.Float(0.5)
	jit := noise.Perlin3(graph.Vec3Of(col.Add(half), row.Add(half), graph.Float(17.5)))
	brick := b.Node("brickColor").Mul(graph.Float(1).Add(jit.Mul(b.Node("jitter"))))

	color := tint.Gradient(mask, []tint.Stop{
		{Pos: 0.25, Color: b.Node("mortarColor")},
		{Pos: 0.75, Color: brick},
	})
	return &Graph{Color: color}, nil
}

var polkaDotsDefaults = params.Table{
	"$name":           "PolkaDots",
	"density":         5.0,
	"radius":          0.3,
	"jitter":          0.15,
	"dotColor":        [3]float64{0.95, 0.30, 0.40},
	"backgroundColor": [3]float64{0.97, 0.95, 0.90},
	"seed":            0.0,
}

// PolkaDots composes a jittered dot grid: each cell hosts one dot whose
// center is nudged by per-cell noise and whose body is a radial falloff
// in cell-local coordinates.
func PolkaDots(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(polkaDotsDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("polkaDots: %w", err)
	}
	g := graph.Position().XY().Mul(b.Node("density"))
	cell := graph.Floor(g)
	f := graph.Fract(g).Sub(graph.Vec2(0.5, 0.5))

	half := graph.Float(0.5)
	anchor := graph.Vec3Of(cell.X().Add(half), cell.Y().Add(half),
		b.Node("seed").Mul(graph.Float(9.73)).Add(graph.Float(7.5)))
	jx := noise.Perlin3(anchor)
	jy := noise.Perlin3(anchor.Add(graph.Vec3(0, 0, 23)))
	local := f.Sub(graph.Vec2Of(jx, jy).Mul(b.Node("jitter")))

	dot := shade.RadialFalloff(local, b.Node("radius").Mul(graph.Float(0.55)), b.Node("radius"))
	color := tint.Gradient(dot, []tint.Stop{
		{Pos: 0.3, Color: b.Node("backgroundColor")},
		{Pos: 0.8, Color: b.Node("dotColor")},
	})
	return &Graph{Color: color}, nil
}

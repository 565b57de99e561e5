package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/noise"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/shade"
	"github.com/MeKo-Tech/proctex/tint"
)

// Gradient stop positions and erosion constants are part of each
// composer's documented appearance; tests pin them with literal values.
const (
	fireStopFlame        = 0.45
	fireStopCore         = 0.8
	fireInnerRadius      = 0.15
	fireOuterRadius      = 1.05
	fireErosionScale     = 1.4
	fireErosionThreshold = 0.35
	fireErosionSharpness = 0.25
)

var fireDefaults = params.Table{
	"$name":         "Fire",
	"scale":         1.5,
	"speed":         1.0,
	"flowSpeed":     0.8,
	"turbulence":    0.55,
	"flickerSpeed":  6.0,
	"flickerAmount": 0.12,
	"coreColor":     [3]float64{1.0, 0.95, 0.75},
	"flameColor":    [3]float64{1.0, 0.42, 0.05},
	"smokeColor":    [3]float64{0.25, 0.22, 0.20},
	"darkColor":     [3]float64{0.05, 0.015, 0.0},
	"seed":          0.0,
}

// Fire composes a rising fireball: two fractal layers advected upward,
// a radial body falloff eroded by turbulence, a global flicker, and a
// four-stop gradient dark, flame, core, smoke. With seed 0 the noise
// layers vanish at the origin at time zero, so the origin color sits in
// the low regime of the gradient, nearest darkColor.
func Fire(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(fireDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("fire: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	zero := graph.Float(0)
	p := pos.Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	p = p.Sub(graph.Vec3Of(zero, t.Mul(b.Node("flowSpeed")), zero))

	body := noise.Fractal(p, 4, graph.Float(2), graph.Float(0.5))
	// The detail layer is decorrelated by an integer offset so it still
	// vanishes on the lattice with seed 0.
	detail := noise.Fractal(p.Mul(graph.Float(2.7)).Add(graph.Vec3(31, -47, 89)), 3, graph.Float(2), graph.Float(0.5))
	density := body.Add(detail.Mul(graph.Float(0.5)))

	shape := shade.RadialFalloff(pos, graph.Float(fireInnerRadius), graph.Float(fireOuterRadius))
	mask := noise.ErosionMask(p, graph.Float(fireErosionScale), graph.Float(fireErosionThreshold), graph.Float(fireErosionSharpness))
	edge := graph.Mix(shape, shape.Mul(mask), b.Node("turbulence"))

	flicker := graph.Float(1).Add(b.Node("flickerAmount").Mul(graph.Sin(tm.Node().Mul(b.Node("flickerSpeed")))))

	heat := graph.Clamp01(density.Mul(graph.Float(0.5)).Add(graph.Float(0.5)).Mul(edge).Mul(flicker))
	color := tint.Gradient(heat, []tint.Stop{
		{Pos: 0, Color: b.Node("darkColor")},
		{Pos: fireStopFlame, Color: b.Node("flameColor")},
		{Pos: fireStopCore, Color: b.Node("coreColor")},
		{Pos: 1, Color: b.Node("smokeColor")},
	})
	return animated(tm, color, heat), nil
}

var fireCloudsUpwardDefaults = params.Table{
	"$name":      "FireCloudsUpward",
	"scale":      1.3,
	"speed":      1.0,
	"flowSpeed":  0.6,
	"turbulence": 0.5,
	"warp":       0.5,
	"darkColor":  [3]float64{0.03, 0.01, 0.0},
	"emberColor": [3]float64{0.85, 0.20, 0.02},
	"flameColor": [3]float64{1.0, 0.55, 0.08},
	"coreColor":  [3]float64{1.0, 0.90, 0.60},
	"seed":       0.0,
}

var fireCloudsRadialDefaults = params.Table{
	"$name":      "FireCloudsRadial",
	"scale":      1.3,
	"speed":      1.0,
	"flowSpeed":  0.6,
	"turbulence": 0.5,
	"warp":       0.5,
	"darkColor":  [3]float64{0.03, 0.01, 0.0},
	"emberColor": [3]float64{0.85, 0.20, 0.02},
	"flameColor": [3]float64{1.0, 0.55, 0.08},
	"coreColor":  [3]float64{1.0, 0.90, 0.60},
	"seed":       0.0,
}

// FireCloudsUpward composes fiery cloud billows that flow upward: the
// sample position is advected along -Y, domain warped, and shaped by a
// vertical gradient that brightens toward the bottom. FireCloudsRadial
// is the sibling variant with outward emanation instead. Both are kept
// as distinct composers because they produce distinct looks; neither
// supersedes the other.
func FireCloudsUpward(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(fireCloudsUpwardDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("fireCloudsUpward: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	zero := graph.Float(0)
	p := pos.Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	p = p.Sub(graph.Vec3Of(zero, t.Mul(b.Node("flowSpeed")), zero))

	warped := noise.DomainWarp(p, b.Node("warp"))
	d := noise.Fractal(warped, 5, graph.Float(2), graph.Float(0.5))

	shape := graph.Clamp01(graph.Float(0.85).Sub(pos.Y().Mul(graph.Float(0.4))))
	mask := noise.ErosionMask(p, graph.Float(1.2), graph.Float(0.32), graph.Float(0.22))
	edge := graph.Mix(shape, shape.Mul(mask), b.Node("turbulence"))

	heat := graph.Clamp01(d.Mul(graph.Float(0.5)).Add(graph.Float(0.5)).Mul(edge))
	color := tint.Gradient(heat, []tint.Stop{
		{Pos: 0, Color: b.Node("darkColor")},
		{Pos: 0.4, Color: b.Node("emberColor")},
		{Pos: 0.75, Color: b.Node("flameColor")},
		{Pos: 0.95, Color: b.Node("coreColor")},
	})
	return animated(tm, color, heat), nil
}

// FireCloudsRadial composes fiery billows emanating outward from the
// origin: sampling contracts toward the center as time advances, which
// reads as the pattern expanding, and the body is shaped by a radial
// falloff instead of a vertical one.
func FireCloudsRadial(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(fireCloudsRadialDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("fireCloudsRadial: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	one := graph.Float(1)
	p := pos.Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	spread := one.Div(one.Add(t.Mul(b.Node("flowSpeed")).Mul(graph.Float(0.35))))
	p = p.Mul(spread)

	warped := noise.DomainWarp(p, b.Node("warp"))
	d := noise.Fractal(warped, 5, graph.Float(2), graph.Float(0.5))

	shape := shade.RadialFalloff(pos, graph.Float(0.1), graph.Float(1.3))
	mask := noise.ErosionMask(p, graph.Float(1.2), graph.Float(0.3), graph.Float(0.2))
	edge := graph.Mix(shape, shape.Mul(mask), b.Node("turbulence"))

	heat := graph.Clamp01(d.Mul(graph.Float(0.5)).Add(graph.Float(0.5)).Mul(edge))
	color := tint.Gradient(heat, []tint.Stop{
		{Pos: 0, Color: b.Node("darkColor")},
		{Pos: 0.35, Color: b.Node("emberColor")},
		{Pos: 0.7, Color: b.Node("flameColor")},
		{Pos: 0.92, Color: b.Node("coreColor")},
	})
	return animated(tm, color, heat), nil
}

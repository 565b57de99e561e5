package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/noise"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/shade"
	"github.com/MeKo-Tech/proctex/tint"
)

var nebulaDefaults = params.Table{
	"$name":       "Nebula",
	"scale":       1.2,
	"speed":       1.0,
	"drift":       0.35,
	"turbulence":  0.6,
	"warp":        0.45,
	"deepColor":   [3]float64{0.02, 0.0, 0.08},
	"midColor":    [3]float64{0.35, 0.1, 0.5},
	"brightColor": [3]float64{0.9, 0.7, 1.0},
	"seed":        0.0,
}

// Nebula composes drifting smoke: domain-warped fractal noise advected
// slowly upward, shaped by a vertical gradient and eroded at the edges,
// then mapped through a three-stop deep, mid, bright gradient.
func Nebula(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(nebulaDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("nebula: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	zero := graph.Float(0)
	p := pos.Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	p = p.Sub(graph.Vec3Of(zero, t.Mul(b.Node("drift")), zero))

	warped := noise.DomainWarp(p, b.Node("warp"))
	d := noise.Fractal(warped, 5, graph.Float(2), graph.Float(0.5))

	vert := graph.Clamp01(graph.Float(0.65).Sub(pos.Y().Mul(graph.Float(0.35))))
	mask := noise.ErosionMask(p, graph.Float(1.1), graph.Float(0.3), graph.Float(0.2))
	edge := graph.Mix(vert, vert.Mul(mask), b.Node("turbulence"))

	density := graph.Clamp01(d.Mul(graph.Float(0.5)).Add(graph.Float(0.5)).Mul(edge))
	color := tint.Gradient(density, []tint.Stop{
		{Pos: 0.05, Color: b.Node("deepColor")},
		{Pos: 0.5, Color: b.Node("midColor")},
		{Pos: 0.9, Color: b.Node("brightColor")},
	})
	return animated(tm, color, density), nil
}

var particleCloudDefaults = params.Table{
	"$name":        "ParticleCloud",
	"scale":        1.0,
	"speed":        1.0,
	"radius":       1.6,
	"sparkle":      0.35,
	"sparkleScale": 6.0,
	"haloColor":    [3]float64{0.15, 0.25, 0.5},
	"bodyColor":    [3]float64{0.5, 0.65, 0.95},
	"coreColor":    [3]float64{1.0, 1.0, 1.0},
	"seed":         0.0,
}

// ParticleCloud composes a glowing particle ball from the volumetric
// cloud density field plus a high-frequency sparkle layer. The density
// field keeps its falloff centered on the origin, so seed only
// repositions the sparkle glints. Opacity follows density; sparkle can
// push the color above 1 before the bloom clamp.
func ParticleCloud(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(particleCloudDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("particleCloud: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	p := pos.Mul(b.Node("scale"))
	d := noise.CloudDensity(p, t, b.Node("radius"))

	glint := noise.Perlin3(p.Mul(b.Node("sparkleScale")).Add(seedOffset(b.Node("seed"))).Add(graph.Vec3(13, 71, 37)))
	sparkle := graph.Pow(graph.Clamp01(glint.Mul(graph.Float(0.5)).Add(graph.Float(0.5))), graph.Float(9))

	color := tint.Gradient(d, []tint.Stop{
		{Pos: 0.05, Color: b.Node("haloColor")},
		{Pos: 0.45, Color: b.Node("bodyColor")},
		{Pos: 0.9, Color: b.Node("coreColor")},
	})
	color = color.Add(b.Node("coreColor").Mul(sparkle.Mul(b.Node("sparkle")).Mul(d)))
	color = shade.ClampForBloom(color, graph.Float(1.5))
	return animated(tm, color, d), nil
}

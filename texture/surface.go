package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/noise"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/tint"
)

var marbleDefaults = params.Table{
	"$name":     "Marble",
	"scale":     3.0,
	"waviness":  2.2,
	"warpScale": 0.8,
	"baseColor": [3]float64{0.92, 0.92, 0.88},
	"veinColor": [3]float64{0.22, 0.2, 0.26},
	"seed":      0.0,
}

// Marble composes the classic vein pattern sin(x*scale + fbm): a plane
// wave along X bent by fractal noise, mapped through a two-stop base to
// vein gradient. Static; no time uniform.
func Marble(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(marbleDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("marble: %w", err)
	}
	p := graph.Position().Add(seedOffset(b.Node("seed")))
	warp := noise.Fractal(p.Mul(b.Node("warpScale")), 4, graph.Float(2), graph.Float(0.5))
	vein := graph.Sin(p.X().Mul(b.Node("scale")).Add(warp.Mul(b.Node("waviness")))).
		Mul(graph.Float(0.5)).Add(graph.Float(0.5))
	color := tint.Gradient(vein, []tint.Stop{
		{Pos: 0.3, Color: b.Node("baseColor")},
		{Pos: 0.85, Color: b.Node("veinColor")},
	})
	return &Graph{Color: color}, nil
}

var woodDefaults = params.Table{
	"$name":      "Wood",
	"scale":      1.0,
	"rings":      6.0,
	"waviness":   0.6,
	"grain":      0.15,
	"darkColor":  [3]float64{0.26, 0.13, 0.05},
	"midColor":   [3]float64{0.42, 0.24, 0.10},
	"lightColor": [3]float64{0.65, 0.42, 0.18},
	"seed":       0.0,
}

// Wood composes concentric growth rings around the Y axis, wavered by
// low-frequency noise and overlaid with a stretched fine grain, through
// a three-stop dark, mid, light gradient.
func Wood(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(woodDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("wood: %w", err)
	}
	p := graph.Position().Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	r := graph.Length(p.XZ())
	wave := noise.Fractal(p.Mul(graph.Float(0.9)), 3, graph.Float(2), graph.Float(0.5))
	rings := graph.Sin(r.Mul(b.Node("rings")).Add(wave.Mul(b.Node("waviness")))).
		Mul(graph.Float(0.5)).Add(graph.Float(0.5))
	// Grain is sampled anisotropically, compressed along Y, so streaks
	// run with the trunk.
	grain := noise.Perlin3(p.Mul(graph.Vec3(18, 2.2, 18))).Mul(graph.Float(0.5)).Add(graph.Float(0.5))
	g := b.Node("grain")
	x := graph.Clamp01(rings.Mul(graph.Float(1).Sub(g)).Add(grain.Mul(g)))
	color := tint.Gradient(x, []tint.Stop{
		{Pos: 0.1, Color: b.Node("darkColor")},
		{Pos: 0.55, Color: b.Node("midColor")},
		{Pos: 0.95, Color: b.Node("lightColor")},
	})
	return &Graph{Color: color}, nil
}

var rustDefaults = params.Table{
	"$name":      "Rust",
	"scale":      2.5,
	"coverage":   0.55,
	"softness":   0.15,
	"pitting":    0.6,
	"metalColor": [3]float64{0.55, 0.56, 0.58},
	"rustColor":  [3]float64{0.55, 0.21, 0.06},
	"crustColor": [3]float64{0.30, 0.10, 0.03},
	"seed":       0.0,
}

// Rust composes patchy corrosion: a fractal patch field thresholded at
// 1-coverage selects rusted regions, turbulence pits deepen them, and
// the rust itself runs through a two-stop rust to crust gradient
// blended over the base metal.
func Rust(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(rustDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("rust: %w", err)
	}
	p := graph.Position().Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	w := noise.Fractal(p, 4, graph.Float(2), graph.Float(0.5)).Mul(graph.Float(0.5)).Add(graph.Float(0.5))
	cov := graph.Float(1).Sub(b.Node("coverage"))
	patch := graph.Smoothstep(cov.Sub(b.Node("softness")), cov.Add(b.Node("softness")), w)

	pits := noise.Turbulence(p.Mul(graph.Float(3)), 3, graph.Float(2), graph.Float(0.5))
	depth := graph.Clamp01(patch.Mul(graph.Float(0.7)).Add(pits.Mul(b.Node("pitting")).Mul(patch)))
	rust := tint.Gradient(depth, []tint.Stop{
		{Pos: 0.25, Color: b.Node("rustColor")},
		{Pos: 0.85, Color: b.Node("crustColor")},
	})
	color := graph.Mix(b.Node("metalColor"), rust, patch)
	return &Graph{Color: color}, nil
}

package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/shade"
	"github.com/MeKo-Tech/proctex/tint"
)

var waterDefaults = params.Table{
	"$name":        "Water",
	"scale":        2.0,
	"speed":        1.0,
	"sharpness":    3.0,
	"caustics":     0.8,
	"iridescence":  0.15,
	"deepColor":    [3]float64{0.0, 0.08, 0.18},
	"shallowColor": [3]float64{0.10, 0.45, 0.60},
	"seed":         0.0,
}

// Water composes a sunlit shallow-water look: a depth gradient along Y
// from deep to shallow, an animated caustic web added on top, and a
// faint iridescent shimmer driven by the caustic intensity, clamped for
// bloom.
func Water(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(waterDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("water: %w", err)
	}
	tm := timeUniform()
	t := tm.Node().Mul(b.Node("speed"))

	pos := graph.Position()
	p2 := pos.XY().Add(seedOffset(b.Node("seed")).XY())
	c := shade.Caustics(p2, t, b.Node("scale"), b.Node("sharpness"))

	shallowness := graph.Clamp01(graph.Float(0.5).Add(pos.Y().Mul(graph.Float(0.35))))
	base := tint.Gradient(shallowness, []tint.Stop{
		{Pos: 0.1, Color: b.Node("deepColor")},
		{Pos: 0.9, Color: b.Node("shallowColor")},
	})

	color := base.Add(graph.Splat3(c).Mul(b.Node("caustics")))
	color = color.Add(shade.Iridescence(c, b.Node("iridescence")))
	color = shade.ClampForBloom(color, graph.Float(1.4))

	opacity := graph.Clamp01(graph.Float(0.75).Add(c.Mul(graph.Float(0.25))))
	return animated(tm, color, opacity), nil
}

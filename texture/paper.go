package texture

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/noise"
	"github.com/MeKo-Tech/proctex/params"
)

var paperDefaults = params.Table{
	"$name":     "Paper",
	"scale":     1.0,
	"variation": 0.5,
	"brushness": 0.35,
	"baseColor": [3]float64{0.957, 0.941, 0.910},
	"seed":      0.0,
}

// Paper composes a cold-pressed watercolor sheet: a ridged coarse layer
// for the pressing felt, a fine tooth layer, and faint directional brush
// streaks, each nudging the base sheet color brighter or darker. The
// sample position is domain-warped first so the grain never reads as a
// regular lattice. Static; no time uniform.
func Paper(overrides params.Table) (*Graph, error) {
	b, err := params.Bind(paperDefaults, overrides)
	if err != nil {
		return nil, fmt.Errorf("paper: %w", err)
	}
	v := b.Node("variation")
	p := graph.Position().Mul(b.Node("scale")).Add(seedOffset(b.Node("seed")))
	warped := noise.DomainWarp(p, graph.Float(0.08))

	// Clamp the fbm sum before folding it into a ridge: the fold takes
	// 1-|2x-1| negative outside [0,1], and a negative base under a
	// fractional Pow is NaN.
	coarse := graph.Clamp01(noise.Fractal(warped.Mul(graph.Float(3)), 3, graph.Float(2), graph.Float(0.5)).
		Mul(graph.Float(0.5)).Add(graph.Float(0.5)))
	ridge := graph.Pow(graph.Float(1).Sub(graph.Abs(coarse.Mul(graph.Float(2)).Sub(graph.Float(1)))),
		graph.Float(2.4))
	fine := noise.FractalSimplex(warped.Mul(graph.Float(18)), 4, graph.Float(2.2), graph.Float(0.55)).
		Mul(graph.Float(0.5)).Add(graph.Float(0.5))

	// Streaks are stretched across the brush direction and sharpened;
	// high-frequency bristle detail rides on top.
	streak := graph.Pow(noise.Perlin3(warped.Mul(graph.Vec3(0.45, 7.5, 0.45))).
		Mul(graph.Float(0.5)).Add(graph.Float(0.5)), graph.Float(2.2))
	bristle := noise.Simplex3(warped.Mul(graph.Float(24))).Mul(graph.Float(0.5)).Add(graph.Float(0.5))
	brush := streak.Mul(graph.Float(0.65)).Add(bristle.Mul(graph.Float(0.35)))

	grainAmt := graph.Float(0.03).Add(v.Mul(graph.Float(0.06)))
	ridgeAmt := graph.Float(0.02).Add(v.Mul(graph.Float(0.05)))
	brushAmt := graph.Float(0.025).Add(v.Mul(graph.Float(0.10))).
		Mul(graph.Float(0.6).Add(b.Node("brushness").Mul(graph.Float(1.4))))

	relief := grainAmt.Mul(fine.Sub(graph.Float(0.5))).
		Add(ridgeAmt.Mul(ridge.Sub(graph.Float(0.5)))).
		Add(brushAmt.Mul(brush.Sub(graph.Float(0.5))))

	tintAmt := graph.Float(0.85).Add(v.Mul(graph.Float(0.12)))
	sheet := graph.Mix(graph.Vec3(1, 1, 1), b.Node("baseColor"), tintAmt)
	color := graph.Clamp01(sheet.Add(graph.Splat3(relief)))
	return &Graph{Color: color}, nil
}

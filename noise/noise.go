// Package noise builds fractal, cellular and warped noise fields as
// graph nodes. All primitives are deterministic pure functions of the
// sample position: the base noise opcodes are seedless, and seeding is
// expressed as a position offset by the caller, which keeps rendered
// output bit-stable for golden-image comparison.
package noise

import (
	"fmt"

	"github.com/MeKo-Tech/proctex/graph"
)

// Perlin3 samples gradient noise at a vec3 position. Zero-mean, roughly
// [-1, 1], and exactly zero on integer lattice points.
func Perlin3(p *graph.Node) *graph.Node { return graph.Apply(graph.OpNoise3, p) }

// Simplex3 samples OpenSimplex noise at a vec3 position. Zero-mean and
// smoother than Perlin3, with less axis-aligned grid artifacting.
func Simplex3(p *graph.Node) *graph.Node { return graph.Apply(graph.OpSimplex3, p) }

// Worley3 samples cellular noise: the distance to the nearest hashed
// feature point, 0 on a feature point and growing toward cell edges.
func Worley3(p *graph.Node) *graph.Node { return graph.Apply(graph.OpWorley3, p) }

// Fractal sums octave layers of gradient noise, layer i sampled at
// p*lacunarity^i and weighted by persistence^i. The octave count is a
// build-time constant because it fixes the shape of the graph;
// lacunarity and persistence are nodes and may be animated.
func Fractal(p *graph.Node, octaves int, lacunarity, persistence *graph.Node) *graph.Node {
	return fractal("Fractal", Perlin3, p, octaves, lacunarity, persistence)
}

// FractalSimplex is Fractal over a Simplex3 base.
func FractalSimplex(p *graph.Node, octaves int, lacunarity, persistence *graph.Node) *graph.Node {
	return fractal("FractalSimplex", Simplex3, p, octaves, lacunarity, persistence)
}

// Turbulence is Fractal over |Perlin3|: every octave contributes its
// absolute value, producing the ridged, billowing field used for edge
// erosion.
func Turbulence(p *graph.Node, octaves int, lacunarity, persistence *graph.Node) *graph.Node {
	return fractal("Turbulence", func(q *graph.Node) *graph.Node {
		return graph.Abs(Perlin3(q))
	}, p, octaves, lacunarity, persistence)
}

func fractal(fn string, base func(*graph.Node) *graph.Node, p *graph.Node, octaves int, lacunarity, persistence *graph.Node) *graph.Node {
	if octaves < 1 || octaves > 10 {
		panic(&graph.GraphError{
			Fn:     fn,
			Detail: fmt.Sprintf("octaves must be in [1,10], got %d", octaves),
			Err:    graph.ErrInvalidDomainPrecondition,
		})
	}
	sum := base(p)
	freq := lacunarity
	amp := persistence
	for i := 1; i < octaves; i++ {
		sum = sum.Add(base(p.Mul(freq)).Mul(amp))
		if i+1 < octaves {
			freq = freq.Mul(lacunarity)
			amp = amp.Mul(persistence)
		}
	}
	return sum
}

const warpOctaves = 4

// DomainWarp distorts a sample position with three independent fractal
// fields: p + amount*(wx, wy, wz). The three sample offsets sit hundreds
// of units apart, beyond the 256-unit period of the base noise, so the
// warp axes stay uncorrelated. amount is a scalar, or a vec3 for
// anisotropic warping. Warping before sampling is what turns banded
// patterns organic.
func DomainWarp(p, amount *graph.Node) *graph.Node {
	lac, pers := graph.Float(2), graph.Float(0.5)
	wx := Fractal(p.Add(graph.Vec3(151.31, 337.19, 712.87)), warpOctaves, lac, pers)
	wy := Fractal(p.Add(graph.Vec3(-421.73, 93.57, -911.23)), warpOctaves, lac, pers)
	wz := Fractal(p.Add(graph.Vec3(613.43, -815.29, 127.63)), warpOctaves, lac, pers)
	return p.Add(graph.Vec3Of(wx, wy, wz).Mul(amount))
}

// CloudDensity is a volumetric density field: the position is advected
// along -Y proportionally to time (so features drift upward), domain
// warped, sampled with five octaves of fractal noise, shaped by a smooth
// radial falloff around the origin of the unadvected position, and
// clamped to [0, 1].
func CloudDensity(position, time, falloffRadius *graph.Node) *graph.Node {
	zero := graph.Float(0)
	advected := position.Sub(graph.Vec3Of(zero, time, zero))
	warped := DomainWarp(advected, graph.Float(0.6))
	d := Fractal(warped, 5, graph.Float(2), graph.Float(0.5))
	falloff := graph.Float(1).Sub(graph.Smoothstep(graph.Float(0), falloffRadius, graph.Length(position)))
	return graph.Clamp01(d.Mul(falloff))
}

// ErosionMask builds a wispy edge mask: low-frequency turbulence pushed
// through a smoothstep window around threshold. A silhouette blended
// toward this mask loses its hard geometric boundary.
func ErosionMask(p *graph.Node, scale, threshold, sharpness *graph.Node) *graph.Node {
	t := Turbulence(p.Mul(scale), 3, graph.Float(2), graph.Float(0.5))
	return graph.Smoothstep(threshold.Sub(sharpness), threshold.Add(sharpness), t)
}

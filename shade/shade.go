// Package shade provides lighting and edge-effect terms: fresnel rims,
// iridescent sweeps, caustic interference webs, radial falloffs and
// bloom-safe clamping. Everything returns graph nodes so the terms can
// be layered into texture composites.
package shade

import (
	"math"

	"github.com/MeKo-Tech/proctex/graph"
)

// Fresnel is the rim term bias + intensity*(1 - |dot(normal, view)|)^power:
// zero extra at head-on viewing, full intensity at grazing angles.
func Fresnel(normal, view, power, intensity, bias *graph.Node) *graph.Node {
	facing := graph.Abs(graph.Dot(normal, view))
	rim := graph.Float(1).Sub(facing)
	return bias.Add(intensity.Mul(graph.Pow(rim, power)))
}

// Iridescence maps a rim value in [0, 1] to a rainbow sweep: one sine
// per channel, phased a third of a cycle apart and remapped from [-1, 1]
// to [0, 1], then scaled by intensity.
func Iridescence(rim, intensity *graph.Node) *graph.Node {
	arg := rim.Mul(graph.Float(2 * math.Pi))
	half := graph.Float(0.5)
	r := graph.Sin(arg).Mul(half).Add(half)
	g := graph.Sin(arg.Add(graph.Float(2*math.Pi/3))).Mul(half).Add(half)
	b := graph.Sin(arg.Add(graph.Float(4*math.Pi/3))).Mul(half).Add(half)
	return graph.Vec3Of(r, g, b).Mul(intensity)
}

// Caustics builds the bright-web interference pattern of light through
// rippling water: two independently phased layers of nested sine terms,
// one axis-aligned and one diagonal, multiplied together and raised to
// sharpness. The four terms must multiply, not add; addition gives
// diffuse overlapping bands instead of a web of bright lines.
func Caustics(pos2, time, scale, sharpness *graph.Node) *graph.Node {
	x := pos2.X().Mul(scale)
	y := pos2.Y().Mul(scale)

	a := graph.Sin(x.Add(graph.Sin(y.Add(time))))
	b := graph.Sin(y.Add(graph.Sin(x.Add(time.Mul(graph.Float(1.3)).Add(graph.Float(1.7))))))

	u := x.Add(y).Mul(graph.Float(0.7))
	v := x.Sub(y).Mul(graph.Float(0.7))
	c := graph.Sin(u.Add(graph.Sin(v.Add(time.Mul(graph.Float(0.8)).Add(graph.Float(4.1))))))
	d := graph.Sin(v.Add(graph.Sin(u.Add(time.Mul(graph.Float(1.1)).Add(graph.Float(2.3))))))

	web := graph.Abs(a.Mul(b).Mul(c).Mul(d))
	return graph.Pow(web, sharpness)
}

// RadialFalloff is 1 - smoothstep(inner, outer, |point|): 1 inside the
// inner radius, 0 at and beyond the outer radius, smooth in between.
// point may be a vec2 or vec3.
func RadialFalloff(point, inner, outer *graph.Node) *graph.Node {
	return graph.Float(1).Sub(graph.Smoothstep(inner, outer, graph.Length(point)))
}

// ClampForBloom clamps each channel to [0, maxValue] so additive layers
// cannot push a post-processing bloom pass into blowout.
func ClampForBloom(color, maxValue *graph.Node) *graph.Node {
	return graph.Clamp(color, graph.Float(0), maxValue)
}

// Package tint provides color-space conversion and multi-stop gradient
// mapping as graph nodes. All conversions are branchless in the graph
// sense: piecewise cases become Select nodes, so a single DAG covers the
// whole color space.
package tint

import (
	"github.com/MeKo-Tech/proctex/graph"
)

// RGBToHSL converts a vec3 color to (hue, saturation, lightness), each
// in [0, 1]. Achromatic input yields saturation 0 and hue 0, never NaN:
// the divide-by-delta branches exist in the graph but are masked by a
// Select on delta.
func RGBToHSL(rgb *graph.Node) *graph.Node {
	r, g, b := rgb.X(), rgb.Y(), rgb.Z()
	one, six := graph.Float(1), graph.Float(6)

	maxc := graph.Max(r, graph.Max(g, b))
	minc := graph.Min(r, graph.Min(g, b))
	delta := maxc.Sub(minc)
	l := maxc.Add(minc).Mul(graph.Float(0.5))

	achromatic := delta.LessEq(graph.Float(0))

	s := graph.Select(achromatic,
		graph.Float(0),
		delta.Div(one.Sub(graph.Abs(l.Mul(graph.Float(2)).Sub(one)))),
	)

	maxIsR := graph.And(r.GreaterEq(g), r.GreaterEq(b))
	maxIsG := g.GreaterEq(b)
	h6 := graph.Select(maxIsR,
		g.Sub(b).Div(delta).Mod(six),
		graph.Select(maxIsG,
			b.Sub(r).Div(delta).Add(graph.Float(2)),
			r.Sub(g).Div(delta).Add(graph.Float(4)),
		),
	)
	h := graph.Select(achromatic, graph.Float(0), h6.Div(six))

	return graph.Vec3Of(h, s, l)
}

// HSLToRGB converts hue, saturation and lightness scalars to a vec3
// color. Hue wraps, so values outside [0, 1) are valid; that makes it
// composable with additive hue shifts.
func HSLToRGB(h, s, l *graph.Node) *graph.Node {
	one, two, zero := graph.Float(1), graph.Float(2), graph.Float(0)

	c := one.Sub(graph.Abs(l.Mul(two).Sub(one))).Mul(s)
	hp := graph.Fract(h).Mul(graph.Float(6))
	x := c.Mul(one.Sub(graph.Abs(hp.Mod(two).Sub(one))))
	m := l.Sub(c.Mul(graph.Float(0.5)))

	sector := func(bound float32, rgb, next *graph.Node) *graph.Node {
		return graph.Select(hp.Less(graph.Float(bound)), rgb, next)
	}
	rgb := sector(1, graph.Vec3Of(c, x, zero),
		sector(2, graph.Vec3Of(x, c, zero),
			sector(3, graph.Vec3Of(zero, c, x),
				sector(4, graph.Vec3Of(zero, x, c),
					sector(5, graph.Vec3Of(x, zero, c),
						graph.Vec3Of(c, zero, x))))))

	return rgb.Add(graph.Splat3(m))
}

// HueShift rotates a color's hue by amount (1.0 is a full cycle),
// leaving saturation and lightness untouched.
func HueShift(rgb, amount *graph.Node) *graph.Node {
	hsl := RGBToHSL(rgb)
	return HSLToRGB(hsl.X().Add(amount), hsl.Y(), hsl.Z())
}

// Stop is one color stop of a threshold gradient.
type Stop struct {
	Pos   float32
	Color *graph.Node
}

// Gradient maps a scalar through ordered color stops. Below the first
// stop the first color wins, above the last the last color; between
// adjacent stops the blend factor is clamp((x-prev)/(pos-prev), 0, 1),
// applied in sequence from the first stop to the last. Stops with equal
// positions divide by zero at the shared point and propagate, matching
// unguarded shader math.
func Gradient(x *graph.Node, stops []Stop) *graph.Node {
	if len(stops) == 0 {
		panic(&graph.GraphError{
			Fn:     "Gradient",
			Detail: "need at least one stop",
			Err:    graph.ErrInvalidDomainPrecondition,
		})
	}
	color := stops[0].Color
	for i := 1; i < len(stops); i++ {
		span := stops[i].Pos - stops[i-1].Pos
		t := graph.Clamp01(x.Sub(graph.Float(stops[i-1].Pos)).Div(graph.Float(span)))
		color = graph.Mix(color, stops[i].Color, t)
	}
	return color
}

package graph

// Remap linearly maps x from [fromMin, fromMax] to [toMin, toMax]. Values
// outside the source range extrapolate. A degenerate source range divides
// by zero and propagates Inf/NaN.
func Remap(x, fromMin, fromMax, toMin, toMax *Node) *Node {
	t := x.Sub(fromMin).Div(fromMax.Sub(fromMin))
	return Mix(toMin, toMax, t)
}

// RemapClamp is Remap with the normalized position clamped to [0, 1], so
// the output stays inside the target range.
func RemapClamp(x, fromMin, fromMax, toMin, toMax *Node) *Node {
	t := Clamp01(x.Sub(fromMin).Div(fromMax.Sub(fromMin)))
	return Mix(toMin, toMax, t)
}

// RemapExp maps x linearly into [0, 1] against [fromMin, fromMax]
// (clamped), then exponentially into [toMin, toMax]: equal steps of x
// multiply the output by equal ratios instead of adding equal amounts.
// The target bounds must be positive for the log-space interpolation.
// Bounds passed as literals are checked here; computed bounds are the
// caller's responsibility and yield NaN when non-positive.
func RemapExp(x, fromMin, fromMax, toMin, toMax *Node) *Node {
	requirePositiveLiteral("RemapExp", "toMin", toMin)
	requirePositiveLiteral("RemapExp", "toMax", toMax)
	t := Clamp01(x.Sub(fromMin).Div(fromMax.Sub(fromMin)))
	return Exp(Mix(Log(toMin), Log(toMax), t))
}

func requirePositiveLiteral(fn, name string, n *Node) {
	if n == nil {
		return
	}
	if v, ok := n.IsLiteralScalar(); ok && v <= 0 {
		fail(fn, ErrInvalidDomainPrecondition, "%s must be > 0, got %v", name, v)
	}
}

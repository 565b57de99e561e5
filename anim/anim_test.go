package anim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"

	"github.com/MeKo-Tech/proctex/eval"
	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
	"github.com/MeKo-Tech/proctex/texture"
)

func TestClockFollowsElapsed(t *testing.T) {
	u := graph.UniformFloat("time", 0)
	d := NewDriver()
	d.Add(Clock(u))

	d.Advance(0.25)
	d.Advance(0.25)
	require.InDelta(t, 0.5, u.Value()[0], 1e-6)
	require.InDelta(t, 0.5, d.Elapsed(), 1e-9)
}

func TestTweenReachesTargetAndHolds(t *testing.T) {
	u := graph.UniformFloat("scale", 1)
	d := NewDriver()
	d.Add(Tween(u, 1, 3, 1, ease.Linear))

	d.Advance(0.5)
	require.InDelta(t, 2.0, u.Value()[0], 1e-5)

	d.Advance(0.6)
	require.InDelta(t, 3.0, u.Value()[0], 1e-5)

	// Past the end the tween clamps at the target.
	d.Advance(1)
	require.InDelta(t, 3.0, u.Value()[0], 1e-5)
}

func TestSineQuarterPeriod(t *testing.T) {
	u := graph.UniformFloat("wobble", 0)
	d := NewDriver()
	d.Add(Sine(u, 2, 0.5, 1))

	d.Advance(0.25)
	require.InDelta(t, 2.5, u.Value()[0], 1e-5)

	d.Advance(0.5)
	require.InDelta(t, 1.5, u.Value()[0], 1e-5)
}

func TestFuncTrack(t *testing.T) {
	u := graph.UniformFloat("ramp", 0)
	d := NewDriver()
	d.Add(Func(u, func(t float64) float32 { return float32(t * t) }))

	d.Advance(3)
	require.InDelta(t, 9.0, u.Value()[0], 1e-5)
}

func TestBindDrivesTextureTime(t *testing.T) {
	tex, err := texture.Fire(params.Table{"turbulence": 0.0, "flowSpeed": 0.0})
	require.NoError(t, err)

	d := NewDriver()
	d.Bind(tex)

	ev, err := eval.New(tex.Opacity)
	require.NoError(t, err)
	ev.Sample(eval.Vec3{})
	before := ev.Scalar(tex.Opacity)

	// A quarter flicker period in: the driver writes time, the next
	// Begin picks it up, and the flicker brightens the sample.
	d.Advance(float32(math.Pi / 12))
	ev.Begin()
	ev.Sample(eval.Vec3{})
	after := ev.Scalar(tex.Opacity)
	require.Greater(t, after, before)
	require.InDelta(t, before*1.12, after, 1e-4)
}

func TestBindIgnoresStaticTexture(t *testing.T) {
	tex, err := texture.Marble(nil)
	require.NoError(t, err)

	d := NewDriver()
	d.Bind(tex)
	d.Advance(1)
	require.Empty(t, d.tracks)
}

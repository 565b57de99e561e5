// Package anim drives uniform values over time. A Driver owns a set of
// tracks, each bound to one uniform; Advance(dt) steps the clock and
// writes every track once. The graph core never reads wall-clock time,
// so all animation flows through here.
package anim

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/texture"
)

// Track writes one uniform for an elapsed-time step. t is the driver's
// total elapsed time in seconds, dt the step just taken.
type Track interface {
	Apply(t float64, dt float32)
}

// Driver steps a set of tracks along a shared clock. One driver is the
// single writer for the uniforms of the textures bound to it; evaluators
// pick the written values up at their next Begin.
type Driver struct {
	elapsed float64
	tracks  []Track
}

func NewDriver() *Driver { return &Driver{} }

// Elapsed returns the total driven time in seconds.
func (d *Driver) Elapsed() float64 { return d.elapsed }

// Advance steps the clock by dt seconds and applies every track.
func (d *Driver) Advance(dt float32) {
	d.elapsed += float64(dt)
	for _, tr := range d.tracks {
		tr.Apply(d.elapsed, dt)
	}
}

// Add appends a track.
func (d *Driver) Add(tr Track) { d.tracks = append(d.tracks, tr) }

// Bind adopts a composed texture: its time uniform follows the driver
// clock. Static textures bind to nothing.
func (d *Driver) Bind(tex *texture.Graph) {
	if tex.Time != nil {
		d.Add(Clock(tex.Time))
	}
}

// Clock drives a uniform with the raw elapsed time.
func Clock(u *graph.Uniform) Track { return clockTrack{u} }

type clockTrack struct{ u *graph.Uniform }

func (c clockTrack) Apply(t float64, _ float32) { c.u.SetFloat(float32(t)) }

// Tween drives a uniform along a gween easing curve and holds the end
// value once the duration has elapsed.
func Tween(u *graph.Uniform, from, to, duration float32, easing ease.TweenFunc) Track {
	return &tweenTrack{u: u, tw: gween.New(from, to, duration, easing)}
}

type tweenTrack struct {
	u  *graph.Uniform
	tw *gween.Tween
}

func (t *tweenTrack) Apply(_ float64, dt float32) {
	v, _ := t.tw.Update(dt)
	t.u.SetFloat(v)
}

// Sine drives a uniform with a low-frequency oscillator,
// center + amp*sin(2*pi*hz*t).
func Sine(u *graph.Uniform, center, amp, hz float32) Track {
	return sineTrack{u: u, center: center, amp: amp, hz: hz}
}

type sineTrack struct {
	u               *graph.Uniform
	center, amp, hz float32
}

func (s sineTrack) Apply(t float64, _ float32) {
	s.u.SetFloat(s.center + s.amp*float32(math.Sin(2*math.Pi*float64(s.hz)*t)))
}

// Func drives a uniform with an arbitrary function of elapsed time.
func Func(u *graph.Uniform, f func(t float64) float32) Track {
	return funcTrack{u: u, f: f}
}

type funcTrack struct {
	u *graph.Uniform
	f func(t float64) float32
}

func (f funcTrack) Apply(t float64, _ float32) { f.u.SetFloat(f.f(t)) }

// Package render turns composed texture graphs into images. Rows fan
// out over a worker pool, each worker sampling its own evaluator clone;
// supersampling and bloom post-processing run on the assembled image.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"runtime"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/proctex/anim"
	"github.com/MeKo-Tech/proctex/eval"
	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/internal/worker"
	"github.com/MeKo-Tech/proctex/texture"
)

// Mapping selects how image pixels map to object-space sample points.
type Mapping string

const (
	// MappingPlane samples the z=0 plane, x right, y up.
	MappingPlane Mapping = "plane"
	// MappingSphere samples the unit sphere over a lat/long grid, polar
	// angle from +Y, matching the spherical convention of the coords
	// package.
	MappingSphere Mapping = "sphere"
)

// Options configure a render.
type Options struct {
	Size        int     // output is Size x Size pixels; default 256
	Mapping     Mapping // plane or sphere; default plane
	Span        float64 // half-extent of the plane in object space; default 1
	Time        float64 // time uniform value for single-image renders
	Supersample int     // samples per axis before downscaling; default 1
	Bloom       float64 // gaussian bloom sigma in pixels; 0 disables
	Workers     int     // row-parallel workers; default GOMAXPROCS
}

func (o Options) normalized() (Options, error) {
	if o.Size <= 0 {
		o.Size = 256
	}
	if o.Mapping == "" {
		o.Mapping = MappingPlane
	}
	if o.Mapping != MappingPlane && o.Mapping != MappingSphere {
		return o, fmt.Errorf("render: unknown mapping %q", o.Mapping)
	}
	if o.Span <= 0 {
		o.Span = 1
	}
	if o.Supersample < 1 {
		o.Supersample = 1
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o, nil
}

// Image renders one frame at opts.Time. The texture's opacity graph, if
// present, becomes the alpha channel.
func Image(ctx context.Context, tex *texture.Graph, opts Options) (*image.NRGBA, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	if tex == nil || tex.Color == nil {
		return nil, fmt.Errorf("render: texture has no color graph")
	}
	if tex.Time != nil {
		tex.Time.SetFloat(float32(opts.Time))
	}
	return frame(ctx, tex, opts)
}

// GIF renders an animation of frames at 1/fps steps. The driver is
// advanced before every frame and owns the uniform clock; opts.Time is
// ignored when a driver is given. Frames are composited over black
// before palette quantization.
func GIF(ctx context.Context, tex *texture.Graph, driver *anim.Driver, frames, fps int, opts Options) (*gif.GIF, error) {
	if frames <= 0 || fps <= 0 {
		return nil, fmt.Errorf("render: frames and fps must be positive")
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	if tex == nil || tex.Color == nil {
		return nil, fmt.Errorf("render: texture has no color graph")
	}
	if driver == nil && tex.Time != nil {
		tex.Time.SetFloat(float32(opts.Time))
	}

	delay := 100 / fps
	if delay < 1 {
		delay = 1
	}
	dt := 1 / float32(fps)

	out := &gif.GIF{}
	for i := 0; i < frames; i++ {
		if driver != nil {
			if i == 0 {
				driver.Advance(0)
			} else {
				driver.Advance(dt)
			}
		}
		img, err := frame(ctx, tex, opts)
		if err != nil {
			return nil, err
		}
		out.Image = append(out.Image, Quantize(img))
		out.Delay = append(out.Delay, delay)
	}
	return out, nil
}

// frame renders with whatever uniform values are currently set.
func frame(ctx context.Context, tex *texture.Graph, opts Options) (*image.NRGBA, error) {
	roots := []*graph.Node{tex.Color}
	if tex.Opacity != nil {
		roots = append(roots, tex.Opacity)
	}
	base, err := eval.New(roots...)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	full := opts.Size * opts.Supersample
	img := image.NewNRGBA(image.Rect(0, 0, full, full))
	geom := geometry{full: full, mapping: opts.Mapping, span: opts.Span}

	tasks := make([]worker.Task, full)
	for y := 0; y < full; y++ {
		tasks[y] = &rowTask{y: y, base: base, img: img, tex: tex, geom: geom}
	}
	pool := worker.New(worker.Config{Workers: opts.Workers})
	for _, res := range pool.Run(ctx, tasks) {
		if res.Err != nil {
			return nil, fmt.Errorf("render: %s: %w", res.Task.Describe(), res.Err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	if opts.Supersample > 1 {
		img = resize(img, opts.Size)
	}
	if opts.Bloom > 0 {
		img = bloom(img, opts.Bloom)
	}
	return img, nil
}

type geometry struct {
	full    int
	mapping Mapping
	span    float64
}

func (g geometry) at(px, py int) eval.Vec3 {
	switch g.mapping {
	case MappingSphere:
		phi := (float64(py) + 0.5) / float64(g.full) * math.Pi
		theta := (float64(px) + 0.5) / float64(g.full) * 2 * math.Pi
		sp := math.Sin(phi)
		return eval.Vec3{
			X: float32(sp * math.Sin(theta)),
			Y: float32(math.Cos(phi)),
			Z: float32(sp * math.Cos(theta)),
		}
	default:
		step := 2 * g.span / float64(g.full)
		return eval.Vec3{
			X: float32(-g.span + (float64(px)+0.5)*step),
			Y: float32(g.span - (float64(py)+0.5)*step),
		}
	}
}

type rowTask struct {
	y    int
	base *eval.Evaluator
	img  *image.NRGBA
	tex  *texture.Graph
	geom geometry
}

// Execute samples one image row. Rows write disjoint pixel ranges, so
// tasks share the image without locking.
func (t *rowTask) Execute(ctx context.Context) error {
	ev := t.base.Clone()
	for x := 0; x < t.geom.full; x++ {
		ev.Sample(t.geom.at(x, t.y))
		c := ev.Vec3(t.tex.Color)
		a := uint8(255)
		if t.tex.Opacity != nil {
			a = to8(ev.Scalar(t.tex.Opacity))
		}
		t.img.SetNRGBA(x, t.y, color.NRGBA{R: to8(c.X), G: to8(c.Y), B: to8(c.Z), A: a})
	}
	return nil
}

func (t *rowTask) Describe() string { return fmt.Sprintf("row %d", t.y) }

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func resize(img *image.NRGBA, size int) *image.NRGBA {
	g := gift.New(gift.Resize(size, size, gift.LanczosResampling))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// Bloom extracts the regions above a luminance threshold, blurs them,
// and adds the glow back on top.
const (
	bloomThreshold = 0.7
	bloomStrength  = 0.6
)

func bloom(img *image.NRGBA, sigma float64) *image.NRGBA {
	b := img.Bounds()
	bright := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			lum := (0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)) / 255
			if lum > bloomThreshold {
				bright.SetNRGBA(x, y, c)
			}
		}
	}

	g := gift.New(gift.GaussianBlur(float32(sigma)))
	blurred := image.NewNRGBA(g.Bounds(bright.Bounds()))
	g.Draw(blurred, bright)

	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			glow := blurred.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: addGlow(c.R, glow.R),
				G: addGlow(c.G, glow.G),
				B: addGlow(c.B, glow.B),
				A: c.A,
			})
		}
	}
	return out
}

func addGlow(base, glow uint8) uint8 {
	v := int(base) + int(float64(glow)*bloomStrength)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Quantize dithers an image onto the Plan9 palette for GIF encoding.
// Transparent pixels are composited over black first so partially
// covered fragments keep their color.
func Quantize(img image.Image) *image.Paletted {
	b := img.Bounds()
	flat := image.NewNRGBA(b)
	draw.Draw(flat, b, image.Black, image.Point{}, draw.Src)
	draw.Draw(flat, b, img, b.Min, draw.Over)
	pal := image.NewPaletted(b, palette.Plan9)
	draw.FloydSteinberg.Draw(pal, b, flat, b.Min)
	return pal
}

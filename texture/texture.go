// Package texture assembles the noise, coordinate, tint and shading
// primitives into ready-to-render texture graphs. Every composer
// follows the same template: bind parameters against a default table,
// build a seeded and animated sample position, combine a few fractal
// layers into one intensity field, shape it, and map it through a
// multi-stop color gradient.
package texture

import (
	"fmt"
	"sort"
	"sync"

	"github.com/MeKo-Tech/proctex/graph"
	"github.com/MeKo-Tech/proctex/params"
)

// Graph is a composed texture: a vec3 color field, an optional scalar
// opacity field, and the uniforms an animation driver writes each frame.
// Time is nil for composers that do not animate.
type Graph struct {
	Color    *graph.Node
	Opacity  *graph.Node
	Time     *graph.Uniform
	Uniforms []*graph.Uniform
}

// Definition describes one registered composer. Defaults is the full
// parameter table the composer recognizes; Build accepts overrides and
// returns the composed graph.
type Definition struct {
	Name     string
	Defaults params.Table
	Build    func(overrides params.Table) (*Graph, error)
}

var (
	regMu    sync.RWMutex
	registry = make(map[string]Definition)
)

// Register adds a composer definition. Registering an incomplete
// definition or a duplicate name panics; registration happens at init
// time and a bad entry is a programmer error.
func Register(def Definition) {
	if def.Name == "" || def.Build == nil {
		panic("texture: incomplete definition")
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := registry[def.Name]; dup {
		panic(fmt.Sprintf("texture: duplicate definition %q", def.Name))
	}
	registry[def.Name] = def
}

// Lookup returns the definition registered under name.
func Lookup(name string) (Definition, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	def, ok := registry[name]
	return def, ok
}

// Names returns all registered composer names, sorted.
func Names() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	for _, def := range []Definition{
		{Name: "fire", Defaults: fireDefaults, Build: Fire},
		{Name: "fireCloudsUpward", Defaults: fireCloudsUpwardDefaults, Build: FireCloudsUpward},
		{Name: "fireCloudsRadial", Defaults: fireCloudsRadialDefaults, Build: FireCloudsRadial},
		{Name: "nebula", Defaults: nebulaDefaults, Build: Nebula},
		{Name: "particleCloud", Defaults: particleCloudDefaults, Build: ParticleCloud},
		{Name: "marble", Defaults: marbleDefaults, Build: Marble},
		{Name: "wood", Defaults: woodDefaults, Build: Wood},
		{Name: "rust", Defaults: rustDefaults, Build: Rust},
		{Name: "paper", Defaults: paperDefaults, Build: Paper},
		{Name: "voronoi", Defaults: voronoiDefaults, Build: Voronoi},
		{Name: "bricks", Defaults: bricksDefaults, Build: Bricks},
		{Name: "polkaDots", Defaults: polkaDotsDefaults, Build: PolkaDots},
		{Name: "water", Defaults: waterDefaults, Build: Water},
	} {
		Register(def)
	}
}

func timeUniform() *graph.Uniform { return graph.UniformFloat("time", 0) }

// seedOffset turns the scalar seed parameter into a noise-space offset.
// Seed 0 maps to the zero offset, which keeps the origin on the noise
// lattice; that anchors the documented time-zero appearance of the fire
// family.
func seedOffset(seed *graph.Node) *graph.Node {
	return graph.Splat3(seed).Mul(graph.Vec3(127.1, 311.7, 74.7))
}

func animated(tm *graph.Uniform, color, opacity *graph.Node) *Graph {
	return &Graph{Color: color, Opacity: opacity, Time: tm, Uniforms: []*graph.Uniform{tm}}
}

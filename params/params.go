// Package params merges composer default tables with caller overrides
// and materializes the merged values as graph literal nodes.
package params

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/MeKo-Tech/proctex/graph"
)

// MetaSigil prefixes metadata keys. Metadata values stay strings and are
// never converted to nodes; they exist for naming and telemetry only.
const MetaSigil = "$"

// Table maps parameter names to raw host values or already-built nodes.
// Tables are plain maps; they are merged and converted by Bind and never
// shared after that.
type Table map[string]any

// Bound is the result of Bind. Every non-metadata entry is a node,
// ready to feed into graph construction.
type Bound struct {
	nodes map[string]*graph.Node
	meta  map[string]string
}

// Bind merges defaults with overrides (an override wins on key collision)
// and converts every entry: numbers become scalar literals, 3-component
// colors and vectors become vec3 literals, nodes pass through unchanged.
// Keys starting with MetaSigil stay strings. Keys present only in
// overrides are kept, so unrecognized parameters pass through to
// forward-compatible composers without effect.
//
// Any value of another shape, 4-component colors included, makes Bind
// return an error wrapping graph.ErrUnsupportedParameterType; no partial
// table is returned.
func Bind(defaults, overrides Table) (*Bound, error) {
	b := &Bound{
		nodes: make(map[string]*graph.Node, len(defaults)+len(overrides)),
		meta:  make(map[string]string),
	}
	merged := make(Table, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	for k, v := range merged {
		if err := b.put(k, v); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bound) put(key string, v any) error {
	if strings.HasPrefix(key, MetaSigil) {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("metadata %q: %w: want string, got %T", key, graph.ErrUnsupportedParameterType, v)
		}
		b.meta[key] = s
		return nil
	}
	n, err := Convert(v)
	if err != nil {
		return fmt.Errorf("parameter %q: %w", key, err)
	}
	b.nodes[key] = n
	return nil
}

// Convert turns one raw host value into a node. Numeric values become
// scalar literals; [3]float, length-3 slices, color.RGBA/NRGBA and
// colorful.Color become vec3 literals with components in [0, 1] for
// colors; a *graph.Node is returned as is.
func Convert(v any) (*graph.Node, error) {
	switch x := v.(type) {
	case *graph.Node:
		if x == nil {
			return nil, fmt.Errorf("%w: nil node", graph.ErrUnsupportedParameterType)
		}
		return x, nil
	case float64:
		return graph.Float(float32(x)), nil
	case float32:
		return graph.Float(x), nil
	case int:
		return graph.Float(float32(x)), nil
	case int64:
		return graph.Float(float32(x)), nil
	case [3]float64:
		return graph.Vec3(float32(x[0]), float32(x[1]), float32(x[2])), nil
	case [3]float32:
		return graph.Vec3(x[0], x[1], x[2]), nil
	case []float64:
		if len(x) != 3 {
			return nil, fmt.Errorf("%w: %d-component slice, want 3", graph.ErrUnsupportedParameterType, len(x))
		}
		return graph.Vec3(float32(x[0]), float32(x[1]), float32(x[2])), nil
	case []float32:
		if len(x) != 3 {
			return nil, fmt.Errorf("%w: %d-component slice, want 3", graph.ErrUnsupportedParameterType, len(x))
		}
		return graph.Vec3(x[0], x[1], x[2]), nil
	case color.RGBA:
		return graph.Vec3(float32(x.R)/255, float32(x.G)/255, float32(x.B)/255), nil
	case color.NRGBA:
		return graph.Vec3(float32(x.R)/255, float32(x.G)/255, float32(x.B)/255), nil
	case colorful.Color:
		return graph.Vec3(float32(x.R), float32(x.G), float32(x.B)), nil
	}
	return nil, fmt.Errorf("%w: %T", graph.ErrUnsupportedParameterType, v)
}

// Node returns the node bound to key, or nil when the key is absent or
// metadata. Composers only ask for keys present in their own defaults,
// so nil means the caller and the default table disagree.
func (b *Bound) Node(key string) *graph.Node { return b.nodes[key] }

// Meta returns the metadata string stored under a sigil key, "" when
// absent.
func (b *Bound) Meta(key string) string { return b.meta[key] }

// Has reports whether key is bound, as a node or as metadata.
func (b *Bound) Has(key string) bool {
	if _, ok := b.nodes[key]; ok {
		return true
	}
	_, ok := b.meta[key]
	return ok
}

// Len returns the number of bound entries, metadata included.
func (b *Bound) Len() int { return len(b.nodes) + len(b.meta) }

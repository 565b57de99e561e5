package graph

import "sync"

// Uniform is an externally mutable value cell referenced by a graph; it
// is the animation hook. An animation driver owns the handle and writes a
// new value once per tick, while evaluators snapshot the value at the
// start of each evaluation batch. The contract is single writer, batch
// readers: a write becomes visible to the next batch and is never
// observed torn inside one.
type Uniform struct {
	name string
	typ  Type

	mu  sync.Mutex
	val [4]float32

	node *Node
}

// NewUniform creates a uniform of the given scalar or vector type.
// initial must supply exactly one value per component.
func NewUniform(name string, typ Type, initial ...float32) *Uniform {
	w, ok := numericWidth(typ)
	if !ok {
		fail("NewUniform", ErrTypeMismatch, "%s uniforms are not supported", typ)
	}
	if len(initial) != w {
		fail("NewUniform", ErrTypeMismatch, "%s wants %d components, got %d", typ, w, len(initial))
	}
	u := &Uniform{name: name, typ: typ}
	copy(u.val[:], initial)
	u.node = &Node{kind: KindUniform, typ: typ, uni: u}
	return u
}

// UniformFloat creates a scalar uniform.
func UniformFloat(name string, v float32) *Uniform {
	return NewUniform(name, TypeScalar, v)
}

// UniformVec2 creates a vec2 uniform.
func UniformVec2(name string, x, y float32) *Uniform {
	return NewUniform(name, TypeVec2, x, y)
}

// UniformVec3 creates a vec3 uniform.
func UniformVec3(name string, x, y, z float32) *Uniform {
	return NewUniform(name, TypeVec3, x, y, z)
}

// UniformVec4 creates a vec4 uniform.
func UniformVec4(name string, x, y, z, w float32) *Uniform {
	return NewUniform(name, TypeVec4, x, y, z, w)
}

// Node returns the graph node reading this uniform. Every call returns
// the same node, so multiple graphs can share one cell.
func (u *Uniform) Node() *Node { return u.node }

func (u *Uniform) Name() string { return u.name }

func (u *Uniform) Type() Type { return u.typ }

// Set replaces the value. The component count must match the type.
func (u *Uniform) Set(vals ...float32) {
	w, _ := numericWidth(u.typ)
	if len(vals) != w {
		fail("Uniform.Set", ErrTypeMismatch, "%s wants %d components, got %d", u.typ, w, len(vals))
	}
	u.mu.Lock()
	copy(u.val[:], vals)
	u.mu.Unlock()
}

// SetFloat sets a scalar uniform's value.
func (u *Uniform) SetFloat(v float32) { u.Set(v) }

// Value returns a snapshot of the current value. Unused components are
// zero.
func (u *Uniform) Value() [4]float32 {
	u.mu.Lock()
	v := u.val
	u.mu.Unlock()
	return v
}

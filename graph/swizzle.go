package graph

var swizzleIndex = map[byte]int{
	'x': 0, 'y': 1, 'z': 2, 'w': 3,
	'r': 0, 'g': 1, 'b': 2, 'a': 3,
}

// Swizzle selects and reorders components of a vector node shader-style:
// p.Swizzle("xz"), c.Swizzle("bgr"). The selector length (1 to 4) sets
// the result type, a single component yielding a scalar. Every selected
// component must exist on the operand.
func (n *Node) Swizzle(sel string) *Node {
	w := n.typ.vecWidth()
	if w == 0 {
		fail("Swizzle", ErrTypeMismatch, "cannot swizzle %s", n.typ)
	}
	if len(sel) < 1 || len(sel) > 4 {
		fail("Swizzle", ErrTypeMismatch, "selector %q has %d components, want 1 to 4", sel, len(sel))
	}
	idx := make([]int, len(sel))
	for i := 0; i < len(sel); i++ {
		c, ok := swizzleIndex[sel[i]]
		if !ok {
			fail("Swizzle", ErrTypeMismatch, "bad selector %q", sel)
		}
		if c >= w {
			fail("Swizzle", ErrTypeMismatch, "component %q out of range for %s", sel[i:i+1], n.typ)
		}
		idx[i] = c
	}
	return &Node{kind: KindSwizzle, typ: vecType(len(sel)), args: []*Node{n}, sel: idx}
}

// Component shorthands.

func (n *Node) X() *Node { return n.Swizzle("x") }

func (n *Node) Y() *Node { return n.Swizzle("y") }

func (n *Node) Z() *Node { return n.Swizzle("z") }

func (n *Node) W() *Node { return n.Swizzle("w") }

func (n *Node) XY() *Node { return n.Swizzle("xy") }

func (n *Node) XZ() *Node { return n.Swizzle("xz") }

func (n *Node) YZ() *Node { return n.Swizzle("yz") }

func (n *Node) XYZ() *Node { return n.Swizzle("xyz") }

// RGB returns the color components of a vec3 or vec4, dropping alpha.
func (n *Node) RGB() *Node { return n.Swizzle("rgb") }

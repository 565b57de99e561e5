// Package coords provides coordinate conversions and rotation math as
// graph nodes: spherical direction vectors, axis rotation matrices and
// Euler/quaternion rotation.
package coords

import "github.com/MeKo-Tech/proctex/graph"

// SphericalToCartesian converts physics-convention spherical angles to a
// direction vector: phi is the polar angle measured from the +Y axis in
// [0, pi], theta the azimuth around Y in [0, 2pi). The result is
// (sin(phi)sin(theta), cos(phi), sin(phi)cos(theta)), unit length by
// construction, so it is not re-normalized.
func SphericalToCartesian(phi, theta *graph.Node) *graph.Node {
	sinPhi := graph.Sin(phi)
	return graph.Vec3Of(
		sinPhi.Mul(graph.Sin(theta)),
		graph.Cos(phi),
		sinPhi.Mul(graph.Cos(theta)),
	)
}

// RotationX returns the right-handed rotation about the X axis as a mat4
// node. The angle may be animated. Column-vector convention: Transform(m,
// v) rotates v.
func RotationX(angle *graph.Node) *graph.Node {
	c, s := graph.Cos(angle), graph.Sin(angle)
	zero, one := graph.Float(0), graph.Float(1)
	return graph.Mat4Of(
		one, zero, zero, zero,
		zero, c, s, zero,
		zero, s.Neg(), c, zero,
		zero, zero, zero, one,
	)
}

// RotationY returns the right-handed rotation about the Y axis.
func RotationY(angle *graph.Node) *graph.Node {
	c, s := graph.Cos(angle), graph.Sin(angle)
	zero, one := graph.Float(0), graph.Float(1)
	return graph.Mat4Of(
		c, zero, s.Neg(), zero,
		zero, one, zero, zero,
		s, zero, c, zero,
		zero, zero, zero, one,
	)
}

// RotationZ returns the right-handed rotation about the Z axis.
func RotationZ(angle *graph.Node) *graph.Node {
	c, s := graph.Cos(angle), graph.Sin(angle)
	zero, one := graph.Float(0), graph.Float(1)
	return graph.Mat4Of(
		c, s, zero, zero,
		s.Neg(), c, zero, zero,
		zero, zero, one, zero,
		zero, zero, zero, one,
	)
}

// EulerToQuaternion converts XYZ-order Euler angles (vec3, radians) to a
// quaternion stored as vec4 (x, y, z, w), by the usual half-angle
// products.
func EulerToQuaternion(euler *graph.Node) *graph.Node {
	half := euler.Mul(graph.Float(0.5))
	cx, sx := graph.Cos(half.X()), graph.Sin(half.X())
	cy, sy := graph.Cos(half.Y()), graph.Sin(half.Y())
	cz, sz := graph.Cos(half.Z()), graph.Sin(half.Z())
	return graph.Vec4Of(
		sx.Mul(cy).Mul(cz).Add(cx.Mul(sy).Mul(sz)),
		cx.Mul(sy).Mul(cz).Sub(sx.Mul(cy).Mul(sz)),
		cx.Mul(cy).Mul(sz).Add(sx.Mul(sy).Mul(cz)),
		cx.Mul(cy).Mul(cz).Sub(sx.Mul(sy).Mul(sz)),
	)
}

// ApplyQuaternion rotates a vec3 by a quaternion (vec4, x y z w) using
// v + 2*cross(q.xyz, cross(q.xyz, v) + q.w*v). The identity quaternion
// (0,0,0,1) returns v exactly: every correction term multiplies by zero.
func ApplyQuaternion(v, q *graph.Node) *graph.Node {
	qv := q.XYZ()
	t := graph.Cross(qv, graph.Cross(qv, v).Add(v.Mul(q.W())))
	return v.Add(t.Mul(graph.Float(2)))
}

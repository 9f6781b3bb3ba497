package geom

import "math"

// Quat is a rotation stored as a unit quaternion (w + xi + yj + zk).
type Quat struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// QuatIdentity is the no-rotation quaternion.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// AngleAxis builds a quaternion rotating angle radians around axis. The axis
// does not need to be normalized.
func AngleAxis(angle float64, axis Vec3) Quat {
	length := axis.Len()
	if length == 0 {
		return QuatIdentity()
	}
	half := angle * 0.5
	s := math.Sin(half) / length
	return Quat{
		W: math.Cos(half),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}
}

// Mul composes two rotations; q.Mul(r) applies r first, then q.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
	}
}

// Rotate applies the rotation to a vector.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2*cross(q.xyz, cross(q.xyz, v) + w*v)
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	c1 := cross(u, v)
	c1 = c1.Add(v.Scale(q.W))
	c2 := cross(u, c1)
	return v.Add(c2.Scale(2))
}

// Normalize rescales to unit length; the identity is returned for a zero
// quaternion so downstream rotations stay well defined.
func (q Quat) Normalize() Quat {
	length := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if length == 0 {
		return QuatIdentity()
	}
	inv := 1 / length
	return Quat{W: q.W * inv, X: q.X * inv, Y: q.Y * inv, Z: q.Z * inv}
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

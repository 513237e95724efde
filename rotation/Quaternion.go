// Package rotation implements the rotation and pose conversions used to
// build humanoid observations: exponential maps, axis-angle pairs,
// quaternions, the 6-D tangent-normal encoding, and heading (yaw-only)
// frames.
//
// Quaternions are gonum quat.Number values. Simulators usually store
// them as (x, y, z, w); FromXYZW and ToXYZW convert between the two. The
// vertical axis is z.
package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// Identity is the rotation that leaves every vector unchanged
	Identity = quat.Number{Real: 1}

	// Up is the vertical axis of the world frame
	Up = r3.Vec{Z: 1}

	// Forward is the local forward axis of a body
	Forward = r3.Vec{X: 1}
)

// FromXYZW returns the quaternion stored as (x, y, z, w)
func FromXYZW(x, y, z, w float64) quat.Number {
	return quat.Number{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// FromSlice returns the quaternion stored as (x, y, z, w) in the first
// four elements of s
func FromSlice(s []float64) quat.Number {
	return FromXYZW(s[0], s[1], s[2], s[3])
}

// ToXYZW returns q in (x, y, z, w) order
func ToXYZW(q quat.Number) [4]float64 {
	return [4]float64{q.Imag, q.Jmag, q.Kmag, q.Real}
}

// Mul returns the rotation that applies b and then a
func Mul(a, b quat.Number) quat.Number {
	return quat.Mul(a, b)
}

// Rotate rotates v by the unit quaternion q.
//
// The vector part is expanded directly rather than computing q v q*,
// so q and -q produce the same result bit for bit.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	u := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	w := q.Real

	a := r3.Scale(2*w*w-1, v)
	b := r3.Scale(2*w, r3.Cross(u, v))
	c := r3.Scale(2*r3.Dot(u, v), u)

	return r3.Add(r3.Add(a, b), c)
}

// Normalize returns q scaled to unit length. The zero quaternion is
// returned as Identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < MinTheta || math.IsNaN(n) || math.IsInf(n, 0) {
		return Identity
	}
	return quat.Scale(1/n, q)
}

// Inverse returns the inverse of the unit quaternion q
func Inverse(q quat.Number) quat.Number {
	return quat.Conj(q)
}

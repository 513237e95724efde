package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinTheta is the smallest rotation angle treated as non-zero. Below
// it, an exponential map has no meaningful axis.
const MinTheta = 1e-5

// DefaultAxis is the axis returned for rotations of (near) zero angle
var DefaultAxis = Up

// NormalizeAngle wraps an angle to (-π, π]
func NormalizeAngle(angle float64) float64 {
	return math.Atan2(math.Sin(angle), math.Cos(angle))
}

// ExpMapToAngleAxis converts an exponential map (axis scaled by angle)
// into its angle and unit axis. The angle is wrapped to (-π, π]. Inputs
// whose angle is at most MinTheta in magnitude map to angle 0 and
// DefaultAxis.
func ExpMapToAngleAxis(v r3.Vec) (float64, r3.Vec) {
	angle := r3.Norm(v)
	if !(angle > MinTheta) || math.IsInf(angle, 0) {
		// Also catches NaN
		return 0, DefaultAxis
	}
	axis := r3.Scale(1/angle, v)

	angle = NormalizeAngle(angle)
	if math.Abs(angle) <= MinTheta {
		return 0, DefaultAxis
	}
	return angle, axis
}

// FromAngleAxis returns the quaternion rotating by angle about axis.
// The axis need not be unit length; a zero axis gives Identity.
func FromAngleAxis(angle float64, axis r3.Vec) quat.Number {
	n := r3.Norm(axis)
	if !(n > 0) || math.IsInf(n, 0) {
		return Identity
	}
	axis = r3.Scale(1/n, axis)

	half := angle / 2
	s := math.Sin(half)
	return quat.Number{
		Real: math.Cos(half),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// ExpMapToQuat converts an exponential map into a quaternion
func ExpMapToQuat(v r3.Vec) quat.Number {
	angle, axis := ExpMapToAngleAxis(v)
	return FromAngleAxis(angle, axis)
}

// QuatToAngleAxis returns the angle in [0, π] and unit axis of the
// rotation q. Rotations of angle at most MinTheta return 0 and
// DefaultAxis.
func QuatToAngleAxis(q quat.Number) (float64, r3.Vec) {
	q = Normalize(q)
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}

	v := r3.Vec{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	sinHalf := r3.Norm(v)
	angle := 2 * math.Atan2(sinHalf, q.Real)
	if angle <= MinTheta {
		return 0, DefaultAxis
	}
	return angle, r3.Scale(1/sinHalf, v)
}

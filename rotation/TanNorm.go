package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// TanNormLen is the length of the tangent-normal encoding
const TanNormLen = 6

// QuatToTanNorm encodes q as the forward (tangent) axis rotated by q
// followed by the up (normal) axis rotated by q. Unlike the quaternion
// itself, the encoding is continuous and identical for q and -q.
func QuatToTanNorm(q quat.Number) [TanNormLen]float64 {
	tan := Rotate(q, Forward)
	norm := Rotate(q, Up)

	return [TanNormLen]float64{tan.X, tan.Y, tan.Z, norm.X, norm.Y, norm.Z}
}

// Heading returns the yaw of q: the angle about the up axis of the
// forward axis after rotation by q
func Heading(q quat.Number) float64 {
	dir := Rotate(q, Forward)
	return math.Atan2(dir.Y, dir.X)
}

// HeadingQuat returns the yaw-only component of q
func HeadingQuat(q quat.Number) quat.Number {
	return FromAngleAxis(Heading(q), Up)
}

// HeadingQuatInverse returns the inverse of the yaw-only component of
// q. Rotating a world-frame vector by it expresses the vector in the
// heading frame, where the body faces along the forward axis.
func HeadingQuatInverse(q quat.Number) quat.Number {
	return FromAngleAxis(-Heading(q), Up)
}

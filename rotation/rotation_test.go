package rotation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func assertVecEqual(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}

func randomUnitQuat(rng *rand.Rand) quat.Number {
	q := quat.Number{
		Real: rng.NormFloat64(),
		Imag: rng.NormFloat64(),
		Jmag: rng.NormFloat64(),
		Kmag: rng.NormFloat64(),
	}
	return Normalize(q)
}

func TestExpMapToAngleAxisDegenerate(t *testing.T) {
	inputs := []r3.Vec{
		{},
		{X: 1e-20},
		{X: math.SmallestNonzeroFloat64, Y: -math.SmallestNonzeroFloat64},
		{X: 1e-6, Y: 1e-6, Z: 1e-6},
		{X: math.NaN()},
	}

	for _, in := range inputs {
		angle, axis := ExpMapToAngleAxis(in)
		assert.Equal(t, 0.0, angle, "input %v", in)
		assert.Equal(t, DefaultAxis, axis, "input %v", in)
		assert.False(t, math.IsNaN(axis.X) || math.IsNaN(axis.Y) ||
			math.IsNaN(axis.Z))
	}
}

func TestExpMapToAngleAxis(t *testing.T) {
	angle, axis := ExpMapToAngleAxis(r3.Vec{Y: 0.5})
	assert.InDelta(t, 0.5, angle, tol)
	assertVecEqual(t, r3.Vec{Y: 1}, axis)

	// Angles past π wrap around with the axis kept
	angle, axis = ExpMapToAngleAxis(r3.Vec{Z: 1.5 * math.Pi})
	assert.InDelta(t, -0.5*math.Pi, angle, tol)
	assertVecEqual(t, r3.Vec{Z: 1}, axis)
}

func TestExpMapToQuatRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		axis := r3.Unit(r3.Vec{
			X: rng.NormFloat64(),
			Y: rng.NormFloat64(),
			Z: rng.NormFloat64(),
		})
		angle := 1e-3 + rng.Float64()*(math.Pi-2e-3)

		q := ExpMapToQuat(r3.Scale(angle, axis))
		assert.InDelta(t, 1.0, quat.Abs(q), tol)

		gotAngle, gotAxis := QuatToAngleAxis(q)
		require.InDelta(t, angle, gotAngle, 1e-7)
		assertVecEqual(t, axis, gotAxis)
	}
}

func TestQuatToTanNormSignInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		q := randomUnitQuat(rng)
		assert.Equal(t, QuatToTanNorm(q), QuatToTanNorm(quat.Scale(-1, q)))
	}
}

func TestQuatToTanNormIdentity(t *testing.T) {
	assert.Equal(t, [TanNormLen]float64{1, 0, 0, 0, 0, 1},
		QuatToTanNorm(Identity))
}

func TestRotate(t *testing.T) {
	q := FromAngleAxis(math.Pi/2, Up)
	assertVecEqual(t, r3.Vec{Y: 1}, Rotate(q, Forward))

	q = FromAngleAxis(math.Pi/2, r3.Vec{X: 1})
	assertVecEqual(t, r3.Vec{Y: -1}, Rotate(q, Up))
}

func TestHeadingQuatInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 200; i++ {
		q := randomUnitQuat(rng)
		h := HeadingQuatInverse(q)

		// The inverse heading removes all yaw
		assert.InDelta(t, 0, Heading(Mul(h, q)), 1e-7)

		// and is a pure rotation about the up axis
		assert.InDelta(t, 0, h.Imag, tol)
		assert.InDelta(t, 0, h.Jmag, tol)

		// Combined with the heading it cancels out
		id := Mul(HeadingQuat(q), h)
		assert.InDelta(t, 1, math.Abs(id.Real), tol)
	}
}

func TestHeadingIgnoresPitchAndRoll(t *testing.T) {
	yaw := FromAngleAxis(0.7, Up)
	pitch := FromAngleAxis(0.3, r3.Vec{Y: 1})

	assert.InDelta(t, 0.7, Heading(Mul(yaw, pitch)), tol)
}

func TestXYZW(t *testing.T) {
	q := FromXYZW(0.1, 0.2, 0.3, 0.9)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 0.9}, ToXYZW(q))
	assert.Equal(t, q, FromSlice([]float64{0.1, 0.2, 0.3, 0.9, 7}))
}

func TestFromAngleAxisZeroAxis(t *testing.T) {
	assert.Equal(t, Identity, FromAngleAxis(1.0, r3.Vec{}))
	assert.Equal(t, Identity, Normalize(quat.Number{}))
}

func BenchmarkQuatToTanNorm(b *testing.B) {
	q := ExpMapToQuat(r3.Vec{X: 0.3, Y: -0.2, Z: 0.9})
	for i := 0; i < b.N; i++ {
		QuatToTanNorm(q)
	}
}

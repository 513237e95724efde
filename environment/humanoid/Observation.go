package humanoid

import (
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/rotation"
	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"github.com/samuelfneumann/golocomotion/utils/tensorutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Widths of the fixed observation blocks
const (
	rootHeightWidth = 1
	rootRotWidth    = rotation.TanNormLen
	rootVelWidth    = 3
	rootAngVelWidth = 3
)

// ObservationInput is the raw state of a single environment that an
// observation is built from
type ObservationInput struct {
	Root   RootState
	DOFPos []float64
	DOFVel []float64

	// KeyBodyPos holds the world position of each key body
	KeyBodyPos []r3.Vec

	// AuxiliaryPos holds the world position of each auxiliary actor.
	// It is ignored unless auxiliary actors are observed.
	AuxiliaryPos []r3.Vec
}

// Observer builds fixed-width observations from raw humanoid state.
// An observation is laid out as:
//
//	Block					Width
//	Root height				1
//	Root rotation			6 (tangent-normal)
//	Root linear velocity	3 (heading frame)
//	Root angular velocity	3 (heading frame)
//	Joint angles			6 per spherical joint, 1 per hinge
//	Joint velocities		1 per DOF
//	Key body positions		3 per key body (root-relative, heading frame)
//	Auxiliary positions		3 per auxiliary actor, if observed
type Observer struct {
	skeleton  *Skeleton
	local     bool
	numAux    int
	keyBodies []int
	width     int
}

// NewObserver returns an Observer for the given skeleton. If
// observeAux is false, numAux is ignored.
func NewObserver(s *Skeleton, localRootObs, observeAux bool,
	numAux int) *Observer {
	if !observeAux {
		numAux = 0
	}

	width := rootHeightWidth + rootRotWidth + rootVelWidth +
		rootAngVelWidth + s.DOFObsWidth() + s.NumDOF() +
		3*len(s.keyBodies) + 3*numAux

	return &Observer{
		skeleton:  s,
		local:     localRootObs,
		numAux:    numAux,
		keyBodies: s.KeyBodies(),
		width:     width,
	}
}

// Width returns the width of an observation
func (o *Observer) Width() int {
	return o.width
}

// BuildObservation returns the observation of a single environment. It
// returns an error wrapping environment.ErrShapeMismatch if any input
// does not match the skeleton.
func (o *Observer) BuildObservation(in ObservationInput) (*mat.VecDense,
	error) {
	if err := o.checkInput(in); err != nil {
		return nil, err
	}

	obs := make([]float64, o.width)
	o.write(obs, in)
	return mat.NewVecDense(o.width, obs), nil
}

func (o *Observer) checkInput(in ObservationInput) error {
	numDOF := o.skeleton.NumDOF()
	if len(in.DOFPos) != numDOF {
		return env.ShapeErrorf("buildObservation: dof positions",
			[]int{len(in.DOFPos)}, []int{numDOF})
	}
	if len(in.DOFVel) != numDOF {
		return env.ShapeErrorf("buildObservation: dof velocities",
			[]int{len(in.DOFVel)}, []int{numDOF})
	}
	if len(in.KeyBodyPos) != len(o.keyBodies) {
		return env.ShapeErrorf("buildObservation: key body positions",
			[]int{len(in.KeyBodyPos)}, []int{len(o.keyBodies)})
	}
	if o.numAux > 0 && len(in.AuxiliaryPos) != o.numAux {
		return env.ShapeErrorf("buildObservation: auxiliary positions",
			[]int{len(in.AuxiliaryPos)}, []int{o.numAux})
	}
	return nil
}

// write fills dst, of length Width, with the observation of in
func (o *Observer) write(dst []float64, in ObservationInput) {
	rootRot := rotation.Normalize(in.Root.Rotation)
	headingInv := rotation.HeadingQuatInverse(rootRot)

	k := 0
	dst[k] = in.Root.Position.Z
	k++

	if o.local {
		rootRot = rotation.Mul(headingInv, rootRot)
	}
	tn := rotation.QuatToTanNorm(rootRot)
	k += copy(dst[k:], tn[:])

	k += putVec(dst[k:], rotation.Rotate(headingInv, in.Root.LinearVelocity))
	k += putVec(dst[k:], rotation.Rotate(headingInv, in.Root.AngularVelocity))

	dofObs := o.skeleton.DOFObsWidth()
	o.skeleton.EncodeDOFs(dst[k:k+dofObs], in.DOFPos)
	k += dofObs

	k += copy(dst[k:], in.DOFVel)

	for _, p := range in.KeyBodyPos {
		local := rotation.Rotate(headingInv, r3.Sub(p, in.Root.Position))
		k += putVec(dst[k:], local)
	}

	for i := 0; i < o.numAux; i++ {
		local := rotation.Rotate(headingInv,
			r3.Sub(in.AuxiliaryPos[i], in.Root.Position))
		k += putVec(dst[k:], local)
	}

	for i := range dst {
		dst[i] = floatutils.FiniteOr(dst[i], 0)
	}
}

func putVec(dst []float64, v r3.Vec) int {
	dst[0], dst[1], dst[2] = v.X, v.Y, v.Z
	return 3
}

// Observe writes the observation of each listed environment into the
// same row of dst, reading state from src. Every input is validated
// before anything is written, so on error dst is left untouched. Errors
// wrap environment.ErrShapeMismatch.
func (o *Observer) Observe(dst *mat.Dense, src StateSource,
	actors *ActorMap, envIDs []int) error {
	numEnvs := actors.Len()
	numDOF := o.skeleton.NumDOF()
	numBodies := o.skeleton.NumBodies()

	if err := env.CheckDims("observe: observation buffer", dst, numEnvs,
		o.width); err != nil {
		return err
	}
	roots := src.RootStates()
	if err := env.CheckDims("observe: root states", roots,
		actors.NumActors(), StateWidth); err != nil {
		return err
	}
	dofPos, dofVel := src.DOFPositions(), src.DOFVelocities()
	if err := env.CheckDims("observe: dof positions", dofPos, numEnvs,
		numDOF); err != nil {
		return err
	}
	if err := env.CheckDims("observe: dof velocities", dofVel, numEnvs,
		numDOF); err != nil {
		return err
	}
	bodies := src.RigidBodyStates()
	if !tensorutils.ShapeEq(bodies, numEnvs, numBodies, StateWidth) {
		return env.ShapeErrorf("observe: rigid body states",
			tensorutils.Shape(bodies), []int{numEnvs, numBodies, StateWidth})
	}
	bodyData, err := tensorutils.Float64s(bodies)
	if err != nil {
		return env.ShapeErrorf("observe: rigid body states: "+err.Error(),
			tensorutils.Shape(bodies), []int{numEnvs, numBodies, StateWidth})
	}

	in := ObservationInput{
		KeyBodyPos:   make([]r3.Vec, len(o.keyBodies)),
		AuxiliaryPos: make([]r3.Vec, o.numAux),
	}
	for _, e := range envIDs {
		a := actors.Env(e)
		in.Root = RootStateFromRow(roots.RawRowView(a.Humanoid))
		in.DOFPos = dofPos.RawRowView(e)
		in.DOFVel = dofVel.RawRowView(e)

		for i, b := range o.keyBodies {
			in.KeyBodyPos[i] = vecAt(bodyData,
				tensorutils.Index3(numBodies, StateWidth, e, b, PosOffset))
		}
		for i := 0; i < o.numAux; i++ {
			in.AuxiliaryPos[i] = vecAt(roots.RawRowView(a.Auxiliary[i]),
				PosOffset)
		}

		o.write(dst.RawRowView(e), in)
	}
	return nil
}

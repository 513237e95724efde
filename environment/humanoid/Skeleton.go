package humanoid

import (
	"fmt"

	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/rotation"
)

// JointKind denotes how a joint's DOFs encode its rotation
type JointKind int

const (
	// SphericalJoint has 3 DOFs holding an exponential map
	SphericalJoint JointKind = iota

	// HingeJoint has 1 DOF holding an angle about a fixed axis
	HingeJoint
)

func (k JointKind) String() string {
	switch k {
	case SphericalJoint:
		return "Spherical"
	case HingeJoint:
		return "Hinge"
	default:
		return fmt.Sprintf("JointKind(%d)", int(k))
	}
}

// Width returns the number of DOFs of a joint of kind k
func (k JointKind) Width() int {
	if k == SphericalJoint {
		return 3
	}
	return 1
}

// ObsWidth returns the number of observation elements encoding a joint
// of kind k
func (k JointKind) ObsWidth() int {
	if k == SphericalJoint {
		return rotation.TanNormLen
	}
	return 1
}

// Joint is one logical joint of the skeleton
type Joint struct {
	Kind   JointKind
	Offset int // Index of the joint's first DOF

	// Axis is the rotation axis of a hinge, 0, 1, or 2
	Axis int
}

// Skeleton is the humanoid's joint and body layout, resolved once
// against the host's asset
type Skeleton struct {
	joints    []Joint
	numDOF    int
	numBodies int

	keyBodies      []int
	contactAllowed []bool
	initialDOF     []float64
}

// NewSkeleton resolves the joint, body, and DOF names of c against the
// host's body and DOF names. Errors wrap environment.ErrConfiguration.
func NewSkeleton(c Config, bodyNames, dofNames []string) (*Skeleton, error) {
	offsets := c.JointOffsets
	if len(offsets) < 2 || offsets[0] != 0 {
		return nil, env.ConfigErrorf("newSkeleton: joint offsets must "+
			"start at 0 and hold at least one joint, got %v", offsets)
	}

	joints := make([]Joint, 0, len(offsets)-1)
	hinges := 0
	for i := 1; i < len(offsets); i++ {
		var kind JointKind
		switch span := offsets[i] - offsets[i-1]; span {
		case 3:
			kind = SphericalJoint
		case 1:
			kind = HingeJoint
			hinges++
		default:
			return nil, env.ConfigErrorf("newSkeleton: joint %v spans %v "+
				"DOFs, want 1 or 3", i-1, span)
		}
		joints = append(joints, Joint{Kind: kind, Offset: offsets[i-1]})
	}

	numDOF := offsets[len(offsets)-1]
	if numDOF != len(dofNames) {
		return nil, env.ConfigErrorf("newSkeleton: joint offsets cover %v "+
			"DOFs but the asset has %v", numDOF, len(dofNames))
	}

	if len(c.HingeAxes) != 0 && len(c.HingeAxes) != hinges {
		return nil, env.ConfigErrorf("newSkeleton: %v hinge axes for %v "+
			"hinge joints", len(c.HingeAxes), hinges)
	}
	h := 0
	for i := range joints {
		if joints[i].Kind != HingeJoint {
			continue
		}
		if len(c.HingeAxes) > 0 {
			axis := c.HingeAxes[h]
			if axis < 0 || axis > 2 {
				return nil, env.ConfigErrorf("newSkeleton: hinge axis must "+
					"be 0, 1, or 2, got %v", axis)
			}
			joints[i].Axis = axis
		}
		h++
	}

	bodyIndex := indexNames(bodyNames)
	keyBodies := make([]int, len(c.KeyBodyNames))
	for i, name := range c.KeyBodyNames {
		b, ok := bodyIndex[name]
		if !ok {
			return nil, env.ConfigErrorf("newSkeleton: unknown key body "+
				"%q", name)
		}
		keyBodies[i] = b
	}

	contactAllowed := make([]bool, len(bodyNames))
	for _, name := range c.ContactAllowedBodyNames {
		b, ok := bodyIndex[name]
		if !ok {
			return nil, env.ConfigErrorf("newSkeleton: unknown "+
				"contact-allowed body %q", name)
		}
		contactAllowed[b] = true
	}

	dofIndex := indexNames(dofNames)
	initialDOF := make([]float64, numDOF)
	for name, value := range c.InitialDOFPositions {
		d, ok := dofIndex[name]
		if !ok {
			return nil, env.ConfigErrorf("newSkeleton: unknown DOF %q in "+
				"initial positions", name)
		}
		initialDOF[d] = value
	}

	return &Skeleton{
		joints:         joints,
		numDOF:         numDOF,
		numBodies:      len(bodyNames),
		keyBodies:      keyBodies,
		contactAllowed: contactAllowed,
		initialDOF:     initialDOF,
	}, nil
}

func indexNames(names []string) map[string]int {
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; !ok {
			index[name] = i
		}
	}
	return index
}

// Joints returns the skeleton's joints in DOF order
func (s *Skeleton) Joints() []Joint {
	return append([]Joint(nil), s.joints...)
}

// NumDOF returns the number of degrees of freedom
func (s *Skeleton) NumDOF() int {
	return s.numDOF
}

// NumBodies returns the number of rigid bodies
func (s *Skeleton) NumBodies() int {
	return s.numBodies
}

// KeyBodies returns the body indices of the key bodies, in
// configuration order
func (s *Skeleton) KeyBodies() []int {
	return append([]int(nil), s.keyBodies...)
}

// ContactAllowed returns whether body b may touch the ground without
// the humanoid counting as fallen
func (s *Skeleton) ContactAllowed(b int) bool {
	return s.contactAllowed[b]
}

// InitialDOFPositions returns the DOF positions of the initial pose
func (s *Skeleton) InitialDOFPositions() []float64 {
	return append([]float64(nil), s.initialDOF...)
}

// DOFObsWidth returns the width of the joint-angle block of an
// observation
func (s *Skeleton) DOFObsWidth() int {
	width := 0
	for _, j := range s.joints {
		width += j.Kind.ObsWidth()
	}
	return width
}

// EncodeDOFs writes the observation encoding of the joint angles in
// dofPos to dst, which must have length DOFObsWidth
func (s *Skeleton) EncodeDOFs(dst, dofPos []float64) {
	k := 0
	for _, j := range s.joints {
		switch j.Kind {
		case SphericalJoint:
			q := rotation.ExpMapToQuat(vecAt(dofPos, j.Offset))
			tn := rotation.QuatToTanNorm(q)
			k += copy(dst[k:], tn[:])
		case HingeJoint:
			dst[k] = dofPos[j.Offset]
			k++
		}
	}
}

// AxisAngles returns the axis and angle of every joint as
// (x, y, z, angle). A hinge angle is treated as an exponential map
// along the hinge's axis.
func (s *Skeleton) AxisAngles(dofPos []float64) [][4]float64 {
	out := make([][4]float64, len(s.joints))
	for i, j := range s.joints {
		switch j.Kind {
		case SphericalJoint:
			angle, axis := rotation.ExpMapToAngleAxis(vecAt(dofPos, j.Offset))
			out[i] = [4]float64{axis.X, axis.Y, axis.Z, angle}
		case HingeJoint:
			var v [3]float64
			v[j.Axis] = dofPos[j.Offset]
			angle, axis := rotation.ExpMapToAngleAxis(vecAt(v[:], 0))
			out[i] = [4]float64{axis.X, axis.Y, axis.Z, angle}
		}
	}
	return out
}

// Counts returns the number of spherical and hinge joints
func (s *Skeleton) Counts() (spherical, hinge int) {
	for _, j := range s.joints {
		if j.Kind == SphericalJoint {
			spherical++
		} else {
			hinge++
		}
	}
	return spherical, hinge
}

package humanoid

import (
	"math"

	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// HingeActionRange is the fraction of a hinge's range of motion that
// an action of ±1 moves its target away from the middle of the range.
// Targets beyond the joint limits keep the motors strong near the
// limits.
const HingeActionRange = 0.7

// Actuator converts actions in [-1, 1] into host actuation. Under
// position control an action is mapped to PD targets; otherwise it is
// scaled into joint torques.
type Actuator struct {
	positionControl bool

	// PD target offset and scale per DOF
	offset []float64
	scale  []float64

	// Torque per unit action per DOF
	torque []float64

	buf *mat.Dense
}

// NewActuator returns an Actuator for the skeleton s. The DOF limits
// and motor efforts must have one element per DOF.
func NewActuator(c Config, s *Skeleton, lower, upper,
	efforts []float64) (*Actuator, error) {
	numDOF := s.NumDOF()
	if len(lower) != numDOF || len(upper) != numDOF {
		return nil, env.ConfigErrorf("newActuator: %v lower and %v upper "+
			"limits for %v DOFs", len(lower), len(upper), numDOF)
	}
	if len(efforts) != numDOF {
		return nil, env.ConfigErrorf("newActuator: %v motor efforts for %v "+
			"DOFs", len(efforts), numDOF)
	}

	offset := make([]float64, numDOF)
	scale := make([]float64, numDOF)
	for _, j := range s.joints {
		switch j.Kind {
		case SphericalJoint:
			for d := j.Offset; d < j.Offset+3; d++ {
				offset[d] = 0
				scale[d] = math.Pi
			}
		case HingeJoint:
			low, high := lower[j.Offset], upper[j.Offset]
			if high < low {
				return nil, env.ConfigErrorf("newActuator: DOF %v has "+
					"lower limit %v above upper limit %v", j.Offset, low,
					high)
			}
			offset[j.Offset] = floatutils.Midpoint(low, high)
			scale[j.Offset] = HingeActionRange * (high - low)
		}
	}

	torque := make([]float64, numDOF)
	for d, e := range efforts {
		torque[d] = e * c.PowerScale
	}

	return &Actuator{
		positionControl: c.PositionControl,
		offset:          offset,
		scale:           scale,
		torque:          torque,
		buf:             mat.NewDense(c.NumEnvironments, numDOF, nil),
	}, nil
}

// PositionControl returns whether actions are mapped to PD targets
func (a *Actuator) PositionControl() bool {
	return a.positionControl
}

// Targets returns the PD targets of actions. The returned matrix is
// reused by later calls.
func (a *Actuator) Targets(actions *mat.Dense) *mat.Dense {
	a.apply(actions, func(d int, action float64) float64 {
		return a.offset[d] + a.scale[d]*action
	})
	return a.buf
}

// Torques returns the joint torques of actions. The returned matrix is
// reused by later calls.
func (a *Actuator) Torques(actions *mat.Dense) *mat.Dense {
	a.apply(actions, func(d int, action float64) float64 {
		return a.torque[d] * action
	})
	return a.buf
}

func (a *Actuator) apply(actions *mat.Dense, f func(int, float64) float64) {
	rows, _ := a.buf.Dims()
	for e := 0; e < rows; e++ {
		in := actions.RawRowView(e)
		out := a.buf.RawRowView(e)
		for d := range out {
			out[d] = f(d, floatutils.FiniteOr(in[d], 0))
		}
	}
}

// Actuate validates actions and sends them to the host, as PD targets
// or as torques. Errors wrap environment.ErrShapeMismatch.
func (a *Actuator) Actuate(h Host, actions *mat.Dense) error {
	rows, cols := a.buf.Dims()
	if err := env.CheckDims("actuate: actions", actions, rows,
		cols); err != nil {
		return err
	}

	if a.positionControl {
		return h.SetDOFPositionTargets(a.Targets(actions))
	}
	return h.SetDOFActuationForces(a.Torques(actions))
}

package humanoid

import (
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/utils/tensorutils"
	"gorgonia.org/tensor"
)

// SettleSteps is the number of steps after a reset during which fall
// detection is suppressed. Contact forces from the reset pose can
// linger for a step.
const SettleSteps = 1

// Terminator decides which environments reset on the current step.
// An environment resets when its episode reaches the step limit or,
// if early termination is enabled, when the humanoid has fallen. A
// humanoid has fallen when both:
//
//  1. Some body that is not contact-allowed has a contact force
//     component above the contact threshold
//  2. Some body that is not contact-allowed is below the termination
//     height
//
// Only falls terminate an episode; reaching the step limit resets it
// without terminating.
type Terminator struct {
	stepLimit env.StepLimit
	skeleton  *Skeleton

	early     bool
	threshold float64
	height    float64
}

// NewTerminator returns a Terminator for the given configuration
func NewTerminator(c Config, s *Skeleton) *Terminator {
	return &Terminator{
		stepLimit: env.NewStepLimit(c.MaxEpisodeLength),
		skeleton:  s,
		early:     c.EnableEarlyTermination,
		threshold: c.ContactForceThreshold,
		height:    c.TerminationHeight,
	}
}

// StepLimit returns the episode step limit
func (t *Terminator) StepLimit() env.StepLimit {
	return t.stepLimit
}

// Evaluate overwrites reset and terminated for every environment.
// progress holds the number of steps each environment completed before
// the current one. contacts has shape (environments, bodies, 3) and
// bodies has shape (environments, bodies, 13). On error, reset and
// terminated are left untouched.
func (t *Terminator) Evaluate(progress []int, contacts,
	bodies *tensor.Dense, reset, terminated []bool) error {
	numEnvs := len(progress)
	if len(reset) != numEnvs || len(terminated) != numEnvs {
		return env.ShapeErrorf("evaluate: flag buffers",
			[]int{len(reset), len(terminated)}, []int{numEnvs, numEnvs})
	}

	numBodies := t.skeleton.NumBodies()
	if !tensorutils.ShapeEq(contacts, numEnvs, numBodies, ContactWidth) {
		return env.ShapeErrorf("evaluate: contact forces",
			tensorutils.Shape(contacts), []int{numEnvs, numBodies, ContactWidth})
	}
	if !tensorutils.ShapeEq(bodies, numEnvs, numBodies, StateWidth) {
		return env.ShapeErrorf("evaluate: rigid body states",
			tensorutils.Shape(bodies), []int{numEnvs, numBodies, StateWidth})
	}
	contactData, err := tensorutils.Float64s(contacts)
	if err != nil {
		return env.ShapeErrorf("evaluate: contact forces: "+err.Error(),
			tensorutils.Shape(contacts), []int{numEnvs, numBodies, ContactWidth})
	}
	bodyData, err := tensorutils.Float64s(bodies)
	if err != nil {
		return env.ShapeErrorf("evaluate: rigid body states: "+err.Error(),
			tensorutils.Shape(bodies), []int{numEnvs, numBodies, StateWidth})
	}

	for e, p := range progress {
		terminated[e] = t.early && p >= SettleSteps &&
			t.fallContact(contactData, e) && t.fallHeight(bodyData, e)
		reset[e] = t.stepLimit.Reached(p) || terminated[e]
	}
	return nil
}

// fallContact returns whether a body of environment e that may not
// touch anything has a contact force above the threshold
func (t *Terminator) fallContact(contacts []float64, e int) bool {
	numBodies := t.skeleton.NumBodies()
	for b := 0; b < numBodies; b++ {
		if t.skeleton.ContactAllowed(b) {
			continue
		}
		i := tensorutils.Index3(numBodies, ContactWidth, e, b, 0)
		for _, f := range contacts[i : i+ContactWidth] {
			if f > t.threshold {
				return true
			}
		}
	}
	return false
}

// fallHeight returns whether a body of environment e that may not
// touch anything is below the termination height
func (t *Terminator) fallHeight(bodies []float64, e int) bool {
	numBodies := t.skeleton.NumBodies()
	for b := 0; b < numBodies; b++ {
		if t.skeleton.ContactAllowed(b) {
			continue
		}
		z := bodies[tensorutils.Index3(numBodies, StateWidth, e, b, PosOffset+2)]
		if z < t.height {
			return true
		}
	}
	return false
}

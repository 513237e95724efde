// Package timestep implements timesteps of the agent-environment
// interaction, both for a single environment and for a batch of
// environments advanced in lockstep
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either  first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType denotes why an episode ended
type EndType int

const (
	// NotEnded is the EndType of a timestep that does not end its
	// episode
	NotEnded EndType = iota

	// Timeout is an episode cut off by a step limit. The last state is
	// not terminal, so value estimates should bootstrap from it.
	Timeout

	// TerminalStateReached is an episode ended by failure
	TerminalStateReached
)

func (e EndType) String() string {
	switch e {
	case Timeout:
		return "Timeout"
	case TerminalStateReached:
		return "TerminalStateReached"
	default:
		return "NotEnded"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	stepType    StepType
	endType     EndType
	Reward      float64
	Discount    float64
	Observation *mat.VecDense
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r, d float64, o *mat.VecDense, n int) TimeStep {
	return TimeStep{stepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// SetEnd marks the TimeStep as the last in its episode, ending for
// reason e
func (t *TimeStep) SetEnd(e EndType) {
	t.stepType = Last
	t.endType = e
}

// EndType returns why the episode ended on this TimeStep
func (t TimeStep) EndType() EndType {
	return t.endType
}

// First returns whether a TimeStep is the first in an environment
func (t TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v  |  End: %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Discount, t.Number,
		t.endType)
}

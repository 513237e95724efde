package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Batch packages together one timestep of every environment in a
// batch. Row i of Observation and element i of every slice belong to
// environment i. A Batch owns its data: later environment steps do not
// modify it.
type Batch struct {
	Observation *mat.Dense
	Reward      *mat.VecDense
	Discount    float64

	// Number is the number of steps taken in each environment's
	// current episode, including this one
	Number []int

	// Reset flags environments whose episode ended on this step
	Reset []bool

	// Terminated flags environments whose episode ended by failure.
	// It is a subset of Reset.
	Terminated []bool
}

// NewFirstBatch returns the batch of first timesteps for envs
// environments
func NewFirstBatch(obs *mat.Dense, discount float64) Batch {
	envs, _ := obs.Dims()
	return Batch{
		Observation: obs,
		Reward:      mat.NewVecDense(envs, nil),
		Discount:    discount,
		Number:      make([]int, envs),
		Reset:       make([]bool, envs),
		Terminated:  make([]bool, envs),
	}
}

// Len returns the number of environments in the batch
func (b Batch) Len() int {
	return len(b.Number)
}

// At returns the TimeStep of environment i. The observation is a view
// into the batch.
func (b Batch) At(i int) TimeStep {
	if i < 0 || i >= b.Len() {
		panic(fmt.Sprintf("at: index %v out of range [0, %v)", i, b.Len()))
	}

	stepType := Mid
	if b.Number[i] == 0 {
		stepType = First
	}

	_, cols := b.Observation.Dims()
	obs := mat.NewVecDense(cols, b.Observation.RawRowView(i))
	t := New(stepType, b.Reward.AtVec(i), b.Discount, obs, b.Number[i])

	if b.Terminated[i] {
		t.SetEnd(TerminalStateReached)
	} else if b.Reset[i] {
		t.SetEnd(Timeout)
	}
	return t
}

// Ended returns the indices of environments whose episode ended on
// this step
func (b Batch) Ended() []int {
	var ids []int
	for i, r := range b.Reset {
		if r {
			ids = append(ids, i)
		}
	}
	return ids
}

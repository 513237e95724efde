// Package environment outlines the interfaces and structs needed to
// implement concrete batched environments: a vector of independent
// simulation instances advanced in lockstep, each with its own episode.
package environment

import (
	"context"

	"github.com/samuelfneumann/golocomotion/timestep"
	"gonum.org/v1/gonum/mat"
)

// Starter implements a distribution of starting states and samples
// starting states for environments
type Starter interface {
	Start() *mat.VecDense
}

// Ender decides which environments in a batch have reached the end of
// their episode. The progress argument holds, per environment, the
// number of steps completed before the current one. End only ever sets
// flags to true; clearing them is the caller's responsibility.
type Ender interface {
	End(progress []int, reset []bool)
}

// Environment implements a batch of simulated environments. Each row
// of an observation or action matrix belongs to one environment.
type Environment interface {
	// Step applies one action row per environment, advances the
	// simulation and returns the resulting batch of timesteps.
	// Environments whose episode ended are reset before Step returns.
	Step(ctx context.Context, actions *mat.Dense) (timestep.Batch, error)

	// ResetIdx resets the listed environments only
	ResetIdx(ids []int) error

	NumEnvironments() int
	ObservationSpec() Spec
	ActionSpec() Spec
	RewardSpec() Spec
	DiscountSpec() Spec
}

// Observable is an Environment that exposes the observations its
// agent should act on next. After a step, ended environments have
// already been reset, so these may differ from the observations in
// the returned batch.
type Observable interface {
	Environment
	Observation() *mat.Dense
}

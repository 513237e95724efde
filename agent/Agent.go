// Package agent implements policies that act in every environment of a
// batch at once
package agent

import (
	"fmt"

	env "github.com/samuelfneumann/golocomotion/environment"
	"gonum.org/v1/gonum/mat"
)

// Agent selects one action row for each observation row. The returned
// matrix is owned by the Agent and is only valid until the next call.
type Agent interface {
	SelectAction(obs *mat.Dense) *mat.Dense
}

// Type names a kind of Agent
type Type string

const (
	ZeroType     Type = "zero"
	UniformType  Type = "uniform"
	GaussianType Type = "gaussian"
)

// Config describes an Agent
type Config struct {
	Type Type   `json:"type" mapstructure:"type" yaml:"type"`
	Seed uint64 `json:"seed" mapstructure:"seed" yaml:"seed"`

	// Std is the standard deviation of the Gaussian policy's action
	// noise when its weights are zero
	Std float64 `json:"std" mapstructure:"std" yaml:"std"`
}

// New returns the Agent described by c acting in environment e
func New(c Config, e env.Environment) (Agent, error) {
	numEnvs := e.NumEnvironments()
	action := e.ActionSpec()

	switch c.Type {
	case ZeroType:
		return NewZero(numEnvs, action.Width()), nil

	case UniformType:
		return NewUniform(c.Seed, numEnvs, action), nil

	case GaussianType:
		if c.Std <= 0 {
			return nil, fmt.Errorf("new: gaussian std must be positive, "+
				"got %v", c.Std)
		}
		return NewGaussian(c.Seed, numEnvs, e.ObservationSpec().Width(),
			action, c.Std), nil

	default:
		return nil, fmt.Errorf("new: unknown agent type %q", c.Type)
	}
}

// Zero always selects the zero action
type Zero struct {
	actions *mat.Dense
}

// NewZero returns a new Zero agent for numEnvs environments with
// actionDims action dimensions
func NewZero(numEnvs, actionDims int) *Zero {
	return &Zero{mat.NewDense(numEnvs, actionDims, nil)}
}

// SelectAction returns the zero action for every environment
func (z *Zero) SelectAction(obs *mat.Dense) *mat.Dense {
	z.actions.Zero()
	return z.actions
}

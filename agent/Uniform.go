package agent

import (
	"math"

	env "github.com/samuelfneumann/golocomotion/environment"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Uniform selects every action dimension uniformly at random within the
// action bounds. Unbounded dimensions are sampled from [-1, 1].
type Uniform struct {
	actions *mat.Dense
	dists   []distuv.Uniform
}

// NewUniform returns a new Uniform agent
func NewUniform(seed uint64, numEnvs int, action env.Spec) *Uniform {
	source := rand.NewSource(seed)

	dists := make([]distuv.Uniform, action.Width())
	for i := range dists {
		low, high := action.LowerBound.AtVec(i), action.UpperBound.AtVec(i)
		if math.IsInf(low, 0) || math.IsInf(high, 0) {
			low, high = -1, 1
		}
		dists[i] = distuv.Uniform{Min: low, Max: high, Src: source}
	}

	return &Uniform{
		actions: mat.NewDense(numEnvs, action.Width(), nil),
		dists:   dists,
	}
}

// SelectAction samples an action for every environment
func (u *Uniform) SelectAction(obs *mat.Dense) *mat.Dense {
	rows, cols := u.actions.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			u.actions.Set(i, j, u.dists[j].Rand())
		}
	}
	return u.actions
}

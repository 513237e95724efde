package agent

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"github.com/samuelfneumann/golocomotion/utils/matutils"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

const StdOffset float64 = 1e-3

const (
	// Keys for weights map: map[string]*mat.Dense
	MeanWeightsKey string = "mean"
	StdWeightsKey  string = "standard deviation"
)

// Gaussian implements a multi-dimensional linear Gaussian policy.
// The policy uses linear function approximation to compute the mean
// and log standard deviation of each action dimension from an
// observation row. Sampled actions are clipped to the action bounds.
type Gaussian struct {
	meanWeights *mat.Dense
	stdWeights  *mat.Dense
	logStd      float64
	actionDims  int
	lower       mat.Vector
	upper       mat.Vector
	source      rand.Source

	actions *mat.Dense
}

// NewGaussian creates a new Gaussian policy with zero weights, whose
// actions have mean zero and standard deviation std
func NewGaussian(seed uint64, numEnvs, features int, action env.Spec,
	std float64) *Gaussian {
	if std <= 0 {
		panic(fmt.Sprintf("newGaussian: std must be positive, got %v", std))
	}
	actionDims := action.Width()

	return &Gaussian{
		meanWeights: mat.NewDense(actionDims, features, nil),
		stdWeights:  mat.NewDense(actionDims, features, nil),
		logStd:      math.Log(std),
		actionDims:  actionDims,
		lower:       action.LowerBound,
		upper:       action.UpperBound,
		source:      rand.NewSource(seed),
		actions:     mat.NewDense(numEnvs, actionDims, nil),
	}
}

// Std gets the standard deviation of the policy given some state
// observation obs
func (g *Gaussian) Std(obs mat.Vector) *mat.VecDense {
	stdVec := mat.NewVecDense(g.actionDims, nil)
	stdVec.MulVec(g.stdWeights, obs)
	for i := 0; i < stdVec.Len(); i++ {
		std := math.Exp(stdVec.AtVec(i) + g.logStd)
		stdVec.SetVec(i, std+StdOffset)
	}
	return stdVec
}

// Mean gets the mean of the policy given some state observation obs
func (g *Gaussian) Mean(obs mat.Vector) *mat.VecDense {
	mean := mat.NewVecDense(g.actionDims, nil)
	mean.MulVec(g.meanWeights, obs)
	return mean
}

// SelectAction samples an action for each observation row
func (g *Gaussian) SelectAction(obs *mat.Dense) *mat.Dense {
	rows, _ := obs.Dims()
	if r, _ := g.actions.Dims(); r != rows {
		panic(fmt.Sprintf("selectAction: expected %v observations, got %v",
			r, rows))
	}

	for i := 0; i < rows; i++ {
		o := obs.RowView(i)
		mean := g.Mean(o)
		std := g.Std(o)

		variance := make([]float64, std.Len())
		for j := range variance {
			variance[j] = std.AtVec(j) * std.AtVec(j)
		}
		cov := mat.NewDiagDense(len(variance), variance)
		dist, ok := distmv.NewNormal(mean.RawVector().Data, cov, g.source)
		if !ok {
			msg := fmt.Sprintf("selectAction: *Normal has "+
				"non-positive-definite covariance %v", matutils.Format(cov))
			panic(msg)
		}

		action := dist.Rand(nil)
		for j, a := range action {
			action[j] = floatutils.Clip(a, g.lower.AtVec(j), g.upper.AtVec(j))
		}
		g.actions.SetRow(i, action)
	}
	return g.actions
}

// Weights gets and returns the weights of the policy
func (g *Gaussian) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)

	weights[MeanWeightsKey] = g.meanWeights
	weights[StdWeightsKey] = g.stdWeights

	return weights
}

// SetWeights sets the weight pointers to point to a new set of weights.
func (g *Gaussian) SetWeights(weights map[string]*mat.Dense) error {
	meanWeights, ok := weights[MeanWeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"",
			MeanWeightsKey)
	}
	stdWeights, ok := weights[StdWeightsKey]
	if !ok {
		return fmt.Errorf("setWeights: no weights named \"%v\"",
			StdWeightsKey)
	}

	r, c := g.meanWeights.Dims()
	for _, w := range []*mat.Dense{meanWeights, stdWeights} {
		if wr, wc := w.Dims(); wr != r || wc != c {
			return fmt.Errorf("setWeights: expected weights of shape "+
				"(%v, %v), got (%v, %v)", r, c, wr, wc)
		}
	}

	g.meanWeights = meanWeights
	g.stdWeights = stdWeights
	return nil
}

type gaussianWeights struct {
	Mean, Std []byte
	LogStd    float64
}

// GobEncode implements the gob.GobEncoder interface
func (g *Gaussian) GobEncode() ([]byte, error) {
	mean, err := g.meanWeights.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	std, err := g.stdWeights.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}

	var buf bytes.Buffer
	err = gob.NewEncoder(&buf).Encode(gaussianWeights{mean, std, g.logStd})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// weights must match the shape of the policy's weights.
func (g *Gaussian) GobDecode(data []byte) error {
	var w gaussianWeights
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	var mean, std mat.Dense
	if err := mean.UnmarshalBinary(w.Mean); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	if err := std.UnmarshalBinary(w.Std); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	err := g.SetWeights(map[string]*mat.Dense{
		MeanWeightsKey: &mean,
		StdWeightsKey:  &std,
	})
	if err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}
	g.logStd = w.LogStd
	return nil
}

package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, a discount, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Discount
	Reward
)

func (s SpecType) String() string {
	switch s {
	case Action:
		return "Action"
	case Observation:
		return "Observation"
	case Discount:
		return "Discount"
	default:
		return "Reward"
	}
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// shape, and bounds of a single environment's action, observation,
// discount, or reward. Batched buffers have one row per environment,
// each row of length Width().
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// NewSpec constructs a new environment specification
// The shape argument outlines the shape of the data described by the
// specification. The argument t outlines what the specification is
// describing (e.g. actions, observations, etc.). The cardinality
// arguments describes whether the values that the spec describes are
// continuous or discrete.
func NewSpec(shape mat.Vector, t SpecType, lowerBound,
	upperBound mat.Vector, cardinality Cardinality) Spec {
	if shape.Len() != lowerBound.Len() {
		panic(fmt.Sprintf("shape length %v must match lower bounds length %v",
			shape.Len(), lowerBound.Len()))
	}
	if shape.Len() != upperBound.Len() {
		panic(fmt.Sprintf("shape length %v must match upper bounds length %v",
			shape.Len(), upperBound.Len()))
	}
	return Spec{shape, t, lowerBound, upperBound, cardinality}
}

// NewBoxSpec returns a continuous specification of width elements, each
// bounded by [low, high]
func NewBoxSpec(width int, t SpecType, low, high float64) Spec {
	lower := mat.NewVecDense(width, nil)
	upper := mat.NewVecDense(width, nil)
	for i := 0; i < width; i++ {
		lower.SetVec(i, low)
		upper.SetVec(i, high)
	}

	return NewSpec(mat.NewVecDense(width, nil), t, lower, upper, Continuous)
}

// NewUnboundedSpec returns a continuous specification of width
// elements with infinite bounds
func NewUnboundedSpec(width int, t SpecType) Spec {
	return NewBoxSpec(width, t, math.Inf(-1), math.Inf(1))
}

// Width returns the number of elements the Spec describes
func (s Spec) Width() int {
	return s.Shape.Len()
}

package humanoid

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxRewardExponent bounds the magnitude of exponents in shaped
// rewards so that they stay finite
const MaxRewardExponent = 50.0

// Snapshot is the state of one environment that a reward is computed
// from
type Snapshot struct {
	Root      RootState
	Auxiliary []RootState

	// Target is the reference point of the task, such as the initial
	// position of a ball
	Target r3.Vec
}

// Task computes the reward of one environment from the snapshot taken
// before the physics step and the one taken after it. GetReward must
// be a pure function of its arguments and must return a finite value.
type Task interface {
	GetReward(prev, cur Snapshot) float64
}

// TaskFunc adapts a function to the Task interface
type TaskFunc func(prev, cur Snapshot) float64

// GetReward calls f
func (f TaskFunc) GetReward(prev, cur Snapshot) float64 {
	return f(prev, cur)
}

// ApproachBall rewards the humanoid for closing in on the target and
// for moving a ball. The reward is
//
//	exp(-(d' - d)) - 1 + moved
//
// where d and d' are the distances from the root to the target before
// and after the step, and moved is 1 if the ball's x position changed
// by more than MoveTolerance.
type ApproachBall struct {
	// BallIndex indexes the ball among the auxiliary actors
	BallIndex int

	MoveTolerance float64
}

// NewApproachBall returns an ApproachBall task tracking the auxiliary
// actor at ballIndex
func NewApproachBall(ballIndex int, moveTolerance float64) ApproachBall {
	if ballIndex < 0 {
		panic(fmt.Sprintf("newApproachBall: ball index must be "+
			"non-negative, got %v", ballIndex))
	}
	return ApproachBall{BallIndex: ballIndex, MoveTolerance: moveTolerance}
}

// GetReward satisfies the Task interface
func (a ApproachBall) GetReward(prev, cur Snapshot) float64 {
	dist := r3.Norm(r3.Sub(cur.Target, cur.Root.Position))
	histDist := r3.Norm(r3.Sub(prev.Target, prev.Root.Position))
	dx := floatutils.FiniteOr(dist-histDist, 0)
	dx = floatutils.Clip(dx, -MaxRewardExponent, MaxRewardExponent)

	reward := math.Exp(-dx) - 1

	if a.BallIndex < len(cur.Auxiliary) && a.BallIndex < len(prev.Auxiliary) {
		moved := cur.Auxiliary[a.BallIndex].Position.X -
			prev.Auxiliary[a.BallIndex].Position.X
		if floatutils.IsFinite(moved) && math.Abs(moved) > a.MoveTolerance {
			reward++
		}
	}
	return reward
}

// Forward rewards forward progress of the root along the world x axis,
// as in the MuJoCo Hopper task, plus a constant bonus for every step
// taken without falling
type Forward struct {
	Dt         float64
	AliveBonus float64
}

// NewForward returns a Forward task for control steps of length dt
func NewForward(dt, aliveBonus float64) Forward {
	if dt <= 0 {
		panic(fmt.Sprintf("newForward: dt must be positive, got %v", dt))
	}
	return Forward{Dt: dt, AliveBonus: aliveBonus}
}

// GetReward satisfies the Task interface
func (f Forward) GetReward(prev, cur Snapshot) float64 {
	if f.Dt <= 0 {
		return f.AliveBonus
	}
	velocity := (cur.Root.Position.X - prev.Root.Position.X) / f.Dt
	return floatutils.FiniteOr(velocity, 0) + f.AliveBonus
}

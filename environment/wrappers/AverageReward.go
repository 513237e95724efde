// Package wrappers implements environments that wrap other environments
// and alter what they return
package wrappers

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/golocomotion/environment"
	ts "github.com/samuelfneumann/golocomotion/timestep"
	"gonum.org/v1/gonum/mat"
)

// AverageReward wraps a batched environment and alters rewards so that
// the differential reward is returned for each action. Training an
// agent on an AverageReward environment turns a discounted algorithm
// into its differential counterpart.
//
// A single average reward estimate is shared by every environment in
// the batch. It is updated as an exponential moving average of the mean
// batch reward:
//
//	avgReward <- avgReward + learningRate * (mean(rewards) - avgReward)
//
// Each reward is made differential using the estimate from before the
// update. The average reward setting does not discount, so every
// returned batch has a discount of 1.
type AverageReward struct {
	env.Observable
	avgReward    float64
	learningRate float64
}

// NewAverageReward creates and returns a new AverageReward Environment
// wrapper. The init parameter is the initial value for the average
// reward, usually set to 0.
func NewAverageReward(e env.Observable, init,
	learningRate float64) (*AverageReward, error) {
	if learningRate <= 0 || learningRate > 1 {
		return nil, fmt.Errorf("newAverageReward: learning rate must be "+
			"in (0, 1], got %v", learningRate)
	}
	return &AverageReward{e, init, learningRate}, nil
}

// AverageReward returns the current average reward estimate
func (a *AverageReward) AverageReward() float64 {
	return a.avgReward
}

// Step takes one step in every wrapped environment and returns the
// batch with differential rewards
func (a *AverageReward) Step(ctx context.Context,
	actions *mat.Dense) (ts.Batch, error) {
	batch, err := a.Observable.Step(ctx, actions)
	if err != nil {
		return ts.Batch{}, errors.Wrap(err, "step")
	}

	n := batch.Reward.Len()
	mean := mat.Sum(batch.Reward) / float64(n)
	for i := 0; i < n; i++ {
		batch.Reward.SetVec(i, batch.Reward.AtVec(i)-a.avgReward)
	}
	a.avgReward += a.learningRate * (mean - a.avgReward)

	batch.Discount = 1.0
	return batch, nil
}

// RewardSpec returns the reward specification for the environment.
// Differential rewards are unbounded.
func (a *AverageReward) RewardSpec() env.Spec {
	return env.NewUnboundedSpec(a.Observable.RewardSpec().Width(), env.Reward)
}

// DiscountSpec returns the discount specification for the environment.
// The average reward setting does not use discounting, so the discount
// is always 1.
func (a *AverageReward) DiscountSpec() env.Spec {
	width := a.Observable.DiscountSpec().Width()
	return env.NewBoxSpec(width, env.Discount, 1, 1)
}

// String returns a string representation of the AverageReward
// environment
func (a *AverageReward) String() string {
	return fmt.Sprintf("Average Reward: %v", a.avgReward)
}

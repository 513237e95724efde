package trackers

import (
	"fmt"

	"github.com/pkg/errors"
	ts "github.com/samuelfneumann/golocomotion/timestep"
)

// Return tracks and saves the episodic return of every environment in
// an experiment. Rewards are accumulated per environment, and when an
// environment's episode ends its return is appended to the data. Returns
// are therefore stored in the order in which episodes end, with ties
// broken by environment index.
//
// Note: An episode must finish for this Tracker to save its data.
// Episodes still running when the experiment stops are not saved.
type Return struct {
	lastNumber     []int
	currentReturn  []float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track accumulates the rewards of a batch. Track panics if it is
// called for non-sequential timesteps of some environment, or with
// batches of different sizes.
func (r *Return) Track(b ts.Batch) {
	if r.lastNumber == nil {
		r.lastNumber = make([]int, b.Len())
		r.currentReturn = make([]float64, b.Len())
	}
	if len(r.lastNumber) != b.Len() {
		panic(fmt.Sprintf("track: expected a batch of %v environments, "+
			"got %v", len(r.lastNumber), b.Len()))
	}

	for i := range r.lastNumber {
		if r.lastNumber[i]+1 != b.Number[i] {
			panic(fmt.Sprintf("track: last two timesteps tracked in "+
				"environment %v are not sequential: timestep %v --> "+
				"timestep %v", i, r.lastNumber[i], b.Number[i]))
		}

		r.currentReturn[i] += b.Reward.AtVec(i)
		r.lastNumber[i] = b.Number[i]

		if b.Reset[i] {
			r.episodeReturns = append(r.episodeReturns, r.currentReturn[i])
			r.currentReturn[i] = 0
			r.lastNumber[i] = 0
		}
	}
}

// Data returns the returns of all finished episodes
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	return errors.Wrap(save(r.filename, r.episodeReturns), "save")
}

package experiment

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/golocomotion/agent"
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/experiment/checkpointer"
	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	ts "github.com/samuelfneumann/golocomotion/timestep"
	"github.com/samuelfneumann/golocomotion/utils/progressbar"
	"github.com/sirupsen/logrus"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed. Each step advances every environment of the
// batch once.
type Online struct {
	env           env.Observable
	agent         agent.Agent
	maxSteps      int
	currentSteps  int
	episodes      int
	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	progress      *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many batched steps the experiment is run for.
func NewOnline(e env.Observable, a agent.Agent, steps int,
	t []trackers.Tracker, c []checkpointer.Checkpointer) *Online {
	return &Online{
		env:           e,
		agent:         a,
		maxSteps:      steps,
		trackers:      t,
		checkpointers: c,
	}
}

// ShowProgress prints a progress bar of the given width to out while
// the experiment runs
func (o *Online) ShowProgress(out io.Writer, width int) {
	o.progress = progressbar.NewManualProgressBar(out, width, o.maxSteps)
}

// Register registers a Tracker with the experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Steps returns the number of batched steps taken so far
func (o *Online) Steps() int {
	return o.currentSteps
}

// Episodes returns the number of episodes finished so far, over all
// environments
func (o *Online) Episodes() int {
	return o.episodes
}

// Run steps the experiment until the step limit is reached or ctx is
// cancelled
func (o *Online) Run(ctx context.Context) error {
	if o.progress != nil {
		defer o.progress.Close()
	}

	for o.currentSteps < o.maxSteps {
		if err := o.Step(ctx); err != nil {
			return errors.Wrap(err, "run")
		}
	}

	log.WithFields(logrus.Fields{
		"steps":    o.currentSteps,
		"episodes": o.episodes,
	}).Info("experiment finished")
	return nil
}

// Step selects actions for the current observations and takes one
// step in every environment
func (o *Online) Step(ctx context.Context) error {
	actions := o.agent.SelectAction(o.env.Observation())
	batch, err := o.env.Step(ctx, actions)
	if err != nil {
		return errors.Wrapf(err, "step %v", o.currentSteps+1)
	}
	o.currentSteps++
	o.track(batch)

	for _, c := range o.checkpointers {
		if err := c.Checkpoint(o.currentSteps); err != nil {
			return errors.Wrapf(err, "step %v", o.currentSteps)
		}
	}

	if o.progress != nil {
		o.progress.Increment()
		o.progress.Display()
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return errors.Wrap(err, "save")
		}
	}
	return nil
}

// track sends the batch to each tracker
func (o *Online) track(b ts.Batch) {
	ended := b.Ended()
	o.episodes += len(ended)
	if len(ended) > 0 {
		log.WithFields(logrus.Fields{
			"step":  o.currentSteps,
			"ended": ended,
		}).Debug("episodes ended")
	}

	for _, t := range o.trackers {
		t.Track(b)
	}
}

// Package experiment implements functionality for running an agent in
// a batched environment and tracking the data it generates
package experiment

import (
	"context"
	"fmt"

	"github.com/samuelfneumann/golocomotion/agent"
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/experiment/checkpointer"
	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "experiment")

// Experiment runs an agent in an environment. Data generated during the
// experiment is sent to Trackers, which cache it until Save is called.
type Experiment interface {
	// Run runs the experiment until its step limit is reached or ctx
	// is cancelled
	Run(ctx context.Context) error

	// Register adds a new Tracker to the (possibly already running)
	// experiment
	Register(t trackers.Tracker)

	// Save saves all tracked data to disk
	Save() error
}

type Type string

const (
	OnlineExp Type = "online"
)

// Config represents a configuration of an experiment
type Config struct {
	Type     Type `json:"type" mapstructure:"type" yaml:"type"`
	MaxSteps int  `json:"maxSteps" mapstructure:"maxSteps" yaml:"maxSteps"`
}

// CreateExp creates the experiment described by the Config
func (c Config) CreateExp(e env.Observable, a agent.Agent,
	t []trackers.Tracker, check []checkpointer.Checkpointer) (Experiment,
	error) {
	if c.MaxSteps < 0 {
		return nil, fmt.Errorf("createExp: maxSteps must be non-negative, "+
			"got %v", c.MaxSteps)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(e, a, c.MaxSteps, t, check), nil
	}
	return nil, fmt.Errorf("createExp: no such experiment type %q", c.Type)
}

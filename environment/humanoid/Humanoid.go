// Package humanoid implements a batched humanoid locomotion task on top
// of a vectorized rigid-body simulator. Each step, the raw state of the
// simulator is turned into observations, rewards, and reset flags for
// every environment, and environments whose episode ended are reset to
// their initial state without disturbing the others.
package humanoid

import (
	"context"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/golocomotion/environment"
	ts "github.com/samuelfneumann/golocomotion/timestep"
	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"github.com/samuelfneumann/golocomotion/utils/matutils"
	"github.com/samuelfneumann/golocomotion/utils/tensorutils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var log = logrus.WithField("component", "humanoid")

// Humanoid implements a batch of humanoid environments driven by a
// Host. A step runs in a fixed order:
//
//  1. PreStep snapshots the root states and sends the actions to the
//     host
//  2. The host simulates
//  3. PostStep refreshes the host state, then computes observations,
//     rewards, and reset flags, in that order
//  4. ResetDone resets the environments flagged in step 3
//
// Step runs all four. Hosts that drive their own loop may call the
// stages separately.
type Humanoid struct {
	cfg  Config
	host Host
	task Task

	skeleton   *Skeleton
	actors     *ActorMap
	observer   *Observer
	terminator *Terminator
	tracker    *EpisodeTracker
	actuator   *Actuator

	obs       *mat.Dense
	reward    *mat.VecDense
	prevRoots *mat.Dense
	targets   []r3.Vec
}

// New constructs a new Humanoid task on host, resets every environment,
// and returns the first batch of timesteps. Errors wrap
// environment.ErrConfiguration if the configuration does not fit the
// host.
func New(c Config, host Host, task Task) (*Humanoid, ts.Batch, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}
	if task == nil {
		return nil, ts.Batch{}, env.ConfigErrorf("new: nil task")
	}
	if n := host.NumEnvironments(); n != c.NumEnvironments {
		return nil, ts.Batch{}, env.ConfigErrorf("new: configured %v "+
			"environments but host has %v", c.NumEnvironments, n)
	}
	if err := host.Refresh(); err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new: could not refresh "+
			"host state")
	}

	skeleton, err := NewSkeleton(c, host.BodyNames(), host.DOFNames())
	if err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}

	numActors, _ := host.RootStates().Dims()
	actors, err := NewActorMap(host.EnvironmentActors(), numActors)
	if err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}
	if actors.Len() != c.NumEnvironments {
		return nil, ts.Batch{}, env.ConfigErrorf("new: host lists actors "+
			"for %v environments, want %v", actors.Len(), c.NumEnvironments)
	}

	observer := NewObserver(skeleton, c.LocalRootObservation,
		c.ObserveAuxiliary, actors.NumAuxiliary())
	if c.NumObservations != 0 && c.NumObservations != observer.Width() {
		return nil, ts.Batch{}, env.ConfigErrorf("new: declared %v "+
			"observations but the skeleton yields %v", c.NumObservations,
			observer.Width())
	}

	tracker, err := NewEpisodeTracker(host, actors, skeleton)
	if err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}

	lower, upper := host.DOFLimits()
	actuator, err := NewActuator(c, skeleton, lower, upper,
		host.MotorEfforts())
	if err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}

	// The task's reference point is the initial position of the first
	// auxiliary actor, or of the humanoid if there is none
	targets := make([]r3.Vec, c.NumEnvironments)
	for e := range targets {
		a := actors.Env(e)
		ref := a.Humanoid
		if len(a.Auxiliary) > 0 {
			ref = a.Auxiliary[0]
		}
		targets[e] = tracker.InitialRootState(ref).Position
	}

	h := &Humanoid{
		cfg:        c,
		host:       host,
		task:       task,
		skeleton:   skeleton,
		actors:     actors,
		observer:   observer,
		terminator: NewTerminator(c, skeleton),
		tracker:    tracker,
		actuator:   actuator,
		obs:        mat.NewDense(c.NumEnvironments, observer.Width(), nil),
		reward:     mat.NewVecDense(c.NumEnvironments, nil),
		prevRoots:  mat.NewDense(numActors, StateWidth, nil),
		targets:    targets,
	}

	if err := h.ResetIdx(matutils.Range(c.NumEnvironments)); err != nil {
		return nil, ts.Batch{}, errors.Wrap(err, "new")
	}

	log.WithFields(logrus.Fields{
		"envs":         c.NumEnvironments,
		"observations": observer.Width(),
		"actions":      skeleton.NumDOF(),
		"auxiliary":    actors.NumAuxiliary(),
	}).Debug("constructed humanoid task")

	return h, ts.NewFirstBatch(mat.DenseCopyOf(h.obs), c.Discount), nil
}

// Step takes one step in every environment and returns the resulting
// batch of timesteps. Environments whose episode ended on this step
// are reset before Step returns; the batch holds their last
// observation, and Observation holds their first observation of the
// next episode.
func (h *Humanoid) Step(ctx context.Context, actions *mat.Dense) (ts.Batch,
	error) {
	if err := h.PreStep(actions); err != nil {
		return ts.Batch{}, errors.Wrap(err, "step")
	}
	if err := h.host.Simulate(ctx); err != nil {
		return ts.Batch{}, errors.Wrap(err, "step: could not simulate")
	}

	batch, err := h.PostStep()
	if err != nil {
		return ts.Batch{}, errors.Wrap(err, "step")
	}

	if err := h.ResetDone(); err != nil {
		return ts.Batch{}, errors.Wrap(err, "step")
	}
	return batch, nil
}

// PreStep snapshots the current root states and applies actions, one
// row per environment, through the host's actuators
func (h *Humanoid) PreStep(actions *mat.Dense) error {
	if err := env.CheckDims("preStep: actions", actions,
		h.cfg.NumEnvironments, h.skeleton.NumDOF()); err != nil {
		return err
	}
	roots := h.host.RootStates()
	if err := env.CheckDims("preStep: root states", roots,
		h.actors.NumActors(), StateWidth); err != nil {
		return err
	}
	h.prevRoots.Copy(roots)

	return h.actuator.Actuate(h.host, actions)
}

// PostStep refreshes the host state and computes the observation,
// reward, and reset flags of every environment. Reset flags are
// evaluated against the progress before this step, after which the
// progress of every environment is incremented. The returned batch
// owns its data.
func (h *Humanoid) PostStep() (ts.Batch, error) {
	if err := h.host.Refresh(); err != nil {
		return ts.Batch{}, errors.Wrap(err, "postStep: could not refresh "+
			"host state")
	}
	if err := h.checkState(); err != nil {
		return ts.Batch{}, errors.Wrap(err, "postStep")
	}

	if err := h.observer.Observe(h.obs, h.host, h.actors,
		matutils.Range(h.cfg.NumEnvironments)); err != nil {
		return ts.Batch{}, errors.Wrap(err, "postStep")
	}

	h.computeReward()

	if err := h.tracker.Evaluate(h.terminator, h.host.ContactForces(),
		h.host.RigidBodyStates()); err != nil {
		return ts.Batch{}, errors.Wrap(err, "postStep")
	}
	h.tracker.Step()

	return ts.Batch{
		Observation: mat.DenseCopyOf(h.obs),
		Reward:      mat.VecDenseCopyOf(h.reward),
		Discount:    h.cfg.Discount,
		Number:      h.tracker.Progress(),
		Reset:       h.tracker.Reset(),
		Terminated:  h.tracker.Terminated(),
	}, nil
}

// ResetDone resets every environment flagged by the last PostStep
func (h *Humanoid) ResetDone() error {
	ids := h.tracker.Pending()
	if len(ids) == 0 {
		return nil
	}
	return h.ResetIdx(ids)
}

// ResetIdx resets the listed environments to their initial state and
// recomputes their observations. No other environment is touched.
func (h *Humanoid) ResetIdx(ids []int) error {
	if err := h.tracker.ResetSubset(h.host, ids); err != nil {
		return errors.Wrap(err, "resetIdx")
	}
	if err := h.host.Refresh(); err != nil {
		return errors.Wrap(err, "resetIdx: could not refresh host state")
	}

	ids, _ = matutils.UniqueIndices(ids, h.cfg.NumEnvironments)
	if err := h.observer.Observe(h.obs, h.host, h.actors, ids); err != nil {
		return errors.Wrap(err, "resetIdx")
	}
	return nil
}

// checkState validates the shape of every host buffer read in a step
func (h *Humanoid) checkState() error {
	numEnvs := h.cfg.NumEnvironments
	numBodies := h.skeleton.NumBodies()

	if err := env.CheckDims("root states", h.host.RootStates(),
		h.actors.NumActors(), StateWidth); err != nil {
		return err
	}
	if err := env.CheckDims("dof positions", h.host.DOFPositions(),
		numEnvs, h.skeleton.NumDOF()); err != nil {
		return err
	}
	if err := env.CheckDims("dof velocities", h.host.DOFVelocities(),
		numEnvs, h.skeleton.NumDOF()); err != nil {
		return err
	}
	if b := h.host.RigidBodyStates(); !tensorutils.ShapeEq(b, numEnvs,
		numBodies, StateWidth) {
		return env.ShapeErrorf("rigid body states", tensorutils.Shape(b),
			[]int{numEnvs, numBodies, StateWidth})
	}
	if c := h.host.ContactForces(); !tensorutils.ShapeEq(c, numEnvs,
		numBodies, ContactWidth) {
		return env.ShapeErrorf("contact forces", tensorutils.Shape(c),
			[]int{numEnvs, numBodies, ContactWidth})
	}
	return nil
}

// computeReward fills the reward buffer from the root states before
// and after the physics step
func (h *Humanoid) computeReward() {
	roots := h.host.RootStates()
	for e := 0; e < h.cfg.NumEnvironments; e++ {
		prev := h.snapshot(h.prevRoots, e)
		cur := h.snapshot(roots, e)
		r := h.task.GetReward(prev, cur)
		h.reward.SetVec(e, floatutils.FiniteOr(r, 0))
	}
}

func (h *Humanoid) snapshot(roots *mat.Dense, e int) Snapshot {
	a := h.actors.Env(e)
	aux := make([]RootState, len(a.Auxiliary))
	for i, row := range a.Auxiliary {
		aux[i] = RootStateFromRow(roots.RawRowView(row))
	}
	return Snapshot{
		Root:      RootStateFromRow(roots.RawRowView(a.Humanoid)),
		Auxiliary: aux,
		Target:    h.targets[e],
	}
}

// Observation returns a copy of the current observation of every
// environment
func (h *Humanoid) Observation() *mat.Dense {
	return mat.DenseCopyOf(h.obs)
}

// Progress returns the number of steps each environment has taken in
// its current episode
func (h *Humanoid) Progress() []int {
	return h.tracker.Progress()
}

// Skeleton returns the resolved skeleton of the humanoid
func (h *Humanoid) Skeleton() *Skeleton {
	return h.skeleton
}

// Actors returns the actor map of the environments
func (h *Humanoid) Actors() *ActorMap {
	return h.actors
}

// NumEnvironments returns the number of environments in the batch
func (h *Humanoid) NumEnvironments() int {
	return h.cfg.NumEnvironments
}

// ObservationWidth returns the width of an observation
func (h *Humanoid) ObservationWidth() int {
	return h.observer.Width()
}

// ActionWidth returns the width of an action, one element per DOF
func (h *Humanoid) ActionWidth() int {
	return h.skeleton.NumDOF()
}

// ObservationSpec returns the observation specification of a single
// environment
func (h *Humanoid) ObservationSpec() env.Spec {
	return env.NewUnboundedSpec(h.ObservationWidth(), env.Observation)
}

// ActionSpec returns the action specification of a single environment
func (h *Humanoid) ActionSpec() env.Spec {
	return env.NewBoxSpec(h.ActionWidth(), env.Action, -1, 1)
}

// RewardSpec returns the reward specification of a single environment
func (h *Humanoid) RewardSpec() env.Spec {
	return env.NewUnboundedSpec(1, env.Reward)
}

// DiscountSpec returns the discount specification of a single
// environment
func (h *Humanoid) DiscountSpec() env.Spec {
	return env.NewBoxSpec(1, env.Discount, 0, 1)
}

var _ env.Observable = (*Humanoid)(nil)

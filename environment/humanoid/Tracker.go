package humanoid

import (
	"github.com/pkg/errors"
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/utils/matutils"
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

// EpisodeTracker tracks the episode of every environment: its
// progress, its reset and terminate flags, and the initial state it
// is reset to. All buffers are allocated once and written in place.
type EpisodeTracker struct {
	actors *ActorMap

	progress   []int
	reset      []bool
	terminated []bool

	// Initial state, immutable after construction
	initRoots  *mat.Dense
	initDOFPos *mat.Dense
	initDOFVel *mat.Dense
}

// NewEpisodeTracker captures the current root states of src as the
// initial state of every actor, with velocities zeroed. The initial
// DOF positions are those of the skeleton's initial pose and the
// initial DOF velocities are zero.
func NewEpisodeTracker(src StateSource, actors *ActorMap,
	s *Skeleton) (*EpisodeTracker, error) {
	roots := src.RootStates()
	if err := env.CheckDims("newEpisodeTracker: root states", roots,
		actors.NumActors(), StateWidth); err != nil {
		return nil, err
	}

	initRoots := mat.DenseCopyOf(roots)
	matutils.ZeroColumns(initRoots, LinVelOffset, StateWidth)

	numEnvs := actors.Len()
	initDOFPos := mat.NewDense(numEnvs, s.NumDOF(), nil)
	pose := s.InitialDOFPositions()
	for e := 0; e < numEnvs; e++ {
		initDOFPos.SetRow(e, pose)
	}

	return &EpisodeTracker{
		actors:     actors,
		progress:   make([]int, numEnvs),
		reset:      make([]bool, numEnvs),
		terminated: make([]bool, numEnvs),
		initRoots:  initRoots,
		initDOFPos: initDOFPos,
		initDOFVel: mat.NewDense(numEnvs, s.NumDOF(), nil),
	}, nil
}

// Len returns the number of environments tracked
func (t *EpisodeTracker) Len() int {
	return len(t.progress)
}

// Step increments the progress of every environment
func (t *EpisodeTracker) Step() {
	for i := range t.progress {
		t.progress[i]++
	}
}

// Evaluate runs term over the tracked progress and stores the
// resulting reset and terminate flags
func (t *EpisodeTracker) Evaluate(term *Terminator, contacts,
	bodies *tensor.Dense) error {
	return term.Evaluate(t.progress, contacts, bodies, t.reset,
		t.terminated)
}

// ResetSubset writes the initial state of the listed environments to
// w and restarts their episodes. Duplicate ids are collapsed. No other
// environment is touched, either in w or in the tracker.
func (t *EpisodeTracker) ResetSubset(w StateWriter, ids []int) error {
	ids, err := matutils.UniqueIndices(ids, t.Len())
	if err != nil {
		return errors.Wrap(err, "resetSubset")
	}
	if len(ids) == 0 {
		return nil
	}

	if err := w.SetRootStatesIndexed(t.initRoots,
		t.actors.Rows(ids)); err != nil {
		return errors.Wrap(err, "resetSubset: could not reset root states")
	}
	if err := w.SetDOFStatesIndexed(t.initDOFPos, t.initDOFVel,
		ids); err != nil {
		return errors.Wrap(err, "resetSubset: could not reset dof states")
	}

	for _, e := range ids {
		t.progress[e] = 0
		t.reset[e] = false
		t.terminated[e] = false
	}
	log.WithField("envs", ids).Debug("reset environments")
	return nil
}

// Pending returns the environments flagged for reset
func (t *EpisodeTracker) Pending() []int {
	var ids []int
	for e, r := range t.reset {
		if r {
			ids = append(ids, e)
		}
	}
	return ids
}

// Progress returns a copy of the number of steps each environment has
// taken in its current episode
func (t *EpisodeTracker) Progress() []int {
	return append([]int(nil), t.progress...)
}

// Reset returns a copy of the reset flags
func (t *EpisodeTracker) Reset() []bool {
	return append([]bool(nil), t.reset...)
}

// Terminated returns a copy of the terminate flags
func (t *EpisodeTracker) Terminated() []bool {
	return append([]bool(nil), t.terminated...)
}

// InitialRootState returns the initial root state of the actor stored
// in root-state row actor
func (t *EpisodeTracker) InitialRootState(actor int) RootState {
	return RootStateFromRow(t.initRoots.RawRowView(actor))
}

package humanoid

import (
	"context"

	"github.com/samuelfneumann/golocomotion/rotation"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gorgonia.org/tensor"
)

// Layout of a root or rigid-body state row: position, orientation as
// an (x, y, z, w) quaternion, linear velocity, angular velocity
const (
	PosOffset    = 0
	RotOffset    = 3
	LinVelOffset = 7
	AngVelOffset = 10
	StateWidth   = 13

	// ContactWidth is the width of a per-body contact force
	ContactWidth = 3
)

// StateSource gives read access to the simulator's batched state. The
// returned buffers are owned by the host and refreshed in place by
// Refresh; callers must not keep them across steps.
type StateSource interface {
	// Refresh brings every buffer up to date with the simulation
	Refresh() error

	// RootStates has one row per actor, (actors, StateWidth)
	RootStates() *mat.Dense

	// DOFPositions and DOFVelocities have shape (environments, DOFs)
	DOFPositions() *mat.Dense
	DOFVelocities() *mat.Dense

	// RigidBodyStates has shape (environments, bodies, StateWidth) and
	// covers the humanoid's bodies only
	RigidBodyStates() *tensor.Dense

	// ContactForces has shape (environments, bodies, ContactWidth)
	ContactForces() *tensor.Dense
}

// StateWriter overwrites the state of a subset of actors or
// environments. Rows that are not listed are never written.
type StateWriter interface {
	// SetRootStatesIndexed overwrites the listed actors' root states
	// with the same rows of states
	SetRootStatesIndexed(states *mat.Dense, actorIDs []int) error

	// SetDOFStatesIndexed overwrites the listed environments' DOF
	// positions and velocities with the same rows of pos and vel
	SetDOFStatesIndexed(pos, vel *mat.Dense, envIDs []int) error
}

// Host is a vectorized rigid-body simulator running one humanoid, and
// possibly auxiliary objects, in each of its environments
type Host interface {
	StateSource
	StateWriter

	NumEnvironments() int

	// BodyNames names the humanoid's rigid bodies in tensor order
	BodyNames() []string

	// DOFNames names the humanoid's degrees of freedom in column order
	DOFNames() []string

	// EnvironmentActors lists, per environment, the RootStates rows of
	// its actors. The first actor is the humanoid; the rest are
	// auxiliary objects.
	EnvironmentActors() [][]int

	// MotorEfforts returns the maximum effort of each DOF's actuator
	MotorEfforts() []float64

	// DOFLimits returns the lower and upper limit of each DOF
	DOFLimits() (lower, upper []float64)

	// SetDOFPositionTargets sets PD targets, (environments, DOFs)
	SetDOFPositionTargets(targets *mat.Dense) error

	// SetDOFActuationForces sets joint torques, (environments, DOFs)
	SetDOFActuationForces(forces *mat.Dense) error

	// Simulate advances the physics by one control step
	Simulate(ctx context.Context) error
}

// RootState is the pose and velocity of an actor's root body
type RootState struct {
	Position        r3.Vec
	Rotation        quat.Number
	LinearVelocity  r3.Vec
	AngularVelocity r3.Vec
}

// RootStateFromRow decodes a StateWidth-long state row
func RootStateFromRow(row []float64) RootState {
	return RootState{
		Position:        vecAt(row, PosOffset),
		Rotation:        rotation.FromSlice(row[RotOffset:]),
		LinearVelocity:  vecAt(row, LinVelOffset),
		AngularVelocity: vecAt(row, AngVelOffset),
	}
}

// Row encodes r as a StateWidth-long state row
func (r RootState) Row() []float64 {
	q := rotation.ToXYZW(r.Rotation)
	return []float64{
		r.Position.X, r.Position.Y, r.Position.Z,
		q[0], q[1], q[2], q[3],
		r.LinearVelocity.X, r.LinearVelocity.Y, r.LinearVelocity.Z,
		r.AngularVelocity.X, r.AngularVelocity.Y, r.AngularVelocity.Z,
	}
}

func vecAt(s []float64, i int) r3.Vec {
	return r3.Vec{X: s[i], Y: s[i+1], Z: s[i+2]}
}

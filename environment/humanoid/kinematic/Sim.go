// Package kinematic implements a lightweight, pure Go host simulator
// for the humanoid task. Bodies are rigidly offset from their parents
// and posed by forward kinematics. The root falls under gravity until
// the lowest body meets the ground, feet on the ground stay planted,
// and a ball in each environment is pushed along when a body touches
// it.
//
// The simulator is not physically accurate. It exists to exercise the
// humanoid task end to end without a GPU simulator.
package kinematic

import (
	"context"
	"math"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"github.com/samuelfneumann/golocomotion/rotation"
	"github.com/samuelfneumann/golocomotion/utils/floatutils"
	"github.com/samuelfneumann/golocomotion/utils/matutils"
	"github.com/samuelfneumann/golocomotion/utils/tensorutils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r3"
	"gorgonia.org/tensor"
)

var log = logrus.WithField("component", "kinematic")

// Each environment holds the humanoid followed by the ball
const actorsPerEnv = 2

type actuation int

const (
	positionTargets actuation = iota
	torques
)

// Sim is a batch of kinematic humanoid environments. It implements
// humanoid.Host.
type Sim struct {
	model   Model
	cfg     Config
	offsets []int
	numDOF  int

	roots          *mat.Dense
	dofPos, dofVel *mat.Dense
	targets        *mat.Dense
	forces         *mat.Dense
	actuation      actuation

	bodies      *tensor.Dense
	contacts    *tensor.Dense
	bodyData    []float64
	contactData []float64

	lower, upper []float64
	efforts      []float64

	// Scratch space for forward kinematics
	pos     []r3.Vec
	prevPos []r3.Vec
	rot     []quat.Number
}

// New returns a new Sim running model in cfg.NumEnvironments
// environments. The humanoid of every environment starts at rest at the
// origin and the ball is placed uniformly at random in the model's
// ball start region.
func New(model Model, cfg Config) (*Sim, error) {
	if err := model.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	numEnvs := cfg.NumEnvironments
	numBodies := len(model.Bodies)
	offsets := model.JointOffsets()
	numDOF := offsets[len(offsets)-1]

	lower := make([]float64, numDOF)
	upper := make([]float64, numDOF)
	efforts := make([]float64, numDOF)
	for j, joint := range model.Joints {
		for d := offsets[j]; d < offsets[j+1]; d++ {
			lower[d] = joint.Limit.Min
			upper[d] = joint.Limit.Max
			efforts[d] = joint.Effort
		}
	}

	bodies := tensorutils.New3(numEnvs, numBodies, humanoid.StateWidth, nil)
	contacts := tensorutils.New3(numEnvs, numBodies, humanoid.ContactWidth,
		nil)
	bodyData, _ := tensorutils.Float64s(bodies)
	contactData, _ := tensorutils.Float64s(contacts)

	s := &Sim{
		model:       model,
		cfg:         cfg,
		offsets:     offsets,
		numDOF:      numDOF,
		roots:       mat.NewDense(actorsPerEnv*numEnvs, humanoid.StateWidth, nil),
		dofPos:      mat.NewDense(numEnvs, numDOF, nil),
		dofVel:      mat.NewDense(numEnvs, numDOF, nil),
		targets:     mat.NewDense(numEnvs, numDOF, nil),
		forces:      mat.NewDense(numEnvs, numDOF, nil),
		bodies:      bodies,
		contacts:    contacts,
		bodyData:    bodyData,
		contactData: contactData,
		lower:       lower,
		upper:       upper,
		efforts:     efforts,
		pos:         make([]r3.Vec, numBodies),
		prevPos:     make([]r3.Vec, numBodies),
		rot:         make([]quat.Number, numBodies),
	}

	ballStart := env.NewUniformStarter([]r1.Interval{model.BallStart[0],
		model.BallStart[1]}, cfg.Seed)
	for e := 0; e < numEnvs; e++ {
		h := humanoid.RootState{
			Position: r3.Vec{Z: model.RootHeight},
			Rotation: rotation.Identity,
		}
		s.roots.SetRow(actorsPerEnv*e, h.Row())

		xy := ballStart.Start()
		ball := humanoid.RootState{
			Position: r3.Vec{X: xy.AtVec(0), Y: xy.AtVec(1),
				Z: model.BallRadius},
			Rotation: rotation.Identity,
		}
		s.roots.SetRow(actorsPerEnv*e+1, ball.Row())
	}

	if err := s.Refresh(); err != nil {
		return nil, errors.Wrap(err, "new")
	}

	log.WithFields(logrus.Fields{
		"envs":   numEnvs,
		"bodies": numBodies,
		"dofs":   numDOF,
	}).Debug("constructed kinematic simulator")

	return s, nil
}

// Model returns the simulated model
func (s *Sim) Model() Model {
	return s.model
}

// Refresh recomputes the rigid-body states and contact forces from
// the root and DOF states
func (s *Sim) Refresh() error {
	numBodies := len(s.model.Bodies)
	for e := 0; e < s.cfg.NumEnvironments; e++ {
		root := s.humanoidRoot(e)
		s.forwardKinematics(root, s.dofPos.RawRowView(e), s.pos, s.rot)

		for b := 0; b < numBodies; b++ {
			i := tensorutils.Index3(numBodies, humanoid.StateWidth, e, b, 0)
			state := humanoid.RootState{
				Position:        s.pos[b],
				Rotation:        s.rot[b],
				LinearVelocity:  root.LinearVelocity,
				AngularVelocity: root.AngularVelocity,
			}
			copy(s.bodyData[i:i+humanoid.StateWidth], state.Row())

			c := tensorutils.Index3(numBodies, humanoid.ContactWidth, e, b, 0)
			s.contactData[c] = 0
			s.contactData[c+1] = 0
			s.contactData[c+2] = s.contactForce(b, s.pos[b])
		}
	}
	return nil
}

// contactForce returns the vertical contact force on body b at p
func (s *Sim) contactForce(b int, p r3.Vec) float64 {
	gap := p.Z - s.model.Bodies[b].Radius
	if gap >= s.cfg.ContactMargin {
		return 0
	}
	return s.cfg.ContactStiffness * (s.cfg.ContactMargin - gap)
}

// forwardKinematics fills pos and rot with the world pose of every
// body given the root state and the DOF positions q
func (s *Sim) forwardKinematics(root humanoid.RootState, q []float64,
	pos []r3.Vec, rot []quat.Number) {
	pos[0] = root.Position
	rot[0] = rotation.Normalize(root.Rotation)

	for i := 1; i < len(s.model.Bodies); i++ {
		b := s.model.Bodies[i]
		local := s.jointRotation(b.Joint, q)
		pos[i] = r3.Add(pos[b.Parent], rotation.Rotate(rot[b.Parent], b.Offset))
		rot[i] = rotation.Mul(rot[b.Parent], local)
	}
}

func (s *Sim) jointRotation(j int, q []float64) quat.Number {
	joint := s.model.Joints[j]
	d := s.offsets[j]
	if joint.Kind == humanoid.SphericalJoint {
		return rotation.ExpMapToQuat(r3.Vec{X: q[d], Y: q[d+1], Z: q[d+2]})
	}

	var axis [3]float64
	axis[joint.Axis] = 1
	return rotation.FromAngleAxis(q[d], r3.Vec{X: axis[0], Y: axis[1],
		Z: axis[2]})
}

// Simulate advances every environment by one control step
func (s *Sim) Simulate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "simulate")
	}

	for i := 0; i < s.cfg.Substeps; i++ {
		for e := 0; e < s.cfg.NumEnvironments; e++ {
			s.stepEnv(e, s.cfg.Dt)
		}
	}
	return nil
}

// stepEnv advances environment e by dt seconds
func (s *Sim) stepEnv(e int, dt float64) {
	root := s.humanoidRoot(e)
	start := root.Position
	q := s.dofPos.RawRowView(e)
	qd := s.dofVel.RawRowView(e)

	s.forwardKinematics(root, q, s.prevPos, s.rot)
	s.stepDOFs(e, q, qd, dt)
	s.forwardKinematics(root, q, s.pos, s.rot)

	// Bodies on the ground stay put, so the root moves instead
	var shift r3.Vec
	planted := 0
	for b, p := range s.prevPos {
		if p.Z-s.model.Bodies[b].Radius < s.cfg.ContactMargin {
			shift = r3.Add(shift, r3.Sub(s.pos[b], p))
			planted++
		}
	}
	if planted > 0 {
		shift = r3.Scale(1/float64(planted), shift)
		root.Position.X -= shift.X
		root.Position.Y -= shift.Y
	}

	root.LinearVelocity.Z -= s.cfg.Gravity * dt
	root.Position.Z += root.LinearVelocity.Z * dt

	s.forwardKinematics(root, q, s.pos, s.rot)
	lowest := math.Inf(1)
	for b, p := range s.pos {
		lowest = math.Min(lowest, p.Z-s.model.Bodies[b].Radius)
	}
	if lowest < 0 {
		root.Position.Z -= lowest
		if root.LinearVelocity.Z < 0 {
			root.LinearVelocity.Z = 0
		}
		s.forwardKinematics(root, q, s.pos, s.rot)
	}

	root.LinearVelocity.X = (root.Position.X - start.X) / dt
	root.LinearVelocity.Y = (root.Position.Y - start.Y) / dt
	s.roots.SetRow(actorsPerEnv*e, root.Row())

	s.stepBall(e, dt)
}

// stepDOFs moves the DOFs of environment e towards their targets, or
// integrates their torques, keeping them within their limits
func (s *Sim) stepDOFs(e int, q, qd []float64, dt float64) {
	gain := math.Min(1, s.cfg.TrackingRate*dt)

	for d := range q {
		var next float64
		switch s.actuation {
		case positionTargets:
			next = q[d] + gain*(s.targets.At(e, d)-q[d])
		case torques:
			torque := floatutils.Clip(s.forces.At(e, d), -s.efforts[d],
				s.efforts[d])
			acc := (torque - s.cfg.Damping*qd[d]) / s.cfg.Inertia
			qd[d] += acc * dt
			next = q[d] + qd[d]*dt
		}

		clipped := floatutils.Clip(next, s.lower[d], s.upper[d])
		if s.actuation == positionTargets {
			qd[d] = (clipped - q[d]) / dt
		} else if clipped != next {
			qd[d] = 0
		}
		q[d] = clipped
	}
}

// stepBall pushes the ball of environment e away from any body
// touching it, then rolls it along the ground. s.pos must hold the
// body positions of environment e.
func (s *Sim) stepBall(e int, dt float64) {
	row := s.roots.RawRowView(actorsPerEnv*e + 1)
	ball := humanoid.RootStateFromRow(row)

	for b, p := range s.pos {
		reach := s.model.BallRadius + s.model.Bodies[b].Radius
		away := r3.Sub(ball.Position, p)
		if r3.Norm(away) >= reach {
			continue
		}

		away.Z = 0
		dir := rotation.Forward
		if n := r3.Norm(away); n > 0 {
			dir = r3.Scale(1/n, away)
		}
		if r3.Dot(ball.LinearVelocity, dir) < s.cfg.KickSpeed {
			ball.LinearVelocity = r3.Scale(s.cfg.KickSpeed, dir)
		}
	}

	ball.Position.X += ball.LinearVelocity.X * dt
	ball.Position.Y += ball.LinearVelocity.Y * dt
	ball.Position.Z = s.model.BallRadius
	ball.LinearVelocity = r3.Scale(math.Max(0, 1-s.cfg.Friction*dt),
		ball.LinearVelocity)
	ball.LinearVelocity.Z = 0

	copy(row, ball.Row())
}

func (s *Sim) humanoidRoot(e int) humanoid.RootState {
	return humanoid.RootStateFromRow(s.roots.RawRowView(actorsPerEnv * e))
}

// RootStates returns the root states of every actor. Environment e owns
// rows 2e (humanoid) and 2e+1 (ball).
func (s *Sim) RootStates() *mat.Dense { return s.roots }

// DOFPositions returns the DOF positions of every environment
func (s *Sim) DOFPositions() *mat.Dense { return s.dofPos }

// DOFVelocities returns the DOF velocities of every environment
func (s *Sim) DOFVelocities() *mat.Dense { return s.dofVel }

// RigidBodyStates returns the state of every body of every humanoid
func (s *Sim) RigidBodyStates() *tensor.Dense { return s.bodies }

// ContactForces returns the contact force on every body of every
// humanoid
func (s *Sim) ContactForces() *tensor.Dense { return s.contacts }

// NumEnvironments returns the number of environments
func (s *Sim) NumEnvironments() int { return s.cfg.NumEnvironments }

// BodyNames returns the names of the humanoid's bodies
func (s *Sim) BodyNames() []string { return s.model.BodyNames() }

// DOFNames returns the names of the humanoid's DOFs
func (s *Sim) DOFNames() []string { return s.model.DOFNames() }

// EnvironmentActors returns the humanoid and ball rows of every
// environment
func (s *Sim) EnvironmentActors() [][]int {
	actors := make([][]int, s.cfg.NumEnvironments)
	for e := range actors {
		actors[e] = []int{actorsPerEnv * e, actorsPerEnv*e + 1}
	}
	return actors
}

// MotorEfforts returns the maximum torque of every DOF
func (s *Sim) MotorEfforts() []float64 {
	return append([]float64(nil), s.efforts...)
}

// DOFLimits returns the position limits of every DOF
func (s *Sim) DOFLimits() (lower, upper []float64) {
	return append([]float64(nil), s.lower...), append([]float64(nil),
		s.upper...)
}

// SetRootStatesIndexed copies the listed rows of states into the root
// states
func (s *Sim) SetRootStatesIndexed(states *mat.Dense, actorIDs []int) error {
	rows, _ := s.roots.Dims()
	if err := env.CheckDims("setRootStatesIndexed: states", states, rows,
		humanoid.StateWidth); err != nil {
		return err
	}
	if _, err := matutils.UniqueIndices(actorIDs, rows); err != nil {
		return errors.Wrap(err, "setRootStatesIndexed")
	}
	matutils.ScatterRows(s.roots, states, actorIDs)
	return nil
}

// SetDOFStatesIndexed copies the listed rows of pos and vel into the
// DOF states
func (s *Sim) SetDOFStatesIndexed(pos, vel *mat.Dense, envIDs []int) error {
	numEnvs := s.cfg.NumEnvironments
	if err := env.CheckDims("setDOFStatesIndexed: positions", pos, numEnvs,
		s.numDOF); err != nil {
		return err
	}
	if err := env.CheckDims("setDOFStatesIndexed: velocities", vel,
		numEnvs, s.numDOF); err != nil {
		return err
	}
	if _, err := matutils.UniqueIndices(envIDs, numEnvs); err != nil {
		return errors.Wrap(err, "setDOFStatesIndexed")
	}
	matutils.ScatterRows(s.dofPos, pos, envIDs)
	matutils.ScatterRows(s.dofVel, vel, envIDs)
	return nil
}

// SetDOFPositionTargets switches to position control with the given
// targets
func (s *Sim) SetDOFPositionTargets(targets *mat.Dense) error {
	if err := env.CheckDims("setDOFPositionTargets", targets,
		s.cfg.NumEnvironments, s.numDOF); err != nil {
		return err
	}
	s.targets.Copy(targets)
	s.actuation = positionTargets
	return nil
}

// SetDOFActuationForces switches to torque control with the given
// torques. Torques are clipped to the motor efforts.
func (s *Sim) SetDOFActuationForces(forces *mat.Dense) error {
	if err := env.CheckDims("setDOFActuationForces", forces,
		s.cfg.NumEnvironments, s.numDOF); err != nil {
		return err
	}
	s.forces.Copy(forces)
	s.actuation = torques
	return nil
}

var _ humanoid.Host = (*Sim)(nil)

package humanoid

import (
	"context"

	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/rotation"
	"github.com/samuelfneumann/golocomotion/utils/matutils"
	"github.com/samuelfneumann/golocomotion/utils/tensorutils"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gorgonia.org/tensor"
)

var (
	fakeBodies  = []string{"pelvis", "torso", "hand", "foot"}
	fakeDOFs    = []string{"hipx", "hipy", "hipz", "knee"}
	fakeHeights = []float64{1, 1.4, 1.2, 0.05}
)

// fakeHost is a Host with one humanoid and one ball per environment.
// The humanoid has a spherical hip and a hinge knee. Nothing moves
// unless simulate is set.
type fakeHost struct {
	roots          *mat.Dense
	dofPos, dofVel *mat.Dense
	bodies         *tensor.Dense
	contacts       *tensor.Dense
	envActors      [][]int

	targets *mat.Dense
	forces  *mat.Dense

	refreshes int
	simulate  func(h *fakeHost)
}

func newFakeHost(envs int) *fakeHost {
	roots := mat.NewDense(2*envs, StateWidth, nil)
	actors := make([][]int, envs)
	for e := 0; e < envs; e++ {
		actors[e] = []int{2 * e, 2*e + 1}

		humanoid := RootState{
			Position:       r3.Vec{X: float64(e), Z: 1},
			Rotation:       rotation.Identity,
			LinearVelocity: r3.Vec{X: 0.5},
		}
		ball := RootState{
			Position: r3.Vec{X: float64(e) + 3, Z: 0.11},
			Rotation: rotation.Identity,
		}
		roots.SetRow(2*e, humanoid.Row())
		roots.SetRow(2*e+1, ball.Row())
	}

	bodies := tensorutils.New3(envs, len(fakeBodies), StateWidth, nil)
	data, _ := tensorutils.Float64s(bodies)
	for e := 0; e < envs; e++ {
		for b, z := range fakeHeights {
			i := tensorutils.Index3(len(fakeBodies), StateWidth, e, b, 0)
			data[i] = float64(e)
			data[i+2] = z
			data[i+RotOffset+3] = 1
		}
	}

	return &fakeHost{
		roots:     roots,
		dofPos:    mat.NewDense(envs, len(fakeDOFs), nil),
		dofVel:    mat.NewDense(envs, len(fakeDOFs), nil),
		bodies:    bodies,
		contacts:  tensorutils.New3(envs, len(fakeBodies), ContactWidth, nil),
		envActors: actors,
	}
}

func (h *fakeHost) Refresh() error {
	h.refreshes++
	return nil
}

func (h *fakeHost) RootStates() *mat.Dense { return h.roots }
func (h *fakeHost) DOFPositions() *mat.Dense { return h.dofPos }
func (h *fakeHost) DOFVelocities() *mat.Dense { return h.dofVel }
func (h *fakeHost) RigidBodyStates() *tensor.Dense { return h.bodies }
func (h *fakeHost) ContactForces() *tensor.Dense { return h.contacts }
func (h *fakeHost) NumEnvironments() int { return len(h.envActors) }
func (h *fakeHost) BodyNames() []string { return fakeBodies }
func (h *fakeHost) DOFNames() []string { return fakeDOFs }
func (h *fakeHost) EnvironmentActors() [][]int { return h.envActors }

func (h *fakeHost) MotorEfforts() []float64 {
	return []float64{100, 100, 100, 50}
}

func (h *fakeHost) DOFLimits() (lower, upper []float64) {
	return []float64{-1, -1, -1, 0}, []float64{1, 1, 1, 2}
}

func (h *fakeHost) SetRootStatesIndexed(states *mat.Dense,
	actorIDs []int) error {
	r, _ := h.roots.Dims()
	if err := env.CheckDims("roots", states, r, StateWidth); err != nil {
		return err
	}
	matutils.ScatterRows(h.roots, states, actorIDs)
	return nil
}

func (h *fakeHost) SetDOFStatesIndexed(pos, vel *mat.Dense,
	envIDs []int) error {
	matutils.ScatterRows(h.dofPos, pos, envIDs)
	matutils.ScatterRows(h.dofVel, vel, envIDs)
	return nil
}

func (h *fakeHost) SetDOFPositionTargets(targets *mat.Dense) error {
	h.targets = mat.DenseCopyOf(targets)
	return nil
}

func (h *fakeHost) SetDOFActuationForces(forces *mat.Dense) error {
	h.forces = mat.DenseCopyOf(forces)
	return nil
}

func (h *fakeHost) Simulate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.simulate != nil {
		h.simulate(h)
	}
	return nil
}

// setBody sets the height and contact force of body b in environment e
func (h *fakeHost) setBody(e, b int, height, force float64) {
	bodies, _ := tensorutils.Float64s(h.bodies)
	contacts, _ := tensorutils.Float64s(h.contacts)
	bodies[tensorutils.Index3(len(fakeBodies), StateWidth, e, b, 2)] = height
	contacts[tensorutils.Index3(len(fakeBodies), ContactWidth, e, b, 2)] = force
}

func fakeConfig(envs int) Config {
	c := DefaultConfig()
	c.NumEnvironments = envs
	c.JointOffsets = []int{0, 3, 4}
	c.HingeAxes = []int{1}
	c.KeyBodyNames = []string{"hand", "foot"}
	c.ContactAllowedBodyNames = []string{"foot"}
	c.InitialDOFPositions = map[string]float64{"knee": 0.5}
	c.MaxEpisodeLength = 10
	c.ObserveAuxiliary = true
	return c
}

// fakeWidth is the observation width of fakeConfig on a fakeHost
const fakeWidth = 1 + 6 + 3 + 3 + (6 + 1) + 4 + 3*2 + 3*1

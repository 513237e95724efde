package humanoid

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	env "github.com/samuelfneumann/golocomotion/environment"
	ts "github.com/samuelfneumann/golocomotion/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	host := newFakeHost(3)
	h, first, err := New(fakeConfig(3), host, NewApproachBall(0, 1e-6))
	require.NoError(t, err)

	assert.Equal(t, fakeWidth, h.ObservationWidth())
	assert.Equal(t, len(fakeDOFs), h.ActionWidth())
	assert.Equal(t, fakeWidth, h.ObservationSpec().Width())
	assert.Equal(t, len(fakeDOFs), h.ActionSpec().Width())

	rows, cols := first.Observation.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, fakeWidth, cols)
	assert.Equal(t, []int{0, 0, 0}, first.Number)
	for e := 0; e < 3; e++ {
		assert.True(t, first.At(e).First())

		// Initial pose with zero velocities
		assert.Equal(t, []float64{0, 0, 0, 0.5}, host.dofPos.RawRowView(e))
		assert.Equal(t, 0.0, host.roots.At(2*e, LinVelOffset))
	}
}

func TestObservationWidthInvariant(t *testing.T) {
	for _, envs := range []int{1, 2, 7} {
		for _, aux := range []bool{false, true} {
			c := fakeConfig(envs)
			c.ObserveAuxiliary = aux
			h, first, err := New(c, newFakeHost(envs), NewForward(0.1, 0))
			require.NoError(t, err)

			want := fakeWidth
			if !aux {
				want -= 3
			}
			_, cols := first.Observation.Dims()
			assert.Equal(t, want, h.ObservationWidth())
			assert.Equal(t, want, cols)

			batch, err := h.Step(context.Background(),
				mat.NewDense(envs, h.ActionWidth(), nil))
			require.NoError(t, err)
			_, cols = batch.Observation.Dims()
			assert.Equal(t, want, cols)
		}
	}
}

func TestNewConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"unknown key body", func(c *Config) {
			c.KeyBodyNames = []string{"hand", "tail"}
		}},
		{"unknown contact body", func(c *Config) {
			c.ContactAllowedBodyNames = []string{"wheel"}
		}},
		{"unknown initial dof", func(c *Config) {
			c.InitialDOFPositions = map[string]float64{"elbow": 1}
		}},
		{"two dof span", func(c *Config) {
			c.JointOffsets = []int{0, 2, 4}
		}},
		{"decreasing offsets", func(c *Config) {
			c.JointOffsets = []int{0, 3, 2}
		}},
		{"offsets exceed dofs", func(c *Config) {
			c.JointOffsets = []int{0, 3, 4, 5}
		}},
		{"hinge axes count", func(c *Config) {
			c.HingeAxes = []int{1, 2}
		}},
		{"declared width", func(c *Config) {
			c.NumObservations = fakeWidth + 1
		}},
		{"environment count", func(c *Config) {
			c.NumEnvironments = 3
		}},
		{"step limit", func(c *Config) {
			c.MaxEpisodeLength = 0
		}},
	}

	for _, test := range tests {
		c := fakeConfig(2)
		test.modify(&c)
		_, _, err := New(c, newFakeHost(2), NewForward(0.1, 0))
		assert.Truef(t, errors.Is(err, env.ErrConfiguration),
			"%v: got error %v", test.name, err)
	}

	_, _, err := New(fakeConfig(2), newFakeHost(2), nil)
	assert.True(t, errors.Is(err, env.ErrConfiguration))

	c := fakeConfig(2)
	c.NumObservations = fakeWidth
	_, _, err = New(c, newFakeHost(2), NewForward(0.1, 0))
	assert.NoError(t, err)
}

// Four identical environments that never fall all reach the step
// limit together and are reset right after
func TestStepLimitEndToEnd(t *testing.T) {
	const envs = 4
	host := newFakeHost(envs)
	h, _, err := New(fakeConfig(envs), host, NewApproachBall(0, 1e-6))
	require.NoError(t, err)

	actions := mat.NewDense(envs, h.ActionWidth(), nil)
	for step := 1; step <= 10; step++ {
		batch, err := h.Step(context.Background(), actions)
		require.NoError(t, err)

		for e := 0; e < envs; e++ {
			assert.Equal(t, step, batch.Number[e])
			assert.Equal(t, step == 10, batch.Reset[e], "step %v", step)
			assert.False(t, batch.Terminated[e])
		}
	}
	assert.Equal(t, []int{0, 0, 0, 0}, h.Progress())
}

func TestStepTerminatesFallenEnvironment(t *testing.T) {
	host := newFakeHost(3)
	h, _, err := New(fakeConfig(3), host, NewForward(0.1, 0))
	require.NoError(t, err)

	ctx := context.Background()
	actions := mat.NewDense(3, h.ActionWidth(), nil)
	for i := 0; i < 2; i++ {
		_, err := h.Step(ctx, actions)
		require.NoError(t, err)
	}

	// The torso of environment 1 hits the ground
	host.setBody(1, 1, 0.1, 20)
	batch, err := h.Step(ctx, actions)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, batch.Reset)
	assert.Equal(t, []bool{false, true, false}, batch.Terminated)
	assert.Equal(t, ts.TerminalStateReached, batch.At(1).EndType())
	assert.Equal(t, []int{3, 0, 3}, h.Progress())

	// Fall detection is suppressed on the first step after a reset
	batch, err = h.Step(ctx, actions)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, false}, batch.Terminated)

	batch, err = h.Step(ctx, actions)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, batch.Terminated)
}

func TestResetIdxIsolation(t *testing.T) {
	host := newFakeHost(3)
	h, _, err := New(fakeConfig(3), host, NewForward(0.1, 0))
	require.NoError(t, err)

	host.simulate = func(f *fakeHost) {
		rows, _ := f.roots.Dims()
		for i := 0; i < rows; i++ {
			f.roots.Set(i, 0, f.roots.At(i, 0)+0.25)
			f.roots.Set(i, LinVelOffset, 2.5)
		}
		for e := 0; e < 3; e++ {
			f.dofPos.Set(e, 0, f.dofPos.At(e, 0)+0.1)
			f.dofVel.Set(e, 3, 1)
		}
	}
	batch, err := h.Step(context.Background(),
		mat.NewDense(3, h.ActionWidth(), nil))
	require.NoError(t, err)
	for e := 0; e < 3; e++ {
		assert.InDelta(t, 2.5, batch.Reward.AtVec(e), 1e-9)
	}

	roots := mat.DenseCopyOf(host.roots)
	dofPos := mat.DenseCopyOf(host.dofPos)
	dofVel := mat.DenseCopyOf(host.dofVel)
	obs := h.Observation()
	progress := h.Progress()

	require.NoError(t, h.ResetIdx([]int{1}))

	for _, e := range []int{0, 2} {
		for _, row := range h.Actors().Env(e).All() {
			assert.Equal(t, roots.RawRowView(row), host.roots.RawRowView(row))
		}
		assert.Equal(t, dofPos.RawRowView(e), host.dofPos.RawRowView(e))
		assert.Equal(t, dofVel.RawRowView(e), host.dofVel.RawRowView(e))
		assert.Equal(t, obs.RawRowView(e), h.Observation().RawRowView(e))
		assert.Equal(t, progress[e], h.Progress()[e])
	}

	assert.Equal(t, 0, h.Progress()[1])
	assert.Equal(t, []float64{0, 0, 0, 0.5}, host.dofPos.RawRowView(1))
	assert.Equal(t, []float64{0, 0, 0, 0}, host.dofVel.RawRowView(1))
	assert.Equal(t, 1.0, host.roots.At(2, 0))
	assert.Equal(t, 0.0, host.roots.At(2, LinVelOffset))
	assert.Equal(t, 4.0, host.roots.At(3, 0))
	assert.NotEqual(t, obs.RawRowView(1), h.Observation().RawRowView(1))

	err = h.ResetIdx([]int{3})
	assert.Error(t, err)
}

func TestStepShapeMismatch(t *testing.T) {
	host := newFakeHost(2)
	h, _, err := New(fakeConfig(2), host, NewForward(0.1, 0))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = h.Step(ctx, mat.NewDense(2, h.ActionWidth()+1, nil))
	assert.True(t, errors.Is(err, env.ErrShapeMismatch))

	obs := h.Observation()
	progress := h.Progress()
	host.dofVel = mat.NewDense(2, len(fakeDOFs)-1, nil)
	_, err = h.Step(ctx, mat.NewDense(2, h.ActionWidth(), nil))
	assert.True(t, errors.Is(err, env.ErrShapeMismatch))
	assert.Equal(t, obs, h.Observation())
	assert.Equal(t, progress, h.Progress())
}

func TestStepCancelled(t *testing.T) {
	h, _, err := New(fakeConfig(2), newFakeHost(2), NewForward(0.1, 0))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Step(ctx, mat.NewDense(2, h.ActionWidth(), nil))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStepActuation(t *testing.T) {
	host := newFakeHost(2)
	h, _, err := New(fakeConfig(2), host, NewForward(0.1, 0))
	require.NoError(t, err)

	actions := mat.NewDense(2, h.ActionWidth(), []float64{
		0, 0, 0, 0,
		1, 0, 0, -1,
	})
	_, err = h.Step(context.Background(), actions)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 0, 0, 1}, host.targets.RawRowView(0),
		1e-12)
	assert.InDeltaSlice(t, []float64{3.141592653589793, 0, 0, -0.4},
		host.targets.RawRowView(1), 1e-12)
	assert.Nil(t, host.forces)

	c := fakeConfig(2)
	c.PositionControl = false
	c.PowerScale = 0.5
	host = newFakeHost(2)
	h, _, err = New(c, host, NewForward(0.1, 0))
	require.NoError(t, err)
	_, err = h.Step(context.Background(), actions)
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 0, 0, -25}, host.forces.RawRowView(1))
}

func BenchmarkStep(b *testing.B) {
	const envs = 256
	h, _, err := New(fakeConfig(envs), newFakeHost(envs), NewApproachBall(0, 1e-6))
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	actions := mat.NewDense(envs, h.ActionWidth(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Step(ctx, actions); err != nil {
			b.Fatal(err)
		}
	}
}

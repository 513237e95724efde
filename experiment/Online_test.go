package experiment

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/golocomotion/agent"
	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"github.com/samuelfneumann/golocomotion/environment/humanoid/kinematic"
	"github.com/samuelfneumann/golocomotion/experiment/checkpointer"
	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHumanoid(t *testing.T, envs, maxLength int) *humanoid.Humanoid {
	simConfig := kinematic.DefaultConfig()
	simConfig.NumEnvironments = envs
	sim, err := kinematic.New(kinematic.DefaultModel(), simConfig)
	require.NoError(t, err)

	c := humanoid.DefaultConfig()
	c.NumEnvironments = envs
	c.MaxEpisodeLength = maxLength
	h, _, err := humanoid.New(c, sim, humanoid.NewApproachBall(0, 1e-3))
	require.NoError(t, err)
	return h
}

func TestOnline(t *testing.T) {
	dir := t.TempDir()
	h := newHumanoid(t, 2, 5)
	lengths := trackers.NewEpisodeLength(filepath.Join(dir, "lengths.gob"))
	returns := trackers.NewReturn(filepath.Join(dir, "returns.gob"))

	g := agent.NewGaussian(1, 2, h.ObservationWidth(), h.ActionSpec(), 0.01)
	check := checkpointer.NewNStep(5, g, checkpointer.FilenameEnumerator(0,
		filepath.Join(dir, "policy"), ".gob"))

	exp, err := Config{Type: OnlineExp, MaxSteps: 12}.CreateExp(h, g,
		[]trackers.Tracker{lengths}, []checkpointer.Checkpointer{check})
	require.NoError(t, err)
	exp.Register(returns)

	var out bytes.Buffer
	online := exp.(*Online)
	online.ShowProgress(&out, 10)

	require.NoError(t, exp.Run(context.Background()))
	assert.Equal(t, 12, online.Steps())
	assert.Equal(t, 4, online.Episodes())
	assert.True(t, strings.Contains(out.String(), "100.00%"))

	assert.Equal(t, []float64{5, 5, 5, 5}, lengths.Data())
	assert.Len(t, returns.Data(), 4)

	require.NoError(t, exp.Save())
	saved, err := trackers.LoadData(filepath.Join(dir, "lengths.gob"))
	require.NoError(t, err)
	assert.Equal(t, lengths.Data(), saved)

	restored := agent.NewGaussian(2, 2, h.ObservationWidth(), h.ActionSpec(), 1)
	require.NoError(t, checkpointer.Load(filepath.Join(dir, "policy2.gob"),
		restored))
}

func TestOnlineCancelled(t *testing.T) {
	h := newHumanoid(t, 1, 5)
	online := NewOnline(h, agent.NewZero(1, h.ActionWidth()), 10, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := online.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, online.Steps())
}

func TestCreateExpErrors(t *testing.T) {
	h := newHumanoid(t, 1, 5)
	a := agent.NewZero(1, h.ActionWidth())

	_, err := Config{Type: "offline", MaxSteps: 1}.CreateExp(h, a, nil, nil)
	assert.Error(t, err)
	_, err = Config{Type: OnlineExp, MaxSteps: -1}.CreateExp(h, a, nil, nil)
	assert.Error(t, err)
}

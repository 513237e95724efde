package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
humanoid:
  numEnvironments: 2
  maxEpisodeLength: 5
agent:
  type: gaussian
  std: 0.01
checkpointInterval: 5
`

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(args ...string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.Execute()
}

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	c, err = LoadConfig(writeConfig(t, `
humanoid:
  keyBodyNames: [right_hand]
task:
  type: forward
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"right_hand"}, c.Humanoid.KeyBodyNames)
	assert.Equal(t, humanoid.DefaultConfig().MaxEpisodeLength,
		c.Humanoid.MaxEpisodeLength)
	assert.Equal(t, forwardTask, c.Task.Type)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSimulatorConfig(t *testing.T) {
	c := DefaultConfig()
	c.Humanoid.NumEnvironments = 7
	sim := c.SimulatorConfig()

	assert.Equal(t, 7, sim.NumEnvironments)
	assert.Equal(t, c.Humanoid.Dt, sim.Dt)
	assert.Equal(t, c.Humanoid.ControlFrequencyInv, sim.Substeps)
}

func TestNewTask(t *testing.T) {
	c := DefaultConfig()
	task, err := c.NewTask()
	require.NoError(t, err)
	assert.IsType(t, humanoid.ApproachBall{}, task)

	c.Task.Type = forwardTask
	task, err = c.NewTask()
	require.NoError(t, err)
	assert.IsType(t, humanoid.Forward{}, task)

	c.Task.Type = "dribble"
	_, err = c.NewTask()
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, execute("config", "--out", out))

	c, err := LoadConfig(out)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestRunAndPlotCommands(t *testing.T) {
	save := t.TempDir()
	err := execute("run", "--config", writeConfig(t, testConfig),
		"--steps", "12", "--save", save, "--log_level", "warning")
	require.NoError(t, err)

	lengths, err := trackers.LoadData(filepath.Join(save, LengthsFile))
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5, 5}, lengths)

	returns, err := trackers.LoadData(filepath.Join(save, ReturnsFile))
	require.NoError(t, err)
	assert.Len(t, returns, 4)
	assert.FileExists(t, filepath.Join(save, CheckpointFile+"2.gob"))

	image := filepath.Join(save, "lengths.png")
	require.NoError(t, execute("plot", "--out", image, "--window", "2",
		filepath.Join(save, LengthsFile), filepath.Join(save, ReturnsFile)))
	assert.FileExists(t, image)
}

func TestRunErrors(t *testing.T) {
	assert.Error(t, execute("run", "--policy", "greedy", "--steps", "1"))
	assert.Error(t, execute("run", "--envs", "0"))
	assert.Error(t, execute("run", "--log_format", "xml"))
	assert.Error(t, execute("plot"))
}

func TestRunCancelled(t *testing.T) {
	c := DefaultConfig()
	c.Humanoid.NumEnvironments = 1
	c.Experiment.MaxSteps = 5

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	save := t.TempDir()
	require.NoError(t, Run(ctx, c, save, nil))
	assert.FileExists(t, filepath.Join(save, ReturnsFile))
}

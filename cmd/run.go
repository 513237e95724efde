package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/golocomotion/agent"
	env "github.com/samuelfneumann/golocomotion/environment"
	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"github.com/samuelfneumann/golocomotion/environment/humanoid/kinematic"
	"github.com/samuelfneumann/golocomotion/environment/wrappers"
	"github.com/samuelfneumann/golocomotion/experiment"
	"github.com/samuelfneumann/golocomotion/experiment/checkpointer"
	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gonum.org/v1/gonum/stat"
)

var (
	runEnvsKey     = "envs"
	runStepsKey    = "steps"
	runPolicyKey   = "policy"
	runSeedKey     = "seed"
	runTaskKey     = "task"
	runSaveKey     = "save"
	runProgressKey = "progress"
)

// Names of the files written to the save directory
const (
	ReturnsFile    = "returns.gob"
	LengthsFile    = "lengths.gob"
	CheckpointFile = "policy"
)

func newRunCommand() *cobra.Command {
	runViper := viper.New()

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an agent in the kinematic humanoid environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := LoadConfig(runViper.GetString(configFileKey))
			if err != nil {
				return err
			}
			applyRunOverrides(runViper, &c)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			interruptChan := make(chan os.Signal, 1)
			signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(interruptChan)
			go func() {
				select {
				case <-interruptChan:
					log.Debug("received interruption signal")
					cancel()
				case <-ctx.Done():
				}
			}()

			var progress io.Writer
			if runViper.GetBool(runProgressKey) {
				progress = cmd.ErrOrStderr()
			}
			return Run(ctx, c, runViper.GetString(runSaveKey), progress)
		},
	}

	runCmd.Flags().String(configFileKey, "",
		"Configuration file overriding the defaults")
	runCmd.Flags().Int(runEnvsKey, 0, "Number of environments")
	runCmd.Flags().Int(runStepsKey, 0, "Number of batched steps to run")
	runCmd.Flags().String(runPolicyKey, "", "Agent as one of "+
		"[zero uniform gaussian]")
	runCmd.Flags().Uint64(runSeedKey, 0, "Seed of the agent and simulator")
	runCmd.Flags().String(runTaskKey, "", "Task as one of [approach forward]")
	runCmd.Flags().String(runSaveKey, "",
		"Directory to save episode returns, lengths and checkpoints to")
	runCmd.Flags().Bool(runProgressKey, false, "Display a progress bar")
	runCmd.Flags().SortFlags = false

	_ = runViper.BindEnv(runSeedKey, "GOLOCOMOTION_SEED")
	_ = runViper.BindPFlags(runCmd.Flags())

	return runCmd
}

// applyRunOverrides overrides c with the flags explicitly set on the
// command line
func applyRunOverrides(v *viper.Viper, c *Config) {
	if v.IsSet(runEnvsKey) {
		c.Humanoid.NumEnvironments = v.GetInt(runEnvsKey)
	}
	if v.IsSet(runStepsKey) {
		c.Experiment.MaxSteps = v.GetInt(runStepsKey)
	}
	if v.IsSet(runPolicyKey) {
		c.Agent.Type = agent.Type(v.GetString(runPolicyKey))
	}
	if v.IsSet(runSeedKey) {
		c.Agent.Seed = v.GetUint64(runSeedKey)
		c.Simulator.Seed = v.GetUint64(runSeedKey)
	}
	if v.IsSet(runTaskKey) {
		c.Task.Type = v.GetString(runTaskKey)
	}
}

// Run builds the environment, agent and experiment described by c and
// runs the experiment until it finishes or ctx is cancelled. Tracked
// data is saved to saveDir unless it is empty. A progress bar is
// written to progress unless it is nil.
func Run(ctx context.Context, c Config, saveDir string,
	progress io.Writer) error {
	sim, err := kinematic.New(kinematic.DefaultModel(), c.SimulatorConfig())
	if err != nil {
		return errors.Wrap(err, "run: could not create simulator")
	}
	task, err := c.NewTask()
	if err != nil {
		return errors.Wrap(err, "run")
	}
	h, _, err := humanoid.New(c.Humanoid, sim, task)
	if err != nil {
		return errors.Wrap(err, "run: could not create environment")
	}

	var e env.Observable = h
	if c.AverageRewardRate > 0 {
		e, err = wrappers.NewAverageReward(h, 0, c.AverageRewardRate)
		if err != nil {
			return errors.Wrap(err, "run")
		}
	}

	a, err := agent.New(c.Agent, e)
	if err != nil {
		return errors.Wrap(err, "run: could not create agent")
	}

	returns := trackers.NewReturn(filepath.Join(saveDir, ReturnsFile))
	lengths := trackers.NewEpisodeLength(filepath.Join(saveDir, LengthsFile))
	var checks []checkpointer.Checkpointer
	if saveDir != "" {
		if err := os.MkdirAll(saveDir, 0755); err != nil {
			return errors.Wrap(err, "run: could not create save directory")
		}
		if s, ok := a.(checkpointer.Serializable); ok &&
			c.CheckpointInterval > 0 {
			next := checkpointer.FilenameEnumerator(0,
				filepath.Join(saveDir, CheckpointFile), ".gob")
			checks = append(checks, checkpointer.NewNStep(
				c.CheckpointInterval, s, next))
		}
	}

	exp, err := c.Experiment.CreateExp(e, a,
		[]trackers.Tracker{returns, lengths}, checks)
	if err != nil {
		return errors.Wrap(err, "run")
	}
	if online, ok := exp.(*experiment.Online); ok && progress != nil {
		online.ShowProgress(progress, 40)
	}

	log.WithFields(logrus.Fields{
		"envs":   c.Humanoid.NumEnvironments,
		"steps":  c.Experiment.MaxSteps,
		"agent":  c.Agent.Type,
		"task":   c.Task.Type,
		"obsDim": h.ObservationWidth(),
	}).Info("starting experiment")

	err = exp.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info("interrupted by user")
	} else if err != nil {
		return errors.Wrap(err, "run")
	}

	if data := returns.Data(); len(data) > 0 {
		mean, std := stat.MeanStdDev(data, nil)
		log.WithFields(logrus.Fields{
			"episodes":   len(data),
			"meanReturn": mean,
			"stdReturn":  std,
			"meanLength": stat.Mean(lengths.Data(), nil),
		}).Info("episode summary")
	}

	if saveDir != "" {
		if err := exp.Save(); err != nil {
			return errors.Wrap(err, "run")
		}
	}
	return nil
}

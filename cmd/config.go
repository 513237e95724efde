package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/samuelfneumann/golocomotion/agent"
	"github.com/samuelfneumann/golocomotion/environment/humanoid"
	"github.com/samuelfneumann/golocomotion/environment/humanoid/kinematic"
	"github.com/samuelfneumann/golocomotion/experiment"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	approachTask = "approach"
	forwardTask  = "forward"
)

// TaskConfig selects the reward of the humanoid task
type TaskConfig struct {
	Type          string  `json:"type" mapstructure:"type" yaml:"type"`
	MoveTolerance float64 `json:"moveTolerance" mapstructure:"moveTolerance" yaml:"moveTolerance"`
	AliveBonus    float64 `json:"aliveBonus" mapstructure:"aliveBonus" yaml:"aliveBonus"`
}

// Config is the complete configuration of a run. The number of
// environments and the time step of the simulator are taken from the
// humanoid configuration.
//
// Keys are case-insensitive, so the DOF names of InitialDOFPositions
// must be lower case.
type Config struct {
	Humanoid   humanoid.Config   `json:"humanoid" mapstructure:"humanoid" yaml:"humanoid"`
	Simulator  kinematic.Config  `json:"simulator" mapstructure:"simulator" yaml:"simulator"`
	Task       TaskConfig        `json:"task" mapstructure:"task" yaml:"task"`
	Agent      agent.Config      `json:"agent" mapstructure:"agent" yaml:"agent"`
	Experiment experiment.Config `json:"experiment" mapstructure:"experiment" yaml:"experiment"`

	// AverageRewardRate enables differential rewards with the given
	// learning rate when positive
	AverageRewardRate float64 `json:"averageRewardRate" mapstructure:"averageRewardRate" yaml:"averageRewardRate"`

	// CheckpointInterval is the number of steps between policy
	// checkpoints. Only saved policies are checkpointed.
	CheckpointInterval int `json:"checkpointInterval" mapstructure:"checkpointInterval" yaml:"checkpointInterval"`
}

// DefaultConfig returns the default run configuration
func DefaultConfig() Config {
	return Config{
		Humanoid:  humanoid.DefaultConfig(),
		Simulator: kinematic.DefaultConfig(),
		Task: TaskConfig{
			Type:          approachTask,
			MoveTolerance: 1e-3,
		},
		Agent: agent.Config{
			Type: agent.UniformType,
			Std:  0.1,
		},
		Experiment: experiment.Config{
			Type:     experiment.OnlineExp,
			MaxSteps: 1000,
		},
		CheckpointInterval: 0,
	}
}

// LoadConfig returns the default configuration overridden by the YAML
// or JSON file at path. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return Config{}, errors.Wrap(err, "loadConfig: could not encode "+
			"defaults")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, errors.Wrap(err, "loadConfig: could not read "+
			"defaults")
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "loadConfig: could not read "+
				"%q", path)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "loadConfig: could not decode")
	}
	return c, nil
}

// SimulatorConfig returns the simulator configuration matching the
// humanoid configuration
func (c Config) SimulatorConfig() kinematic.Config {
	sim := c.Simulator
	sim.NumEnvironments = c.Humanoid.NumEnvironments
	sim.Dt = c.Humanoid.Dt
	sim.Substeps = c.Humanoid.ControlFrequencyInv
	return sim
}

// NewTask returns the task described by the configuration
func (c Config) NewTask() (humanoid.Task, error) {
	switch c.Task.Type {
	case approachTask:
		if c.Task.MoveTolerance < 0 {
			return nil, fmt.Errorf("newTask: move tolerance must be "+
				"non-negative, got %v", c.Task.MoveTolerance)
		}
		return humanoid.NewApproachBall(0, c.Task.MoveTolerance), nil

	case forwardTask:
		if c.Humanoid.ControlDt() <= 0 {
			return nil, fmt.Errorf("newTask: control time step must be "+
				"positive, got %v", c.Humanoid.ControlDt())
		}
		return humanoid.NewForward(c.Humanoid.ControlDt(),
			c.Task.AliveBonus), nil
	}
	return nil, fmt.Errorf("newTask: unknown task %q, expecting %q or %q",
		c.Task.Type, approachTask, forwardTask)
}

var configFileKey = "config"
var configOutKey = "out"

func newConfigCommand() *cobra.Command {
	configViper := viper.New()

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the run configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := LoadConfig(configViper.GetString(configFileKey))
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(c)
			if err != nil {
				return errors.Wrap(err, "config")
			}

			out := configViper.GetString(configOutKey)
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0644)
		},
	}

	configCmd.Flags().String(configFileKey, "",
		"Configuration file overriding the defaults")
	configCmd.Flags().String(configOutKey, "",
		"File to write the configuration to instead of stdout")
	_ = configViper.BindPFlags(configCmd.Flags())

	return configCmd
}

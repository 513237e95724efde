// Package cmd implements the golocomotion command line interface
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.WithField("component", "cli")

var (
	logLevelKey  = "log_level"
	logFormatKey = "log_format"
	logFileKey   = "log_file"
)

// NewRootCommand returns the golocomotion command with all of its
// subcommands
func NewRootCommand() *cobra.Command {
	rootViper := viper.New()

	rootCmd := &cobra.Command{
		Use:           "golocomotion",
		Short:         "Batched humanoid locomotion environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return configureLog(rootViper)
		},
	}

	rootViper.SetDefault(logLevelKey, logrus.InfoLevel.String())
	_ = rootViper.BindEnv(logLevelKey, "GOLOCOMOTION_LOG_LEVEL")
	rootCmd.PersistentFlags().String(
		logLevelKey,
		rootViper.GetString(logLevelKey),
		fmt.Sprintf("Minimum logging level as one of %v", expectedLogLevels),
	)

	_ = rootViper.BindEnv(logFormatKey, "GOLOCOMOTION_LOG_FORMAT")
	rootCmd.PersistentFlags().String(
		logFormatKey,
		rootViper.GetString(logFormatKey),
		fmt.Sprintf("Log format as one of %v, default is %q, when a log "+
			"file is specified it is %q", expectedLogFormats, text, json),
	)

	_ = rootViper.BindEnv(logFileKey, "GOLOCOMOTION_LOG_FILE")
	rootCmd.PersistentFlags().String(
		logFileKey,
		rootViper.GetString(logFileKey),
		"Log file output",
	)

	rootCmd.PersistentFlags().SortFlags = false
	_ = rootViper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newPlotCommand())

	return rootCmd
}

// Execute runs the golocomotion command. This is called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

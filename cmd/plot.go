package cmd

import (
	"path/filepath"
	"strings"

	"github.com/samuelfneumann/golocomotion/experiment/trackers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	plotOutKey    = "out"
	plotTitleKey  = "title"
	plotYLabelKey = "ylabel"
	plotWindowKey = "window"
)

func newPlotCommand() *cobra.Command {
	plotViper := viper.New()

	plotCmd := &cobra.Command{
		Use:   "plot DATA_FILE...",
		Short: "Plot episode data saved by the run command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			series := make([]trackers.Series, 0, len(args))
			for _, path := range args {
				data, err := trackers.LoadData(path)
				if err != nil {
					return err
				}
				name := strings.TrimSuffix(filepath.Base(path),
					filepath.Ext(path))
				series = append(series, trackers.Series{Name: name,
					Data: data})
			}

			out := plotViper.GetString(plotOutKey)
			log.WithField("path", out).Info("saving plot")
			return trackers.Plot(out, plotViper.GetString(plotTitleKey),
				plotViper.GetString(plotYLabelKey),
				plotViper.GetInt(plotWindowKey), series...)
		},
	}

	plotCmd.Flags().String(plotOutKey, "plot.png",
		"Image file to save the plot to")
	plotCmd.Flags().String(plotTitleKey, "", "Title of the plot")
	plotCmd.Flags().String(plotYLabelKey, "Return", "Label of the y axis")
	plotCmd.Flags().Int(plotWindowKey, 10,
		"Number of episodes to average over")
	_ = plotViper.BindPFlags(plotCmd.Flags())

	return plotCmd
}

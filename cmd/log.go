package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type logFormat string

const (
	text logFormat = "text"
	json logFormat = "json"
)

var expectedLogFormats = []logFormat{text, json}

func isValidLogFormat(format logFormat) bool {
	for _, f := range expectedLogFormats {
		if format == f {
			return true
		}
	}
	return false
}

var expectedLogLevels = []string{
	logrus.TraceLevel.String(),
	logrus.DebugLevel.String(),
	logrus.InfoLevel.String(),
	logrus.WarnLevel.String(),
	logrus.ErrorLevel.String(),
}

// configureLog sets up the global logrus logger from the log flags
func configureLog(cfg *viper.Viper) error {
	desiredFormat := text
	if cfg.GetString(logFormatKey) != "" {
		desiredFormat = logFormat(cfg.GetString(logFormatKey))
		if !isValidLogFormat(desiredFormat) {
			return fmt.Errorf("invalid log format specified %q expecting "+
				"one of %v", desiredFormat, expectedLogFormats)
		}
	} else if cfg.GetString(logFileKey) != "" {
		desiredFormat = json
	}

	switch desiredFormat {
	case json:
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case text:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if path := cfg.GetString(logFileKey); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND,
			0666)
		if err != nil {
			return fmt.Errorf("unable to open log file %q: %w", path, err)
		}
		log.WithField("path", path).Info("logger setup with a file output")
		logrus.SetOutput(file)
	}

	level, err := logrus.ParseLevel(cfg.GetString(logLevelKey))
	if err != nil {
		return fmt.Errorf("invalid log level specified %q expecting one "+
			"of %v", cfg.GetString(logLevelKey), expectedLogLevels)
	}
	logrus.SetLevel(level)
	return nil
}

// Package logging configures the logrus logger shared by the harness.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger for CLI use
func Setup(level string, output io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	if output == nil {
		output = os.Stderr
	}
	logrus.SetOutput(output)
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	return nil
}

// For returns a logger entry scoped to a component
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

package logger

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Log is the main logger of our application, it writes to stderr until Init
// points it at the log file
var Log = logrus.New()

// Init sends output to the configured log file, or stdout in development
func Init() error {
	Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if os.Getenv("NODE_ENV") == "development" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	logpath := viper.GetString("log.path")
	f, err := os.OpenFile(logpath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	Log.SetOutput(f)
	Log.WithField("path", logpath).Info("logging to file")
	return nil
}

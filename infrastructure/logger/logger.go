package logger

import (
	"os"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

var logger = log.New()

func init() {
	logger.Out = os.Stdout
	logger.Formatter = &log.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
	}
	level := log.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = log.DebugLevel
	}
	logger.SetLevel(level)
}

// GetLogger returns an entry enriched with the caller location so background
// sync failures can be traced back to the worker that produced them.
func GetLogger() *log.Entry {
	pc, file, line, _ := runtime.Caller(1)
	return logger.WithFields(log.Fields{
		"function": runtime.FuncForPC(pc).Name(),
		"file":     file,
		"line":     line,
	})
}

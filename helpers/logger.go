package helpers

import (
	"fmt"
	"os"
	"time"

	"sjsage522/cardwatch/logger"
)

// LoggerInterface defines the interface for logger implementations
type LoggerInterface interface {
	LogError(jobName string, err error)
	LogInfo(format string, args ...interface{})
}

// Logger sends job failures to the structured log and, when errorFile is
// set, appends them to a plain error log.
type Logger struct {
	errorFile string
	log       *logger.Logger
}

// NewLogger creates a new logger instance
func NewLogger(errorFile string, log *logger.Logger) *Logger {
	return &Logger{
		errorFile: errorFile,
		log:       log,
	}
}

// LogError logs an error with the job name and, if configured, to the error file
func (l *Logger) LogError(jobName string, err error) {
	l.log.Error().Str("job", jobName).Err(err).Msg("job failed")

	if l.errorFile == "" {
		return
	}

	f, fileErr := os.OpenFile(l.errorFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		l.log.Warn().Err(fileErr).Str("path", l.errorFile).Msg("failed to open error log")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, jobName, err.Error())
}

// LogInfo logs an informational message
func (l *Logger) LogInfo(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

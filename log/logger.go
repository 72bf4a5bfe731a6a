// Package log is a key/value logger built on logrus.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

const (
	timeFormat        = "2006-01-02T15:04:05.000Z07:00"
	errorKey          = "LOG_ERROR"
	defaultRotation   = 24 * time.Hour
	defaultMaxAge     = 7 * 24 * time.Hour
	defaultVerbosity  = logrus.InfoLevel
	maxVerbosityLevel = 6
)

var (
	logger = logrus.New()

	// JSONFormat json format
	JSONFormat = false
)

func init() {
	SetLogger(uint32(defaultVerbosity), false, true)
}

// SetLogger set log level, json format, color format
func SetLogger(vlevel uint32, jsonFormat, colorFormat bool) {
	if vlevel > maxVerbosityLevel {
		vlevel = maxVerbosityLevel
	}
	logger.SetLevel(logrus.Level(vlevel))
	JSONFormat = jsonFormat
	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timeFormat,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: timeFormat,
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
			DisableQuote:    true,
		})
	}
}

// SetLogFile set log file with rotation
func SetLogFile(logFile string, rotation, maxAge uint64) {
	if logFile == "" {
		return
	}
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		Fatal("create log dir failed", "dir", logDir, "err", err)
	}
	rotationTime := defaultRotation
	if rotation > 0 {
		rotationTime = time.Duration(rotation) * time.Hour
	}
	maxAgeTime := defaultMaxAge
	if maxAge > 0 {
		maxAgeTime = time.Duration(maxAge) * time.Hour
	}
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(rotationTime),
		rotatelogs.WithMaxAge(maxAgeTime),
	)
	if err != nil {
		Fatal("create rotate log writer failed", "logFile", logFile, "err", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, writer))
}

// SetOutput redirects log output
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// GetLevel current verbosity
func GetLevel() logrus.Level {
	return logger.GetLevel()
}

func withFields(ctx []interface{}) *logrus.Entry {
	fields := make(logrus.Fields, len(ctx)/2+1)
	for i := 0; i < len(ctx); i += 2 {
		if i+1 >= len(ctx) {
			fields[errorKey] = fmt.Sprintf("odd number of context values, missing value of %v", ctx[i])
			break
		}
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", ctx[i])
		}
		fields[key] = ctx[i+1]
	}
	return logger.WithFields(fields)
}

// Trace log
func Trace(msg string, ctx ...interface{}) {
	withFields(ctx).Trace(msg)
}

// Debug log
func Debug(msg string, ctx ...interface{}) {
	withFields(ctx).Debug(msg)
}

// Info log
func Info(msg string, ctx ...interface{}) {
	withFields(ctx).Info(msg)
}

// Warn log
func Warn(msg string, ctx ...interface{}) {
	withFields(ctx).Warn(msg)
}

// Error log
func Error(msg string, ctx ...interface{}) {
	withFields(ctx).Error(msg)
}

// Fatal log and exit
func Fatal(msg string, ctx ...interface{}) {
	withFields(ctx).Fatal(msg)
}

// Infof log
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf log
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Fatalf log and exit
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Printf print regardless of level
func Printf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}

// Println print regardless of level
func Println(args ...interface{}) {
	logger.Println(args...)
}

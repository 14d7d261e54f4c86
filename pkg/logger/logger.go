package logger

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	defaultLogger = Logger{zl: logr.Discard()}
)

// Logger is a thin sugar over logr for structured key/value logging.
type Logger struct {
	zl    logr.Logger
	level zapcore.Level
}

func InitProduction(logLevel string) {
	initLogger(zap.NewProductionConfig(), logLevel)
}

func InitDevelopment(logLevel string) {
	initLogger(zap.NewDevelopmentConfig(), logLevel)
}

// valid levels: debug, info, warn, error, fatal, panic
func initLogger(config zap.Config, level string) {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	l, _ := config.Build()
	defaultLogger = Logger{
		zl:    zapr.NewLogger(l).WithName("interop"),
		level: lvl,
	}
}

func GetLogger() Logger {
	return defaultLogger
}

func (l Logger) WithName(name string) Logger {
	return Logger{zl: l.zl.WithName(name), level: l.level}
}

func (l Logger) WithValues(keysAndValues ...interface{}) Logger {
	return Logger{zl: l.zl.WithValues(keysAndValues...), level: l.level}
}

func (l Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.zl.V(1).Info(msg, keysAndValues...)
}

func (l Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.zl.Info(msg, keysAndValues...)
}

func (l Logger) Warnw(msg string, err error, keysAndValues ...interface{}) {
	if err != nil {
		keysAndValues = append(keysAndValues, "error", err)
	}
	l.zl.Info(msg, keysAndValues...)
}

func (l Logger) Errorw(msg string, err error, keysAndValues ...interface{}) {
	l.zl.Error(err, msg, keysAndValues...)
}

func Debugw(msg string, keysAndValues ...interface{}) {
	defaultLogger.Debugw(msg, keysAndValues...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	defaultLogger.Infow(msg, keysAndValues...)
}

func Warnw(msg string, err error, keysAndValues ...interface{}) {
	defaultLogger.Warnw(msg, err, keysAndValues...)
}

func Errorw(msg string, err error, keysAndValues ...interface{}) {
	defaultLogger.Errorw(msg, err, keysAndValues...)
}

package logger

import (
	"fmt"

	"github.com/pion/logging"
	"go.uber.org/zap/zapcore"
)

var (
	// pion/webrtc, pion/ice
	defaultFactory logging.LoggerFactory
)

func LoggerFactory() logging.LoggerFactory {
	if defaultFactory == nil {
		defaultFactory = &factory{}
	}
	return defaultFactory
}

func SetLoggerFactory(lf logging.LoggerFactory) {
	defaultFactory = lf
}

type factory struct{}

func (f *factory) NewLogger(scope string) logging.LeveledLogger {
	l := GetLogger().WithName(scope)
	return &logAdapter{logger: l, level: l.level}
}

// implements logging.LeveledLogger
type logAdapter struct {
	logger Logger
	level  zapcore.Level
}

func (l *logAdapter) Trace(msg string) {
	// ignore trace
}

func (l *logAdapter) Tracef(format string, args ...interface{}) {
	// ignore trace
}

func (l *logAdapter) Debug(msg string) {
	if l.level > zapcore.DebugLevel {
		return
	}
	l.logger.Debugw(msg)
}

func (l *logAdapter) Debugf(format string, args ...interface{}) {
	if l.level > zapcore.DebugLevel {
		return
	}
	l.logger.Debugw(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Info(msg string) {
	if l.level > zapcore.InfoLevel {
		return
	}
	l.logger.Infow(msg)
}

func (l *logAdapter) Infof(format string, args ...interface{}) {
	if l.level > zapcore.InfoLevel {
		return
	}
	l.logger.Infow(fmt.Sprintf(format, args...))
}

func (l *logAdapter) Warn(msg string) {
	if l.level > zapcore.WarnLevel {
		return
	}
	l.logger.Warnw(msg, nil)
}

func (l *logAdapter) Warnf(format string, args ...interface{}) {
	if l.level > zapcore.WarnLevel {
		return
	}
	l.logger.Warnw(fmt.Sprintf(format, args...), nil)
}

func (l *logAdapter) Error(msg string) {
	l.logger.Errorw(msg, nil)
}

func (l *logAdapter) Errorf(format string, args ...interface{}) {
	l.logger.Errorw(fmt.Sprintf(format, args...), nil)
}

package kvik

import "github.com/sirupsen/logrus"

// LogrusLogger adapts a *logrus.Logger to the Logger interface. cmd/kvikctl
// injects it into its clients; client.New itself falls back to NopLogger
// when no Logger is configured. It's a thin adapter, not a dependency
// baked into the state machine itself.
type LogrusLogger struct {
	log *logrus.Logger
}

// NewLogrusLogger wraps log (or logrus.StandardLogger() if log is nil) as
// a Logger.
func NewLogrusLogger(log *logrus.Logger) *LogrusLogger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogrusLogger{log: log}
}

func (l *LogrusLogger) entry(tag string) *logrus.Entry {
	return l.log.WithField("tag", tag)
}

func (l *LogrusLogger) Debugf(tag, format string, args ...interface{}) {
	l.entry(tag).Debugf(format, args...)
}

func (l *LogrusLogger) Infof(tag, format string, args ...interface{}) {
	l.entry(tag).Infof(format, args...)
}

func (l *LogrusLogger) Warnf(tag, format string, args ...interface{}) {
	l.entry(tag).Warnf(format, args...)
}

func (l *LogrusLogger) Errorf(tag, format string, args ...interface{}) {
	l.entry(tag).Errorf(format, args...)
}

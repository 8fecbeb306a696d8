package raftlog

import "github.com/sirupsen/logrus"

type logrusLogger struct {
	e *logrus.Entry
}

// NewLogrus adapts a *logrus.Logger to Logger.
func NewLogrus(l *logrus.Logger) Logger {
	return logrusLogger{e: logrus.NewEntry(l)}
}

func (l logrusLogger) Info(args ...interface{}) { l.e.Info(args...) }
func (l logrusLogger) Infof(format string, args ...interface{}) { l.e.Infof(format, args...) }
func (l logrusLogger) Warningf(format string, args ...interface{}) { l.e.Warnf(format, args...) }
func (l logrusLogger) Errorf(format string, args ...interface{}) { l.e.Errorf(format, args...) }
func (l logrusLogger) Fatal(args ...interface{}) { l.e.Fatal(args...) }
func (l logrusLogger) V(int) Verbose { return l }

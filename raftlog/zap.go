package raftlog

import "go.uber.org/zap"

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap adapts a *zap.Logger to Logger.
func NewZap(l *zap.Logger) Logger {
	return zapLogger{s: l.Sugar()}
}

func (l zapLogger) Info(args ...interface{}) { l.s.Info(args...) }
func (l zapLogger) Infof(format string, args ...interface{}) { l.s.Infof(format, args...) }
func (l zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l zapLogger) Errorf(format string, args ...interface{}) { l.s.Errorf(format, args...) }
func (l zapLogger) Fatal(args ...interface{}) { l.s.Fatal(args...) }
func (l zapLogger) V(int) Verbose { return l }

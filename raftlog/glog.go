package raftlog

import "github.com/golang/glog"

type glogLogger struct{}

// NewGlog returns a Logger backed by glog.
func NewGlog() Logger { return glogLogger{} }

func (glogLogger) Info(args ...interface{}) { glog.Info(args...) }
func (glogLogger) Infof(format string, args ...interface{}) { glog.Infof(format, args...) }
func (glogLogger) Warningf(format string, args ...interface{}) { glog.Warningf(format, args...) }
func (glogLogger) Errorf(format string, args ...interface{}) { glog.Errorf(format, args...) }
func (glogLogger) Fatal(args ...interface{}) { glog.Fatal(args...) }
func (glogLogger) V(level int) Verbose { return glogVerbose{l: glog.V(glog.Level(level))} }

type glogVerbose struct {
	l glog.Verbose
}

func (v glogVerbose) Infof(format string, args ...interface{}) {
	if v.l {
		glog.Infof(format, args...)
	}
}

// Package raftlog defines the logging seam used across the driver, WAL,
// snapshotter and transport packages, and adapts it to the three logging
// libraries pulled in for this project: zap, logrus and glog. Components take
// a Logger rather than a concrete backend so the choice of backend stays an
// assembly-time decision (see cmd/server).
package raftlog

// Verbose gates V(level) calls the way glog/klog do.
type Verbose interface {
	Infof(format string, args ...interface{})
}

// Logger is the logging seam. It intentionally mirrors the small surface the
// driver actually calls: leveled, printf-style logging plus a verbosity gate
// and a Fatal that must not return.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	V(level int) Verbose
}

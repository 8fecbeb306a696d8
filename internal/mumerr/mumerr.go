// Package mumerr enumerates the error taxonomy shared by the WAL, snapshot
// and driver packages: I/O, serialization, integrity, path, transport,
// consensus, text and timer failures, each wrapped with github.com/pkg/errors
// so callers can still errors.Is/errors.As through to the underlying cause.
package mumerr

import "github.com/pkg/errors"

// Kind classifies a failure without naming a concrete Go type.
type Kind int

const (
	KindIO Kind = iota
	KindSerialization
	KindIntegrity
	KindPath
	KindTransport
	KindConsensus
	KindText
	KindTimer
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindSerialization:
		return "serialization"
	case KindIntegrity:
		return "integrity"
	case KindPath:
		return "path"
	case KindTransport:
		return "transport"
	case KindConsensus:
		return "consensus"
	case KindText:
		return "text"
	case KindTimer:
		return "timer"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with the underlying cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string { return e.Kind.String() + ": " + e.cause.Error() }
func (e *Error) Unwrap() error { return e.cause }
func (e *Error) Cause() error { return e.cause }

// Wrap builds an *Error of the given kind, adding msg and a stack trace via
// pkg/errors.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, cause: errors.Wrap(cause, msg)}
}

func IO(cause error, msg string) error { return Wrap(KindIO, cause, msg) }
func Serialization(cause error, msg string) error { return Wrap(KindSerialization, cause, msg) }
func Integrity(cause error, msg string) error { return Wrap(KindIntegrity, cause, msg) }
func Path(cause error, msg string) error { return Wrap(KindPath, cause, msg) }
func Transport(cause error, msg string) error { return Wrap(KindTransport, cause, msg) }
func Consensus(cause error, msg string) error { return Wrap(KindConsensus, cause, msg) }
func Text(cause error, msg string) error { return Wrap(KindText, cause, msg) }
func Timer(cause error, msg string) error { return Wrap(KindTimer, cause, msg) }

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrCrcMismatch and ErrSnapshotMismatch are the two integrity sentinels the
// WAL and snapshotter raise; both are wrapped through Integrity() before
// reaching a caller so errors.Is still matches the sentinel underneath.
var (
	ErrCrcMismatch      = errors.New("crc mismatch")
	ErrSnapshotMismatch = errors.New("index marker does not match segment start")
)

// Package metrics instruments the driver (its raft message traffic, WAL
// writes, snapshots and applied index) with Prometheus collectors. Collectors are registered on an injected
// *prometheus.Registry rather than the global default so tests and
// multiple in-process nodes don't collide.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder is the seam the driver calls into; NewNop returns one
// that discards everything, used when a caller doesn't care to wire a
// registry (e.g. in unit tests).
type Recorder struct {
	RaftMessagesSent     *prometheus.CounterVec
	RaftMessageRecvTotal prometheus.Counter
	SnapshotDuration     prometheus.Histogram
	SnapshotTaskTotal    *prometheus.CounterVec
	WALSyncDuration      prometheus.Histogram
	AppliedIndex         prometheus.Gauge
}

// New registers a full set of collectors on reg and returns a Recorder
// backed by them.
func New(reg *prometheus.Registry) *Recorder {
	r := &Recorder{
		RaftMessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mum_server_raft_message_flush_total",
			Help: "Outbound raft messages handed to the transport, by message type.",
		}, []string{"type"}),
		RaftMessageRecvTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mum_server_raft_message_recv_total",
			Help: "Inbound raft messages received over the Raft RPC.",
		}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "mum_server_send_snapshot_duration_seconds",
			Help: "Time spent creating and saving a snapshot.",
		}),
		SnapshotTaskTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mum_server_snapshot_task_total",
			Help: "Snapshot tasks, partitioned by outcome.",
		}, []string{"result"}),
		WALSyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "mum_wal_sync_duration_seconds",
			Help: "Time spent writing a Ready batch to the WAL, including fsync when required.",
		}),
		AppliedIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mum_server_applied_index",
			Help: "Highest raft log index applied to the state machine.",
		}),
	}
	reg.MustRegister(
		r.RaftMessagesSent,
		r.RaftMessageRecvTotal,
		r.SnapshotDuration,
		r.SnapshotTaskTotal,
		r.WALSyncDuration,
		r.AppliedIndex,
	)
	return r
}

// NewNop returns a Recorder whose collectors are never registered anywhere;
// safe to call from tests or callers who don't want a metrics endpoint.
func NewNop() *Recorder {
	return &Recorder{
		RaftMessagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mum_noop_sent"}, []string{"type"}),
		RaftMessageRecvTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mum_noop_recv",
		}),
		SnapshotDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Name: "mum_noop_snap_duration"}),
		SnapshotTaskTotal: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "mum_noop_snap_task"}, []string{"result"}),
		WALSyncDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Name: "mum_noop_wal_sync"}),
		AppliedIndex:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "mum_noop_applied_index"}),
	}
}

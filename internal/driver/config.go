package driver

import (
	"time"

	"github.com/dyxushuai/mumgo/metrics"
	"github.com/dyxushuai/mumgo/raftlog"
)

// The snapshot defaults trigger a checkpoint as soon as more than one entry
// has been applied since the last one, which exercises the snapshot path
// constantly; production deployments
// should raise both by orders of magnitude through Config.
const (
	DefaultSnapshotTrigCount      = 1
	DefaultSnapshotCatchupEntries = 1
	DefaultTickInterval           = 100 * time.Millisecond
)

// Config assembles a Driver. Peers maps every node id in the initial
// cluster (including this node's own id) to its host:port address.
type Config struct {
	ID                     uint64
	Peers                  map[uint64]string
	WALDir                 string
	SnapDir                string
	TickInterval           time.Duration
	SnapshotTrigCount      uint64
	SnapshotCatchupEntries uint64
	Logger                 raftlog.Logger
	Transport              Transport
	Metrics                *metrics.Recorder
	ItemQueueSize          int
}

func (c *Config) setDefaults() {
	if c.TickInterval == 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.SnapshotTrigCount == 0 {
		c.SnapshotTrigCount = DefaultSnapshotTrigCount
	}
	if c.SnapshotCatchupEntries == 0 {
		c.SnapshotCatchupEntries = DefaultSnapshotCatchupEntries
	}
	if c.ItemQueueSize == 0 {
		c.ItemQueueSize = 256
	}
	if c.Logger == nil {
		c.Logger = raftlog.NewGlog()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
}

package driver

import "time"

// createSnapshot exports the KV store, asks the consensus library to
// create a snapshot at appliedIndex, compacts its log, saves the snapshot
// to disk, and releases WAL segments the snapshot made obsolete. It runs
// synchronously on the driver's own goroutine; a snapshot simply delays
// the next Ready iteration on larger stores.
func (d *Driver) createSnapshot() error {
	start := time.Now()
	defer func() {
		d.metrics.SnapshotDuration.Observe(time.Since(start).Seconds())
	}()

	data, err := d.kv.ExportSnapshot()
	if err != nil {
		d.metrics.SnapshotTaskTotal.WithLabelValues("export_failed").Inc()
		return err
	}

	snap, err := d.raftStorage.CreateSnapshot(d.appliedIndex, &d.confState, data)
	if err != nil {
		d.metrics.SnapshotTaskTotal.WithLabelValues("create_failed").Inc()
		return err
	}

	compactIndex := uint64(1)
	if d.appliedIndex > d.cfg.SnapshotCatchupEntries {
		compactIndex = d.appliedIndex - d.cfg.SnapshotCatchupEntries
	}
	if err := d.raftStorage.Compact(compactIndex); err != nil {
		d.metrics.SnapshotTaskTotal.WithLabelValues("compact_failed").Inc()
		return err
	}
	d.log.Infof("driver: compacted log at index %d", compactIndex)

	if err := d.snap.Save(snap); err != nil {
		d.metrics.SnapshotTaskTotal.WithLabelValues("save_failed").Inc()
		return err
	}
	if err := d.wal.ReleaseLockTo(snap.Metadata.Index); err != nil {
		return err
	}

	d.snapshotIndex = d.appliedIndex
	d.metrics.SnapshotTaskTotal.WithLabelValues("ok").Inc()
	return nil
}

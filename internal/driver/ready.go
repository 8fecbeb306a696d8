package driver

import (
	"time"

	"go.etcd.io/raft/v3"
	"go.etcd.io/raft/v3/raftpb"
)

// onReady handles one Ready batch: persist, extend the in-memory log,
// install any snapshot, send outbound messages, apply committed entries in
// order, maybe trigger a snapshot. The caller (Run) calls node.Advance()
// once this returns.
func (d *Driver) onReady(rd raft.Ready) error {
	// 1. Persist. The WAL write must complete before any observable side
	// effect. A write/sync error is propagated rather than swallowed, so
	// appliedIndex never advances past an unpersisted entry.
	var hsp *raftpb.HardState
	if !raft.IsEmptyHardState(rd.HardState) {
		hs := rd.HardState
		hsp = &hs
	}
	start := time.Now()
	if err := d.wal.Insert(hsp, rd.Entries, rd.MustSync); err != nil {
		return err
	}
	d.metrics.WALSyncDuration.Observe(time.Since(start).Seconds())

	// 2. Extend in-memory log.
	if len(rd.Entries) > 0 {
		if err := d.raftStorage.Append(rd.Entries); err != nil {
			return err
		}
	}
	if hsp != nil {
		if err := d.raftStorage.SetHardState(*hsp); err != nil {
			return err
		}
	}

	// 3. Install snapshot, if any.
	if !raft.IsEmptySnap(rd.Snapshot) {
		if err := d.publishSnapshot(rd.Snapshot); err != nil {
			return err
		}
	}

	// 4. Outbound messages.
	for _, msg := range rd.Messages {
		d.metrics.RaftMessagesSent.WithLabelValues(msg.Type.String()).Inc()
		d.transport.Send(msg)
	}

	// 5. Apply committed entries, in order.
	for _, e := range d.entsToApply(rd.CommittedEntries) {
		d.applyEntry(e)
	}

	// 6. Maybe trigger a snapshot.
	if d.appliedIndex-d.snapshotIndex > d.cfg.SnapshotTrigCount {
		if err := d.createSnapshot(); err != nil {
			d.log.Warningf("driver: create snapshot: %v", err)
		}
	}

	d.metrics.AppliedIndex.Set(float64(d.appliedIndex))
	return nil
}

// entsToApply defensively trims entries already applied. The first kept
// index must be appliedIndex+1; anything else is an invariant violation.
func (d *Driver) entsToApply(ents []raftpb.Entry) []raftpb.Entry {
	if len(ents) == 0 {
		return nil
	}
	firstIdx := ents[0].Index
	if firstIdx > d.appliedIndex+1 {
		d.log.Fatal(
			"driver: first committed entry index is greater than appliedIndex+1: ",
			firstIdx, d.appliedIndex,
		)
	}
	if d.appliedIndex-firstIdx+1 < uint64(len(ents)) {
		return ents[d.appliedIndex-firstIdx+1:]
	}
	return nil
}

func (d *Driver) publishSnapshot(snap raftpb.Snapshot) error {
	if snap.Metadata.Index <= d.appliedIndex {
		d.log.Fatal("driver: snapshot index is not greater than appliedIndex")
	}

	if err := d.snap.Save(snap); err != nil {
		return err
	}
	if err := d.wal.ReleaseLockTo(snap.Metadata.Index); err != nil {
		return err
	}
	if err := d.raftStorage.ApplySnapshot(snap); err != nil {
		return err
	}
	if err := d.kv.ImportSnapshot(snap.Data); err != nil {
		d.log.Fatal("driver: import snapshot into kv: ", err)
	}

	d.confState = snap.Metadata.ConfState
	d.snapshotIndex = snap.Metadata.Index
	d.appliedIndex = snap.Metadata.Index
	return nil
}

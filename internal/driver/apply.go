package driver

import (
	"unicode/utf8"

	"go.etcd.io/raft/v3/raftpb"

	"github.com/dyxushuai/mumgo/internal/mumpb"
)

// applyEntry applies one committed entry to either the consensus handle's
// membership state or the KV store, then advances appliedIndex.
func (d *Driver) applyEntry(e raftpb.Entry) {
	switch e.Type {
	case raftpb.EntryNormal:
		d.applyNormal(e)
	case raftpb.EntryConfChange:
		d.applyConfChange(e)
	}
	d.appliedIndex = e.Index
}

// applyNormal decodes an OpRequest and applies Set/Delete to the KV store.
// Get/Scan never produce a committed entry — they're served directly by
// the RPC layer — so no other OpType is expected here.
func (d *Driver) applyNormal(e raftpb.Entry) {
	if len(e.Data) == 0 {
		// Empty entry, e.g. the one every new leader commits on election.
		return
	}
	var op mumpb.OpRequest
	if err := op.Unmarshal(e.Data); err != nil {
		d.log.Errorf("driver: decode committed op at index %d: %v", e.Index, err)
		return
	}
	switch op.Type {
	case mumpb.OpSet:
		d.kv.Set(op.Key, op.Value)
	case mumpb.OpDel:
		d.kv.Delete(op.Key)
	default:
		d.log.Warningf("driver: unexpected op type %v in committed entry", op.Type)
	}
}

// applyConfChange calls ApplyConfChange on the consensus handle, then
// updates the peer directory: AddNode upserts using the context bytes as
// the peer's address; RemoveNode deletes the peer, and if the removed id
// is this node's own id the process terminates abnormally.
func (d *Driver) applyConfChange(e raftpb.Entry) {
	var cc raftpb.ConfChange
	if err := cc.Unmarshal(e.Data); err != nil {
		d.log.Errorf("driver: decode committed conf change at index %d: %v", e.Index, err)
		return
	}

	cs := d.node.ApplyConfChange(cc)
	d.confState = *cs

	switch cc.Type {
	case raftpb.ConfChangeAddNode:
		if len(cc.Context) == 0 {
			return
		}
		if !utf8.Valid(cc.Context) {
			d.log.Errorf("driver: conf change context for node %x is not valid utf-8", cc.NodeID)
			return
		}
		d.transport.UpsertPeer(cc.NodeID, string(cc.Context))
	case raftpb.ConfChangeAddLearnerNode:
		// Learners receive traffic through the directory only once promoted.
	case raftpb.ConfChangeRemoveNode:
		if cc.NodeID == d.id {
			d.log.Info("driver: this node was removed from the cluster; shutting down")
			d.terminateSelfRemoval()
			return
		}
		d.transport.DeletePeer(cc.NodeID)
	}
}

// processExit is a variable so tests can observe the self-removal path
// without exercising a real process exit.
var processExit = func() { panicOrExit() }

func (d *Driver) terminateSelfRemoval() {
	processExit()
}

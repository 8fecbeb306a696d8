// Package rpcserver implements the three unary RPCs: Op, Conf and Raft.
// Mutations enqueue a work item onto the driver and return immediately;
// Get/Scan bypass the driver entirely and read the KV store directly. A
// successful Op response for Set/Del means the proposal was enqueued, not
// that it committed.
package rpcserver

import (
	"context"

	"github.com/dyxushuai/mumgo/internal/driver"
	"github.com/dyxushuai/mumgo/internal/mumpb"
)

// Server implements mumpb.MumServer over a Driver.
type Server struct {
	d *driver.Driver
}

// New returns a Server backed by d.
func New(d *driver.Driver) *Server {
	return &Server{d: d}
}

var _ mumpb.MumServer = (*Server)(nil)

// Op handles Set/Del by enqueuing a work item and returning immediately.
// Get/Scan read the local KV store directly, never touching consensus.
func (s *Server) Op(ctx context.Context, req *mumpb.OpRequest) (*mumpb.OpResponse, error) {
	switch req.Type {
	case mumpb.OpSet, mumpb.OpDel:
		if err := s.d.Push(ctx, driver.NewOpItem(req)); err != nil {
			return nil, err
		}
		return &mumpb.OpResponse{}, nil

	case mumpb.OpGet:
		resp := &mumpb.OpResponse{}
		if v, ok := s.d.KV().Get(req.Key); ok {
			resp.Kvs = []*mumpb.KvPair{{Key: req.Key, Value: v}}
		}
		return resp, nil

	case mumpb.OpScan:
		limit := int(req.Limit)
		pairs := s.d.KV().Scan(req.Key, limit)
		resp := &mumpb.OpResponse{Kvs: make([]*mumpb.KvPair, 0, len(pairs))}
		for _, p := range pairs {
			resp.Kvs = append(resp.Kvs, &mumpb.KvPair{Key: p.Key, Value: p.Value})
		}
		return resp, nil

	default:
		return &mumpb.OpResponse{}, nil
	}
}

// Conf enqueues a membership-change work item and returns immediately.
func (s *Server) Conf(ctx context.Context, req *mumpb.ConfRequest) (*mumpb.ConfResponse, error) {
	cc := req.Change
	if err := s.d.Push(ctx, driver.NewConfChangeItem(&cc)); err != nil {
		return nil, err
	}
	return &mumpb.ConfResponse{}, nil
}

// Raft enqueues an inbound raft message and returns immediately.
func (s *Server) Raft(ctx context.Context, req *mumpb.RaftMessage) (*mumpb.Done, error) {
	if err := s.d.Push(ctx, driver.NewRaftMessageItem(req.Message)); err != nil {
		return nil, err
	}
	return &mumpb.Done{}, nil
}

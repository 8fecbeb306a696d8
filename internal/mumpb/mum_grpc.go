// mum_grpc.go hand-reproduces the boilerplate protoc-gen-go-grpc would
// emit for the Mum service's three unary RPCs. Wire framing goes through
// the "mumpb" codec registered in codec.go.
package mumpb

import (
	"context"

	"google.golang.org/grpc"
)

const serviceName = "mumpb.Mum"

// MumClient is the client-side interface for the Mum service.
type MumClient interface {
	Op(ctx context.Context, in *OpRequest, opts ...grpc.CallOption) (*OpResponse, error)
	Conf(ctx context.Context, in *ConfRequest, opts ...grpc.CallOption) (*ConfResponse, error)
	Raft(ctx context.Context, in *RaftMessage, opts ...grpc.CallOption) (*Done, error)
}

type mumClient struct {
	cc grpc.ClientConnInterface
}

// NewMumClient wraps a grpc connection using the mumpb wire codec.
func NewMumClient(cc grpc.ClientConnInterface) MumClient {
	return &mumClient{cc: cc}
}

func (c *mumClient) Op(ctx context.Context, in *OpRequest, opts ...grpc.CallOption) (*OpResponse, error) {
	out := new(OpResponse)
	opts = append(opts, grpc.CallContentSubtype("mumpb"))
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Op", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mumClient) Conf(ctx context.Context, in *ConfRequest, opts ...grpc.CallOption) (*ConfResponse, error) {
	out := new(ConfResponse)
	opts = append(opts, grpc.CallContentSubtype("mumpb"))
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Conf", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *mumClient) Raft(ctx context.Context, in *RaftMessage, opts ...grpc.CallOption) (*Done, error) {
	out := new(Done)
	opts = append(opts, grpc.CallContentSubtype("mumpb"))
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Raft", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MumServer is the server-side interface for the Mum service.
type MumServer interface {
	Op(context.Context, *OpRequest) (*OpResponse, error)
	Conf(context.Context, *ConfRequest) (*ConfResponse, error)
	Raft(context.Context, *RaftMessage) (*Done, error)
}

// RegisterMumServer registers srv on s using the mumpb wire codec.
func RegisterMumServer(s grpc.ServiceRegistrar, srv MumServer) {
	s.RegisterService(&mumServiceDesc, srv)
}

func opHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(OpRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MumServer).Op(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Op"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MumServer).Op(ctx, req.(*OpRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func confHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ConfRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MumServer).Conf(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Conf"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MumServer).Conf(ctx, req.(*ConfRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func raftHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RaftMessage)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MumServer).Raft(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Raft"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MumServer).Raft(ctx, req.(*RaftMessage))
	}
	return interceptor(ctx, in, info, handler)
}

var mumServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MumServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Op", Handler: opHandler},
		{MethodName: "Conf", Handler: confHandler},
		{MethodName: "Raft", Handler: raftHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "mumpb.proto",
}

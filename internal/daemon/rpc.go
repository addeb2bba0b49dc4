package daemon

import (
	"context"

	"google.golang.org/grpc"

	"svcboard/internal/model"
)

const serviceName = "svcboard.v1.ServiceBoard"

const (
	methodPing    = "/" + serviceName + "/Ping"
	methodList    = "/" + serviceName + "/List"
	methodStart   = "/" + serviceName + "/Start"
	methodStop    = "/" + serviceName + "/Stop"
	methodRestart = "/" + serviceName + "/Restart"
)

type PingRequest struct{}

type PingResponse struct {
	Ok       string `json:"ok"`
	PID      int    `json:"pid"`
	Backend  string `json:"backend"`
	Elevated bool   `json:"elevated"`
}

type ListRequest struct{}

type ListResponse struct {
	Items []model.Item `json:"items"`
}

type ControlRequest struct {
	ID string `json:"id"`
}

type ControlResponse struct{}

// ServiceBoardClient is the client API of the daemon.
type ServiceBoardClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error)
	Start(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	Stop(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error)
	Restart(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error)
}

type serviceBoardClient struct {
	cc grpc.ClientConnInterface
}

// NewServiceBoardClient wraps a connection. Every call is sent with the JSON
// codec.
func NewServiceBoardClient(cc grpc.ClientConnInterface) ServiceBoardClient {
	return &serviceBoardClient{cc: cc}
}

func (c *serviceBoardClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *serviceBoardClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, methodPing, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceBoardClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*ListResponse, error) {
	out := new(ListResponse)
	if err := c.invoke(ctx, methodList, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceBoardClient) Start(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, methodStart, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceBoardClient) Stop(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, methodStop, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *serviceBoardClient) Restart(ctx context.Context, in *ControlRequest, opts ...grpc.CallOption) (*ControlResponse, error) {
	out := new(ControlResponse)
	if err := c.invoke(ctx, methodRestart, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceBoardServer is the server API of the daemon.
type ServiceBoardServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	List(context.Context, *ListRequest) (*ListResponse, error)
	Start(context.Context, *ControlRequest) (*ControlResponse, error)
	Stop(context.Context, *ControlRequest) (*ControlResponse, error)
	Restart(context.Context, *ControlRequest) (*ControlResponse, error)
}

// RegisterServiceBoardServer attaches srv to s.
func RegisterServiceBoardServer(s grpc.ServiceRegistrar, srv ServiceBoardServer) {
	s.RegisterService(&serviceBoardDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(ServiceBoardServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ServiceBoardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ServiceBoardServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceBoardDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ServiceBoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unaryHandler(methodPing, ServiceBoardServer.Ping)},
		{MethodName: "List", Handler: unaryHandler(methodList, ServiceBoardServer.List)},
		{MethodName: "Start", Handler: unaryHandler(methodStart, ServiceBoardServer.Start)},
		{MethodName: "Stop", Handler: unaryHandler(methodStop, ServiceBoardServer.Stop)},
		{MethodName: "Restart", Handler: unaryHandler(methodRestart, ServiceBoardServer.Restart)},
	},
	Streams: []grpc.StreamDesc{},
}

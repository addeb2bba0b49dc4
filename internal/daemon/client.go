package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"

	"svcboard/internal/model"
)

// Dial opens a gRPC connection to the daemon over the UNIX socket.
func Dial(ctx context.Context) (ServiceBoardClient, *grpc.ClientConn, error) {
	target := socketTarget()
	conn, err := grpc.NewClient(
		target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(unixDialer),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	)
	if err != nil {
		return nil, nil, err
	}
	conn.Connect()
	if err := waitForReady(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return NewServiceBoardClient(conn), conn, nil
}

func socketTarget() string {
	path := SocketPath()
	if trimmed, ok := strings.CutPrefix(path, "/"); ok {
		return "unix:///" + trimmed
	}
	return "unix://" + path
}

func unixDialer(ctx context.Context, addr string) (net.Conn, error) {
	if trimmed, ok := strings.CutPrefix(addr, "unix://"); ok {
		addr = trimmed
	}
	if addr == "" {
		addr = SocketPath()
	}
	var d net.Dialer
	return d.DialContext(ctx, "unix", addr)
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		switch state := conn.GetState(); state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return errors.New("grpc connection is shut down")
		default:
			if !conn.WaitForStateChange(ctx, state) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("grpc connection stuck in state %s", state.String())
			}
		}
	}
}

// Client exposes the daemon as a control backend.
type Client struct {
	rpc ServiceBoardClient
}

// NewClient wraps an RPC client.
func NewClient(rpc ServiceBoardClient) *Client {
	return &Client{rpc: rpc}
}

func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	resp, err := c.rpc.List(ctx, &ListRequest{})
	if err != nil {
		return nil, fromStatus(err, "")
	}
	return resp.Items, nil
}

func (c *Client) Start(ctx context.Context, id string) error {
	_, err := c.rpc.Start(ctx, &ControlRequest{ID: id})
	return fromStatus(err, id)
}

func (c *Client) Stop(ctx context.Context, id string) error {
	_, err := c.rpc.Stop(ctx, &ControlRequest{ID: id})
	return fromStatus(err, id)
}

func (c *Client) Restart(ctx context.Context, id string) error {
	_, err := c.rpc.Restart(ctx, &ControlRequest{ID: id})
	return fromStatus(err, id)
}

// Ping checks the daemon and returns its reply.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	resp, err := c.rpc.Ping(ctx, &PingRequest{})
	if err != nil {
		return nil, fromStatus(err, "")
	}
	return resp, nil
}

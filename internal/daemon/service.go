package daemon

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"svcboard/internal/backend"
	"svcboard/internal/controller"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

// service implements the ServiceBoard gRPC service on top of a backend.
type service struct {
	backend controller.Backend
	kind    string
	log     zerolog.Logger
}

func newService(b controller.Backend, kind string, log zerolog.Logger) *service {
	return &service{backend: b, kind: kind, log: log}
}

func (s *service) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	return &PingResponse{
		Ok:       "pong",
		PID:      os.Getpid(),
		Backend:  s.kind,
		Elevated: backend.Privileges().Elevated,
	}, nil
}

func (s *service) List(ctx context.Context, _ *ListRequest) (*ListResponse, error) {
	items, err := s.backend.ListItems(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list failed")
		return nil, toStatus(err, "")
	}
	return &ListResponse{Items: items}, nil
}

func (s *service) Start(ctx context.Context, req *ControlRequest) (*ControlResponse, error) {
	return s.control(ctx, model.ActionStart, req)
}

func (s *service) Stop(ctx context.Context, req *ControlRequest) (*ControlResponse, error) {
	return s.control(ctx, model.ActionStop, req)
}

func (s *service) Restart(ctx context.Context, req *ControlRequest) (*ControlResponse, error) {
	return s.control(ctx, model.ActionRestart, req)
}

func (s *service) control(ctx context.Context, action model.Action, req *ControlRequest) (*ControlResponse, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id must be provided")
	}
	if err := controller.Invoke(ctx, s.backend, action, id); err != nil {
		s.log.Warn().Str("id", id).Str("action", string(action)).Err(err).Msg("control failed")
		return nil, toStatus(err, id)
	}
	s.log.Info().Str("id", id).Str("action", string(action)).Msg("control finished")
	return &ControlResponse{}, nil
}

// toStatus maps a backend error onto the gRPC code for its kind.
func toStatus(err error, id string) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	e := svcerr.Classify(err, id)
	code := codes.Internal
	switch e.Kind {
	case svcerr.PermissionDenied:
		code = codes.PermissionDenied
	case svcerr.NotFound:
		code = codes.NotFound
	case svcerr.Timeout:
		code = codes.DeadlineExceeded
	case svcerr.InvalidState:
		code = codes.FailedPrecondition
	}
	return status.Error(code, e.Message)
}

// fromStatus turns an RPC error back into a classified error.
func fromStatus(err error, id string) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return svcerr.Classify(err, id)
	}
	kind := svcerr.SystemError
	switch st.Code() {
	case codes.PermissionDenied, codes.Unauthenticated:
		kind = svcerr.PermissionDenied
	case codes.NotFound:
		kind = svcerr.NotFound
	case codes.DeadlineExceeded:
		kind = svcerr.Timeout
	case codes.FailedPrecondition:
		kind = svcerr.InvalidState
	case codes.Unavailable:
		return &svcerr.Error{Kind: svcerr.SystemError, Service: id, Message: "daemon unavailable: " + st.Message(), Err: err}
	}
	return &svcerr.Error{Kind: kind, Service: id, Message: st.Message(), Err: err}
}

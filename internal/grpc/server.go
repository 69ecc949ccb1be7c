package grpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/desync-labs/tx-manager/boc-submitter/internal/domain"
	services "github.com/desync-labs/tx-manager/boc-submitter/internal/service"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/store"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ SubmitterServer = (*GrpcServer)(nil)

type GrpcServer struct {
	submitterService services.SubmitterServiceInterface
	server           *grpc.Server
}

func NewGrpcServer(submitterService services.SubmitterServiceInterface) *GrpcServer {
	adapter := &GrpcServer{
		submitterService: submitterService,
		server:           grpc.NewServer(),
	}
	RegisterSubmitterServer(adapter.server, adapter)
	return adapter
}

// Start listens on port and serves until Stop is called.
func (adapter *GrpcServer) Start(port string) error {
	lis, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}
	slog.Info("gRPC server listening on port: " + port)
	return adapter.Serve(lis)
}

func (adapter *GrpcServer) Serve(lis net.Listener) error {
	return adapter.server.Serve(lis)
}

func (adapter *GrpcServer) Stop() {
	adapter.server.GracefulStop()
	slog.Info("gRPC server stopped gracefully")
}

func (s *GrpcServer) SendBoc(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	appName := fields["app_name"].GetStringValue()
	priority := int(fields["priority"].GetNumberValue())

	slog.Debug("Received sendBoc request", "app", appName, "priority", priority)

	payload, err := payloadFromRequest(fields)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	sub, err := s.submitterService.SubmitTransaction(ctx, services.SubmitRequest{
		AppName:  appName,
		Priority: priority,
		Payload:  payload,
	})
	if err != nil {
		slog.Error("Failed to submit BOC", "app", appName, "error", err)
		return nil, toStatus(err)
	}

	return submissionToStruct(sub)
}

func (s *GrpcServer) GetSubmission(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	slog.Debug("Received submission lookup", "id", req.GetValue())

	sub, err := s.submitterService.GetSubmission(ctx, req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return submissionToStruct(sub)
}

func payloadFromRequest(fields map[string]*structpb.Value) (domain.Payload, error) {
	if v := fields["boc_hex"].GetStringValue(); v != "" {
		return domain.DecodeHexPayload(v)
	}
	if v := fields["boc_base64"].GetStringValue(); v != "" {
		b, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return domain.Payload{}, fmt.Errorf("decode base64 payload: %w", err)
		}
		return domain.NewPayload(b), nil
	}
	return domain.Payload{}, domain.ErrPayloadRequired
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrAppNameRequired),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrPayloadRequired),
		errors.Is(err, toncenter.ErrInvalidPayload):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, toncenter.ErrInvalidConfig):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func submissionToStruct(sub *domain.Submission) (*structpb.Struct, error) {
	data, err := json.Marshal(sub)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

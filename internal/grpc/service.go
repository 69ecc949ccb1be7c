package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName             = "bocsubmitter.v1.Submitter"
	SendBocMethod           = "/" + ServiceName + "/SendBoc"
	GetSubmissionMethod     = "/" + ServiceName + "/GetSubmission"
	submitterServiceFileTag = "bocsubmitter/v1/submitter.proto"
)

// SubmitterServer is the server API for the Submitter service. Messages
// are protobuf well-known types so no generated code is needed.
type SubmitterServer interface {
	// SendBoc takes {app_name, priority, boc_hex | boc_base64} and returns
	// the submission record.
	SendBoc(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetSubmission returns the stored record for a submission ID.
	GetSubmission(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

func RegisterSubmitterServer(s grpc.ServiceRegistrar, srv SubmitterServer) {
	s.RegisterService(&submitterServiceDesc, srv)
}

var submitterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SubmitterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SendBoc", Handler: sendBocHandler},
		{MethodName: "GetSubmission", Handler: getSubmissionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: submitterServiceFileTag,
}

func sendBocHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubmitterServer).SendBoc(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SendBocMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubmitterServer).SendBoc(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getSubmissionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubmitterServer).GetSubmission(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetSubmissionMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubmitterServer).GetSubmission(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// SubmitterClient calls the Submitter service over conn.
type SubmitterClient struct {
	cc grpc.ClientConnInterface
}

func NewSubmitterClient(cc grpc.ClientConnInterface) *SubmitterClient {
	return &SubmitterClient{cc: cc}
}

func (c *SubmitterClient) SendBoc(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SendBocMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SubmitterClient) GetSubmission(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetSubmissionMethod, wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

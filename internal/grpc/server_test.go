package grpc

import (
	"context"
	"encoding/json"
	"net"
	"testing"

	services "github.com/desync-labs/tx-manager/boc-submitter/internal/service"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/store"
	"github.com/desync-labs/tx-manager/boc-submitter/internal/toncenter"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type stubSender struct {
	res *toncenter.Result
	err error
}

func (s stubSender) Submit(context.Context, []byte, toncenter.EndpointConfig) (*toncenter.Result, error) {
	return s.res, s.err
}

func newTestClient(t *testing.T, sender services.BocSender) *SubmitterClient {
	t.Helper()

	svc := services.NewSubmitterService(sender,
		toncenter.EndpointConfig{Endpoint: "https://testnet.toncenter.com/api/v2/jsonRPC"},
		store.NewMemoryStore(), nil)

	lis := bufconn.Listen(1 << 20)
	srv := NewGrpcServer(svc)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewSubmitterClient(conn)
}

func sendBocRequest(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	req, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return req
}

func TestSendBoc_Accepted(t *testing.T) {
	client := newTestClient(t, stubSender{res: &toncenter.Result{Result: json.RawMessage(`{"hash":"abc"}`)}})
	ctx := context.Background()

	out, err := client.SendBoc(ctx, sendBocRequest(t, map[string]interface{}{
		"app_name": "wallet",
		"priority": 1,
		"boc_hex":  "b5ee9c72",
	}))
	require.NoError(t, err)
	require.Equal(t, "wallet-1", out.Fields["id"].GetStringValue())
	require.Equal(t, "ACCEPTED", out.Fields["status"].GetStringValue())
	require.Equal(t, "b5ee9c72", out.Fields["payload"].GetStringValue())
	require.Equal(t, "abc", out.Fields["result"].GetStructValue().Fields["hash"].GetStringValue())

	got, err := client.GetSubmission(ctx, "wallet-1")
	require.NoError(t, err)
	require.Equal(t, "ACCEPTED", got.Fields["status"].GetStringValue())
}

func TestSendBoc_Base64Payload(t *testing.T) {
	client := newTestClient(t, stubSender{res: &toncenter.Result{Result: json.RawMessage(`{}`)}})

	out, err := client.SendBoc(context.Background(), sendBocRequest(t, map[string]interface{}{
		"app_name":   "wallet",
		"priority":   2,
		"boc_base64": "te6ccg==",
	}))
	require.NoError(t, err)
	require.Equal(t, "b5ee9c72", out.Fields["payload"].GetStringValue())
}

func TestSendBoc_Rejected(t *testing.T) {
	client := newTestClient(t, stubSender{err: &toncenter.Error{Kind: toncenter.KindRPC, Code: 33, Message: "exitcode"}})

	out, err := client.SendBoc(context.Background(), sendBocRequest(t, map[string]interface{}{
		"app_name": "wallet",
		"priority": 1,
		"boc_hex":  "b5ee9c72",
	}))
	require.NoError(t, err)
	require.Equal(t, "REJECTED", out.Fields["status"].GetStringValue())
	require.Equal(t, float64(33), out.Fields["error_code"].GetNumberValue())
	require.Equal(t, "exitcode", out.Fields["error_message"].GetStringValue())
}

func TestSendBoc_InvalidArgument(t *testing.T) {
	client := newTestClient(t, stubSender{})

	tests := []map[string]interface{}{
		{"app_name": "wallet", "priority": 1},
		{"app_name": "wallet", "priority": 1, "boc_hex": "zz"},
		{"app_name": "wallet", "priority": 1, "boc_base64": "!!"},
		{"app_name": "", "priority": 1, "boc_hex": "b5ee"},
		{"app_name": "wallet", "priority": 7, "boc_hex": "b5ee"},
	}
	for _, fields := range tests {
		_, err := client.SendBoc(context.Background(), sendBocRequest(t, fields))
		require.Equal(t, codes.InvalidArgument, status.Code(err), "fields %v", fields)
	}
}

func TestGetSubmission_NotFound(t *testing.T) {
	client := newTestClient(t, stubSender{})

	_, err := client.GetSubmission(context.Background(), "wallet-42")
	require.Equal(t, codes.NotFound, status.Code(err))
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startGRPC(t *testing.T) (*grpc.ClientConn, *fakeMatcher) {
	t.Helper()
	m := &fakeMatcher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gs, _ := NewGRPCServer(NewMatcherServer(m, loadedCatalog(), logger), logger)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, m
}

func TestGRPCResolve(t *testing.T) {
	conn, m := startGRPC(t)
	client := NewMatcherClient(conn)

	in, err := structpb.NewStruct(map[string]any{"ocr_text": "ROSA PHOENIX 60-4", "ocr_text_normalizado": "ROSA PHOENIX 60-4"})
	require.NoError(t, err)
	out, err := client.Resolve(context.Background(), in)
	require.NoError(t, err)

	got := out.AsMap()
	assert.Equal(t, true, got["success"])
	assert.Equal(t, "PHOENIX 60-4", got["variedad"])
	assert.Equal(t, "HEURISTIC", got["stage"])
	assert.Equal(t, "ROSA PHOENIX 60-4", m.last.Normalized)
	assert.NotEmpty(t, m.rid)
}

func TestGRPCResolveErrors(t *testing.T) {
	conn, _ := startGRPC(t)
	client := NewMatcherClient(conn)

	_, err := client.Resolve(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	down, _ := structpb.NewStruct(map[string]any{"ocr_text": "DOWN"})
	_, err = client.Resolve(context.Background(), down)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestGRPCCatalogStatusAndHealth(t *testing.T) {
	conn, _ := startGRPC(t)

	out, err := NewMatcherClient(conn).CatalogStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(2), out.AsMap()["entries"])
	assert.Equal(t, "json:ofertas.json", out.AsMap()["source"])

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: MatcherServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.GetStatus())
}

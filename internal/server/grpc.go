package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/label-matcher/internal/common"
	"github.com/joseph-ayodele/label-matcher/internal/core/resolver"
	catalogsvc "github.com/joseph-ayodele/label-matcher/internal/services/catalog"
	"github.com/joseph-ayodele/label-matcher/internal/services/match"
)

const (
	MatcherServiceName = "labelmatch.v1.VarietyMatcher"

	resolveMethod       = "/" + MatcherServiceName + "/Resolve"
	catalogStatusMethod = "/" + MatcherServiceName + "/CatalogStatus"
)

// Matcher resolves one OCR capture.
type Matcher interface {
	Resolve(ctx context.Context, req match.Request) (resolver.Result, error)
}

// CatalogStatuser reports the active catalog snapshot.
type CatalogStatuser interface {
	Status() catalogsvc.Status
}

// MatcherService is the gRPC surface. Messages are google.protobuf.Struct
// objects with the same keys as the HTTP JSON bodies.
type MatcherService interface {
	Resolve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CatalogStatus(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type MatcherServer struct {
	matcher Matcher
	catalog CatalogStatuser
	logger  *slog.Logger
}

func NewMatcherServer(m Matcher, c CatalogStatuser, logger *slog.Logger) *MatcherServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatcherServer{matcher: m, catalog: c, logger: logger}
}

func (s *MatcherServer) Resolve(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	fields := in.GetFields()
	req := match.Request{
		Text:       fields["ocr_text"].GetStringValue(),
		Normalized: fields["ocr_text_normalizado"].GetStringValue(),
	}
	res, err := s.matcher.Resolve(ctx, req)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *MatcherServer) CatalogStatus(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.catalog.Status())
}

// toStruct converts v through its JSON form so field names match the HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

var matcherServiceDesc = grpc.ServiceDesc{
	ServiceName: MatcherServiceName,
	HandlerType: (*MatcherService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Resolve", Handler: unaryHandler(resolveMethod, MatcherService.Resolve)},
		{MethodName: "CatalogStatus", Handler: unaryHandler(catalogStatusMethod, MatcherService.CatalogStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "labelmatch/v1/matcher.proto",
}

type structCall func(MatcherService, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MatcherService), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MatcherService), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// RegisterMatcherServer registers srv on s.
func RegisterMatcherServer(s grpc.ServiceRegistrar, srv MatcherService) {
	s.RegisterService(&matcherServiceDesc, srv)
}

// MatcherClient calls the matcher service over conn.
type MatcherClient struct {
	cc grpc.ClientConnInterface
}

func NewMatcherClient(cc grpc.ClientConnInterface) *MatcherClient {
	return &MatcherClient{cc: cc}
}

func (c *MatcherClient) Resolve(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, resolveMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatcherClient) CatalogStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, catalogStatusMethod, &structpb.Struct{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NewGRPCServer builds a server with the matcher and health services registered.
func NewGRPCServer(srv MatcherService, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(requestLogging(logger)))
	RegisterMatcherServer(gs, srv)

	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(gs, hs)
	// empty string means overall server health
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(MatcherServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return gs, hs
}

func requestLogging(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx, rid := common.EnsureRequestID(ctx)
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			logger.Warn("grpc.request.failed", "req_id", rid, "method", info.FullMethod, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			return nil, common.ToStatus(err)
		}
		logger.Debug("grpc.request.ok", "req_id", rid, "method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds())
		return resp, nil
	}
}

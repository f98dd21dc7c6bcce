package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	"github.com/hyperterse/querygate/core/infrastructure/transport/envelope"
	sharedctx "github.com/hyperterse/querygate/core/shared/context"
)

// QueryServer is the server API of querygate.v1.QueryService
type QueryServer interface {
	Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// serviceDesc describes querygate.v1.QueryService. Requests and responses
// are google.protobuf.Struct values carrying the JSON batch envelope.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: envelope.Service,
	HandlerType: (*QueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Query",
			Handler:    queryHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "querygate/v1/query.proto",
}

func queryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(QueryServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: envelope.QueryMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(QueryServer).Query(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// queryServer authenticates the bearer token from the "authorization"
// metadata and hands the batch to the query service
type queryServer struct {
	service       interfaces.QueryService
	authenticator *auth.Authenticator
}

func (s *queryServer) Query(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("authorization"); len(values) > 0 {
			header = values[0]
		}
	}

	caller, err := s.authenticator.AuthenticateHeader(header)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "ERROR_UNAUTHORIZED")
	}

	out, err := envelope.Execute(ctx, s.service, req, caller)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Server represents the gRPC server
type Server struct {
	server *grpc.Server
	port   string
}

// NewServer creates a new gRPC server
func NewServer(port string) *Server {
	if port == "" {
		port = "9090"
	}

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(requestIDInterceptor, loggingInterceptor),
	)

	return &Server{
		server: s,
		port:   port,
	}
}

// RegisterQueryService registers the batch query service
func (s *Server) RegisterQueryService(service interfaces.QueryService, authenticator *auth.Authenticator) {
	s.server.RegisterService(&serviceDesc, &queryServer{service: service, authenticator: authenticator})
}

// Serve listens on the configured port until Stop is called
func (s *Server) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener
func (s *Server) ServeListener(lis net.Listener) error {
	log := logging.New("grpc")
	log.Successf("gRPC server listening on %s", lis.Addr())
	if err := s.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// Stop stops the gRPC server gracefully, forcing it closed when ctx ends
// first
func (s *Server) Stop(ctx context.Context) {
	log := logging.New("grpc")
	log.Infof("Shutting down gRPC server")

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}

	log.Infof("gRPC server stopped")
}

func requestIDInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	id := ""
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get("x-request-id"); len(values) > 0 {
			id = values[0]
		}
	}
	if id == "" {
		id = sharedctx.GenerateRequestID()
	}
	return handler(sharedctx.WithRequestID(ctx, id), req)
}

func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	logging.New("grpc").Debugf("%s %s in %s", info.FullMethod, status.Code(err), time.Since(start))
	return resp, err
}

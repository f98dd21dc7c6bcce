package transport

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hyperterse/querygate/core/domain/interfaces"
	"github.com/hyperterse/querygate/core/infrastructure/auth"
	"github.com/hyperterse/querygate/core/infrastructure/logging"
	grpctransport "github.com/hyperterse/querygate/core/infrastructure/transport/grpc"
	httptransport "github.com/hyperterse/querygate/core/infrastructure/transport/http"
)

// shutdownTimeout bounds graceful shutdown of both listeners
const shutdownTimeout = 15 * time.Second

// UnifiedServer runs the HTTP server and, when a gRPC port is configured,
// the gRPC server
type UnifiedServer struct {
	httpServer *httptransport.Server
	grpcServer *grpctransport.Server
	httpPort   string
	grpcPort   string
}

// NewUnifiedServer creates a new unified server. An empty grpcPort disables
// the gRPC listener.
func NewUnifiedServer(httpPort, grpcPort string) *UnifiedServer {
	s := &UnifiedServer{
		httpServer: httptransport.NewServer(httpPort),
		grpcPort:   grpcPort,
	}
	s.httpPort = s.httpServer.Port()
	if grpcPort != "" {
		s.grpcServer = grpctransport.NewServer(grpcPort)
	}
	return s
}

// Register wires the query service into every transport
func (s *UnifiedServer) Register(
	queryService interfaces.QueryService,
	registry interfaces.RegistrySource,
	authenticator *auth.Authenticator,
) {
	httptransport.RegisterRoutes(s.httpServer.Router(), httptransport.Routes{
		QueryService:  queryService,
		Registry:      registry,
		Authenticator: authenticator,
		BaseURL:       fmt.Sprintf("http://localhost:%s", s.httpPort),
	})
	if s.grpcServer != nil {
		s.grpcServer.RegisterQueryService(queryService, authenticator)
	}
}

// Run serves until ctx is cancelled or a listener fails, then shuts every
// listener down
func (s *UnifiedServer) Run(ctx context.Context) error {
	log := logging.New("server")
	if s.grpcServer != nil {
		log.Infof("Starting server (HTTP: %s, gRPC: %s)", s.httpPort, s.grpcPort)
	} else {
		log.Infof("Starting server (HTTP: %s)", s.httpPort)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.httpServer.Serve(); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if s.grpcServer != nil {
		g.Go(func() error {
			if err := s.grpcServer.Serve(); err != nil {
				return fmt.Errorf("gRPC server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		return s.stop()
	})

	return g.Wait()
}

func (s *UnifiedServer) stop() error {
	log := logging.New("server")
	log.Infof("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.grpcServer != nil {
		s.grpcServer.Stop(ctx)
	}
	if err := s.httpServer.Stop(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	log.Infof("Server stopped")
	return nil
}

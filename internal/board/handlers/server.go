// Package handlers serves the board over gRPC and over an HTTP JSON API,
// bridging the transport layer and the board service.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gartstein/staffboard/internal/board/auth"
	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// BoardController defines the business logic interface
// that the gRPC/HTTP handlers will invoke.
type BoardController interface {
	CreateEmployee(ctx context.Context, in models.NewEmployee) (*models.Employee, error)
	FindEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	Employees(ctx context.Context) []models.Employee
	Assign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error
	Unassign(ctx context.Context, id uuid.UUID, zone models.ZoneID) error
	AutoReorganize(ctx context.Context) (models.ReorganizeReport, error)
	IsEligible(role models.Role, zone models.ZoneID) bool
	ZoneOccupancy(zone models.ZoneID) (int, error)
	Zones(ctx context.Context) []models.ZoneSummary
	Unassigned() []uuid.UUID
}

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	return &Server{
		grpcServer:   grpc.NewServer(grpcOpts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger.Named("server"),
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterGRPCHandler registers the gRPC handler for the board service.
func (s *Server) RegisterGRPCHandler(h *BoardHandler) {
	RegisterBoardServiceServer(s.grpcServer, h)
}

// RegisterHTTPGateway mounts the HTTP JSON routes and the metrics endpoint,
// protecting mutating routes with the JWT middleware.
func (s *Server) RegisterHTTPGateway(h *BoardHandler, gatherer prometheus.Gatherer, jwtSecret string) error {
	mux, err := newGatewayMux(h, gatherer)
	if err != nil {
		return fmt.Errorf("failed to register HTTP routes: %w", err)
	}

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}

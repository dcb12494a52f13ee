package receiver

import (
	"context"
	"fmt"
	"net"

	collogspb "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	"google.golang.org/grpc"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/state"
)

// GRPCReceiver serves the OTLP logs service over gRPC.
type GRPCReceiver struct {
	collogspb.UnimplementedLogsServiceServer

	cfg      config.ReceiverConfig
	ingest   *ingestor
	server   *grpc.Server
	listener net.Listener
}

// NewGRPCReceiver creates a gRPC receiver storing into the given store.
func NewGRPCReceiver(cfg config.ReceiverConfig, store state.Store, logger Logger) *GRPCReceiver {
	if logger == nil {
		logger = NopLogger{}
	}
	return &GRPCReceiver{
		cfg:    cfg,
		ingest: &ingestor{store: store, logger: logger},
	}
}

// Start binds the configured port and serves until Stop is called.
func (r *GRPCReceiver) Start() error {
	if r.listener == nil {
		addr := fmt.Sprintf("%s:%d", r.cfg.Bind, r.cfg.GRPCPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("binding gRPC listener on %s: %w", addr, err)
		}
		r.listener = lis
	}

	r.server = grpc.NewServer()
	collogspb.RegisterLogsServiceServer(r.server, r)

	go func() {
		_ = r.server.Serve(r.listener)
	}()

	return nil
}

// Stop gracefully stops the gRPC server.
func (r *GRPCReceiver) Stop() {
	if r.server != nil {
		r.server.GracefulStop()
	}
}

// Addr returns the bound listener address, for tests using ephemeral ports.
func (r *GRPCReceiver) Addr() string {
	if r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// Export implements the OTLP logs service.
func (r *GRPCReceiver) Export(ctx context.Context, req *collogspb.ExportLogsServiceRequest) (*collogspb.ExportLogsServiceResponse, error) {
	r.ingest.consume(req.GetResourceLogs())
	return &collogspb.ExportLogsServiceResponse{}, nil
}

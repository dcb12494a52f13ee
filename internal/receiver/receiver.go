package receiver

import (
	"context"
	"fmt"

	"github.com/nixlim/cc-view/internal/config"
	"github.com/nixlim/cc-view/internal/state"
)

// Receiver runs the gRPC and HTTP OTLP endpoints as one unit.
type Receiver struct {
	grpc *GRPCReceiver
	http *HTTPReceiver
}

// ReceiverOption configures the combined receiver.
type ReceiverOption func(*options)

type options struct {
	logger Logger
}

// WithLogger installs a debug logger on both endpoints.
func WithLogger(l Logger) ReceiverOption {
	return func(o *options) { o.logger = l }
}

// New creates a combined receiver for the given config and store.
func New(cfg config.ReceiverConfig, store state.Store, opts ...ReceiverOption) *Receiver {
	o := options{logger: NopLogger{}}
	for _, opt := range opts {
		opt(&o)
	}

	return &Receiver{
		grpc: NewGRPCReceiver(cfg, store, o.logger),
		http: NewHTTPReceiver(cfg, store, o.logger),
	}
}

// Start brings up both endpoints. If either fails to bind, anything
// already started is stopped and the error is returned.
func (r *Receiver) Start(ctx context.Context) error {
	if err := r.grpc.Start(); err != nil {
		return fmt.Errorf("starting gRPC receiver: %w", err)
	}
	if err := r.http.Start(); err != nil {
		r.grpc.Stop()
		return fmt.Errorf("starting HTTP receiver: %w", err)
	}

	go func() {
		<-ctx.Done()
		r.Stop()
	}()

	return nil
}

// Stop shuts down both endpoints.
func (r *Receiver) Stop() {
	r.grpc.Stop()
	r.http.Stop()
}

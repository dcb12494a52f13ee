package tui

import (
	"context"
	"time"
)

// ShutdownManager coordinates graceful shutdown of cc-view components.
type ShutdownManager struct {
	// DrainTimeout is the maximum time to wait for in-flight exports.
	DrainTimeout time.Duration

	// StopReceiver stops the OTLP receiver from accepting new connections.
	StopReceiver func(ctx context.Context) error

	// Cleanup performs any additional cleanup, e.g. closing the store.
	Cleanup func()
}

// NewShutdownManager creates a ShutdownManager with a 5-second drain timeout.
func NewShutdownManager() *ShutdownManager {
	return &ShutdownManager{
		DrainTimeout: 5 * time.Second,
	}
}

// Shutdown stops the receiver with a drain window, then runs cleanup.
func (sm *ShutdownManager) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.DrainTimeout)
	defer cancel()

	if sm.StopReceiver != nil {
		_ = sm.StopReceiver(ctx)
	}

	if sm.Cleanup != nil {
		sm.Cleanup()
	}

	return nil
}

// Package context provides timeout helpers shared by spotlight's startup
// and shutdown paths.
package context

import (
	"context"
	"time"
)

const (
	// DefaultShutdownTimeout bounds graceful shutdown of servers and clients.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultPingTimeout bounds database and Redis health probes.
	DefaultPingTimeout = 5 * time.Second
)

// WithShutdownTimeout derives a context bounded by DefaultShutdownTimeout.
func WithShutdownTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultShutdownTimeout)
}

// WithPingTimeout derives a context bounded by DefaultPingTimeout.
func WithPingTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultPingTimeout)
}

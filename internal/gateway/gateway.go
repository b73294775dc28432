package gateway

import "context"

// Gateway defines the interface for transport frontends serving the agent.
type Gateway interface {
	// Start begins serving requests and blocks until Stop or a fatal error.
	Start() error
	// Stop gracefully shuts down the gateway.
	Stop(ctx context.Context) error
}

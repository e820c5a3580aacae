package runtime

import (
	"context"
	"fmt"
)

// Spec describes the container to launch for one deployment slot.
type Spec struct {
	Name  string   // container name (e.g. "myapp-green")
	Image string   // image reference
	Port  int      // host port the app listens on
	Env   []string // extra KEY=VALUE pairs; PORT is always set
}

// Runtime is the container runtime contract the deployer consumes. Both
// implementations treat container names as the only handle; all state is
// re-derived from the runtime itself.
type Runtime interface {
	// PullImage fetches the image so Launch does not pay the pull cost.
	PullImage(ctx context.Context, image string) error

	// Launch creates and starts a container bound to the spec's port.
	Launch(ctx context.Context, spec Spec) error

	// Stop gracefully stops a container. Stopping a container that does
	// not exist or is not running is not an error.
	Stop(ctx context.Context, name string) error

	// Remove deletes a stopped container. Removing a container that does
	// not exist is not an error.
	Remove(ctx context.Context, name string) error

	// IsRunning reports whether a container with this name is running.
	IsRunning(ctx context.Context, name string) (bool, error)

	// Close releases any client connections.
	Close() error
}

// LaunchError indicates the runtime rejected the new container (port
// already bound, image missing, name conflict).
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch container %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

package runtime

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/cio"
	"github.com/containerd/containerd/namespaces"
	"github.com/containerd/containerd/oci"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/hueshift/hueshift/pkg/log"
)

const (
	// DefaultNamespace is the containerd namespace for hueshift containers
	DefaultNamespace = "hueshift"

	// DefaultSocketPath is the default containerd socket
	DefaultSocketPath = "/run/containerd/containerd.sock"

	// stopTimeout bounds the SIGTERM grace period before SIGKILL
	stopTimeout = 10 * time.Second
)

// ContainerdRuntime implements Runtime using a containerd client. The
// container shares the host network namespace so the slot port is reachable
// on localhost without a port mapping; the app reads it from PORT.
type ContainerdRuntime struct {
	client    *containerd.Client
	namespace string
}

// NewContainerdRuntime creates a new containerd runtime client.
func NewContainerdRuntime(socketPath string) (*ContainerdRuntime, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	client, err := containerd.New(socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to containerd: %w", err)
	}

	return &ContainerdRuntime{
		client:    client,
		namespace: DefaultNamespace,
	}, nil
}

// Close closes the containerd client connection.
func (r *ContainerdRuntime) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// PullImage pulls a container image from a registry.
func (r *ContainerdRuntime) PullImage(ctx context.Context, imageRef string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	if _, err := r.client.Pull(ctx, imageRef, containerd.WithPullUnpack); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", imageRef, err)
	}
	return nil
}

// Launch creates a container from the spec and starts its task.
func (r *ContainerdRuntime) Launch(ctx context.Context, spec Spec) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	image, err := r.client.GetImage(ctx, spec.Image)
	if err != nil {
		// Not pulled yet; try once before giving up
		image, err = r.client.Pull(ctx, spec.Image, containerd.WithPullUnpack)
		if err != nil {
			return &LaunchError{Name: spec.Name, Err: fmt.Errorf("image %s: %w", spec.Image, err)}
		}
	}

	env := append([]string{fmt.Sprintf("PORT=%d", spec.Port)}, spec.Env...)
	opts := []oci.SpecOpts{
		oci.WithImageConfig(image),
		oci.WithEnv(env),
		oci.WithHostNamespace(specs.NetworkNamespace),
	}

	container, err := r.client.NewContainer(
		ctx,
		spec.Name,
		containerd.WithImage(image),
		containerd.WithNewSnapshot(spec.Name+"-snapshot", image),
		containerd.WithNewSpec(opts...),
	)
	if err != nil {
		return &LaunchError{Name: spec.Name, Err: err}
	}

	task, err := container.NewTask(ctx, cio.NullIO)
	if err != nil {
		_ = container.Delete(ctx, containerd.WithSnapshotCleanup)
		return &LaunchError{Name: spec.Name, Err: fmt.Errorf("failed to create task: %w", err)}
	}

	if err := task.Start(ctx); err != nil {
		_, _ = task.Delete(ctx)
		_ = container.Delete(ctx, containerd.WithSnapshotCleanup)
		return &LaunchError{Name: spec.Name, Err: fmt.Errorf("failed to start task: %w", err)}
	}

	return nil
}

// Stop gracefully stops a container's task (SIGTERM, then SIGKILL after
// the grace period). A missing container or task is not an error.
func (r *ContainerdRuntime) Stop(ctx context.Context, name string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, name)
	if err != nil {
		return nil
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		// No task means the container is not running
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	if err := task.Kill(stopCtx, syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to kill task %s: %w", name, err)
	}

	statusC, err := task.Wait(stopCtx)
	if err != nil {
		return fmt.Errorf("failed to wait for task %s: %w", name, err)
	}

	select {
	case <-statusC:
		// Task exited
	case <-stopCtx.Done():
		if err := task.Kill(ctx, syscall.SIGKILL); err != nil {
			return fmt.Errorf("failed to force kill task %s: %w", name, err)
		}
	}

	if _, err := task.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", name, err)
	}
	return nil
}

// Remove deletes a container and its snapshot. A missing container is not
// an error.
func (r *ContainerdRuntime) Remove(ctx context.Context, name string) error {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, name)
	if err != nil {
		return nil
	}

	if err := r.Stop(ctx, name); err != nil {
		logger := log.WithComponent("runtime")
		logger.Warn().Err(err).Str("container", name).
			Msg("failed to stop container before remove")
	}

	if err := container.Delete(ctx, containerd.WithSnapshotCleanup); err != nil {
		return fmt.Errorf("failed to delete container %s: %w", name, err)
	}
	return nil
}

// IsRunning reports whether the named container has a running task.
func (r *ContainerdRuntime) IsRunning(ctx context.Context, name string) (bool, error) {
	ctx = namespaces.WithNamespace(ctx, r.namespace)

	container, err := r.client.LoadContainer(ctx, name)
	if err != nil {
		return false, nil
	}

	task, err := container.Task(ctx, nil)
	if err != nil {
		return false, nil
	}

	status, err := task.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get task status for %s: %w", name, err)
	}
	return status.Status == containerd.Running, nil
}

package runtime

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"al.essio.dev/pkg/shellescape"

	"github.com/hueshift/hueshift/pkg/log"
)

// CommandRunner executes an external command and returns its combined
// output. Tests inject a fake to observe docker invocations.
type CommandRunner interface {
	Run(ctx context.Context, argv []string) ([]byte, error)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct{}

// Run executes argv[0] with the remaining arguments.
func (ExecRunner) Run(ctx context.Context, argv []string) ([]byte, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	logger := log.WithComponent("runtime")
	logger.Debug().Str("cmd", shellescape.QuoteCommand(argv)).Msg("running command")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", argv[0], err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// DockerRuntime drives containers through the docker CLI, the way the
// deployment host actually runs them.
type DockerRuntime struct {
	binary    string
	extraArgs []string // extra "docker run" arguments from the deployfile
	runner    CommandRunner
}

// NewDockerRuntime creates a docker CLI runtime.
func NewDockerRuntime(binary string, extraArgs []string) *DockerRuntime {
	if binary == "" {
		binary = "docker"
	}
	return &DockerRuntime{
		binary:    binary,
		extraArgs: extraArgs,
		runner:    ExecRunner{},
	}
}

// WithRunner replaces the command runner. Used by tests.
func (r *DockerRuntime) WithRunner(cr CommandRunner) *DockerRuntime {
	r.runner = cr
	return r
}

// PullImage pulls a container image from a registry.
func (r *DockerRuntime) PullImage(ctx context.Context, image string) error {
	if _, err := r.runner.Run(ctx, []string{r.binary, "pull", image}); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", image, err)
	}
	return nil
}

// Launch starts a detached container publishing the slot port 1:1 and
// passing it to the app via the PORT environment variable.
func (r *DockerRuntime) Launch(ctx context.Context, spec Spec) error {
	argv := []string{
		r.binary, "run", "-d",
		"--name", spec.Name,
		"-p", fmt.Sprintf("%d:%d", spec.Port, spec.Port),
		"-e", fmt.Sprintf("PORT=%d", spec.Port),
	}
	for _, kv := range spec.Env {
		argv = append(argv, "-e", kv)
	}
	argv = append(argv, r.extraArgs...)
	argv = append(argv, spec.Image)

	if _, err := r.runner.Run(ctx, argv); err != nil {
		return &LaunchError{Name: spec.Name, Err: err}
	}
	return nil
}

// Stop stops a container. A missing container is not an error.
func (r *DockerRuntime) Stop(ctx context.Context, name string) error {
	out, err := r.runner.Run(ctx, []string{r.binary, "stop", name})
	if err != nil && !isMissingContainer(out, err) {
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}
	return nil
}

// Remove deletes a container. A missing container is not an error.
func (r *DockerRuntime) Remove(ctx context.Context, name string) error {
	out, err := r.runner.Run(ctx, []string{r.binary, "rm", name})
	if err != nil && !isMissingContainer(out, err) {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}
	return nil
}

// IsRunning inspects the container's running state.
func (r *DockerRuntime) IsRunning(ctx context.Context, name string) (bool, error) {
	out, err := r.runner.Run(ctx, []string{r.binary, "inspect", "-f", "{{.State.Running}}", name})
	if err != nil {
		if isMissingContainer(out, err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// Close is a no-op; the docker CLI holds no persistent connection.
func (r *DockerRuntime) Close() error { return nil }

// isMissingContainer matches the docker CLI's not-found wording across
// stop/rm/inspect.
func isMissingContainer(out []byte, err error) bool {
	msg := strings.ToLower(string(out) + " " + err.Error())
	return strings.Contains(msg, "no such container") || strings.Contains(msg, "no such object")
}

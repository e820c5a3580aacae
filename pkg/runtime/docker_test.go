package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hueshift/hueshift/pkg/log"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel})
	os.Exit(m.Run())
}

// fakeRunner replays canned responses keyed by the docker subcommand.
type fakeRunner struct {
	calls  [][]string
	output map[string]string // subcommand -> stdout
	errs   map[string]string // subcommand -> error output
}

func (r *fakeRunner) Run(_ context.Context, argv []string) ([]byte, error) {
	r.calls = append(r.calls, argv)
	sub := argv[1]
	if msg, ok := r.errs[sub]; ok {
		return []byte(msg), fmt.Errorf("docker: exit status 1: %s", msg)
	}
	return []byte(r.output[sub]), nil
}

func TestDockerLaunchArgs(t *testing.T) {
	runner := &fakeRunner{}
	rt := NewDockerRuntime("docker", []string{"--restart", "unless-stopped"}).WithRunner(runner)

	err := rt.Launch(context.Background(), Spec{
		Name:  "myapp-green",
		Image: "registry.example.com/myapp:v2",
		Port:  3002,
		Env:   []string{"NODE_ENV=production"},
	})
	require.NoError(t, err)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{
		"docker", "run", "-d",
		"--name", "myapp-green",
		"-p", "3002:3002",
		"-e", "PORT=3002",
		"-e", "NODE_ENV=production",
		"--restart", "unless-stopped",
		"registry.example.com/myapp:v2",
	}, runner.calls[0])
}

func TestDockerLaunchFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]string{
		"run": "Bind for 0.0.0.0:3002 failed: port is already allocated",
	}}
	rt := NewDockerRuntime("docker", nil).WithRunner(runner)

	err := rt.Launch(context.Background(), Spec{Name: "myapp-green", Image: "img", Port: 3002})

	var launchErr *LaunchError
	require.Error(t, err)
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "myapp-green", launchErr.Name)
}

func TestDockerStopMissingContainerIsNotAnError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]string{
		"stop": "Error response from daemon: No such container: myapp-blue",
	}}
	rt := NewDockerRuntime("docker", nil).WithRunner(runner)

	assert.NoError(t, rt.Stop(context.Background(), "myapp-blue"))
}

func TestDockerRemoveMissingContainerIsNotAnError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]string{
		"rm": "Error response from daemon: No such container: myapp-blue",
	}}
	rt := NewDockerRuntime("docker", nil).WithRunner(runner)

	assert.NoError(t, rt.Remove(context.Background(), "myapp-blue"))
}

func TestDockerRemoveOtherFailure(t *testing.T) {
	runner := &fakeRunner{errs: map[string]string{
		"rm": "Error response from daemon: conflict: container is running",
	}}
	rt := NewDockerRuntime("docker", nil).WithRunner(runner)

	assert.Error(t, rt.Remove(context.Background(), "myapp-blue"))
}

func TestDockerIsRunning(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		errMsg  string
		running bool
		wantErr bool
	}{
		{name: "running", output: "true\n", running: true},
		{name: "stopped", output: "false\n", running: false},
		{name: "missing container", errMsg: "Error: No such object: myapp-green", running: false},
		{name: "daemon unreachable", errMsg: "Cannot connect to the Docker daemon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{output: map[string]string{"inspect": tt.output}}
			if tt.errMsg != "" {
				runner.errs = map[string]string{"inspect": tt.errMsg}
			}
			rt := NewDockerRuntime("docker", nil).WithRunner(runner)

			running, err := rt.IsRunning(context.Background(), "myapp-green")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.running, running)
		})
	}
}

func TestDockerPullImage(t *testing.T) {
	runner := &fakeRunner{}
	rt := NewDockerRuntime("", nil).WithRunner(runner)

	require.NoError(t, rt.PullImage(context.Background(), "myapp:v2"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"docker", "pull", "myapp:v2"}, runner.calls[0])
}

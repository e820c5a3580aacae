package proxy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hueshift/hueshift/pkg/log"
	"github.com/hueshift/hueshift/pkg/types"
)

func TestMain(m *testing.M) {
	log.Init(log.Config{Level: log.ErrorLevel})
	os.Exit(m.Run())
}

const nginxConf = `server {
    listen 80;
    server_name app.example.com;

    location / {
        proxy_pass http://127.0.0.1:3001;
        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
    }
}
`

// fakeRunner records invocations and fails the configured steps.
type fakeRunner struct {
	calls       [][]string
	failOnCall  int // 1-based index of the call that fails, 0 = never
	failMessage string
}

func (r *fakeRunner) Run(_ context.Context, argv []string) ([]byte, error) {
	r.calls = append(r.calls, argv)
	if r.failOnCall == len(r.calls) {
		return nil, fmt.Errorf("%s", r.failMessage)
	}
	return []byte("ok"), nil
}

func writeConf(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestActivePort(t *testing.T) {
	tests := []struct {
		name    string
		content string
		port    int
		wantErr bool
	}{
		{name: "proxy_pass form", content: nginxConf, port: 3001},
		{
			name:    "upstream server form",
			content: "upstream app {\n    server 127.0.0.1:3002;\n}\n",
			port:    3002,
		},
		{
			name:    "localhost form",
			content: "location / { proxy_pass http://localhost:3001; }\n",
			port:    3001,
		},
		{
			name: "both forms agreeing",
			content: "upstream app {\n    server 127.0.0.1:3002;\n}\n" +
				"server {\n    location / { proxy_pass http://127.0.0.1:3002; }\n}\n",
			port: 3002,
		},
		{name: "no upstream line", content: "server { listen 80; }\n", wantErr: true},
		{
			name: "ambiguous ports",
			content: "upstream app {\n    server 127.0.0.1:3001;\n}\n" +
				"location / { proxy_pass http://127.0.0.1:3002; }\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(writeConf(t, tt.content), nil, []string{"true"})
			port, err := f.ActivePort()
			if tt.wantErr {
				var parseErr *ParseError
				require.Error(t, err)
				assert.True(t, errors.As(err, &parseErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.port, port)
		})
	}
}

func TestActivePortMissingFile(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "missing.conf"), nil, []string{"true"})
	_, err := f.ActivePort()

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestActiveTarget(t *testing.T) {
	pm := types.DefaultPortMap()

	tests := []struct {
		name      string
		port      int
		active    types.Color
		candidate types.Color
	}{
		{name: "blue active yields green candidate", port: 3001, active: types.ColorBlue, candidate: types.ColorGreen},
		{name: "green active yields blue candidate", port: 3002, active: types.ColorGreen, candidate: types.ColorBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := fmt.Sprintf("location / { proxy_pass http://127.0.0.1:%d; }\n", tt.port)
			f := New(writeConf(t, content), nil, []string{"true"})

			active, candidate, err := f.ActiveTarget(pm, "myapp")
			require.NoError(t, err)

			assert.Equal(t, tt.active, active.Color)
			assert.Equal(t, tt.port, active.Port)
			assert.Equal(t, tt.candidate, candidate.Color)
			assert.Equal(t, pm.PortOf(tt.candidate), candidate.Port)
			assert.Equal(t, "myapp-"+string(tt.candidate), candidate.ContainerName)
		})
	}
}

func TestActiveTargetUnmappedPort(t *testing.T) {
	f := New(writeConf(t, "location / { proxy_pass http://127.0.0.1:8080; }\n"), nil, []string{"true"})

	_, _, err := f.ActiveTarget(types.DefaultPortMap(), "myapp")
	var parseErr *ParseError
	require.Error(t, err)
	assert.True(t, errors.As(err, &parseErr))
}

func TestSwitchSuccess(t *testing.T) {
	path := writeConf(t, nginxConf)
	runner := &fakeRunner{}
	f := New(path, []string{"nginx", "-t"}, []string{"nginx", "-s", "reload"}).WithRunner(runner)

	require.NoError(t, f.Switch(context.Background(), 3002))

	// Only the port changed
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "proxy_pass http://127.0.0.1:3002;")
	assert.NotContains(t, string(data), ":3001")
	assert.Contains(t, string(data), "proxy_set_header Host $host;")

	// Validate ran before reload, reload ran exactly once
	require.Len(t, runner.calls, 2)
	assert.Equal(t, []string{"nginx", "-t"}, runner.calls[0])
	assert.Equal(t, []string{"nginx", "-s", "reload"}, runner.calls[1])
}

func TestSwitchValidateFailureRestoresBytes(t *testing.T) {
	path := writeConf(t, nginxConf)
	runner := &fakeRunner{failOnCall: 1, failMessage: "nginx: configuration file test failed"}
	f := New(path, []string{"nginx", "-t"}, []string{"nginx", "-s", "reload"}).WithRunner(runner)

	err := f.Switch(context.Background(), 3002)

	var reloadErr *ReloadError
	require.Error(t, err)
	require.True(t, errors.As(err, &reloadErr))
	assert.Equal(t, "validate", reloadErr.Step)

	// Byte-for-byte identical to the pre-attempt content
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, nginxConf, string(data))

	// Reload was never signaled
	assert.Len(t, runner.calls, 1)
}

func TestSwitchReloadFailureRestoresBytes(t *testing.T) {
	path := writeConf(t, nginxConf)
	runner := &fakeRunner{failOnCall: 2, failMessage: "signal process started failed"}
	f := New(path, []string{"nginx", "-t"}, []string{"nginx", "-s", "reload"}).WithRunner(runner)

	err := f.Switch(context.Background(), 3002)

	var reloadErr *ReloadError
	require.Error(t, err)
	require.True(t, errors.As(err, &reloadErr))
	assert.Equal(t, "reload", reloadErr.Step)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, nginxConf, string(data))
}

func TestSwitchWithoutValidateCmd(t *testing.T) {
	path := writeConf(t, nginxConf)
	runner := &fakeRunner{}
	f := New(path, nil, []string{"systemctl", "reload", "nginx"}).WithRunner(runner)

	require.NoError(t, f.Switch(context.Background(), 3002))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"systemctl", "reload", "nginx"}, runner.calls[0])
}

func TestSwitchToSamePort(t *testing.T) {
	path := writeConf(t, nginxConf)
	runner := &fakeRunner{}
	f := New(path, nil, []string{"true"}).WithRunner(runner)

	err := f.Switch(context.Background(), 3001)
	assert.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestSwitchRewritesBothUpstreamForms(t *testing.T) {
	content := "upstream app {\n    server 127.0.0.1:3001;\n}\n" +
		"server {\n    location / { proxy_pass http://127.0.0.1:3001; }\n}\n"
	path := writeConf(t, content)
	f := New(path, nil, []string{"true"}).WithRunner(&fakeRunner{})

	require.NoError(t, f.Switch(context.Background(), 3002))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server 127.0.0.1:3002;")
	assert.Contains(t, string(data), "proxy_pass http://127.0.0.1:3002;")
	assert.NotContains(t, string(data), ":3001")
}

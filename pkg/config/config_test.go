package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hueshift/hueshift/pkg/types"
)

func writeDeployfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeDeployfile(t, `
proxy:
  config_path: /etc/nginx/conf.d/myapp.conf
container:
  name_prefix: myapp
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	// Unset sections fall back to defaults
	assert.Equal(t, "docker", cfg.Runtime.Kind)
	assert.Equal(t, 3001, cfg.Ports.Blue)
	assert.Equal(t, 3002, cfg.Ports.Green)
	assert.Equal(t, []string{"nginx", "-t"}, cfg.Proxy.ValidateCmd)
	assert.Equal(t, []string{"nginx", "-s", "reload"}, cfg.Proxy.ReloadCmd)
	assert.Equal(t, 2*time.Minute, cfg.Deploy.Timeout)

	// Set fields override
	assert.Equal(t, "/etc/nginx/conf.d/myapp.conf", cfg.Proxy.ConfigPath)
	assert.Equal(t, "myapp", cfg.Container.NamePrefix)
}

func TestLoadFullDeployfile(t *testing.T) {
	path := writeDeployfile(t, `
proxy:
  config_path: /etc/nginx/sites-enabled/web.conf
  validate_cmd: ["nginx", "-t", "-c", "/etc/nginx/nginx.conf"]
  reload_cmd: ["systemctl", "reload", "nginx"]
runtime:
  kind: containerd
  socket: /run/containerd/containerd.sock
  env: ["NODE_ENV=production"]
ports:
  blue: 9001
  green: 9002
container:
  name_prefix: web
  image: registry.example.com/web:latest
health:
  type: http
  path: /healthz
  interval: 1s
  timeout: 3s
  start_period: 10s
deploy:
  timeout: 5m
log:
  level: debug
  json: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "containerd", cfg.Runtime.Kind)
	assert.Equal(t, []string{"systemctl", "reload", "nginx"}, cfg.Proxy.ReloadCmd)
	assert.Equal(t, types.PortMap{Blue: 9001, Green: 9002}, cfg.PortMap())
	assert.Equal(t, "registry.example.com/web:latest", cfg.Container.Image)
	assert.Equal(t, 5*time.Minute, cfg.Deploy.Timeout)
	assert.True(t, cfg.Log.JSON)

	hc := cfg.HealthCheck()
	assert.Equal(t, types.HealthCheckHTTP, hc.Type)
	assert.Equal(t, "/healthz", hc.Path)
	assert.Equal(t, 10*time.Second, hc.StartPeriod)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeDeployfile(t, "proxy: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:   "missing config path",
			mutate: func(c *Config) { c.Proxy.ConfigPath = "" },
			errMsg: "config_path",
		},
		{
			name:   "missing reload cmd",
			mutate: func(c *Config) { c.Proxy.ReloadCmd = nil },
			errMsg: "reload_cmd",
		},
		{
			name:   "unknown runtime",
			mutate: func(c *Config) { c.Runtime.Kind = "podman" },
			errMsg: "runtime.kind",
		},
		{
			name:   "equal ports",
			mutate: func(c *Config) { c.Ports.Green = c.Ports.Blue },
			errMsg: "ports",
		},
		{
			name:   "unknown health type",
			mutate: func(c *Config) { c.Health.Type = "exec" },
			errMsg: "health.type",
		},
		{
			name:   "zero deploy timeout",
			mutate: func(c *Config) { c.Deploy.Timeout = 0 },
			errMsg: "deploy.timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestHealthCheckDefaultsPath(t *testing.T) {
	cfg := Default()
	cfg.Health.Path = ""
	assert.Equal(t, "/", cfg.HealthCheck().Path)
}

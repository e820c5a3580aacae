package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hueshift/hueshift/pkg/types"
)

// Config is the parsed deployfile.
type Config struct {
	Proxy     ProxyConfig     `yaml:"proxy"`
	Runtime   RuntimeConfig   `yaml:"runtime"`
	Ports     PortsConfig     `yaml:"ports"`
	Container ContainerConfig `yaml:"container"`
	Health    HealthConfig    `yaml:"health"`
	Deploy    DeployConfig    `yaml:"deploy"`
	Log       LogConfig       `yaml:"log"`
}

// ProxyConfig describes the reverse proxy under management.
type ProxyConfig struct {
	ConfigPath  string   `yaml:"config_path"`
	ValidateCmd []string `yaml:"validate_cmd,omitempty"`
	ReloadCmd   []string `yaml:"reload_cmd,omitempty"`
}

// RuntimeConfig selects and configures the container runtime.
type RuntimeConfig struct {
	Kind   string   `yaml:"kind"`             // "docker" or "containerd"
	Binary string   `yaml:"binary,omitempty"` // docker CLI path
	Socket string   `yaml:"socket,omitempty"` // containerd socket path
	Env    []string `yaml:"env,omitempty"`    // extra KEY=VALUE pairs for the container
	Args   []string `yaml:"args,omitempty"`   // extra docker run arguments
}

// PortsConfig is the color-to-port mapping.
type PortsConfig struct {
	Blue  int `yaml:"blue"`
	Green int `yaml:"green"`
}

// ContainerConfig names the managed containers.
type ContainerConfig struct {
	NamePrefix string `yaml:"name_prefix"`
	Image      string `yaml:"image,omitempty"` // default image, overridable with --image
}

// HealthConfig describes the readiness probe for the candidate.
type HealthConfig struct {
	Type        string        `yaml:"type"` // "http" or "tcp"
	Path        string        `yaml:"path,omitempty"`
	Interval    time.Duration `yaml:"interval,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	StartPeriod time.Duration `yaml:"start_period,omitempty"`
	StatusMin   int           `yaml:"status_min,omitempty"`
	StatusMax   int           `yaml:"status_max,omitempty"`
}

// DeployConfig holds per-run settings.
type DeployConfig struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"` // overall deadline for one deployment
	MetricsAddr string        `yaml:"metrics_addr,omitempty"`
	LockDir     string        `yaml:"lock_dir,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	JSON  bool   `yaml:"json,omitempty"`
}

// Default returns a Config with every field the tool can default.
func Default() *Config {
	return &Config{
		Proxy: ProxyConfig{
			ConfigPath:  "/etc/nginx/conf.d/app.conf",
			ValidateCmd: []string{"nginx", "-t"},
			ReloadCmd:   []string{"nginx", "-s", "reload"},
		},
		Runtime: RuntimeConfig{
			Kind:   "docker",
			Binary: "docker",
			Socket: "/run/containerd/containerd.sock",
		},
		Ports: PortsConfig{Blue: 3001, Green: 3002},
		Container: ContainerConfig{
			NamePrefix: "app",
		},
		Health: HealthConfig{
			Type:      "http",
			Path:      "/",
			Interval:  2 * time.Second,
			Timeout:   5 * time.Second,
			StatusMin: 200,
			StatusMax: 399,
		},
		Deploy: DeployConfig{
			Timeout: 2 * time.Minute,
			LockDir: "/tmp",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a deployfile and merges it over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parsed config for the invariants the deployer relies on.
func (c *Config) Validate() error {
	if c.Proxy.ConfigPath == "" {
		return fmt.Errorf("proxy.config_path is required")
	}
	if len(c.Proxy.ReloadCmd) == 0 {
		return fmt.Errorf("proxy.reload_cmd is required")
	}
	switch c.Runtime.Kind {
	case "docker", "containerd":
	default:
		return fmt.Errorf("runtime.kind must be \"docker\" or \"containerd\", got %q", c.Runtime.Kind)
	}
	if err := c.PortMap().Validate(); err != nil {
		return fmt.Errorf("invalid ports: %w", err)
	}
	if c.Container.NamePrefix == "" {
		return fmt.Errorf("container.name_prefix is required")
	}
	switch c.Health.Type {
	case "http", "tcp":
	default:
		return fmt.Errorf("health.type must be \"http\" or \"tcp\", got %q", c.Health.Type)
	}
	if c.Health.Interval <= 0 {
		return fmt.Errorf("health.interval must be positive")
	}
	if c.Deploy.Timeout <= 0 {
		return fmt.Errorf("deploy.timeout must be positive")
	}
	return nil
}

// PortMap converts the ports section into the domain mapping.
func (c *Config) PortMap() types.PortMap {
	return types.PortMap{Blue: c.Ports.Blue, Green: c.Ports.Green}
}

// HealthCheck converts the health section into the domain spec.
func (c *Config) HealthCheck() types.HealthCheck {
	hc := types.HealthCheck{
		Type:        types.HealthCheckType(c.Health.Type),
		Path:        c.Health.Path,
		Interval:    c.Health.Interval,
		Timeout:     c.Health.Timeout,
		StartPeriod: c.Health.StartPeriod,
		StatusMin:   c.Health.StatusMin,
		StatusMax:   c.Health.StatusMax,
	}
	if hc.Path == "" {
		hc.Path = "/"
	}
	return hc
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hueshift/hueshift/pkg/config"
	"github.com/hueshift/hueshift/pkg/deploy"
	"github.com/hueshift/hueshift/pkg/events"
	"github.com/hueshift/hueshift/pkg/lock"
	"github.com/hueshift/hueshift/pkg/log"
	"github.com/hueshift/hueshift/pkg/metrics"
	"github.com/hueshift/hueshift/pkg/proxy"
	"github.com/hueshift/hueshift/pkg/runtime"
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy an image with a blue-green traffic switch",
	Long: `Deploy launches the given image on the inactive port, waits for it
to pass health checks, switches the proxy upstream to it, then removes
the previously active container.

On any failure before the switch the new container is removed and the
running version keeps serving traffic.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		image, _ := cmd.Flags().GetString("image")
		configPath, _ := cmd.Flags().GetString("config")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		return runDeploy(image, configPath, timeout, metricsAddr)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which color is live and the state of both containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return runStatus(configPath)
	},
}

func init() {
	deployCmd.Flags().String("image", "", "Container image to deploy")
	deployCmd.Flags().String("config", "", "Path to the deployfile (YAML)")
	deployCmd.Flags().Duration("timeout", 0, "Overall deployment deadline (overrides the deployfile)")
	deployCmd.Flags().String("metrics-addr", "", "Serve Prometheus /metrics on this address for the duration of the run")

	statusCmd.Flags().String("config", "", "Path to the deployfile (YAML)")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runDeploy(image, configPath string, timeout time.Duration, metricsAddr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log.Init(log.Config{
		Level:      log.Level(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
	})

	if image == "" {
		image = cfg.Container.Image
	}
	if image == "" {
		return fmt.Errorf("--image is required (no default image in the deployfile)")
	}
	if timeout == 0 {
		timeout = cfg.Deploy.Timeout
	}
	if metricsAddr == "" {
		metricsAddr = cfg.Deploy.MetricsAddr
	}

	// One deployment at a time per proxy config
	l, err := lock.Acquire(lock.PathFor(cfg.Deploy.LockDir, cfg.Proxy.ConfigPath))
	if err != nil {
		return err
	}
	defer l.Release()

	if metricsAddr != "" {
		stop := metrics.Serve(metricsAddr)
		defer stop()
	}

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker := events.NewBroker()
	broker.Start()

	sub := broker.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range sub {
			printEvent(ev)
		}
	}()

	d := deploy.NewDeployer(
		proxy.New(cfg.Proxy.ConfigPath, cfg.Proxy.ValidateCmd, cfg.Proxy.ReloadCmd),
		rt,
		broker,
	)
	dep, err := d.Run(ctx, deploy.Options{
		Image:       image,
		PortMap:     cfg.PortMap(),
		NamePrefix:  cfg.Container.NamePrefix,
		Env:         cfg.Runtime.Env,
		HealthCheck: cfg.HealthCheck(),
		Timeout:     timeout,
	})

	// Stop drains queued events and closes the subscriber channel
	broker.Stop()
	<-done

	if err != nil {
		fmt.Printf("\nDeployment %s failed after %s: %v\n",
			dep.ID, dep.EndedAt.Sub(dep.StartedAt).Round(time.Millisecond), err)
		return err
	}

	fmt.Printf("\n✓ Deployed %s to %s (:%d) in %s\n",
		image, dep.Candidate.Color, dep.Candidate.Port,
		dep.EndedAt.Sub(dep.StartedAt).Round(time.Millisecond))
	return nil
}

func printEvent(ev *events.Event) {
	switch ev.Type {
	case events.EventStageEntered:
		fmt.Printf("  [%s] %s\n", ev.Stage, ev.Message)
	case events.EventStageFailed:
		fmt.Printf("  ✗ %s failed: %s\n", ev.Stage, ev.Message)
	case events.EventRollback:
		fmt.Printf("  ↩ rolled back: %s\n", ev.Message)
	case events.EventReaperWarning:
		fmt.Printf("  ! %s\n", ev.Message)
	}
}

func runStatus(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	// Keep status output clean
	log.Init(log.Config{Level: log.WarnLevel, JSONOutput: cfg.Log.JSON})

	rt, err := newRuntime(cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	d := deploy.NewDeployer(
		proxy.New(cfg.Proxy.ConfigPath, cfg.Proxy.ValidateCmd, cfg.Proxy.ReloadCmd),
		rt,
		broker,
	)
	states, err := d.Status(context.Background(), cfg.PortMap(), cfg.Container.NamePrefix)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-7s %-6s %-24s %s\n", "ACTIVE", "COLOR", "PORT", "CONTAINER", "RUNNING")
	for _, s := range states {
		active := ""
		if s.Active {
			active = "*"
		}
		running := "no"
		if s.Running {
			running = "yes"
		}
		fmt.Printf("%-8s %-7s %-6d %-24s %s\n",
			active, s.Target.Color, s.Target.Port, s.Target.ContainerName, running)
	}
	return nil
}

// newRuntime builds the configured container runtime.
func newRuntime(cfg *config.Config) (runtime.Runtime, error) {
	switch cfg.Runtime.Kind {
	case "containerd":
		return runtime.NewContainerdRuntime(cfg.Runtime.Socket)
	case "docker":
		return runtime.NewDockerRuntime(cfg.Runtime.Binary, cfg.Runtime.Args), nil
	default:
		return nil, fmt.Errorf("unsupported runtime kind %q", cfg.Runtime.Kind)
	}
}

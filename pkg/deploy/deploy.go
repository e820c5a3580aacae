package deploy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hueshift/hueshift/pkg/events"
	"github.com/hueshift/hueshift/pkg/health"
	"github.com/hueshift/hueshift/pkg/log"
	"github.com/hueshift/hueshift/pkg/metrics"
	"github.com/hueshift/hueshift/pkg/proxy"
	"github.com/hueshift/hueshift/pkg/runtime"
	"github.com/hueshift/hueshift/pkg/types"
)

// cleanupTimeout bounds the rollback and reaper container operations,
// which run detached from the deployment deadline.
const cleanupTimeout = 30 * time.Second

// Proxy is the slice of pkg/proxy the deployer consumes.
type Proxy interface {
	ActiveTarget(pm types.PortMap, prefix string) (active, candidate types.Target, err error)
	Switch(ctx context.Context, newPort int) error
}

// CheckerFactory builds the readiness checker for a candidate port.
// Replaceable so deployment-flow tests can fake readiness.
type CheckerFactory func(hc types.HealthCheck, port int) health.Checker

// Options describes one deployment run.
type Options struct {
	Image       string
	PortMap     types.PortMap
	NamePrefix  string
	Env         []string
	HealthCheck types.HealthCheck
	Timeout     time.Duration // overall deadline for the whole run
}

// Deployer performs blue-green deployments: launch the candidate on the
// inactive port, probe it, switch traffic, reap the old instance.
type Deployer struct {
	proxy      Proxy
	runtime    runtime.Runtime
	broker     *events.Broker
	newChecker CheckerFactory
}

// NewDeployer creates a new deployer
func NewDeployer(p Proxy, rt runtime.Runtime, broker *events.Broker) *Deployer {
	return &Deployer{
		proxy:      p,
		runtime:    rt,
		broker:     broker,
		newChecker: health.ForTarget,
	}
}

// WithCheckerFactory replaces the readiness checker factory. Used by tests.
func (d *Deployer) WithCheckerFactory(f CheckerFactory) *Deployer {
	d.newChecker = f
	return d
}

// Run executes one deployment. It returns the deployment record in every
// case; the error is nil only when traffic moved to the candidate. Callers
// must already hold the deployment lock for this target.
func (d *Deployer) Run(ctx context.Context, opts Options) (*types.Deployment, error) {
	dep := &types.Deployment{
		ID:        uuid.New().String(),
		Image:     opts.Image,
		Stage:     types.StageIdle,
		StartedAt: time.Now(),
	}
	logger := log.WithDeployID(dep.ID)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	defer func() {
		dep.EndedAt = time.Now()
		metrics.DeploymentsTotal.WithLabelValues(dep.Outcome()).Inc()
	}()

	// Port allocation: everything is derived from the proxy file
	active, candidate, err := d.proxy.ActiveTarget(opts.PortMap, opts.NamePrefix)
	if err != nil {
		dep.Err = err
		return dep, err
	}
	dep.Active = active
	dep.Candidate = candidate

	logger.Info().
		Str("image", opts.Image).
		Str("active", string(active.Color)).
		Str("candidate", string(candidate.Color)).
		Int("candidate_port", candidate.Port).
		Msg("deployment starting")

	if err := d.launch(ctx, dep, opts); err != nil {
		return dep, err
	}
	if err := d.probe(ctx, dep, opts); err != nil {
		return dep, err
	}
	if err := d.switchTraffic(ctx, dep); err != nil {
		return dep, err
	}
	d.reap(ctx, dep)

	d.enter(dep, types.StageDone, fmt.Sprintf("traffic on %s (:%d), %s removed",
		dep.Candidate.Color, dep.Candidate.Port, dep.Active.Color))
	d.broker.Publish(&events.Event{
		Type:     events.EventDeployDone,
		DeployID: dep.ID,
		Stage:    dep.Stage,
		Message:  fmt.Sprintf("deployed %s to %s", opts.Image, dep.Candidate.Color),
	})
	return dep, nil
}

// launch starts the candidate container on the inactive port. Any leftover
// container holding the candidate name is removed first, so a rerun after
// a failed deploy cannot collide with its own debris.
func (d *Deployer) launch(ctx context.Context, dep *types.Deployment, opts Options) error {
	d.enter(dep, types.StageLaunching, fmt.Sprintf("launching %s on port %d", opts.Image, dep.Candidate.Port))
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StageDuration, string(types.StageLaunching))

	name := dep.Candidate.ContainerName
	logger := log.WithDeployID(dep.ID)
	if err := d.runtime.Stop(ctx, name); err != nil {
		logger.Warn().Err(err).Str("container", name).
			Msg("failed to stop leftover candidate container")
	}
	if err := d.runtime.Remove(ctx, name); err != nil {
		logger.Warn().Err(err).Str("container", name).
			Msg("failed to remove leftover candidate container")
	}

	if err := d.runtime.PullImage(ctx, opts.Image); err != nil {
		// Launch decides; some runtimes pull on demand
		logger.Warn().Err(err).Msg("image pull failed, launch will retry")
	}

	err := d.runtime.Launch(ctx, runtime.Spec{
		Name:  name,
		Image: opts.Image,
		Port:  dep.Candidate.Port,
		Env:   opts.Env,
	})
	if err != nil {
		d.rollback(ctx, dep, types.StageLaunching, err, "removing partially started candidate")
		return err
	}
	return nil
}

// probe waits for the candidate to become ready. A timeout is fatal: the
// candidate is destroyed and the proxy is never touched.
func (d *Deployer) probe(ctx context.Context, dep *types.Deployment, opts Options) error {
	d.enter(dep, types.StageProbing, fmt.Sprintf("probing %s on port %d", dep.Candidate.Color, dep.Candidate.Port))
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StageDuration, string(types.StageProbing))

	checker := d.newChecker(opts.HealthCheck, dep.Candidate.Port)
	prober := health.NewProber(checker, opts.HealthCheck.Interval, opts.HealthCheck.StartPeriod)

	attempts, err := prober.WaitReady(ctx)
	metrics.ProbeAttemptsTotal.Add(float64(attempts))
	if err != nil {
		var timeoutErr *health.TimeoutError
		if errors.As(err, &timeoutErr) {
			metrics.ProbeTimeoutsTotal.Inc()
		}
		d.rollback(ctx, dep, types.StageProbing, err, "removing unhealthy candidate, old instance untouched")
		return err
	}
	return nil
}

// switchTraffic rewrites the proxy upstream and reloads. The proxy package
// restores the config bytes on failure; the deployer only has to dispose
// of the now-useless candidate.
func (d *Deployer) switchTraffic(ctx context.Context, dep *types.Deployment) error {
	d.enter(dep, types.StageSwitching, fmt.Sprintf("switching upstream %d -> %d", dep.Active.Port, dep.Candidate.Port))
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StageDuration, string(types.StageSwitching))

	if err := d.proxy.Switch(ctx, dep.Candidate.Port); err != nil {
		var reloadErr *proxy.ReloadError
		if errors.As(err, &reloadErr) {
			metrics.SwitchRevertsTotal.Inc()
		}
		d.rollback(ctx, dep, types.StageSwitching, err, "proxy config restored, removing candidate")
		return err
	}
	return nil
}

// reap stops and removes the previously active container. Traffic has
// already moved, so failures here are logged and swallowed.
func (d *Deployer) reap(ctx context.Context, dep *types.Deployment) {
	d.enter(dep, types.StageReaping, fmt.Sprintf("reaping old %s container", dep.Active.Color))
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StageDuration, string(types.StageReaping))

	name := dep.Active.ContainerName
	logger := log.WithDeployID(dep.ID)

	// Traffic already moved; finish the cleanup even if the deployment
	// deadline expires mid-reap.
	reapCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if err := d.runtime.Stop(reapCtx, name); err != nil {
		d.reaperWarning(dep, name, err)
		return
	}
	if err := d.runtime.Remove(reapCtx, name); err != nil {
		d.reaperWarning(dep, name, err)
		return
	}
	logger.Info().Str("container", name).Msg("old instance removed")
}

func (d *Deployer) reaperWarning(dep *types.Deployment, name string, err error) {
	metrics.ReaperErrorsTotal.Inc()
	logger := log.WithDeployID(dep.ID)
	logger.Warn().Err(err).Str("container", name).
		Msg("reaper failed, old container left behind")
	d.broker.Publish(&events.Event{
		Type:     events.EventReaperWarning,
		DeployID: dep.ID,
		Stage:    types.StageReaping,
		Message:  fmt.Sprintf("could not clean up %s: %v", name, err),
	})
}

// rollback destroys the candidate and marks the deployment rolled back.
// The previously active instance keeps serving traffic untouched.
func (d *Deployer) rollback(ctx context.Context, dep *types.Deployment, failed types.Stage, cause error, action string) {
	dep.Err = cause
	logger := log.WithDeployID(dep.ID)
	logger.Error().Err(cause).Str("stage", string(failed)).Msg("deployment failed, rolling back")

	d.broker.Publish(&events.Event{
		Type:     events.EventStageFailed,
		DeployID: dep.ID,
		Stage:    failed,
		Message:  cause.Error(),
	})

	name := dep.Candidate.ContainerName
	if name != "" {
		// The deployment context is typically already expired here (probe
		// deadline, SIGINT); the candidate must be destroyed regardless.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
		defer cancel()

		if err := d.runtime.Stop(cleanupCtx, name); err != nil {
			logger.Warn().Err(err).Str("container", name).Msg("rollback: failed to stop candidate")
		}
		if err := d.runtime.Remove(cleanupCtx, name); err != nil {
			logger.Warn().Err(err).Str("container", name).Msg("rollback: failed to remove candidate")
		}
	}

	dep.Stage = types.StageRolledBack
	d.broker.Publish(&events.Event{
		Type:     events.EventRollback,
		DeployID: dep.ID,
		Stage:    types.StageRolledBack,
		Message:  action,
	})
}

func (d *Deployer) enter(dep *types.Deployment, stage types.Stage, msg string) {
	dep.Stage = stage
	logger := log.WithDeployID(dep.ID)
	logger.Info().Str("stage", string(stage)).Msg(msg)
	d.broker.Publish(&events.Event{
		Type:     events.EventStageEntered,
		DeployID: dep.ID,
		Stage:    stage,
		Message:  msg,
	})
}

// Status re-derives the current state of both slots from the proxy file
// and the container runtime.
func (d *Deployer) Status(ctx context.Context, pm types.PortMap, prefix string) ([]types.ContainerState, error) {
	active, candidate, err := d.proxy.ActiveTarget(pm, prefix)
	if err != nil {
		return nil, err
	}

	states := make([]types.ContainerState, 0, 2)
	for _, t := range []struct {
		target types.Target
		live   bool
	}{{active, true}, {candidate, false}} {
		running, err := d.runtime.IsRunning(ctx, t.target.ContainerName)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect %s: %w", t.target.ContainerName, err)
		}
		states = append(states, types.ContainerState{
			Target:  t.target,
			Running: running,
			Active:  t.live,
		})
	}
	return states, nil
}

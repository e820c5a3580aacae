/*
Package deploy orchestrates blue-green deployments.

The deployer owns the whole pipeline for one run: derive the active and
candidate colors from the proxy file, launch the candidate container on the
inactive port, probe it until ready, switch the proxy upstream, then reap
the old instance. Every run starts from scratch; nothing is persisted
between runs, and the proxy file is the single source of truth for which
color is live.

# Architecture

	┌──────────────── DEPLOYMENT PIPELINE ────────────────┐
	│                                                       │
	│   Idle ──► Launching ──► Probing ──► Switching      │
	│               │             │            │           │
	│               │ launch      │ probe      │ switch    │
	│               │ failed      │ timeout    │ failed    │
	│               ▼             ▼            ▼           │
	│           RolledBack    RolledBack   RolledBack      │
	│                                          │           │
	│                                      Reaping         │
	│                                          │           │
	│                                        Done          │
	│                                                       │
	└───────────────────────────────────────────────────────┘

Each stage transition is published on the event broker and timed into the
stage duration histogram. Rollback destroys the candidate container and
leaves the previously active instance serving traffic untouched; once
traffic has switched, reaper failures are logged and swallowed because the
deployment itself already succeeded.

# Core Components

  - Deployer: runs the pipeline. Collaborators arrive as interfaces (the
    Proxy slice of pkg/proxy, runtime.Runtime) so the flow is testable
    with fakes.
  - Options: one run's inputs. Image, port mapping, container name prefix,
    health check settings, and an overall deadline applied to the context.
  - CheckerFactory: builds the readiness checker for the candidate port.
    Defaults to health.ForTarget.

# Usage

	d := deploy.NewDeployer(proxyFile, rt, broker)
	dep, err := d.Run(ctx, deploy.Options{
		Image:       "myapp:v2",
		PortMap:     types.DefaultPortMap(),
		NamePrefix:  "myapp",
		HealthCheck: cfg.HealthCheck(),
		Timeout:     2 * time.Minute,
	})
	if err != nil {
		// dep.Stage is RolledBack; the old instance still serves traffic
		return err
	}

Status re-derives the running state of both color slots without touching
anything, for the status subcommand.

# Integration Points

  - pkg/proxy: active color discovery and the traffic switch
  - pkg/runtime: container lifecycle (docker or containerd)
  - pkg/health: readiness probing with the configured checker
  - pkg/events: stage progress consumed by the CLI
  - pkg/metrics: outcome counters and stage timings
*/
package deploy

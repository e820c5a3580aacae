/*
Package health implements readiness probing for candidate containers.

Before traffic moves to the new container, hueshift polls it until it
responds successfully or the deployment deadline elapses. This replaces the
fixed sleep a human operator would use with a genuine readiness check.

# Architecture

	┌──────────────── READINESS PROBING ────────────────┐
	│                                                     │
	│  ┌──────────────────────────────────┐             │
	│  │          Prober                   │             │
	│  │  - polls every interval           │             │
	│  │  - optional start period grace    │             │
	│  │  - cancelled by deploy deadline   │             │
	│  └───────────────┬──────────────────┘             │
	│                  │                                  │
	│  ┌───────────────▼──────────────────┐             │
	│  │       Checker interface           │             │
	│  │  Check(ctx) Result                │             │
	│  ├──────────────────────────────────┤             │
	│  │  HTTPChecker   GET url,           │             │
	│  │                status in window   │             │
	│  │  TCPChecker    connect succeeds   │             │
	│  └──────────────────────────────────┘             │
	└─────────────────────────────────────────────────────┘

# Core Components

## Checker Interface

All readiness checkers implement:

	type Checker interface {
		Check(ctx context.Context) Result
		Type() CheckType
	}

The prober does not know the check type; it calls Check() and interprets
the Result. ForTarget builds the right checker for a candidate port from
the deployfile's health section.

## Result Structure

	type Result struct {
		Healthy   bool          // Check passed?
		Message   string        // Human-readable message
		CheckedAt time.Time     // When check ran
		Duration  time.Duration // How long check took
	}

## Prober

The prober probes immediately (after the optional start period), then once
per interval. The overall deadline is the caller's context: the deployer
wraps the whole run in context.WithTimeout, so cancelling the deployment
cancels an in-flight probe as well. When the deadline elapses the prober
returns *TimeoutError carrying the attempt count and the last failure
message, which ends up in the deployment summary.

# Usage

	checker := health.ForTarget(cfg.HealthCheck(), candidate.Port)
	prober := health.NewProber(checker, hc.Interval, hc.StartPeriod)

	attempts, err := prober.WaitReady(ctx)
	if err != nil {
		// candidate never became ready; deployer rolls back
	}

# Integration Points

  - pkg/deploy runs the prober between Launching and Switching
  - pkg/config supplies the checker parameters
*/
package health

/*
Package log provides structured logging for hueshift using zerolog.

The log package wraps the zerolog library to provide JSON-structured logging
with component-specific loggers, configurable log levels, and helper functions
for common logging patterns. All logs include timestamps and support filtering
by severity level.

# Architecture

A single global zerolog.Logger is initialized once via log.Init() and shared
by all packages. Child loggers add context fields:

	┌──────────────── LOGGING ─────────────────┐
	│                                            │
	│  Global Logger (zerolog)                  │
	│     │                                      │
	│     ├── WithComponent("deploy")           │
	│     ├── WithDeployID("dep-4f2a...")       │
	│     └── WithContainer("myapp-green")      │
	│                                            │
	│  Output: console (human) or JSON          │
	└────────────────────────────────────────────┘

Console output goes to stderr so that command output (status tables, the
deployment summary) stays clean on stdout.

# Usage

Initializing:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false,
	})

Simple logging:

	log.Info("traffic switched")
	log.Warn("reaper could not remove old container")

Structured logging:

	log.Logger.Info().
		Str("color", "green").
		Int("port", 3002).
		Msg("candidate ready")

Component loggers:

	proberLog := log.WithComponent("prober")
	proberLog.Debug().Int("attempt", 4).Msg("probe failed, retrying")

# Log Levels

  - debug: per-probe attempts, executed commands, config bytes
  - info: stage transitions, deployment outcome
  - warn: non-fatal problems (reaper errors are logged here and swallowed)
  - error: deployment-aborting failures, always with .Err()

# See Also

  - Zerolog documentation: https://github.com/rs/zerolog
*/
package log

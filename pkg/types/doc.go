/*
Package types defines the core data structures used throughout hueshift.

This package contains the fundamental types that represent hueshift's domain
model: the blue/green color pair, the fixed port mapping, deployment targets,
and the per-run deployment record. These types are used by all other packages
for orchestration, proxy rewriting, and reporting.

# Architecture

The types package is the foundation of hueshift's data model. It defines:

  - The two-element color enumeration (blue, green)
  - The fixed color-to-port mapping (PortMap)
  - Deployment targets (color + port + container name)
  - The deployment stage machine
  - Readiness check specifications

All types are designed to be:
  - Derivable: nothing here is persisted; state is reconstructed from the
    proxy configuration and the container runtime on every invocation
  - Immutable where possible (Deployment is the only mutable record, and it
    lives only as long as one run)
  - Validated (constants for enums, validation helpers)

# Core Types

Slots:
  - Color: blue or green, with Other() for the complement
  - PortMap: exactly two ports, one per color (default 3001/3002)
  - Target: a color bound to its host port and container name

Deployment:
  - Deployment: one blue-green run (active target, candidate target, stage)
  - Stage: idle, launching, probing, switching, reaping, done, rolled-back

Health:
  - HealthCheck: how the candidate is probed (http or tcp, interval,
    per-probe timeout, start period, acceptable status window)
  - ContainerState: observed running/active state of one slot

# State Machine

A deployment moves through stages strictly in order:

	Idle → Launching → Probing → Switching → Reaping → Done

RolledBack is terminal and reachable from Probing (readiness deadline
elapsed) and Switching (proxy validation or reload failed). In both cases
the pre-deployment configuration is restored and the previously active
container keeps serving traffic.

# Usage

Deriving the candidate target from the active port:

	pm := types.DefaultPortMap()
	active, _ := pm.ColorOf(3001) // blue
	candidate := types.NewTarget(active.Other(), pm, "myapp")
	// candidate.Port == 3002, candidate.ContainerName == "myapp-green"

# Integration Points

  - pkg/proxy derives the active color from the proxy file using PortMap
  - pkg/deploy drives the Stage transitions on a Deployment
  - pkg/health consumes HealthCheck
  - cmd/hueshift renders Deployment and ContainerState for humans

# Thread Safety

Types in this package are plain data and carry no locks. A Deployment is
owned by a single goroutine for its whole lifetime; the deployment lock in
pkg/lock serializes whole runs against the same proxy file.

# See Also

  - pkg/proxy for active-port discovery and switching
  - pkg/deploy for the orchestration flow
  - pkg/config for how these types are populated from the deployfile
*/
package types

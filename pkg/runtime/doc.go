/*
Package runtime provides container lifecycle operations for hueshift's two
deployment slots.

The deployer consumes containers through a small Runtime interface: pull an
image, launch a named container bound to a slot port, stop it, remove it,
and ask whether it is running. Two implementations are provided, selected by
the deployfile's runtime.kind.

# Architecture

	┌──────────────── CONTAINER RUNTIME ─────────────────┐
	│                                                      │
	│  ┌──────────────────────────────────┐              │
	│  │        Runtime interface          │              │
	│  │  PullImage / Launch / Stop /     │              │
	│  │  Remove / IsRunning / Close      │              │
	│  └───────┬───────────────┬──────────┘              │
	│          │               │                          │
	│  ┌───────▼──────┐ ┌──────▼─────────────┐          │
	│  │ DockerRuntime│ │ ContainerdRuntime   │          │
	│  │ docker CLI   │ │ containerd client   │          │
	│  │ run -d -p    │ │ namespace: hueshift │          │
	│  │ P:P --name N │ │ host netns + PORT   │          │
	│  └──────────────┘ └────────────────────┘          │
	└──────────────────────────────────────────────────────┘

# Port Binding

The docker implementation publishes the slot port 1:1 (-p 3002:3002). The
containerd implementation shares the host network namespace instead, since
containerd has no port mapping of its own; the app binds the port it reads
from the PORT environment variable, which both implementations set.

# Idempotency

Stop and Remove treat a missing container as success. The deployer relies
on this in two places: pre-launch cleanup of a leftover candidate from a
previous failed run, and the reaper, which must never fail a deployment
that has already switched traffic.

# Errors

Launch failures are reported as *LaunchError (port already bound, image
missing, name conflict). All other methods return plain wrapped errors.

# Usage

	rt := runtime.NewDockerRuntime("docker", nil)
	err := rt.Launch(ctx, runtime.Spec{
		Name:  "myapp-green",
		Image: "myapp:v2",
		Port:  3002,
	})
*/
package runtime

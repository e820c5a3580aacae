/*
Package lock serializes deployments against a single target.

Two simultaneous deploys racing on the same proxy file would be undefined,
so the deployer takes an exclusive flock before reading the proxy config
and holds it until the old container is reaped. The lock is non-blocking: a
second invocation fails fast with ErrHeld instead of queueing behind a
running deployment. flock releases automatically if the process dies, so a
crashed deploy never wedges the target.
*/
package lock

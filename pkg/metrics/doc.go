/*
Package metrics provides Prometheus metrics for hueshift deployments.

The metrics package defines and registers all hueshift metrics using the
Prometheus client library: deployment outcomes, per-stage latency, probe
volume, and switch reverts. Because a deployment is a short-lived process,
exposition is optional: when the deployfile (or --metrics-addr) names an
address, a /metrics endpoint is served for the duration of the run so a
scraper or a curl from the CI job can capture the final counters.

# Metrics

	hueshift_deployments_total{outcome}      Counter, outcome is success /
	                                         rolled-back / aborted
	hueshift_stage_duration_seconds{stage}   Histogram over launching,
	                                         probing, switching, reaping
	hueshift_probe_attempts_total            Counter of readiness probes
	hueshift_probe_timeouts_total            Counter of readiness aborts
	hueshift_switch_reverts_total            Counter of config restores
	hueshift_reaper_errors_total             Counter of swallowed reaper
	                                         failures

# Usage

Recording a stage duration:

	timer := metrics.NewTimer()
	// ... run the stage ...
	timer.ObserveDurationVec(metrics.StageDuration, "probing")

Ephemeral exposition during a deploy:

	stop := metrics.Serve("127.0.0.1:9090")
	defer stop()

All metrics register against the default registry at package init, so the
handler also exposes the standard Go runtime metrics.
*/
package metrics

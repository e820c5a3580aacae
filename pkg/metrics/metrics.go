package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hueshift/hueshift/pkg/log"
)

var (
	// Deployment metrics
	DeploymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hueshift_deployments_total",
			Help: "Total number of deployments by outcome",
		},
		[]string{"outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hueshift_stage_duration_seconds",
			Help:    "Time spent in each deployment stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// Prober metrics
	ProbeAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hueshift_probe_attempts_total",
			Help: "Total number of readiness probes issued",
		},
	)

	ProbeTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hueshift_probe_timeouts_total",
			Help: "Total number of deployments aborted by readiness timeout",
		},
	)

	// Switcher metrics
	SwitchRevertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hueshift_switch_reverts_total",
			Help: "Total number of proxy config reverts after failed validation or reload",
		},
	)

	// Reaper metrics
	ReaperErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hueshift_reaper_errors_total",
			Help: "Total number of non-fatal reaper failures",
		},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(DeploymentsTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(ProbeAttemptsTotal)
	prometheus.MustRegister(ProbeTimeoutsTotal)
	prometheus.MustRegister(SwitchRevertsTotal)
	prometheus.MustRegister(ReaperErrorsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes the metrics endpoint for the duration of a deployment.
// The returned shutdown function stops the listener; it is safe to call
// after a failed start.
func Serve(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger := log.WithComponent("metrics")
			logger.Warn().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

package simulator

import (
	"context"
	"sync"

	"github.com/buildbarn/bb-pagesim/pkg/clock"
	"github.com/buildbarn/bb-pagesim/pkg/eviction"
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"
	"github.com/prometheus/client_golang/prometheus"

	"google.golang.org/grpc/status"
)

var (
	runnerPrometheusMetrics sync.Once

	runnerRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "pagesim",
			Name:      "runner_runs_total",
			Help:      "Total number of simulation runs, by policy and outcome.",
		},
		[]string{"name", "policy", "grpc_code"})
	runnerReferencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "pagesim",
			Name:      "runner_references_total",
			Help:      "Total number of references replayed by successful simulation runs, by policy and whether they caused a page fault.",
		},
		[]string{"name", "policy", "result"})
	runnerRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "buildbarn",
			Subsystem: "pagesim",
			Name:      "runner_run_duration_seconds",
			Help:      "Amount of time spent per simulation run, in seconds.",
			Buckets:   util.DecimalExponentialBuckets(-6, 6, 2),
		},
		[]string{"name", "policy"})
)

type metricsRunner struct {
	base  Runner
	clock clock.Clock
	name  string
}

// NewMetricsRunner creates a decorator for Runner that exposes the
// number of runs, the number of faults and hits, and the duration of
// runs through Prometheus.
func NewMetricsRunner(base Runner, clock clock.Clock, name string) Runner {
	runnerPrometheusMetrics.Do(func() {
		prometheus.MustRegister(runnerRunsTotal)
		prometheus.MustRegister(runnerReferencesTotal)
		prometheus.MustRegister(runnerRunDurationSeconds)
	})

	return &metricsRunner{
		base:  base,
		clock: clock,
		name:  name,
	}
}

func (r *metricsRunner) Run(ctx context.Context, sequence reference.Sequence, capacity int, policy eviction.Policy) (*RunResult, error) {
	timeStart := r.clock.Now()
	result, err := r.base.Run(ctx, sequence, capacity, policy)
	policyName := policy.String()
	runnerRunDurationSeconds.WithLabelValues(r.name, policyName).Observe(r.clock.Now().Sub(timeStart).Seconds())
	runnerRunsTotal.WithLabelValues(r.name, policyName, status.Code(err).String()).Inc()
	if err == nil {
		runnerReferencesTotal.WithLabelValues(r.name, policyName, "Fault").Add(float64(result.Faults))
		runnerReferencesTotal.WithLabelValues(r.name, policyName, "Hit").Add(float64(result.Hits))
	}
	return result, err
}

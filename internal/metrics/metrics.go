// Package metrics exposes Prometheus collectors for generation runs and
// completion calls.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ternarybob/postforge/pkg/agent"
	"github.com/ternarybob/postforge/pkg/llm"
)

// Collector records generation metrics. It is an agent.Observer and
// provides an agent.Middleware through Instrument.
type Collector struct {
	runs        *prometheus.CounterVec
	completions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	drafts      prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postforge_runs_total",
				Help: "Generation runs by final status.",
			},
			[]string{"status"},
		),
		completions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "postforge_completions_total",
				Help: "Completion calls by role and outcome.",
			},
			[]string{"role", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "postforge_completion_duration_seconds",
				Help:    "Completion latency by role.",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"role"},
		),
		drafts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "postforge_drafts_per_run",
				Help:    "Drafts produced per run.",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
	}

	for _, col := range []prometheus.Collector{c.runs, c.completions, c.duration, c.drafts} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Instrument wraps a role's completer to count and time its calls.
func (c *Collector) Instrument(role llm.Role, next llm.Completer) llm.Completer {
	return llm.CompleterFunc(func(ctx context.Context, system, user string) (string, error) {
		start := time.Now()
		out, err := next.Complete(ctx, system, user)
		c.duration.WithLabelValues(string(role)).Observe(time.Since(start).Seconds())

		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.completions.WithLabelValues(string(role), outcome).Inc()
		return out, err
	})
}

// RunFinished records the outcome of a run.
func (c *Collector) RunFinished(st *agent.RunState, err error) {
	if err != nil {
		c.runs.WithLabelValues("failed").Inc()
		return
	}
	c.runs.WithLabelValues(st.Status.String()).Inc()
	c.drafts.Observe(float64(st.Drafts()))
}

package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buildplan"

// PrometheusRecorder implements Recorder using Prometheus metrics registered
// on a private registry.
type PrometheusRecorder struct {
	registry     *prom.Registry
	lookups      *prom.CounterVec
	planDuration prom.Histogram
	planOutcome  *prom.CounterVec
	cleanOutcome *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	p := &PrometheusRecorder{
		registry: reg,
		lookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "repository_lookups_total",
			Help:      "Artifact lookups by repository and outcome",
		}, []string{"repository", "outcome"}),
		planDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_duration_seconds",
			Help:      "Time spent turning a description into a plan",
			Buckets:   prom.DefBuckets,
		}),
		planOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "plan_outcomes_total",
			Help:      "Plans by outcome",
		}, []string{"outcome"}),
		cleanOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "clean_outcomes_total",
			Help:      "Clean invocations by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(p.lookups, p.planDuration, p.planOutcome, p.cleanOutcome)
	return p
}

// Registry returns the registry the collectors live on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) IncLookup(repository, outcome string) {
	if p == nil {
		return
	}
	p.lookups.WithLabelValues(repository, outcome).Inc()
}

func (p *PrometheusRecorder) ObservePlanDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.planDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPlanOutcome(outcome string) {
	if p == nil {
		return
	}
	p.planOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncCleanOutcome(outcome string) {
	if p == nil {
		return
	}
	p.cleanOutcome.WithLabelValues(outcome).Inc()
}

// Package metrics records what the configurator did during an invocation.
// The Prometheus implementation is exposed on the health server's /metrics
// endpoint; everything else uses NoopRecorder.
package metrics

import "time"

// Lookup outcomes reported by the resolver.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Recorder defines observability hooks for planning, resolution and clean.
type Recorder interface {
	IncLookup(repository, outcome string)
	ObservePlanDuration(d time.Duration)
	IncPlanOutcome(outcome string)
	IncCleanOutcome(outcome string)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncLookup(string, string)          {}
func (NoopRecorder) ObservePlanDuration(time.Duration) {}
func (NoopRecorder) IncPlanOutcome(string)             {}
func (NoopRecorder) IncCleanOutcome(string)            {}

// Outcome turns an error into the "success"/"failed" label value.
func Outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

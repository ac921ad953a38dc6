// Package metrics counts check outcomes in Prometheus format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mpyw/supercall/internal/classify"
)

const outOfScope = "out_of_scope"

// Recorder holds the counters of one run. It implements engine.Observer.
type Recorder struct {
	registry *prometheus.Registry

	// methodsTotal counts checked methods by outcome.
	// Labels: outcome (direct, missing, conditional, skipped, out_of_scope)
	methodsTotal *prometheus.CounterVec

	// filesTotal counts input files by parse status.
	// Labels: status (parsed, failed)
	filesTotal *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Recorder{
		registry: reg,
		methodsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supercall",
			Name:      "methods_total",
			Help:      "Overriding methods checked, by outcome",
		}, []string{"outcome"}),
		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "supercall",
			Name:      "files_total",
			Help:      "Input files, by parse status",
		}, []string{"status"}),
	}

	// Pre-create series so that zero counts are exported.
	for _, o := range []classify.Outcome{classify.DirectCall, classify.Missing, classify.ConditionalCall, classify.SkippedAncestor} {
		r.methodsTotal.WithLabelValues(o.String())
	}
	r.methodsTotal.WithLabelValues(outOfScope)

	return r
}

// Observe records one classification.
func (r *Recorder) Observe(o classify.Outcome, inScope bool) {
	if !inScope {
		r.methodsTotal.WithLabelValues(outOfScope).Inc()
		return
	}
	r.methodsTotal.WithLabelValues(o.String()).Inc()
}

// FileParsed records one input file.
func (r *Recorder) FileParsed(ok bool) {
	status := "parsed"
	if !ok {
		status = "failed"
	}
	r.filesTotal.WithLabelValues(status).Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the counters in the text exposition format, for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Gatherer()); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

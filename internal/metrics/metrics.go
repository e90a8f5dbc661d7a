// Package metrics exposes prometheus counters for the upload and generation
// pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	samplesUploaded   prometheus.Counter
	speechGenerated   prometheus.Counter
	synthesisFailures prometheus.Counter
	synthesisDuration prometheus.Histogram
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		samplesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voice_samples_uploaded_total",
			Help: "Voice samples stored and recorded.",
		}),
		speechGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "speech_generated_total",
			Help: "Successful speech generation requests.",
		}),
		synthesisFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "synthesis_failures_total",
			Help: "Synthesis provider calls that failed.",
		}),
		synthesisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "synthesis_duration_seconds",
			Help:    "Latency of successful synthesis provider calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(
		m.samplesUploaded,
		m.speechGenerated,
		m.synthesisFailures,
		m.synthesisDuration,
	)

	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SampleUploaded() {
	if m == nil {
		return
	}
	m.samplesUploaded.Inc()
}

func (m *Metrics) SpeechGenerated() {
	if m == nil {
		return
	}
	m.speechGenerated.Inc()
}

func (m *Metrics) SynthesisFailed() {
	if m == nil {
		return
	}
	m.synthesisFailures.Inc()
}

func (m *Metrics) SynthesisSucceeded(d time.Duration) {
	if m == nil {
		return
	}
	m.synthesisDuration.Observe(d.Seconds())
}

// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes job outcomes. Registration, if any, is the embedding
// application's responsibility: the engine never surfaces metrics unless
// WithMetrics is supplied.
type Metrics interface {
	// Fired is called once per successful execution.
	Fired(jobName string)
	// Failed is called once per execution that returned a non-cancellation
	// error or panicked.
	Failed(jobName string)
	// Duration is called once per execution with its wall-clock runtime.
	Duration(jobName string, d time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Fired(string)                   {}
func (noopMetrics) Failed(string)                  {}
func (noopMetrics) Duration(string, time.Duration) {}

// prometheusMetrics backs Metrics with a CounterVec (fires/failures) and a
// HistogramVec (durations), both labelled by job name.
type prometheusMetrics struct {
	fired     *prometheus.CounterVec
	failed    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPrometheusMetrics builds a Metrics implementation and registers its
// collectors on reg. Callers own reg's lifecycle; pass
// prometheus.DefaultRegisterer to use the global registry.
func NewPrometheusMetrics(reg prometheus.Registerer) Metrics {
	m := &prometheusMetrics{
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "job_fired_total",
			Help:      "Total successful job executions, by job name.",
		}, []string{"job"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Name:      "job_failed_total",
			Help:      "Total failed job executions, by job name.",
		}, []string{"job"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Name:      "job_duration_seconds",
			Help:      "Job execution duration, by job name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
	reg.MustRegister(m.fired, m.failed, m.durations)
	return m
}

func (m *prometheusMetrics) Fired(jobName string) {
	m.fired.WithLabelValues(jobName).Inc()
}

func (m *prometheusMetrics) Failed(jobName string) {
	m.failed.WithLabelValues(jobName).Inc()
}

func (m *prometheusMetrics) Duration(jobName string, d time.Duration) {
	m.durations.WithLabelValues(jobName).Observe(d.Seconds())
}

/*
Copyright 2025 The AlaudaDevops Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRecorder records pipeline execution metrics
type MetricsRecorder interface {
	RecordStep(step, status string, duration time.Duration)
	RecordRun(status string, duration time.Duration)
}

var (
	// StepExecutionTotal counts pipeline steps executed
	StepExecutionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_builder_step_total",
			Help: "Total number of pipeline steps executed",
		},
		[]string{"step", "status"},
	)

	// StepDuration tracks per-step duration
	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "preview_builder_step_duration_seconds",
			Help:    "Pipeline step duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"step"},
	)

	// RunTotal counts pipeline runs
	RunTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_builder_run_total",
			Help: "Total number of preview build runs",
		},
		[]string{"status"},
	)

	// RunDuration tracks full run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "preview_builder_run_duration_seconds",
			Help:    "Preview build run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"status"},
	)
)

// PrometheusRecorder implements MetricsRecorder on the package collectors
type PrometheusRecorder struct{}

// NewPrometheusRecorder creates a prometheus-backed metrics recorder
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{}
}

// RecordStep records a step execution
func (r *PrometheusRecorder) RecordStep(step, status string, duration time.Duration) {
	StepExecutionTotal.WithLabelValues(step, status).Inc()
	StepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordRun records a full pipeline run
func (r *PrometheusRecorder) RecordRun(status string, duration time.Duration) {
	RunTotal.WithLabelValues(status).Inc()
	RunDuration.WithLabelValues(status).Observe(duration.Seconds())
}

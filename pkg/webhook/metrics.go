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

package webhook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequestsTotal counts total webhook requests received
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_builder_webhook_requests_total",
			Help: "Total number of webhook requests received",
		},
		[]string{"event_type", "status"},
	)

	// PREventTotal counts pull_request events accepted for building
	PREventTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_builder_pr_event_total",
			Help: "Total number of pull_request events processed",
		},
		[]string{"action", "status"},
	)

	// BuildJobsTotal counts preview builds executed by workers
	BuildJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preview_builder_webhook_build_jobs_total",
			Help: "Total number of preview builds executed by webhook workers",
		},
		[]string{"status"},
	)

	// QueueSize tracks current job queue size
	QueueSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "preview_builder_queue_size",
			Help: "Current size of the build job queue",
		},
	)

	// ActiveWorkers tracks number of active workers
	ActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "preview_builder_active_workers",
			Help: "Number of active worker goroutines",
		},
	)
)

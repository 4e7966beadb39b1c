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
	"context"
	"fmt"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/pipeline"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/platforms/github"
	"github.com/sirupsen/logrus"
)

// BuildJob represents a queued preview build
type BuildJob struct {
	Event     *PREvent
	Timestamp time.Time
}

// buildFunc runs one preview build for a fully resolved configuration
type buildFunc func(ctx context.Context, logger *logrus.Logger, cfg *config.Config) error

// Worker processes build jobs from a queue
type Worker struct {
	id       int
	jobQueue <-chan *BuildJob
	logger   *logrus.Logger
	base     *config.Config
	build    buildFunc
}

// newWorker creates a new worker. build may be nil, in which case the
// worker runs real pipelines.
func newWorker(id int, jobQueue <-chan *BuildJob, logger *logrus.Logger, base *config.Config, build buildFunc) *Worker {
	if build == nil {
		build = runPipeline
	}
	return &Worker{
		id:       id,
		jobQueue: jobQueue,
		logger:   logger,
		base:     base,
		build:    build,
	}
}

// start begins processing jobs until the context is cancelled or the
// queue is closed
func (w *Worker) start(ctx context.Context) {
	w.logger.Infof("Worker %d started", w.id)
	ActiveWorkers.Inc()
	defer ActiveWorkers.Dec()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Worker %d stopping", w.id)
			return
		case job, ok := <-w.jobQueue:
			if !ok {
				w.logger.Infof("Worker %d: job queue closed", w.id)
				return
			}
			w.processJob(ctx, job)
			QueueSize.Set(float64(len(w.jobQueue)))
		}
	}
}

// processJob runs one preview build for a queued pull_request event
func (w *Worker) processJob(ctx context.Context, job *BuildJob) {
	logger := w.logger.WithFields(logrus.Fields{
		"worker":   w.id,
		"event_id": job.Event.EventID,
		"repo":     fmt.Sprintf("%s/%s", job.Event.Repository.Owner, job.Event.Repository.Name),
		"pr":       job.Event.PullRequest.Number,
		"action":   job.Event.Action,
		"head_ref": job.Event.PullRequest.HeadRef,
	})

	logger.Infof("Processing build job (queued for %s)", time.Since(job.Timestamp).Round(time.Millisecond))

	cfg := job.Event.ToConfig(w.base)

	if err := w.build(ctx, w.logger, cfg); err != nil {
		logger.Errorf("Preview build failed: %v", err)
		BuildJobsTotal.WithLabelValues("error").Inc()
		return
	}

	logger.Info("Preview build finished")
	BuildJobsTotal.WithLabelValues("success").Inc()
}

// runPipeline assembles and runs a real build pipeline
func runPipeline(ctx context.Context, logger *logrus.Logger, cfg *config.Config) error {
	var notifier pipeline.Notifier
	if cfg.Token != "" && (cfg.PostComment || cfg.SetStatus) {
		client, err := github.NewClient(logger, cfg)
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}
		notifier = client
	}

	p, err := pipeline.New(logger, cfg, notifier)
	if err != nil {
		return err
	}

	_, err = p.Run(ctx)
	return err
}

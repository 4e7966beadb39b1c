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

// Package pipeline orchestrates the preview build run: checkout, build,
// stage, metadata, archive, publish, notify
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/artifact"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/builder"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/gitcli"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/metadata"
	"github.com/sirupsen/logrus"
)

// SourceCheckout fetches the PR sources into a working directory
type SourceCheckout interface {
	Run(ctx context.Context) (string, error)
	Cleanup()
}

// BuildRunner executes the external build command
type BuildRunner interface {
	Run(ctx context.Context, workDir string) (time.Duration, error)
}

// Publisher stores a finished preview
type Publisher interface {
	Save(assetsDir string, record *metadata.Record) (string, error)
	Prune(keep int) error
}

// Notifier reports build progress back to the pull request
type Notifier interface {
	PostComment(ctx context.Context, prNum int, message string) error
	CreateCommitStatus(ctx context.Context, sha, state, statusContext, description, targetURL string) error
}

// Pipeline runs one preview build end to end. Steps execute strictly in
// sequence; the first failure aborts the run.
type Pipeline struct {
	logger   *logrus.Logger
	cfg      *config.Config
	record   *metadata.Record
	checkout SourceCheckout
	builder  BuildRunner
	store    Publisher
	notifier Notifier
	metrics  MetricsRecorder
}

// New assembles a pipeline from the configuration. notifier may be nil
// when PR notifications are disabled.
func New(logger *logrus.Logger, cfg *config.Config, notifier Notifier) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline configuration: %w", err)
	}

	record := metadata.NewRecord(cfg.PRNum, cfg.HeadRef)

	store, err := artifact.NewStore(logger, cfg.ArtifactsDir)
	if err != nil {
		return nil, err
	}

	buildEnv := map[string]string{
		"PR_NUMBER":  strconv.Itoa(cfg.PRNum),
		"HEAD_REF":   cfg.HeadRef,
		"HEAD_SHA":   cfg.HeadSHA,
		"URL_SLUG":   record.URLSlug,
		"OUTPUT_DIR": cfg.BuildDir,
	}

	return &Pipeline{
		logger:   logger,
		cfg:      cfg,
		record:   record,
		checkout: gitcli.NewCheckout(logger, cfg.CloneURL(), cfg.Token, cfg.PRNum, cfg.HeadRef, cfg.HeadSHA),
		builder:  builder.NewBuilder(logger, cfg.BuildCommand, cfg.BuildTimeout, buildEnv),
		store:    store,
		notifier: notifier,
		metrics:  NewPrometheusRecorder(),
	}, nil
}

// Record returns the metadata record for this run
func (p *Pipeline) Record() *metadata.Record {
	return p.record
}

// Run executes the pipeline. The returned Result always carries the
// per-step outcomes, also on failure.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{URLSlug: p.record.URLSlug}
	startTime := time.Now()

	p.logger.Infof("Starting preview build for PR #%d (%s)", p.cfg.PRNum, p.record.URLSlug)
	p.notifyStep(ctx, p.notifyStart)

	err := p.runSteps(ctx, result)
	result.Success = err == nil

	status := "success"
	if err != nil {
		status = "failure"
		p.notifyStep(ctx, func(ctx context.Context) error {
			return p.notifyFailure(ctx, err)
		})
	}
	p.recordRun(status, time.Since(startTime))

	if err != nil {
		return result, err
	}

	p.notifyStep(ctx, p.notifySuccess)
	p.logger.Infof("Preview build for PR #%d finished in %s", p.cfg.PRNum, result.TotalDuration().Round(time.Second))
	return result, nil
}

// runSteps executes the step sequence, appending outcomes to result
func (p *Pipeline) runSteps(ctx context.Context, result *Result) error {
	var workDir string

	if err := p.runStep(result, StepCheckout, func() error {
		dir, err := p.checkout.Run(ctx)
		workDir = dir
		return err
	}); err != nil {
		return err
	}
	defer p.checkout.Cleanup()

	sourceDir := filepath.Join(workDir, p.cfg.SourceDir)

	if err := p.runStep(result, StepBuild, func() error {
		_, err := p.builder.Run(ctx, sourceDir)
		return err
	}); err != nil {
		return err
	}

	stagingDir := filepath.Join(workDir, ".preview-stage")
	if err := p.runStep(result, StepStage, func() error {
		_, err := artifact.Stage(filepath.Join(sourceDir, p.cfg.BuildDir), stagingDir)
		return err
	}); err != nil {
		return err
	}

	if err := p.runStep(result, StepMetadata, func() error {
		path := filepath.Join(p.cfg.ArtifactsDir, p.cfg.MetadataArtifact+".json")
		return p.record.Write(path)
	}); err != nil {
		return err
	}

	if p.cfg.ArchiveArtifacts {
		if err := p.runStep(result, StepArchive, func() error {
			tarball := filepath.Join(p.cfg.ArtifactsDir, fmt.Sprintf("%s-%s.tar.gz", p.cfg.AssetsArtifact, p.record.URLSlug))
			return artifact.Archive(stagingDir, tarball)
		}); err != nil {
			return err
		}
	}

	if err := p.runStep(result, StepPublish, func() error {
		dir, err := p.store.Save(stagingDir, p.record)
		if err != nil {
			return err
		}
		result.PreviewDir = dir
		return p.store.Prune(p.cfg.KeepPreviews)
	}); err != nil {
		return err
	}

	return nil
}

// runStep executes one step, recording its outcome and metrics
func (p *Pipeline) runStep(result *Result, name string, fn func() error) error {
	p.logger.Infof("Running step: %s", name)
	startTime := time.Now()

	err := fn()
	duration := time.Since(startTime)

	stepResult := StepResult{
		Name:     name,
		Success:  err == nil,
		Error:    err,
		Duration: duration,
	}
	result.Steps = append(result.Steps, stepResult)

	status := "success"
	if err != nil {
		status = "failure"
		p.logger.Errorf("Step %s failed after %s: %v", name, duration.Round(time.Millisecond), err)
	}
	p.recordStep(name, status, duration)

	if err != nil {
		return fmt.Errorf("step %s failed: %w", name, err)
	}
	return nil
}

// notifyStep runs one notification phase, recording it under the notify
// step metric. Notification failures never fail the run.
func (p *Pipeline) notifyStep(ctx context.Context, fn func(context.Context) error) {
	if p.notifier == nil {
		return
	}

	startTime := time.Now()
	status := "success"
	if err := fn(ctx); err != nil {
		status = "failure"
	}
	p.recordStep(StepNotify, status, time.Since(startTime))
}

// notifyStart sets a pending commit status when notifications are enabled
func (p *Pipeline) notifyStart(ctx context.Context) error {
	if !p.cfg.SetStatus || p.cfg.HeadSHA == "" {
		return nil
	}
	err := p.notifier.CreateCommitStatus(ctx, p.cfg.HeadSHA, "pending", p.cfg.StatusContext,
		"Building preview", "")
	if err != nil {
		p.logger.Warnf("Failed to set pending status: %v", err)
	}
	return err
}

// notifySuccess reports a finished preview to the PR
func (p *Pipeline) notifySuccess(ctx context.Context) error {
	previewURL := p.previewURL()

	var firstErr error
	if p.cfg.SetStatus && p.cfg.HeadSHA != "" {
		err := p.notifier.CreateCommitStatus(ctx, p.cfg.HeadSHA, "success", p.cfg.StatusContext,
			"Preview ready", previewURL)
		if err != nil {
			p.logger.Warnf("Failed to set success status: %v", err)
			firstErr = err
		}
	}

	if p.cfg.PostComment {
		if err := p.notifier.PostComment(ctx, p.cfg.PRNum, previewReadyMessage(p.record, previewURL)); err != nil {
			p.logger.Warnf("Failed to post preview comment: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// notifyFailure reports a failed build to the PR
func (p *Pipeline) notifyFailure(ctx context.Context, buildErr error) error {
	if !p.cfg.SetStatus || p.cfg.HeadSHA == "" {
		return nil
	}
	err := p.notifier.CreateCommitStatus(ctx, p.cfg.HeadSHA, "failure", p.cfg.StatusContext,
		"Preview build failed", "")
	if err != nil {
		p.logger.Warnf("Failed to set failure status: %v (build error: %v)", err, buildErr)
	}
	return err
}

// previewURL joins the configured base URL with the run's slug
func (p *Pipeline) previewURL() string {
	if p.cfg.PreviewURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/", p.cfg.PreviewURL, p.record.URLSlug)
}

func (p *Pipeline) recordStep(step, status string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordStep(step, status, duration)
	}
}

func (p *Pipeline) recordRun(status string, duration time.Duration) {
	if p.metrics != nil {
		p.metrics.RecordRun(status, duration)
	}
}

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

// Package webhook runs the HTTP server that turns GitHub pull_request
// events into preview builds
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the webhook HTTP server
type Server struct {
	config    *config.WebhookConfig
	logger    *logrus.Logger
	server    *http.Server
	jobQueue  chan *BuildJob
	workers   []*Worker
	startTime time.Time
}

// NewServer creates a new webhook server
func NewServer(cfg *config.WebhookConfig, logger *logrus.Logger) *Server {
	return &Server{
		config:    cfg,
		logger:    logger,
		jobQueue:  make(chan *BuildJob, cfg.QueueSize),
		startTime: time.Now(),
	}
}

// Start starts the webhook server
func (s *Server) Start(ctx context.Context) error {
	s.logger.Infof("Starting webhook server on %s", s.config.ListenAddr)
	s.logger.Infof("Configuration: %s", s.config.DebugString())

	s.startWorkers(ctx)

	mux := http.NewServeMux()

	mux.HandleFunc(s.config.WebhookPath, s.handleWebhook)
	mux.HandleFunc(s.config.HealthPath, s.handleHealth)
	mux.HandleFunc(s.config.HealthPath+"/ready", s.handleReadiness)
	mux.Handle(s.config.MetricsPath, promhttp.Handler())

	handler := securityHeadersMiddleware(mux)
	handler = recoveryMiddleware(s.logger)(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = rateLimitMiddleware(s.config.RateLimitEnabled, s.config.RateLimitRequests, s.logger)(handler)

	s.server = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if s.config.TLSEnabled {
			s.logger.Infof("Starting HTTPS server with TLS")
			errChan <- s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			s.logger.Infof("Starting HTTP server (TLS disabled)")
			errChan <- s.server.ListenAndServe()
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Context cancelled, shutting down server")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down webhook server")

	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("Server shutdown error: %v", err)
			return err
		}
	}

	// Workers exit when the queue is closed
	if s.jobQueue != nil {
		close(s.jobQueue)
	}
	time.Sleep(2 * time.Second)

	s.logger.Info("Server shutdown complete")
	return nil
}

// startWorkers starts the worker pool
func (s *Server) startWorkers(ctx context.Context) {
	s.workers = make([]*Worker, s.config.WorkerCount)

	for i := 0; i < s.config.WorkerCount; i++ {
		worker := newWorker(i, s.jobQueue, s.logger, s.config.BaseConfig, nil)
		s.workers[i] = worker
		go worker.start(ctx)
	}

	s.logger.Infof("Started %d build workers", s.config.WorkerCount)
}

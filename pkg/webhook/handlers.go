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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/internal/version"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// handleWebhook processes incoming webhook requests
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.logger.Errorf("Failed to read request body: %v", err)
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	eventType := r.Header.Get("X-GitHub-Event")
	if eventType == "" {
		s.logger.Warn("Unknown webhook source (missing X-GitHub-Event header)")
		http.Error(w, "Unknown webhook source", http.StatusBadRequest)
		WebhookRequestsTotal.WithLabelValues("unknown", "error").Inc()
		return
	}

	eventID := r.Header.Get("X-GitHub-Delivery")
	if eventID == "" {
		eventID = uuid.NewString()
		s.logger.Infof("No delivery ID found in webhook headers, generated a new one: %q", eventID)
	}

	logger := s.logger.WithFields(logrus.Fields{
		"event_id":   eventID,
		"event_type": eventType,
	})
	logger.Infof("Received webhook event %q of type %q", eventID, eventType)

	if s.config.RequireSignature {
		signature := r.Header.Get("X-Hub-Signature-256")
		if err := ValidateGitHubSignature(body, signature, s.config.WebhookSecret); err != nil {
			logger.Warnf("Signature validation failed: %v", err)
			http.Error(w, "Signature validation failed", http.StatusUnauthorized)
			WebhookRequestsTotal.WithLabelValues(eventType, "unauthorized").Inc()
			return
		}
	}

	switch eventType {
	case "ping":
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "pong")
		WebhookRequestsTotal.WithLabelValues(eventType, "success").Inc()
	case "pull_request":
		s.handlePullRequestEvent(w, body, logger, eventID, eventType)
	default:
		logger.Debugf("Ignoring unsupported event type: %s", eventType)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK (ignored event type: %s)", eventType)
		WebhookRequestsTotal.WithLabelValues(eventType, "ignored").Inc()
	}
}

// handlePullRequestEvent parses a pull_request event and enqueues a
// preview build for it
func (s *Server) handlePullRequestEvent(w http.ResponseWriter, body []byte, logger *logrus.Entry, eventID, eventType string) {
	event, err := ParsePullRequestEvent(body, s.config.PREventActions)
	if err != nil {
		// Expected for uninteresting actions and draft PRs
		logger.Debugf("PR webhook parsing skipped: %v", err)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK (skipped: %v)", err)
		WebhookRequestsTotal.WithLabelValues(eventType, "skipped").Inc()
		return
	}
	event.EventID = eventID

	if err := ValidatePREvent(event); err != nil {
		logger.Warnf("Invalid pull_request event: %v", err)
		http.Error(w, fmt.Sprintf("Invalid pull_request event: %v", err), http.StatusBadRequest)
		WebhookRequestsTotal.WithLabelValues(eventType, "invalid").Inc()
		return
	}

	if err := ValidateRepository(event.Repository.Owner, event.Repository.Name, s.config.AllowedRepos); err != nil {
		logger.Warnf("Repository not allowed: %v", err)
		http.Error(w, "Repository not allowed", http.StatusForbidden)
		WebhookRequestsTotal.WithLabelValues(eventType, "forbidden").Inc()
		return
	}

	logger = logger.WithFields(logrus.Fields{
		"repository": fmt.Sprintf("%s/%s", event.Repository.Owner, event.Repository.Name),
		"pr_number":  event.PullRequest.Number,
		"pr_action":  event.Action,
		"head_ref":   event.PullRequest.HeadRef,
		"sender":     event.Sender.Login,
	})
	logger.Info("Received pull_request webhook event")

	job := &BuildJob{
		Event:     event,
		Timestamp: time.Now(),
	}

	select {
	case s.jobQueue <- job:
		logger.Debug("Build job enqueued successfully")
		QueueSize.Set(float64(len(s.jobQueue)))
	default:
		logger.Error("Build job queue is full")
		http.Error(w, "Server busy, please try again later", http.StatusServiceUnavailable)
		WebhookRequestsTotal.WithLabelValues(eventType, "queue_full").Inc()
		PREventTotal.WithLabelValues(event.Action, "queue_full").Inc()
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
	WebhookRequestsTotal.WithLabelValues(eventType, "success").Inc()
	PREventTotal.WithLabelValues(event.Action, "queued").Inc()
}

// handleHealth returns health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":         "healthy",
		"version":        version.Get().Version,
		"uptime":         time.Since(s.startTime).String(),
		"queue_size":     len(s.jobQueue),
		"queue_capacity": cap(s.jobQueue),
		"workers":        s.config.WorkerCount,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// handleReadiness returns readiness status
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	queueUsage := float64(len(s.jobQueue)) / float64(cap(s.jobQueue))
	if queueUsage > 0.95 {
		http.Error(w, "Queue nearly full", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

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
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "hook-secret"

var prOpenedPayload = `{
	"action": "opened",
	"number": 42,
	"pull_request": {
		"number": 42,
		"state": "open",
		"draft": false,
		"user": {"login": "contributor"},
		"head": {"ref": "fix/ui bug!", "sha": "abc123"},
		"base": {"ref": "main"}
	},
	"repository": {
		"name": "egui",
		"html_url": "https://github.com/emilk/egui",
		"owner": {"login": "emilk"}
	},
	"sender": {"login": "contributor"}
}`

func testServer(t *testing.T, queueSize int) *Server {
	t.Helper()
	cfg := config.NewDefaultWebhookConfig()
	cfg.WebhookSecret = testSecret
	cfg.AllowedRepos = []string{"emilk/egui"}
	cfg.QueueSize = queueSize

	return &Server{
		config:    cfg,
		logger:    testWorkerLogger(),
		jobQueue:  make(chan *BuildJob, queueSize),
		startTime: time.Now(),
	}
}

func signPayload(payload string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func webhookRequest(payload, eventType, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(payload))
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "delivery-123")
	if signature != "" {
		req.Header.Set("X-Hub-Signature-256", signature)
	}
	return req
}

func TestHandleWebhookEnqueuesBuild(t *testing.T) {
	s := testServer(t, 4)

	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(prOpenedPayload, "pull_request", signPayload(prOpenedPayload)))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, s.jobQueue, 1)

	job := <-s.jobQueue
	assert.Equal(t, "delivery-123", job.Event.EventID)
	assert.Equal(t, 42, job.Event.PullRequest.Number)
	assert.Equal(t, "fix/ui bug!", job.Event.PullRequest.HeadRef)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	s := testServer(t, 4)

	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(prOpenedPayload, "pull_request", "sha256=deadbeef"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, s.jobQueue)
}

func TestHandleWebhookRejectsMissingEventHeader(t *testing.T) {
	s := testServer(t, 4)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(prOpenedPayload))
	w := httptest.NewRecorder()
	s.handleWebhook(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhookRejectsGet(t *testing.T) {
	s := testServer(t, 4)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	w := httptest.NewRecorder()
	s.handleWebhook(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleWebhookPing(t *testing.T) {
	s := testServer(t, 4)

	payload := `{"zen": "Keep it logically awesome."}`
	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(payload, "ping", signPayload(payload)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	s := testServer(t, 4)

	payload := `{"action": "created"}`
	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(payload, "issue_comment", signPayload(payload)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
	assert.Empty(t, s.jobQueue)
}

func TestHandleWebhookForbiddenRepository(t *testing.T) {
	s := testServer(t, 4)
	payload := strings.ReplaceAll(prOpenedPayload, `"login": "emilk"`, `"login": "attacker"`)

	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(payload, "pull_request", signPayload(payload)))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, s.jobQueue)
}

func TestHandleWebhookQueueFull(t *testing.T) {
	s := testServer(t, 1)

	w := httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(prOpenedPayload, "pull_request", signPayload(prOpenedPayload)))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	s.handleWebhook(w, webhookRequest(prOpenedPayload, "pull_request", signPayload(prOpenedPayload)))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, 4)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	assert.Contains(t, w.Body.String(), `"queue_capacity":4`)
}

func TestHandleReadiness(t *testing.T) {
	s := testServer(t, 4)

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	w := httptest.NewRecorder()
	s.handleReadiness(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

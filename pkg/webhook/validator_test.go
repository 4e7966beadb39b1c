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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateGitHubSignature(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{"test": "data"}`)

	// Generate valid signature
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSignature := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name        string
		payload     []byte
		signature   string
		secret      string
		expectError bool
	}{
		{
			name:        "valid signature",
			payload:     payload,
			signature:   validSignature,
			secret:      secret,
			expectError: false,
		},
		{
			name:        "invalid signature",
			payload:     payload,
			signature:   "sha256=invalid",
			secret:      secret,
			expectError: true,
		},
		{
			name:        "wrong secret",
			payload:     payload,
			signature:   validSignature,
			secret:      "wrong-secret",
			expectError: true,
		},
		{
			name:        "missing sha256 prefix",
			payload:     payload,
			signature:   hex.EncodeToString(mac.Sum(nil)),
			secret:      secret,
			expectError: true,
		},
		{
			name:        "empty signature",
			payload:     payload,
			signature:   "",
			secret:      secret,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGitHubSignature(tt.payload, tt.signature, tt.secret)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRepository(t *testing.T) {
	tests := []struct {
		name         string
		owner        string
		repo         string
		allowedRepos []string
		expectError  bool
	}{
		{
			name:         "no allowlist allows all",
			owner:        "emilk",
			repo:         "egui",
			allowedRepos: nil,
			expectError:  false,
		},
		{
			name:         "exact match",
			owner:        "emilk",
			repo:         "egui",
			allowedRepos: []string{"emilk/egui"},
			expectError:  false,
		},
		{
			name:         "org wildcard",
			owner:        "emilk",
			repo:         "eframe_template",
			allowedRepos: []string{"emilk/*"},
			expectError:  false,
		},
		{
			name:         "global wildcard",
			owner:        "anyone",
			repo:         "anything",
			allowedRepos: []string{"*"},
			expectError:  false,
		},
		{
			name:         "not in allowlist",
			owner:        "attacker",
			repo:         "egui",
			allowedRepos: []string{"emilk/egui"},
			expectError:  true,
		},
		{
			name:         "wildcard does not match other org",
			owner:        "attacker",
			repo:         "egui",
			allowedRepos: []string{"emilk/*"},
			expectError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRepository(tt.owner, tt.repo, tt.allowedRepos)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePREvent(t *testing.T) {
	valid := func() *PREvent {
		return &PREvent{
			Action: "opened",
			Repository: Repository{
				Owner: "emilk",
				Name:  "egui",
			},
			PullRequest: PRInfo{
				Number:  42,
				HeadRef: "fix/ui-bug",
				HeadSHA: "abc123",
			},
			Sender: User{Login: "someone"},
		}
	}

	tests := []struct {
		name        string
		mutate      func(e *PREvent)
		expectError bool
	}{
		{
			name:        "valid event",
			mutate:      func(e *PREvent) {},
			expectError: false,
		},
		{
			name:        "missing owner",
			mutate:      func(e *PREvent) { e.Repository.Owner = "" },
			expectError: true,
		},
		{
			name:        "missing repo name",
			mutate:      func(e *PREvent) { e.Repository.Name = "" },
			expectError: true,
		},
		{
			name:        "invalid PR number",
			mutate:      func(e *PREvent) { e.PullRequest.Number = 0 },
			expectError: true,
		},
		{
			name:        "missing head ref",
			mutate:      func(e *PREvent) { e.PullRequest.HeadRef = "" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := valid()
			tt.mutate(event)
			err := ValidatePREvent(event)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("nil event", func(t *testing.T) {
		assert.Error(t, ValidatePREvent(nil))
	})
}

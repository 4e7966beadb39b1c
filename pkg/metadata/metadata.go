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

// Package metadata defines the preview metadata record consumed by the
// downstream deployment process
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/slug"
)

// DefaultFileName is the artifact file name for the metadata record
const DefaultFileName = "pr_metadata.json"

// Record maps a pull request to its preview URL slug. It is written once
// per pipeline run and never mutated afterward.
type Record struct {
	PRNumber string `json:"pr_number"`
	URLSlug  string `json:"url_slug"`
}

// NewRecord builds a metadata record for the given PR and head branch.
// The PR number is rendered as text and the slug is sanitized.
func NewRecord(prNumber int, headRef string) *Record {
	return &Record{
		PRNumber: strconv.Itoa(prNumber),
		URLSlug:  slug.ForPR(prNumber, headRef),
	}
}

// Validate checks that the record is well-formed
func (r *Record) Validate() error {
	num, err := strconv.Atoi(r.PRNumber)
	if err != nil {
		return fmt.Errorf("pr_number %q is not an integer: %w", r.PRNumber, err)
	}
	if num <= 0 {
		return fmt.Errorf("pr_number must be positive, got %d", num)
	}
	if r.URLSlug == "" {
		return fmt.Errorf("url_slug is empty")
	}
	if !slug.IsValid(r.URLSlug) {
		return fmt.Errorf("url_slug %q contains characters outside [A-Za-z0-9-]", r.URLSlug)
	}
	return nil
}

// Write persists the record as JSON at path
func (r *Record) Write(path string) error {
	if err := r.Validate(); err != nil {
		return fmt.Errorf("invalid metadata record: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata record: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata record to %s: %w", path, err)
	}
	return nil
}

// Load reads and validates a record from path
func Load(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata record from %s: %w", path, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse metadata record: %w", err)
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid metadata record in %s: %w", path, err)
	}
	return &record, nil
}

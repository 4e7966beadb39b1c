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

package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	record := NewRecord(42, "fix/ui bug!")

	assert.Equal(t, "42", record.PRNumber)
	assert.Equal(t, "42-fixuibug", record.URLSlug)
	assert.NoError(t, record.Validate())
}

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name        string
		record      *Record
		expectError bool
	}{
		{
			name:        "valid record",
			record:      &Record{PRNumber: "123", URLSlug: "pr-123-feature"},
			expectError: false,
		},
		{
			name:        "non-numeric pr number",
			record:      &Record{PRNumber: "abc", URLSlug: "pr-abc"},
			expectError: true,
		},
		{
			name:        "zero pr number",
			record:      &Record{PRNumber: "0", URLSlug: "pr-0"},
			expectError: true,
		},
		{
			name:        "negative pr number",
			record:      &Record{PRNumber: "-5", URLSlug: "pr-5"},
			expectError: true,
		},
		{
			name:        "empty slug",
			record:      &Record{PRNumber: "1", URLSlug: ""},
			expectError: true,
		},
		{
			name:        "slug with invalid characters",
			record:      &Record{PRNumber: "1", URLSlug: "pr/1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	record := NewRecord(7, "my-branch")
	require.NoError(t, record.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, record, loaded)

	// The on-disk shape is the two-field JSON object the deployer expects
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pr_number": "7"`)
	assert.Contains(t, string(data), `"url_slug": "7-my-branch"`)
}

func TestWriteRejectsInvalidRecord(t *testing.T) {
	record := &Record{PRNumber: "not-a-number", URLSlug: "slug"}
	err := record.Write(filepath.Join(t.TempDir(), "meta.json"))
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badPath := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badPath, []byte("{not json"), 0644))
	_, err = Load(badPath)
	assert.Error(t, err)
}

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

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "preview-builder", rootCmd.Use)
	require.NotNil(t, buildOption)

	// Core flags are registered
	for _, name := range []string{
		"repo-owner", "repo-name", "pr-num", "head-ref",
		"build-command", "build-dir", "artifacts-dir", "version",
	} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "flag %s should be registered", name)
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	assert.True(t, names["serve"], "serve subcommand should be registered")
	assert.True(t, names["version"], "version subcommand should be registered")
}

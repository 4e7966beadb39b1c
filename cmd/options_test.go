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
	"errors"
	"testing"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptionAddFlags(t *testing.T) {
	opt := NewBuildOption()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opt.AddFlags(flags)

	err := flags.Parse([]string{
		"--repo-owner", "emilk",
		"--repo-name", "egui",
		"--pr-num", "42",
		"--head-ref", "fix/ui-bug",
		"--build-command", "./build.sh",
		"--build-timeout", "10m",
		"--post-comment",
	})
	require.NoError(t, err)

	assert.Equal(t, "emilk", opt.Config.Owner)
	assert.Equal(t, "egui", opt.Config.Repo)
	assert.Equal(t, "42", opt.prNumStr)
	assert.Equal(t, "fix/ui-bug", opt.Config.HeadRef)
	assert.Equal(t, "./build.sh", opt.Config.BuildCommand)
	assert.Equal(t, 10*time.Minute, opt.Config.BuildTimeout)
	assert.True(t, opt.Config.PostComment)
}

func TestParseStringFields(t *testing.T) {
	tests := []struct {
		name        string
		prNumStr    string
		expectError bool
		expected    int
	}{
		{
			name:     "valid number",
			prNumStr: "42",
			expected: 42,
		},
		{
			name:     "empty leaves config untouched",
			prNumStr: "",
			expected: 0,
		},
		{
			name:        "not a number",
			prNumStr:    "abc",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := NewBuildOption()
			opt.prNumStr = tt.prNumStr

			err := opt.parseStringFields()
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, opt.Config.PRNum)
		})
	}
}

func TestInitializeValidation(t *testing.T) {
	opt := NewBuildOption()
	// Repository and PR fields missing

	err := opt.initialize()
	require.Error(t, err)
	assert.True(t, isPerRunConfigError(err))
}

func TestIsPerRunConfigError(t *testing.T) {
	assert.True(t, isPerRunConfigError(config.ErrMissingOwner))
	assert.True(t, isPerRunConfigError(config.ErrInvalidPRNum))
	assert.True(t, isPerRunConfigError(config.ErrMissingHeadRef))
	assert.False(t, isPerRunConfigError(config.ErrMissingBuildCommand))
	// A missing token is a server-level misconfiguration, not per-event
	assert.False(t, isPerRunConfigError(config.ErrMissingToken))
	assert.False(t, isPerRunConfigError(errors.New("something else")))
}

func TestValidateNotifySettings(t *testing.T) {
	cfg := config.NewDefaultConfig()
	assert.NoError(t, validateNotifySettings(cfg))

	cfg.PostComment = true
	assert.ErrorIs(t, validateNotifySettings(cfg), config.ErrMissingToken)

	cfg.Token = "ghp_token"
	assert.NoError(t, validateNotifySettings(cfg))

	cfg = config.NewDefaultConfig()
	cfg.SetStatus = true
	assert.ErrorIs(t, validateNotifySettings(cfg), config.ErrMissingToken)
}

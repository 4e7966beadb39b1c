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

// Package config provides configuration management for the preview builder
package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds the configuration for a single preview build run
type Config struct {
	// Repository configuration
	Owner   string `json:"owner" yaml:"owner" mapstructure:"repo-owner"`
	Repo    string `json:"repo" yaml:"repo" mapstructure:"repo-name"`
	RepoURL string `json:"repo_url,omitempty" yaml:"repo_url,omitempty" mapstructure:"repo-url"`

	// Pull request configuration
	PRNum   int    `json:"pr_num" yaml:"pr_num" mapstructure:"pr-num"`
	HeadRef string `json:"head_ref" yaml:"head_ref" mapstructure:"head-ref"`
	HeadSHA string `json:"head_sha,omitempty" yaml:"head_sha,omitempty" mapstructure:"head-sha"`

	// Platform authentication
	Token   string `json:"token" yaml:"token" mapstructure:"token"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base-url"`

	// Build configuration
	BuildCommand string        `json:"build_command" yaml:"build_command" mapstructure:"build-command"`
	BuildDir     string        `json:"build_dir" yaml:"build_dir" mapstructure:"build-dir"`
	BuildTimeout time.Duration `json:"build_timeout" yaml:"build_timeout" mapstructure:"build-timeout"`
	SourceDir    string        `json:"source_dir,omitempty" yaml:"source_dir,omitempty" mapstructure:"source-dir"`

	// Artifact configuration
	ArtifactsDir     string `json:"artifacts_dir" yaml:"artifacts_dir" mapstructure:"artifacts-dir"`
	AssetsArtifact   string `json:"assets_artifact" yaml:"assets_artifact" mapstructure:"assets-artifact"`
	MetadataArtifact string `json:"metadata_artifact" yaml:"metadata_artifact" mapstructure:"metadata-artifact"`
	ArchiveArtifacts bool   `json:"archive_artifacts" yaml:"archive_artifacts" mapstructure:"archive-artifacts"`
	KeepPreviews     int    `json:"keep_previews" yaml:"keep_previews" mapstructure:"keep-previews"`

	// Notification configuration
	StatusContext string `json:"status_context,omitempty" yaml:"status_context,omitempty" mapstructure:"status-context"`
	PreviewURL    string `json:"preview_url,omitempty" yaml:"preview_url,omitempty" mapstructure:"preview-url"`
	PostComment   bool   `json:"post_comment,omitempty" yaml:"post_comment,omitempty" mapstructure:"post-comment"`
	SetStatus     bool   `json:"set_status,omitempty" yaml:"set_status,omitempty" mapstructure:"set-status"`

	// Logging configuration
	Verbose   bool   `json:"verbose,omitempty" yaml:"verbose,omitempty" mapstructure:"verbose"`
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log-level"`
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log-format"`
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		BuildCommand:     "scripts/build_demo_web.sh --release",
		BuildDir:         "web_demo",
		BuildTimeout:     30 * time.Minute,
		ArtifactsDir:     "artifacts",
		AssetsArtifact:   "web_demo",
		MetadataArtifact: "pr_metadata",
		ArchiveArtifacts: true,
		StatusContext:    "preview-builder",
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// CloneURL returns the repository clone URL, deriving it from owner/repo
// when not set explicitly
func (c *Config) CloneURL() string {
	if c.RepoURL != "" {
		return c.RepoURL
	}
	return fmt.Sprintf("https://github.com/%s/%s.git", c.Owner, c.Repo)
}

// DebugString returns a JSON representation of the config with sensitive
// information redacted
func (c *Config) DebugString() string {
	debugConfig := *c
	if debugConfig.Token != "" {
		debugConfig.Token = "[REDACTED]"
	}

	data, err := json.MarshalIndent(debugConfig, "", "  ")
	if err != nil {
		return fmt.Sprintf("failed to marshal config: %v", err)
	}
	return string(data)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Owner == "" {
		return ErrMissingOwner
	}
	if c.Repo == "" {
		return ErrMissingRepo
	}
	if c.PRNum <= 0 {
		return ErrInvalidPRNum
	}
	if c.HeadRef == "" {
		return ErrMissingHeadRef
	}
	if c.BuildCommand == "" {
		return ErrMissingBuildCommand
	}
	if c.ArtifactsDir == "" {
		return ErrMissingArtifactsDir
	}
	if c.BuildTimeout <= 0 {
		return ErrInvalidBuildTimeout
	}
	if (c.PostComment || c.SetStatus) && c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

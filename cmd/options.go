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
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/pipeline"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/platforms/github"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildOption option for the preview build command
type BuildOption struct {
	*logrus.Logger
	Config *config.Config

	// String fields for CLI parsing (will be converted to Config)
	prNumStr   string
	configFile string
}

// NewBuildOption creates a new BuildOption instance
func NewBuildOption() *BuildOption {
	return &BuildOption{
		Logger: logrus.New(),
		Config: config.NewDefaultConfig(),
	}
}

// AddFlags add flags to options
func (b *BuildOption) AddFlags(flags *pflag.FlagSet) {
	// Repository and authentication configuration
	flags.StringVar(&b.Config.Owner, "repo-owner", "", "Repository owner (organization or user)")
	flags.StringVar(&b.Config.Repo, "repo-name", "", "Repository name")
	flags.StringVar(&b.Config.RepoURL, "repo-url", "", "Repository clone URL (optional, derived from owner/name)")
	flags.StringVar(&b.Config.Token, "token", "", "GitHub API token for cloning private repositories and notifications")
	flags.StringVar(&b.Config.BaseURL, "base-url", "", "GitHub API base URL (optional, for GitHub Enterprise)")

	// PR information
	flags.StringVar(&b.prNumStr, "pr-num", "", "Pull request number")
	flags.StringVar(&b.Config.HeadRef, "head-ref", "", "PR head branch name")
	flags.StringVar(&b.Config.HeadSHA, "head-sha", "", "PR head commit SHA (optional, pins the checkout)")

	// Build configuration
	flags.StringVar(&b.Config.BuildCommand, "build-command", b.Config.BuildCommand, "Command that builds the web assets")
	flags.StringVar(&b.Config.BuildDir, "build-dir", b.Config.BuildDir, "Directory the build command writes its output to")
	flags.DurationVar(&b.Config.BuildTimeout, "build-timeout", b.Config.BuildTimeout, "Maximum duration for the build command")
	flags.StringVar(&b.Config.SourceDir, "source-dir", b.Config.SourceDir, "Subdirectory of the checkout to build in")

	// Artifact configuration
	flags.StringVar(&b.Config.ArtifactsDir, "artifacts-dir", b.Config.ArtifactsDir, "Directory previews and metadata are published to")
	flags.StringVar(&b.Config.AssetsArtifact, "assets-artifact", b.Config.AssetsArtifact, "Name of the built assets artifact")
	flags.StringVar(&b.Config.MetadataArtifact, "metadata-artifact", b.Config.MetadataArtifact, "Name of the metadata artifact")
	flags.BoolVar(&b.Config.ArchiveArtifacts, "archive-artifacts", b.Config.ArchiveArtifacts, "Also write the assets as a tar.gz archive")
	flags.IntVar(&b.Config.KeepPreviews, "keep-previews", b.Config.KeepPreviews, "Number of previews to keep (0 disables pruning)")

	// Notification configuration
	flags.StringVar(&b.Config.StatusContext, "status-context", b.Config.StatusContext, "Context string for commit statuses")
	flags.StringVar(&b.Config.PreviewURL, "preview-url", "", "Base URL previews are served from")
	flags.BoolVar(&b.Config.PostComment, "post-comment", false, "Post the preview link as a PR comment")
	flags.BoolVar(&b.Config.SetStatus, "set-status", false, "Report build progress as commit statuses")

	// Config file and logging flags
	flags.StringVar(&b.configFile, "config", "", "Path to a YAML configuration file")
	flags.BoolVar(&b.Config.Verbose, "verbose", false, "Enable verbose logging (debug level logs)")
	flags.StringVar(&b.Config.LogFormat, "log-format", b.Config.LogFormat, "Log format (console or json)")
}

// Run executes a one-shot preview build
func (b *BuildOption) Run(cmd *cobra.Command, args []string) error {
	if err := b.initialize(); err != nil {
		return err
	}

	if b.Config.Verbose {
		b.Debugf("Building preview for PR %d, config: %s", b.Config.PRNum, b.Config.DebugString())
	}

	notifier, err := b.createNotifier()
	if err != nil {
		return err
	}

	p, err := pipeline.New(b.Logger, b.Config, notifier)
	if err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	result, err := p.Run(cmd.Context())
	if err != nil {
		if failed := result.FailedStep(); failed != nil {
			return fmt.Errorf("preview build failed at step %s: %w", failed.Name, failed.Error)
		}
		return err
	}

	b.Infof("Preview published: %s (slug %s)", result.PreviewDir, result.URLSlug)
	return nil
}

// createNotifier returns a GitHub notifier when PR feedback is enabled
func (b *BuildOption) createNotifier() (pipeline.Notifier, error) {
	if !b.Config.PostComment && !b.Config.SetStatus {
		return nil, nil
	}

	client, err := github.NewClient(b.Logger, b.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	return client, nil
}

// readAllFromViper reads all configuration values from viper
// This includes environment variables with PREVIEW_ prefix
func (b *BuildOption) readAllFromViper() {
	if err := viper.Unmarshal(b.Config); err != nil {
		// Log warning but continue - this shouldn't prevent the application from running
		b.Warnf("Failed to unmarshal config from viper: %v", err)
	}

	// Clean up string values by trimming whitespace and newlines
	b.Config.Owner = strings.TrimSpace(b.Config.Owner)
	b.Config.Repo = strings.TrimSpace(b.Config.Repo)
	b.Config.RepoURL = strings.TrimSpace(b.Config.RepoURL)
	b.Config.Token = strings.TrimSpace(b.Config.Token)
	b.Config.BaseURL = strings.TrimSpace(b.Config.BaseURL)
	b.Config.HeadRef = strings.TrimSpace(b.Config.HeadRef)
	b.Config.HeadSHA = strings.TrimSpace(b.Config.HeadSHA)
	b.Config.BuildCommand = strings.TrimSpace(b.Config.BuildCommand)
	b.Config.BuildDir = strings.TrimSpace(b.Config.BuildDir)
	b.Config.SourceDir = strings.TrimSpace(b.Config.SourceDir)
	b.Config.ArtifactsDir = strings.TrimSpace(b.Config.ArtifactsDir)
	b.Config.PreviewURL = strings.TrimRight(strings.TrimSpace(b.Config.PreviewURL), "/")

	// pr-num is parsed separately since it arrives as a string
	if b.prNumStr == "" {
		b.prNumStr = strings.TrimSpace(viper.GetString("pr-num"))
	}
	if b.configFile == "" {
		b.configFile = strings.TrimSpace(viper.GetString("config"))
	}
}

// parseStringFields converts string CLI fields to proper types in config
func (b *BuildOption) parseStringFields() error {
	if b.prNumStr != "" {
		prNum, err := strconv.Atoi(b.prNumStr)
		if err != nil {
			return fmt.Errorf("invalid PR number '%s': %w", b.prNumStr, err)
		}
		b.Config.PRNum = prNum
	}
	return nil
}

// resolvePRDetails fills HeadRef and HeadSHA from the GitHub API when the
// head ref was not provided. Requires a token and a resolvable PR number.
func (b *BuildOption) resolvePRDetails() error {
	if b.Config.HeadRef != "" || b.Config.Token == "" {
		return nil
	}
	if b.Config.Owner == "" || b.Config.Repo == "" || b.Config.PRNum <= 0 {
		return nil
	}

	client, err := github.NewClient(b.Logger, b.Config)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	pr, err := client.GetPR(context.Background(), b.Config.PRNum)
	if err != nil {
		return fmt.Errorf("failed to look up PR #%d: %w", b.Config.PRNum, err)
	}

	b.Config.HeadRef = pr.HeadRef
	if b.Config.HeadSHA == "" {
		b.Config.HeadSHA = pr.HeadSHA
	}
	b.Infof("Resolved PR #%d head: %s@%s", b.Config.PRNum, pr.HeadRef, pr.HeadSHA)
	return nil
}

// initialize initializes and validates the BuildOption configuration
func (b *BuildOption) initialize() error {
	// Read all values from viper (which includes environment variables)
	b.readAllFromViper()

	// Parse string fields into config
	if err := b.parseStringFields(); err != nil {
		return fmt.Errorf("failed to parse CLI fields: %w", err)
	}

	// Merge values from a config file, flags and env take precedence
	if err := b.Config.LoadFile(b.configFile); err != nil {
		return err
	}

	// Resolve the head ref from the API when not given on the command line
	if err := b.resolvePRDetails(); err != nil {
		return err
	}

	// Set log level based on verbose flag
	if b.Config.Verbose {
		b.SetLevel(logrus.DebugLevel)
		b.Debug("Verbose logging enabled")
	} else {
		b.SetLevel(logrus.InfoLevel)
	}
	if b.Config.LogFormat == "json" {
		b.SetFormatter(&logrus.JSONFormatter{})
	}

	// Validate configuration
	if err := b.Config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	return nil
}

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

// Package cmd provides the command line interface for the preview builder
package cmd

import (
	"os"

	"github.com/AlaudaDevops/toolbox/preview-builder/internal/version"
	"github.com/spf13/cobra"
)

// buildOption is the global instance of BuildOption
var buildOption *BuildOption

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "preview-builder",
	Short: "Build and publish web previews for pull requests",
	Long: `Preview Builder produces a browsable web preview for a pull request.

For a given PR it clones the repository, checks out the PR head, runs the
configured build command, and publishes the built assets together with a
metadata record under a URL slug derived from the PR number and branch name.

Example usage:
  # Build a preview for PR 42
  preview-builder --repo-owner emilk --repo-name egui --pr-num 42 --head-ref "fix/ui-bug"

  # Custom build command and output directory
  preview-builder --repo-owner emilk --repo-name egui --pr-num 42 --head-ref main \
    --build-command "scripts/build_demo_web.sh --release" --build-dir web_demo

  # Post the preview link back to the PR
  preview-builder --repo-owner emilk --repo-name egui --pr-num 42 --head-ref main \
    --token $TOKEN --post-comment --set-status --preview-url https://preview.example.com

The head branch name is reduced to a URL slug by keeping only letters,
digits and dashes: "42-fix/ui bug!" becomes "42-fixuibug".`,

	RunE: func(cmd *cobra.Command, args []string) error {
		// Handle --version flag
		if showVersion, _ := cmd.Flags().GetBool("version"); showVersion {
			versionInfo := version.Get()

			if outputFormat == "json" {
				return printVersionJSON(versionInfo)
			}
			return printVersionText(versionInfo)
		}
		return buildOption.Run(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

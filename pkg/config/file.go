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

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML pipeline configuration file into the config.
// Values already set by flags or environment variables take precedence:
// the file only fills fields that are still at their zero value.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(contents, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.merge(&fileConfig)
	return nil
}

// merge fills fields of c from other. A field is taken from the file when
// it is still unset or carries the built-in default.
func (c *Config) merge(other *Config) {
	defaults := NewDefaultConfig()

	if c.Owner == "" {
		c.Owner = other.Owner
	}
	if c.Repo == "" {
		c.Repo = other.Repo
	}
	if c.RepoURL == "" {
		c.RepoURL = other.RepoURL
	}
	if c.PRNum == 0 {
		c.PRNum = other.PRNum
	}
	if c.HeadRef == "" {
		c.HeadRef = other.HeadRef
	}
	if c.HeadSHA == "" {
		c.HeadSHA = other.HeadSHA
	}
	if c.BaseURL == "" {
		c.BaseURL = other.BaseURL
	}
	if c.SourceDir == "" {
		c.SourceDir = other.SourceDir
	}
	if c.PreviewURL == "" {
		c.PreviewURL = other.PreviewURL
	}
	if other.BuildCommand != "" && (c.BuildCommand == "" || c.BuildCommand == defaults.BuildCommand) {
		c.BuildCommand = other.BuildCommand
	}
	if other.BuildDir != "" && c.BuildDir == defaults.BuildDir {
		c.BuildDir = other.BuildDir
	}
	if other.BuildTimeout > 0 && c.BuildTimeout == defaults.BuildTimeout {
		c.BuildTimeout = other.BuildTimeout
	}
	if other.ArtifactsDir != "" && c.ArtifactsDir == defaults.ArtifactsDir {
		c.ArtifactsDir = other.ArtifactsDir
	}
	if other.StatusContext != "" && (c.StatusContext == "" || c.StatusContext == defaults.StatusContext) {
		c.StatusContext = other.StatusContext
	}
}

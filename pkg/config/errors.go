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

import "errors"

// Sentinel validation errors returned by Config.Validate
var (
	ErrMissingOwner        = errors.New("repository owner is required")
	ErrMissingRepo         = errors.New("repository name is required")
	ErrInvalidPRNum        = errors.New("pull request number must be positive")
	ErrMissingHeadRef      = errors.New("head branch name is required")
	ErrMissingBuildCommand = errors.New("build command is required")
	ErrMissingArtifactsDir = errors.New("artifacts directory is required")
	ErrInvalidBuildTimeout = errors.New("build timeout must be positive")
	ErrMissingToken        = errors.New("platform token is required for PR notifications")
)

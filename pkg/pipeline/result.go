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

package pipeline

import "time"

// Step names, in execution order
const (
	StepCheckout = "checkout"
	StepBuild    = "build"
	StepStage    = "stage"
	StepMetadata = "metadata"
	StepArchive  = "archive"
	StepPublish  = "publish"
	StepNotify   = "notify"
)

// StepResult records the outcome of a single pipeline step
type StepResult struct {
	Name     string
	Success  bool
	Error    error
	Duration time.Duration
}

// Result represents the outcome of a full pipeline run
type Result struct {
	Success    bool
	URLSlug    string
	PreviewDir string
	Steps      []StepResult
}

// FailedStep returns the first failed step, or nil when the run succeeded
func (r *Result) FailedStep() *StepResult {
	for i := range r.Steps {
		if !r.Steps[i].Success {
			return &r.Steps[i]
		}
	}
	return nil
}

// TotalDuration sums the durations of all executed steps
func (r *Result) TotalDuration() time.Duration {
	var total time.Duration
	for _, step := range r.Steps {
		total += step.Duration
	}
	return total
}

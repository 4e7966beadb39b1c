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

// Package builder runs the external web build command
package builder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
)

// Builder executes the configured build command inside a checkout
type Builder struct {
	logger  *logrus.Logger
	command string
	timeout time.Duration
	env     map[string]string
}

// NewBuilder creates a new Builder instance
func NewBuilder(logger *logrus.Logger, command string, timeout time.Duration, env map[string]string) *Builder {
	return &Builder{
		logger:  logger,
		command: command,
		timeout: timeout,
		env:     env,
	}
}

// Run executes the build command in workDir. The command string is split
// shell-style; the configured env entries are appended to the inherited
// environment. Output is streamed to the logger line by line.
func (b *Builder) Run(ctx context.Context, workDir string) (time.Duration, error) {
	argv, err := shlex.Split(b.command)
	if err != nil {
		return 0, fmt.Errorf("failed to parse build command %q: %w", b.command, err)
	}
	if len(argv) == 0 {
		return 0, fmt.Errorf("build command is empty")
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = workDir
	cmd.Env = os.Environ()
	for k, v := range b.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, fmt.Errorf("failed to open build stdout: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	b.logger.Infof("Running build command: %s (workdir: %s)", b.command, workDir)

	startTime := time.Now()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start build command: %w", err)
	}

	b.streamOutput(stdout)

	err = cmd.Wait()
	duration := time.Since(startTime)

	if ctx.Err() == context.DeadlineExceeded {
		return duration, fmt.Errorf("build command timed out after %s", b.timeout)
	}
	if err != nil {
		return duration, fmt.Errorf("build command failed: %w", err)
	}

	b.logger.Infof("Build completed in %s", duration.Round(time.Millisecond))
	return duration, nil
}

// streamOutput forwards build output lines to the logger
func (b *Builder) streamOutput(r io.Reader) {
	scanner := bufio.NewScanner(r)
	// Build tools can emit very long lines (embedded asset dumps)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		b.logger.WithField("source", "build").Info(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		b.logger.Warnf("Build output truncated: %v", err)
	}
}

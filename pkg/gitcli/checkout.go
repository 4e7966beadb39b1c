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

// Package gitcli checks out pull request sources using the Git CLI
package gitcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// cleanBranchNameForTempDir removes path separators from branch names for use in temp directory names
func cleanBranchNameForTempDir(branchName string) string {
	clean := strings.ReplaceAll(branchName, "/", "-")
	return strings.ReplaceAll(clean, "\\", "-")
}

var (
	oauth2Pattern      = regexp.MustCompile(`oauth2:[^@\s]+@`)
	githubTokenPattern = regexp.MustCompile(`gh[pousr][_a-zA-Z0-9]+`)
)

// sanitizeErrorMessage removes tokens and credentials from git output
// before it reaches logs or error values
func sanitizeErrorMessage(message string) string {
	message = oauth2Pattern.ReplaceAllString(message, "oauth2:[TOKEN_REDACTED]@")
	message = githubTokenPattern.ReplaceAllString(message, "[TOKEN_REDACTED]")
	return message
}

// Checkout clones a repository and checks out a pull request head
type Checkout struct {
	logger     *logrus.Logger
	repoURL    string
	token      string
	prNum      int
	headRef    string
	headSHA    string
	workingDir string
}

// NewCheckout creates a new Checkout instance
func NewCheckout(logger *logrus.Logger, repoURL, token string, prNum int, headRef, headSHA string) *Checkout {
	return &Checkout{
		logger:  logger,
		repoURL: repoURL,
		token:   token,
		prNum:   prNum,
		headRef: headRef,
		headSHA: headSHA,
	}
}

// Run clones the repository into a temp directory and checks out the PR
// head. The caller owns the returned directory until Cleanup is called.
func (c *Checkout) Run(ctx context.Context) (string, error) {
	tempDir, err := os.MkdirTemp("", fmt.Sprintf("preview-pr%d-%s-", c.prNum, cleanBranchNameForTempDir(c.headRef)))
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	c.workingDir = tempDir

	if err := c.cloneRepository(ctx); err != nil {
		c.Cleanup()
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}

	if err := c.checkoutHead(ctx); err != nil {
		c.Cleanup()
		return "", fmt.Errorf("failed to checkout PR head: %w", err)
	}

	return tempDir, nil
}

// Cleanup removes the checkout working directory
func (c *Checkout) Cleanup() {
	if c.workingDir == "" {
		return
	}
	if err := os.RemoveAll(c.workingDir); err != nil {
		c.logger.Warnf("Failed to remove checkout directory %s: %v", c.workingDir, err)
	}
	c.workingDir = ""
}

// cloneRepository clones the repository into the working directory
func (c *Checkout) cloneRepository(ctx context.Context) error {
	c.logger.Debugf("Cloning repository %s to %s", sanitizeErrorMessage(c.repoURL), c.workingDir)

	cloneCmd := exec.CommandContext(ctx, "git", "clone", "--depth=1", c.authenticatedURL(), c.workingDir)
	cloneCmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")

	output, err := cloneCmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git clone failed: %w, output: %s", err, sanitizeErrorMessage(string(output)))
	}

	c.logger.Debugf("Repository cloned successfully: %s", sanitizeErrorMessage(c.repoURL))
	return nil
}

// checkoutHead fetches and checks out the PR head ref. The pull ref is
// preferred; branch name is the fallback for platforms without pull refs.
func (c *Checkout) checkoutHead(ctx context.Context) error {
	pullRef := fmt.Sprintf("pull/%d/head", c.prNum)

	if err := c.runGitCommand(ctx, "fetch", "origin", pullRef); err != nil {
		c.logger.Debugf("Pull ref fetch failed, falling back to branch %s: %v", c.headRef, err)
		if err := c.runGitCommand(ctx, "fetch", "origin", c.headRef); err != nil {
			return fmt.Errorf("failed to fetch %s or %s: %w", pullRef, c.headRef, err)
		}
	}

	if err := c.runGitCommand(ctx, "checkout", "--force", "FETCH_HEAD"); err != nil {
		return fmt.Errorf("failed to checkout FETCH_HEAD: %w", err)
	}

	// Pin to the exact SHA from the triggering event when known, so a
	// force-push between event and build cannot change what gets built.
	if c.headSHA != "" {
		if err := c.runGitCommand(ctx, "checkout", "--force", c.headSHA); err != nil {
			return fmt.Errorf("failed to checkout head SHA %s: %w", c.headSHA, err)
		}
	}

	return nil
}

// authenticatedURL embeds the token into the clone URL when one is set
func (c *Checkout) authenticatedURL() string {
	if c.token == "" || !strings.HasPrefix(c.repoURL, "https://") {
		return c.repoURL
	}
	return "https://oauth2:" + c.token + "@" + strings.TrimPrefix(c.repoURL, "https://")
}

// runGitCommand runs a git command in the working directory and returns
// error with sanitized output
func (c *Checkout) runGitCommand(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	// Dir instead of chdir: serve mode runs checkouts from concurrent workers
	cmd.Dir = c.workingDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		sanitizedOutput := sanitizeErrorMessage(string(output))
		return fmt.Errorf("git %s failed: %w, output: %s", strings.Join(args, " "), err, sanitizedOutput)
	}
	return nil
}

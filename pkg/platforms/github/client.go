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

// Package github provides the GitHub API client used for PR lookups and
// preview notifications
package github

import (
	"context"
	"fmt"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/google/go-github/v74/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// PullRequest holds the PR fields the pipeline cares about
type PullRequest struct {
	Number   int
	Title    string
	State    string
	Author   string
	HeadRef  string
	HeadSHA  string
	BaseRef  string
	Draft    bool
	CloneURL string
	HTMLURL  string
}

// Client wraps the GitHub API for a single repository
type Client struct {
	*logrus.Logger
	client *github.Client
	owner  string
	repo   string
}

// createGitHubClient creates a GitHub client with the specified token
func createGitHubClient(ctx context.Context, token, baseURL string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	// Set custom base URL if provided
	if baseURL != "" && baseURL != "https://api.github.com" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to set GitHub enterprise URL: %w", err)
		}
	}

	return client, nil
}

// NewClient creates a new GitHub client for the configured repository
func NewClient(logger *logrus.Logger, cfg *config.Config) (*Client, error) {
	client, err := createGitHubClient(context.Background(), cfg.Token, cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	return &Client{
		Logger: logger,
		client: client,
		owner:  cfg.Owner,
		repo:   cfg.Repo,
	}, nil
}

// GetPR retrieves the pull request information
func (c *Client) GetPR(ctx context.Context, prNum int) (*PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, c.owner, c.repo, prNum)
	if err != nil {
		return nil, err
	}

	return &PullRequest{
		Number:   pr.GetNumber(),
		Title:    pr.GetTitle(),
		State:    pr.GetState(),
		Author:   pr.GetUser().GetLogin(),
		HeadRef:  pr.GetHead().GetRef(),
		HeadSHA:  pr.GetHead().GetSHA(),
		BaseRef:  pr.GetBase().GetRef(),
		Draft:    pr.GetDraft(),
		CloneURL: pr.GetBase().GetRepo().GetCloneURL(),
		HTMLURL:  pr.GetHTMLURL(),
	}, nil
}

// PostComment posts a comment to the pull request
func (c *Client) PostComment(ctx context.Context, prNum int, message string) error {
	comment := &github.IssueComment{
		Body: github.Ptr(message),
	}

	_, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, prNum, comment)
	return err
}

// CreateCommitStatus sets a commit status on the given SHA.
// state is one of pending, success, error, failure.
func (c *Client) CreateCommitStatus(ctx context.Context, sha, state, statusContext, description, targetURL string) error {
	status := &github.RepoStatus{
		State:       github.Ptr(state),
		Context:     github.Ptr(statusContext),
		Description: github.Ptr(description),
	}
	if targetURL != "" {
		status.TargetURL = github.Ptr(targetURL)
	}

	_, _, err := c.client.Repositories.CreateStatus(ctx, c.owner, c.repo, sha, status)
	if err != nil {
		return fmt.Errorf("failed to set commit status on %s: %w", sha, err)
	}

	c.Debugf("Set commit status %s=%s on %s", statusContext, state, sha)
	return nil
}

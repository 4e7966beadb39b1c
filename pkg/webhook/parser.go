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

package webhook

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
)

// PREvent represents a parsed pull_request webhook event
type PREvent struct {
	EventID     string
	Action      string
	Repository  Repository
	PullRequest PRInfo
	Sender      User
}

// Repository represents repository information
type Repository struct {
	Owner string
	Name  string
	URL   string
}

// PRInfo represents pull request information from a pull_request event
type PRInfo struct {
	Number  int
	State   string
	Title   string
	Draft   bool
	Author  string
	HeadRef string
	HeadSHA string
	BaseRef string
}

// User represents a user
type User struct {
	Login string
}

// GitHubPullRequestPayload represents GitHub pull_request webhook payload structure
type GitHubPullRequestPayload struct {
	Action      string `json:"action"`
	Number      int    `json:"number"`
	PullRequest struct {
		Number int    `json:"number"`
		State  string `json:"state"`
		Title  string `json:"title"`
		Draft  bool   `json:"draft"`
		User   struct {
			Login string `json:"login"`
		} `json:"user"`
		Head struct {
			Ref string `json:"ref"`
			SHA string `json:"sha"`
		} `json:"head"`
		Base struct {
			Ref string `json:"ref"`
		} `json:"base"`
	} `json:"pull_request"`
	Repository struct {
		Name  string `json:"name"`
		Owner struct {
			Login string `json:"login"`
		} `json:"owner"`
		HTMLURL string `json:"html_url"`
	} `json:"repository"`
	Sender struct {
		Login string `json:"login"`
	} `json:"sender"`
}

// ParsePullRequestEvent parses a GitHub pull_request webhook payload.
// Events whose action is not in allowedActions are rejected, as are
// draft PRs except when the action is "ready_for_review".
func ParsePullRequestEvent(payload []byte, allowedActions []string) (*PREvent, error) {
	var ghPayload GitHubPullRequestPayload
	if err := json.Unmarshal(payload, &ghPayload); err != nil {
		return nil, fmt.Errorf("failed to parse pull_request payload: %w", err)
	}

	if !slices.Contains(allowedActions, ghPayload.Action) {
		return nil, fmt.Errorf("action %q not in allowed actions", ghPayload.Action)
	}

	if ghPayload.PullRequest.Draft && ghPayload.Action != "ready_for_review" {
		return nil, fmt.Errorf("skipping draft PR")
	}

	event := &PREvent{
		Action: ghPayload.Action,
		Repository: Repository{
			Owner: ghPayload.Repository.Owner.Login,
			Name:  ghPayload.Repository.Name,
			URL:   ghPayload.Repository.HTMLURL,
		},
		PullRequest: PRInfo{
			Number:  ghPayload.PullRequest.Number,
			State:   ghPayload.PullRequest.State,
			Title:   ghPayload.PullRequest.Title,
			Draft:   ghPayload.PullRequest.Draft,
			Author:  ghPayload.PullRequest.User.Login,
			HeadRef: ghPayload.PullRequest.Head.Ref,
			HeadSHA: ghPayload.PullRequest.Head.SHA,
			BaseRef: ghPayload.PullRequest.Base.Ref,
		},
		Sender: User{
			Login: ghPayload.Sender.Login,
		},
	}

	return event, nil
}

// ToConfig derives a per-run build configuration from the event
func (e *PREvent) ToConfig(baseConfig *config.Config) *config.Config {
	cfg := *baseConfig // Copy base config

	cfg.Owner = e.Repository.Owner
	cfg.Repo = e.Repository.Name
	cfg.PRNum = e.PullRequest.Number
	cfg.HeadRef = e.PullRequest.HeadRef
	cfg.HeadSHA = e.PullRequest.HeadSHA

	return &cfg
}

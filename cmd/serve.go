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
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/webhook"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start webhook server that builds previews for pull_request events",
	Long: `Start an HTTP server that receives GitHub pull_request webhooks and runs a
preview build for each qualifying event. Builds execute on a worker pool; the
webhook handler only validates and enqueues.

The server validates webhook signatures, filters events by action and
repository allowlist, and skips draft PRs.

Example:
  # Start server with default settings
  preview-builder serve --webhook-secret=mysecret

  # Restrict to one repository and post preview links back
  preview-builder serve --webhook-secret=mysecret --allowed-repos="emilk/egui" \
    --token $TOKEN --post-comment --preview-url https://preview.example.com

  # Start with TLS
  preview-builder serve --tls-enabled --tls-cert-file=/etc/certs/tls.crt --tls-key-file=/etc/certs/tls.key

Environment Variables:
  LISTEN_ADDR              Server listen address (default: :8080)
  WEBHOOK_PATH             Webhook endpoint path (default: /webhook)
  WEBHOOK_SECRET           Webhook secret for signature validation
  WEBHOOK_SECRET_FILE      File containing webhook secret
  ALLOWED_REPOS            Comma-separated list of allowed repositories (owner/repo or owner/*)
  REQUIRE_SIGNATURE        Require webhook signature validation (default: true)
  TLS_ENABLED              Enable TLS (default: false)
  TLS_CERT_FILE            TLS certificate file
  TLS_KEY_FILE             TLS private key file
  WORKER_COUNT             Number of build worker goroutines (default: 4)
  QUEUE_SIZE               Build job queue size (default: 50)
  RATE_LIMIT_ENABLED       Enable rate limiting (default: true)
  RATE_LIMIT_REQUESTS      Max requests per minute per IP (default: 100)
  PR_EVENT_ACTIONS         Comma-separated PR actions to build for (default: opened,synchronize,reopened,ready_for_review)

  Plus all preview builder environment variables (PREVIEW_TOKEN, PREVIEW_BUILD_COMMAND, etc.)
`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Server configuration flags
	serveCmd.Flags().String("listen-addr", ":8080", "Server listen address")
	serveCmd.Flags().String("webhook-path", "/webhook", "Webhook endpoint path")
	serveCmd.Flags().String("health-path", "/health", "Health check endpoint path")
	serveCmd.Flags().String("metrics-path", "/metrics", "Metrics endpoint path")

	// Security flags
	serveCmd.Flags().String("webhook-secret", "", "Webhook secret for signature validation")
	serveCmd.Flags().String("webhook-secret-file", "", "File containing webhook secret")
	serveCmd.Flags().StringSlice("allowed-repos", []string{}, "Allowed repositories (owner/repo format, supports wildcards)")
	serveCmd.Flags().Bool("require-signature", true, "Require webhook signature validation")

	// TLS flags
	serveCmd.Flags().Bool("tls-enabled", false, "Enable TLS")
	serveCmd.Flags().String("tls-cert-file", "", "TLS certificate file")
	serveCmd.Flags().String("tls-key-file", "", "TLS private key file")

	// Processing flags
	serveCmd.Flags().Int("worker-count", 4, "Number of build worker goroutines")
	serveCmd.Flags().Int("queue-size", 50, "Build job queue size")

	// Rate limiting flags
	serveCmd.Flags().Bool("rate-limit-enabled", true, "Enable rate limiting")
	serveCmd.Flags().Int("rate-limit-requests", 100, "Max requests per minute per IP")

	// Pull request event flags
	serveCmd.Flags().StringSlice("pr-event-actions", []string{"opened", "synchronize", "reopened", "ready_for_review"}, "PR actions to build previews for")

	// Add preview build flags to serve command
	buildOption.AddFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	webhookConfig := config.NewDefaultWebhookConfig()

	// Load from flags
	if addr, _ := cmd.Flags().GetString("listen-addr"); addr != "" {
		webhookConfig.ListenAddr = addr
	}
	if path, _ := cmd.Flags().GetString("webhook-path"); path != "" {
		webhookConfig.WebhookPath = path
	}
	if path, _ := cmd.Flags().GetString("health-path"); path != "" {
		webhookConfig.HealthPath = path
	}
	if path, _ := cmd.Flags().GetString("metrics-path"); path != "" {
		webhookConfig.MetricsPath = path
	}

	if secret, _ := cmd.Flags().GetString("webhook-secret"); secret != "" {
		webhookConfig.WebhookSecret = strings.TrimSpace(secret)
	}
	if secretFile, _ := cmd.Flags().GetString("webhook-secret-file"); secretFile != "" {
		data, err := os.ReadFile(secretFile)
		if err != nil {
			return fmt.Errorf("failed to read webhook secret file: %w", err)
		}
		webhookConfig.WebhookSecret = strings.TrimSpace(string(data))
	}

	if repos, _ := cmd.Flags().GetStringSlice("allowed-repos"); len(repos) > 0 {
		webhookConfig.AllowedRepos = repos
	}
	if requireSig, _ := cmd.Flags().GetBool("require-signature"); cmd.Flags().Changed("require-signature") {
		webhookConfig.RequireSignature = requireSig
	}

	if tlsEnabled, _ := cmd.Flags().GetBool("tls-enabled"); cmd.Flags().Changed("tls-enabled") {
		webhookConfig.TLSEnabled = tlsEnabled
	}
	if certFile, _ := cmd.Flags().GetString("tls-cert-file"); certFile != "" {
		webhookConfig.TLSCertFile = certFile
	}
	if keyFile, _ := cmd.Flags().GetString("tls-key-file"); keyFile != "" {
		webhookConfig.TLSKeyFile = keyFile
	}

	if workers, _ := cmd.Flags().GetInt("worker-count"); cmd.Flags().Changed("worker-count") {
		webhookConfig.WorkerCount = workers
	}
	if queueSize, _ := cmd.Flags().GetInt("queue-size"); cmd.Flags().Changed("queue-size") {
		webhookConfig.QueueSize = queueSize
	}

	if rateLimitEnabled, _ := cmd.Flags().GetBool("rate-limit-enabled"); cmd.Flags().Changed("rate-limit-enabled") {
		webhookConfig.RateLimitEnabled = rateLimitEnabled
	}
	if rateLimitReqs, _ := cmd.Flags().GetInt("rate-limit-requests"); cmd.Flags().Changed("rate-limit-requests") {
		webhookConfig.RateLimitRequests = rateLimitReqs
	}

	if prEventActions, _ := cmd.Flags().GetStringSlice("pr-event-actions"); cmd.Flags().Changed("pr-event-actions") {
		webhookConfig.PREventActions = prEventActions
	}

	// Load from environment variables (overrides flags)
	if err := webhookConfig.LoadFromEnv(); err != nil {
		return fmt.Errorf("failed to load webhook config from environment: %w", err)
	}

	// Initialize base build configuration. PR-specific fields arrive with
	// each webhook event, so their validation errors are fine here.
	if err := buildOption.initialize(); err != nil && !isPerRunConfigError(err) {
		return fmt.Errorf("failed to initialize build config: %w", err)
	}
	// Notification settings are server-level, not per-event: catch a
	// missing token now instead of failing every queued build.
	if err := validateNotifySettings(buildOption.Config); err != nil {
		return fmt.Errorf("invalid notification configuration: %w", err)
	}
	webhookConfig.BaseConfig = buildOption.Config

	if err := webhookConfig.Validate(); err != nil {
		return fmt.Errorf("invalid webhook configuration: %w", err)
	}

	// Configure logging
	logger := logrus.New()
	if buildOption.Config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	switch buildOption.Config.LogFormat {
	case "console":
		logger.SetFormatter(&logrus.TextFormatter{})
	default:
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	server := webhook.NewServer(webhookConfig, logger)

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Infof("Received signal: %v", sig)
		cancel()
	}()

	logger.Info("Starting preview builder webhook server")
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// isPerRunConfigError returns true for validation errors about fields
// that are only known once a pull_request event arrives
func isPerRunConfigError(err error) bool {
	switch {
	case errors.Is(err, config.ErrMissingOwner),
		errors.Is(err, config.ErrMissingRepo),
		errors.Is(err, config.ErrInvalidPRNum),
		errors.Is(err, config.ErrMissingHeadRef):
		return true
	default:
		return false
	}
}

// validateNotifySettings checks the notification toggles against the token
func validateNotifySettings(cfg *config.Config) error {
	if (cfg.PostComment || cfg.SetStatus) && cfg.Token == "" {
		return config.ErrMissingToken
	}
	return nil
}

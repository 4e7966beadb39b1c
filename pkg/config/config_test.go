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

package config_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/AlaudaDevops/toolbox/preview-builder/pkg/config"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func validConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.Owner = "test-owner"
	cfg.Repo = "test-repo"
	cfg.PRNum = 123
	cfg.HeadRef = "feature/test"
	return cfg
}

var _ = Describe("Config", func() {
	Describe("NewDefaultConfig", func() {
		It("should return a new config with default values", func() {
			cfg := config.NewDefaultConfig()

			Expect(cfg).NotTo(BeNil())
			Expect(cfg.BuildCommand).To(Equal("scripts/build_demo_web.sh --release"))
			Expect(cfg.BuildDir).To(Equal("web_demo"))
			Expect(cfg.BuildTimeout).To(Equal(30 * time.Minute))
			Expect(cfg.ArtifactsDir).To(Equal("artifacts"))
			Expect(cfg.AssetsArtifact).To(Equal("web_demo"))
			Expect(cfg.MetadataArtifact).To(Equal("pr_metadata"))
			Expect(cfg.ArchiveArtifacts).To(BeTrue())
			Expect(cfg.StatusContext).To(Equal("preview-builder"))
			Expect(cfg.LogLevel).To(Equal("info"))
		})
	})

	Describe("Validate", func() {
		DescribeTable("should validate configuration correctly",
			func(mutate func(*config.Config), expectedError error) {
				cfg := validConfig()
				mutate(cfg)
				err := cfg.Validate()

				if expectedError == nil {
					Expect(err).To(BeNil())
				} else {
					Expect(err).To(Equal(expectedError))
				}
			},
			Entry("valid configuration", func(c *config.Config) {}, nil),
			Entry("missing owner", func(c *config.Config) { c.Owner = "" }, config.ErrMissingOwner),
			Entry("missing repo", func(c *config.Config) { c.Repo = "" }, config.ErrMissingRepo),
			Entry("zero PR number", func(c *config.Config) { c.PRNum = 0 }, config.ErrInvalidPRNum),
			Entry("negative PR number", func(c *config.Config) { c.PRNum = -1 }, config.ErrInvalidPRNum),
			Entry("missing head ref", func(c *config.Config) { c.HeadRef = "" }, config.ErrMissingHeadRef),
			Entry("missing build command", func(c *config.Config) { c.BuildCommand = "" }, config.ErrMissingBuildCommand),
			Entry("missing artifacts dir", func(c *config.Config) { c.ArtifactsDir = "" }, config.ErrMissingArtifactsDir),
			Entry("zero build timeout", func(c *config.Config) { c.BuildTimeout = 0 }, config.ErrInvalidBuildTimeout),
			Entry("comment without token", func(c *config.Config) { c.PostComment = true }, config.ErrMissingToken),
			Entry("status without token", func(c *config.Config) { c.SetStatus = true }, config.ErrMissingToken),
			Entry("comment with token", func(c *config.Config) {
				c.PostComment = true
				c.Token = "test-token"
			}, nil),
		)
	})

	Describe("CloneURL", func() {
		It("should derive the URL from owner and repo", func() {
			cfg := validConfig()
			Expect(cfg.CloneURL()).To(Equal("https://github.com/test-owner/test-repo.git"))
		})

		It("should prefer the explicit repo URL", func() {
			cfg := validConfig()
			cfg.RepoURL = "https://git.example.com/mirror/repo.git"
			Expect(cfg.CloneURL()).To(Equal("https://git.example.com/mirror/repo.git"))
		})
	})

	Describe("DebugString", func() {
		It("should redact the token", func() {
			cfg := validConfig()
			cfg.Token = "super-secret-token"

			out := cfg.DebugString()
			Expect(out).NotTo(ContainSubstring("super-secret-token"))
			Expect(out).To(ContainSubstring("[REDACTED]"))
			Expect(out).To(ContainSubstring("test-owner"))
		})

		It("should not invent a token when none is set", func() {
			cfg := validConfig()
			Expect(cfg.DebugString()).NotTo(ContainSubstring("[REDACTED]"))
		})
	})

	Describe("LoadFile", func() {
		It("should fill unset fields from the file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "preview.yaml")
			content := []byte("owner: file-owner\nrepo: file-repo\nbuild_command: make web\npreview_url: https://preview.example.com\n")
			Expect(os.WriteFile(path, content, 0644)).To(Succeed())

			cfg := config.NewDefaultConfig()
			cfg.Owner = "flag-owner"
			Expect(cfg.LoadFile(path)).To(Succeed())

			Expect(cfg.Owner).To(Equal("flag-owner"), "flag value wins over file")
			Expect(cfg.Repo).To(Equal("file-repo"))
			Expect(cfg.BuildCommand).To(Equal("make web"))
			Expect(cfg.PreviewURL).To(Equal("https://preview.example.com"))
		})

		It("should be a no-op for an empty path", func() {
			cfg := validConfig()
			Expect(cfg.LoadFile("")).To(Succeed())
			Expect(cfg.Owner).To(Equal("test-owner"))
		})

		It("should fail for a missing file", func() {
			cfg := validConfig()
			Expect(cfg.LoadFile("/nonexistent/preview.yaml")).NotTo(Succeed())
		})
	})
})

var _ = Describe("WebhookConfig", func() {
	Describe("NewDefaultWebhookConfig", func() {
		It("should return sensible defaults", func() {
			wc := config.NewDefaultWebhookConfig()

			Expect(wc.ListenAddr).To(Equal(":8080"))
			Expect(wc.WebhookPath).To(Equal("/webhook"))
			Expect(wc.RequireSignature).To(BeTrue())
			Expect(wc.WorkerCount).To(Equal(4))
			Expect(wc.QueueSize).To(Equal(50))
			Expect(wc.PREventActions).To(ContainElements("opened", "synchronize", "reopened", "ready_for_review"))
			Expect(wc.BaseConfig).NotTo(BeNil())
		})
	})

	Describe("Validate", func() {
		var wc *config.WebhookConfig

		BeforeEach(func() {
			wc = config.NewDefaultWebhookConfig()
			wc.WebhookSecret = "test-secret"
		})

		It("should accept the default configuration with a secret", func() {
			Expect(wc.Validate()).To(Succeed())
		})

		It("should require a secret when signatures are enforced", func() {
			wc.WebhookSecret = ""
			Expect(wc.Validate()).NotTo(Succeed())
		})

		It("should allow a missing secret when signatures are disabled", func() {
			wc.WebhookSecret = ""
			wc.RequireSignature = false
			Expect(wc.Validate()).To(Succeed())
		})

		It("should require cert and key when TLS is enabled", func() {
			wc.TLSEnabled = true
			Expect(wc.Validate()).NotTo(Succeed())

			wc.TLSCertFile = "/etc/certs/tls.crt"
			wc.TLSKeyFile = "/etc/certs/tls.key"
			Expect(wc.Validate()).To(Succeed())
		})

		It("should reject non-positive worker and queue settings", func() {
			wc.WorkerCount = 0
			Expect(wc.Validate()).NotTo(Succeed())

			wc.WorkerCount = 4
			wc.QueueSize = 0
			Expect(wc.Validate()).NotTo(Succeed())
		})

		It("should require at least one PR action", func() {
			wc.PREventActions = nil
			Expect(wc.Validate()).NotTo(Succeed())
		})
	})

	Describe("LoadFromEnv", func() {
		It("should read settings from the environment", func() {
			GinkgoT().Setenv("LISTEN_ADDR", ":9090")
			GinkgoT().Setenv("WORKER_COUNT", "8")
			GinkgoT().Setenv("ALLOWED_REPOS", "emilk/egui, emilk/*")
			GinkgoT().Setenv("PR_EVENT_ACTIONS", "opened,synchronize")

			wc := config.NewDefaultWebhookConfig()
			Expect(wc.LoadFromEnv()).To(Succeed())

			Expect(wc.ListenAddr).To(Equal(":9090"))
			Expect(wc.WorkerCount).To(Equal(8))
			Expect(wc.AllowedRepos).To(Equal([]string{"emilk/egui", "emilk/*"}))
			Expect(wc.PREventActions).To(Equal([]string{"opened", "synchronize"}))
		})

		It("should read the secret from a file", func() {
			dir := GinkgoT().TempDir()
			secretFile := filepath.Join(dir, "secret")
			Expect(os.WriteFile(secretFile, []byte("file-secret\n"), 0600)).To(Succeed())
			GinkgoT().Setenv("WEBHOOK_SECRET_FILE", secretFile)

			wc := config.NewDefaultWebhookConfig()
			Expect(wc.LoadFromEnv()).To(Succeed())
			Expect(wc.WebhookSecret).To(Equal("file-secret"))
		})
	})
})

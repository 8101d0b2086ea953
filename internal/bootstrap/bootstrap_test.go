package bootstrap_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/core/config"
	"fritakagp.app/backend/internal/bootstrap"
	"fritakagp.app/backend/internal/integration/bucket"
	"fritakagp.app/backend/internal/lock"
)

var _ = Describe("bootstrap", func() {
	It("skips redis when no url is configured", func() {
		client, err := bootstrap.ConnectRedis(context.Background(), config.RedisConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(client).To(BeNil())
		Expect(bootstrap.NewLocker(client, config.RedisConfig{})).To(Equal(lock.Noop{}))
	})

	It("rejects a malformed redis url", func() {
		_, err := bootstrap.ConnectRedis(context.Background(), config.RedisConfig{URL: "://nope"})
		Expect(err).To(MatchError(ContainSubstring("parsing redis url")))
	})

	It("keeps attachments in memory outside production without a bucket", func() {
		integrations, err := bootstrap.NewIntegrations(context.Background(), config.Config{
			Env:          "development",
			Integrations: config.IntegrationsConfig{Timeout: time.Second},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(integrations.Files).To(BeAssignableToTypeOf(&bucket.Memory{}))
		integrations.Close()
	})

	It("requires a bucket in production", func() {
		_, err := bootstrap.NewIntegrations(context.Background(), config.Config{Env: "production"})
		Expect(err).To(MatchError(ContainSubstring("GCP_BUCKET_NAME")))
	})
})

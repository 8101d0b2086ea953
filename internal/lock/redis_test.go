package lock_test

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"fritakagp.app/backend/internal/lock"
)

var _ = Describe("RedisLocker", func() {
	var (
		ctx    context.Context
		client *redis.Client
		key    string
	)

	BeforeEach(func() {
		url := os.Getenv("REDIS_URL")
		if url == "" {
			Skip("REDIS_URL not set")
		}
		opts, err := redis.ParseURL(url)
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		client = redis.NewClient(opts)
		DeferCleanup(client.Close)
		Expect(client.Ping(ctx).Err()).To(Succeed())

		key = "submission-" + uuid.NewString()
		DeferCleanup(func() { client.Del(ctx, "fritakagp:lock:"+key) })
	})

	It("takes the key with its ttl", func() {
		release, err := lock.NewRedisLocker(client, time.Minute).Acquire(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		ttl, err := client.TTL(ctx, "fritakagp:lock:"+key).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(ttl).To(BeNumerically(">", 50*time.Second))

		Expect(release(ctx)).To(Succeed())
		Expect(client.Exists(ctx, "fritakagp:lock:"+key).Val()).To(BeZero())
	})

	It("refuses a second holder until the first releases", func() {
		first := lock.NewRedisLocker(client, time.Minute)
		second := lock.NewRedisLocker(client, time.Minute)

		release, err := first.Acquire(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		_, err = second.Acquire(ctx, key)
		Expect(err).To(MatchError(lock.ErrHeld))

		Expect(release(ctx)).To(Succeed())
		again, err := second.Acquire(ctx, key)
		Expect(err).NotTo(HaveOccurred())
		Expect(again(ctx)).To(Succeed())
	})

	It("does not release a lock that expired and was taken by someone else", func() {
		expired, err := lock.NewRedisLocker(client, 200*time.Millisecond).Acquire(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() int64 {
			return client.Exists(ctx, "fritakagp:lock:"+key).Val()
		}).WithTimeout(2 * time.Second).Should(BeZero())

		current, err := lock.NewRedisLocker(client, time.Minute).Acquire(ctx, key)
		Expect(err).NotTo(HaveOccurred())

		Expect(expired(ctx)).To(Succeed())
		Expect(client.Exists(ctx, "fritakagp:lock:"+key).Val()).To(Equal(int64(1)))

		_, err = lock.NewRedisLocker(client, time.Minute).Acquire(ctx, key)
		Expect(err).To(MatchError(lock.ErrHeld))
		Expect(current(ctx)).To(Succeed())
	})
})

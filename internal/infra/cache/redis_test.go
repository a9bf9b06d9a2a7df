package cache_test

import (
	"context"
	"errors"
	"time"

	"catfeeder-server/internal/infra/cache"
	mockcache "catfeeder-server/test/unit/doubles/infra/cache"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	"go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("RedisCache", func() {
	var (
		redisCache      *cache.RedisCache
		mockCacheClient *mockcache.MockCacheClient
		ctrl            *gomock.Controller
		ctx             context.Context
	)

	ginkgo.BeforeEach(func() {
		ctrl = gomock.NewController(ginkgo.GinkgoT())
		mockCacheClient = mockcache.NewMockCacheClient(ctrl)
		redisCache = cache.NewRedisCacheWithClient(mockCacheClient, cache.DefaultRedisConfig())
		ctx = context.Background()
	})

	ginkgo.AfterEach(func() {
		ctrl.Finish()
	})

	ginkgo.Context("SetAndGet", func() {
		ginkgo.It("should store and retrieve raw bytes", func() {
			mockCacheClient.EXPECT().
				Set(gomock.Any(), "readings:2026-10-15", []byte("payload"), time.Hour).
				Return(redis.NewStatusCmd(ctx, "OK"))

			cmd := redis.NewStringCmd(ctx, "get", "readings:2026-10-15")
			cmd.SetVal("payload")
			mockCacheClient.EXPECT().
				Get(gomock.Any(), "readings:2026-10-15").
				Return(cmd)

			gomega.Expect(redisCache.Set(ctx, "readings:2026-10-15", []byte("payload"), time.Hour)).To(gomega.BeTrue())

			value, found := redisCache.Get(ctx, "readings:2026-10-15")
			gomega.Expect(found).To(gomega.BeTrue())
			gomega.Expect(value).To(gomega.Equal([]byte("payload")))
		})
	})

	ginkgo.Context("Get", func() {
		ginkgo.It("should report a miss on redis.Nil", func() {
			cmd := redis.NewStringCmd(ctx, "get", "missing")
			cmd.SetErr(redis.Nil)
			mockCacheClient.EXPECT().Get(gomock.Any(), "missing").Return(cmd)

			_, found := redisCache.Get(ctx, "missing")
			gomega.Expect(found).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("Set", func() {
		ginkgo.It("should report a failed write", func() {
			cmd := redis.NewStatusCmd(ctx)
			cmd.SetErr(errors.New("connection refused"))
			mockCacheClient.EXPECT().Set(gomock.Any(), "key", gomock.Any(), time.Duration(0)).Return(cmd)

			gomega.Expect(redisCache.Set(ctx, "key", []byte("value"), 0)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("GetOrSet", func() {
		ginkgo.It("should load and store on a miss", func() {
			miss := redis.NewStringCmd(ctx, "get", "key")
			miss.SetErr(redis.Nil)
			mockCacheClient.EXPECT().Get(gomock.Any(), "key").Return(miss).Times(2)
			mockCacheClient.EXPECT().
				Set(gomock.Any(), "key", []byte("loaded"), time.Minute).
				Return(redis.NewStatusCmd(ctx, "OK"))

			value, err := redisCache.GetOrSet(ctx, "key", time.Minute, func() ([]byte, error) {
				return []byte("loaded"), nil
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(value).To(gomega.Equal([]byte("loaded")))
		})
	})

	ginkgo.Context("Ping", func() {
		ginkgo.It("should forward to the client", func() {
			mockCacheClient.EXPECT().Ping(gomock.Any()).Return(redis.NewStatusCmd(ctx, "PONG"))

			gomega.Expect(redisCache.Ping(ctx)).To(gomega.Succeed())
		})
	})
})

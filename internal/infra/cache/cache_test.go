package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"catfeeder-server/internal/infra/cache"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Cache", func() {
	var (
		cacheInstance cache.Cache
		ctx           context.Context
	)

	ginkgo.BeforeEach(func() {
		var err error
		cacheInstance, err = cache.New(nil)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		ctx = context.Background()
	})

	ginkgo.Context("GetSet", func() {
		ginkgo.It("should store and retrieve the value", func() {
			gomega.Expect(cacheInstance.Set(ctx, "readings:2026-10-15", []byte("payload"), 0)).To(gomega.BeTrue())

			value, found := cacheInstance.Get(ctx, "readings:2026-10-15")
			gomega.Expect(found).To(gomega.BeTrue())
			gomega.Expect(value).To(gomega.Equal([]byte("payload")))
		})

		ginkgo.It("should miss an unknown key", func() {
			_, found := cacheInstance.Get(ctx, "missing")
			gomega.Expect(found).To(gomega.BeFalse())
		})

		ginkgo.It("should forget a deleted key", func() {
			cacheInstance.Set(ctx, "key", []byte("value"), 0)
			cacheInstance.Delete(ctx, "key")

			gomega.Eventually(func() bool {
				_, found := cacheInstance.Get(ctx, "key")
				return found
			}).Should(gomega.BeFalse())
		})

		ginkgo.It("should ignore a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			gomega.Expect(cacheInstance.Set(cancelled, "key", []byte("value"), 0)).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("GetOrSet", func() {
		ginkgo.It("should call the loader once for concurrent misses", func() {
			var calls atomic.Int32
			loader := func() ([]byte, error) {
				calls.Add(1)
				time.Sleep(50 * time.Millisecond)
				return []byte("loaded"), nil
			}

			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer ginkgo.GinkgoRecover()
					value, err := cacheInstance.GetOrSet(ctx, "shared", time.Minute, loader)
					gomega.Expect(err).NotTo(gomega.HaveOccurred())
					gomega.Expect(value).To(gomega.Equal([]byte("loaded")))
				}()
			}
			wg.Wait()

			gomega.Expect(calls.Load()).To(gomega.Equal(int32(1)))
		})

		ginkgo.It("should not cache loader errors", func() {
			boom := errors.New("boom")

			_, err := cacheInstance.GetOrSet(ctx, "failing", time.Minute, func() ([]byte, error) { return nil, boom })
			gomega.Expect(err).To(gomega.MatchError(boom))

			_, found := cacheInstance.Get(ctx, "failing")
			gomega.Expect(found).To(gomega.BeFalse())
		})
	})
})

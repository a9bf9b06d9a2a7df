package node_test

import (
	"net"

	"catfeeder-server/internal/infra/node"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Node", func() {
	ginkgo.Context("Current", func() {
		ginkgo.It("should fill every field", func() {
			info := node.Current()

			gomega.Expect(info.ID).To(gomega.HaveLen(36))
			gomega.Expect(info.Hostname).ToNot(gomega.BeEmpty())
			gomega.Expect(net.ParseIP(info.IPAddress)).ToNot(gomega.BeNil())
			gomega.Expect(info.Version).To(gomega.Equal(node.Version))
			gomega.Expect(info.CommitHash).To(gomega.Equal(node.CommitHash))
		})

		ginkgo.It("should be stable across calls", func() {
			gomega.Expect(node.Current()).To(gomega.Equal(node.Current()))
		})
	})

	ginkgo.Context("LogAttrs", func() {
		ginkgo.It("should carry version and node id", func() {
			info := node.Current()
			attrs := info.LogAttrs()

			gomega.Expect(attrs).To(gomega.HaveLen(2))
			gomega.Expect(attrs[0].Key).To(gomega.Equal("version"))
			gomega.Expect(attrs[0].Value.String()).To(gomega.Equal(info.Version))
			gomega.Expect(attrs[1].Key).To(gomega.Equal("node_id"))
			gomega.Expect(attrs[1].Value.String()).To(gomega.Equal(info.ID))
		})
	})
})

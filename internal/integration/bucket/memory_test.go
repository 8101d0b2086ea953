package bucket_test

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration"
	"fritakagp.app/backend/internal/integration/bucket"
)

var _ = Describe("Memory", func() {
	It("stores, returns and consumes documents", func() {
		ctx := context.Background()
		m := bucket.NewMemory()
		id := uuid.New()

		Expect(m.Get(ctx, id)).To(BeNil())
		Expect(m.Put(ctx, id, integration.Document{Content: []byte("x"), FileType: "pdf"})).To(Succeed())

		doc, err := m.Get(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.FileType).To(Equal("pdf"))

		Expect(m.Delete(ctx, id)).To(Succeed())
		Expect(m.Delete(ctx, id)).To(Succeed())
		Expect(m.Get(ctx, id)).To(BeNil())
	})
})

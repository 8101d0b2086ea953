package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/store"
)

type strayRecord struct{ model.Submission }

func (*strayRecord) Kind() model.SubmissionKind { return "Stray" }

var _ = Describe("Submissions", func() {
	stores := store.NewStores(nil)

	It("returns a store for every submission type", func() {
		Expect(store.Submissions[*model.ChronicClaim](stores)).NotTo(BeNil())
		Expect(store.Submissions[*model.ChronicApplication](stores)).NotTo(BeNil())
		Expect(store.Submissions[*model.PregnancyClaim](stores)).NotTo(BeNil())
		Expect(store.Submissions[*model.PregnancyApplication](stores)).NotTo(BeNil())
	})

	It("panics for types without a table", func() {
		Expect(func() { store.Submissions[*strayRecord](stores) }).To(Panic())
	})
})

package clamav_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/integration/clamav"
)

var _ = Describe("Client", func() {
	DescribeTable("scan results",
		func(response string, clean bool, fails bool) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPut))
				_, _ = w.Write([]byte(response))
			}))
			defer server.Close()

			ok, err := clamav.New(server.URL, time.Second).Scan(context.Background(), []byte("%PDF"))
			if fails {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(Equal(clean))
		},
		Entry("clean", `[{"Filename":"f","Result":"OK"}]`, true, false),
		Entry("infected", `[{"Filename":"f","Result":"FOUND"}]`, false, false),
		Entry("empty", `[]`, false, true),
		Entry("garbage", `<html>`, false, true),
	)
})

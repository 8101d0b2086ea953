package queue_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
)

var _ = Describe("Payload", func() {
	It("round-trips through job data", func() {
		claim := &model.PregnancyClaim{Submission: model.NewSubmission("a", "b", "c")}
		payload := queue.NewPayload(claim)

		parsed, err := queue.ParsePayload(payload.Encode())
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.SubmissionID).To(Equal(claim.ID))
		Expect(parsed.Kind).To(Equal(model.KindPregnancyClaim))
	})

	DescribeTable("rejects malformed data",
		func(data string) {
			_, err := queue.ParsePayload([]byte(data))
			Expect(err).To(HaveOccurred())
		},
		Entry("not json", `submission`),
		Entry("missing id", `{"kind":"ChronicClaim"}`),
		Entry("nil id", `{"submissionId":"`+uuid.Nil.String()+`","kind":"ChronicClaim"}`),
		Entry("unknown kind", `{"submissionId":"`+uuid.NewString()+`","kind":"Refusjon"}`),
	)
})

var _ = Describe("task types", func() {
	DescribeTable("per kind",
		func(kind model.SubmissionKind, process, event, receipt, del queue.TaskType) {
			Expect(queue.ProcessTask(kind)).To(Equal(process))
			Expect(queue.EventTask(kind)).To(Equal(event))
			Expect(queue.ReceiptTask(kind)).To(Equal(receipt))
			Expect(queue.DeleteTask(kind)).To(Equal(del))
		},
		Entry("chronic claim", model.KindChronicClaim,
			queue.TaskTypeChronicClaim, queue.TaskTypeChronicClaimEvent,
			queue.TaskTypeChronicClaimReceipt, queue.TaskTypeChronicClaimDelete),
		Entry("chronic application", model.KindChronicApplication,
			queue.TaskTypeChronicApplication, queue.TaskTypeChronicApplicationEvent,
			queue.TaskTypeChronicApplicationReceipt, queue.TaskType("")),
		Entry("pregnancy claim", model.KindPregnancyClaim,
			queue.TaskTypePregnancyClaim, queue.TaskTypePregnancyClaimEvent,
			queue.TaskTypePregnancyClaimReceipt, queue.TaskTypePregnancyClaimDelete),
		Entry("pregnancy application", model.KindPregnancyApplication,
			queue.TaskTypePregnancyApplication, queue.TaskTypePregnancyApplicationEvent,
			queue.TaskTypePregnancyApplicationReceipt, queue.TaskType("")),
	)
})

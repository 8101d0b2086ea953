package queue_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
)

var _ = Describe("Producer", func() {
	var (
		ctx      context.Context
		jobs     *mockJobStore
		saved    []*model.Job
		producer queue.Producer
		claim    *model.ChronicClaim
	)

	BeforeEach(func() {
		ctx = context.Background()
		saved = nil
		jobs = &mockJobStore{saveFn: func(ctx context.Context, job *model.Job) error {
			saved = append(saved, job)
			return nil
		}}
		producer = queue.NewProducer(nil)
		claim = &model.ChronicClaim{Submission: model.NewSubmission("a", "b", "c")}
	})

	It("saves a pending job carrying the submission id", func() {
		job, err := producer.Enqueue(ctx, jobs, queue.Task{
			Type:        queue.TaskTypeChronicClaim,
			Payload:     queue.NewPayload(claim),
			MaxAttempts: queue.ProcessingMaxAttempts,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(saved).To(ConsistOf(job))
		Expect(job.Type).To(Equal("chronic-claim"))
		Expect(job.Status).To(Equal(model.JobStatusPending))
		Expect(job.MaxAttempts).To(Equal(8))

		payload, err := queue.ParsePayload(job.Data)
		Expect(err).NotTo(HaveOccurred())
		Expect(payload.SubmissionID).To(Equal(claim.ID))
	})

	It("defaults max attempts", func() {
		job, err := producer.Enqueue(ctx, jobs, queue.Task{
			Type:    queue.TaskTypeChronicClaimEvent,
			Payload: queue.NewPayload(claim),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(job.MaxAttempts).To(Equal(queue.FanOutMaxAttempts))
	})

	It("refuses a task without a type", func() {
		_, err := producer.Enqueue(ctx, jobs, queue.Task{Payload: queue.NewPayload(claim)})
		Expect(err).To(HaveOccurred())
		Expect(saved).To(BeEmpty())
	})

	It("wraps store errors", func() {
		jobs.saveFn = func(ctx context.Context, job *model.Job) error {
			return errors.New("tx aborted")
		}
		_, err := producer.Enqueue(ctx, jobs, queue.Task{
			Type:    queue.TaskTypeUserNotification,
			Payload: queue.NewPayload(claim),
		})
		Expect(err).To(MatchError(ContainSubstring("tx aborted")))
	})
})

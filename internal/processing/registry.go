package processing

import (
	"fmt"

	"fritakagp.app/backend/internal/model"
	"fritakagp.app/backend/internal/queue"
	"fritakagp.app/backend/internal/worker"
)

// Registrar is the part of worker.Dispatcher used to bind processors.
type Registrar interface {
	Register(jobType string, p worker.Processor) error
}

// RegisterAll binds a processor to every job type the pipeline produces.
func RegisterAll(r Registrar, deps Deps, cfg Config) error {
	processors := map[queue.TaskType]worker.Processor{
		queue.TaskTypeChronicClaim:         NewSubmissionProcessor[*model.ChronicClaim](deps, cfg),
		queue.TaskTypeChronicApplication:   NewSubmissionProcessor[*model.ChronicApplication](deps, cfg),
		queue.TaskTypePregnancyClaim:       NewSubmissionProcessor[*model.PregnancyClaim](deps, cfg),
		queue.TaskTypePregnancyApplication: NewSubmissionProcessor[*model.PregnancyApplication](deps, cfg),

		queue.TaskTypeChronicClaimDelete:   NewClaimDeleteProcessor[*model.ChronicClaim](deps, cfg),
		queue.TaskTypePregnancyClaimDelete: NewClaimDeleteProcessor[*model.PregnancyClaim](deps, cfg),

		queue.TaskTypeChronicClaimEvent:         NewEventProcessor[*model.ChronicClaim](deps, cfg),
		queue.TaskTypeChronicApplicationEvent:   NewEventProcessor[*model.ChronicApplication](deps, cfg),
		queue.TaskTypePregnancyClaimEvent:       NewEventProcessor[*model.PregnancyClaim](deps, cfg),
		queue.TaskTypePregnancyApplicationEvent: NewEventProcessor[*model.PregnancyApplication](deps, cfg),

		queue.TaskTypeChronicClaimReceipt:         NewReceiptProcessor[*model.ChronicClaim](deps),
		queue.TaskTypeChronicApplicationReceipt:   NewReceiptProcessor[*model.ChronicApplication](deps),
		queue.TaskTypePregnancyClaimReceipt:       NewReceiptProcessor[*model.PregnancyClaim](deps),
		queue.TaskTypePregnancyApplicationReceipt: NewReceiptProcessor[*model.PregnancyApplication](deps),

		queue.TaskTypeUserNotification: NewNotificationProcessor(deps, cfg),
	}

	for taskType, p := range processors {
		if err := r.Register(string(taskType), p); err != nil {
			return fmt.Errorf("registering %s: %w", taskType, err)
		}
	}
	return nil
}

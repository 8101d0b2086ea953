package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"fritakagp.app/backend/internal/model"
)

type TaskType string

const (
	TaskTypeChronicClaim                TaskType = "chronic-claim"
	TaskTypeChronicClaimDelete          TaskType = "chronic-claim-delete"
	TaskTypeChronicClaimEvent           TaskType = "chronic-claim-event"
	TaskTypeChronicClaimReceipt         TaskType = "chronic-claim-receipt"
	TaskTypeChronicApplication          TaskType = "chronic-application"
	TaskTypeChronicApplicationEvent     TaskType = "chronic-application-event"
	TaskTypeChronicApplicationReceipt   TaskType = "chronic-application-receipt"
	TaskTypePregnancyClaim              TaskType = "pregnancy-claim"
	TaskTypePregnancyClaimDelete        TaskType = "pregnancy-claim-delete"
	TaskTypePregnancyClaimEvent         TaskType = "pregnancy-claim-event"
	TaskTypePregnancyClaimReceipt       TaskType = "pregnancy-claim-receipt"
	TaskTypePregnancyApplication        TaskType = "pregnancy-application"
	TaskTypePregnancyApplicationEvent   TaskType = "pregnancy-application-event"
	TaskTypePregnancyApplicationReceipt TaskType = "pregnancy-application-receipt"
	TaskTypeUserNotification            TaskType = "user-notification"
)

const (
	ProcessingMaxAttempts = 8
	ReceiptMaxAttempts    = 10
	FanOutMaxAttempts     = 10
)

type taskSet struct {
	process TaskType
	delete  TaskType
	event   TaskType
	receipt TaskType
}

var tasksByKind = map[model.SubmissionKind]taskSet{
	model.KindChronicClaim: {
		process: TaskTypeChronicClaim,
		delete:  TaskTypeChronicClaimDelete,
		event:   TaskTypeChronicClaimEvent,
		receipt: TaskTypeChronicClaimReceipt,
	},
	model.KindChronicApplication: {
		process: TaskTypeChronicApplication,
		event:   TaskTypeChronicApplicationEvent,
		receipt: TaskTypeChronicApplicationReceipt,
	},
	model.KindPregnancyClaim: {
		process: TaskTypePregnancyClaim,
		delete:  TaskTypePregnancyClaimDelete,
		event:   TaskTypePregnancyClaimEvent,
		receipt: TaskTypePregnancyClaimReceipt,
	},
	model.KindPregnancyApplication: {
		process: TaskTypePregnancyApplication,
		event:   TaskTypePregnancyApplicationEvent,
		receipt: TaskTypePregnancyApplicationReceipt,
	},
}

func ProcessTask(kind model.SubmissionKind) TaskType { return tasksByKind[kind].process }
func EventTask(kind model.SubmissionKind) TaskType   { return tasksByKind[kind].event }
func ReceiptTask(kind model.SubmissionKind) TaskType { return tasksByKind[kind].receipt }

// DeleteTask returns "" for applications, which cannot be withdrawn.
func DeleteTask(kind model.SubmissionKind) TaskType { return tasksByKind[kind].delete }

// Payload is the job data shared by every submission task:
// {"submissionId": "<uuid>", "kind": "<kind>"}.
type Payload struct {
	SubmissionID uuid.UUID            `json:"submissionId"`
	Kind         model.SubmissionKind `json:"kind"`
}

func NewPayload(record model.Record) Payload {
	return Payload{SubmissionID: record.Base().ID, Kind: record.Kind()}
}

func ParsePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decoding job payload: %w", err)
	}
	if p.SubmissionID == uuid.Nil {
		return Payload{}, fmt.Errorf("missing submissionId")
	}
	if !p.Kind.Valid() {
		return Payload{}, fmt.Errorf("unknown kind %q", p.Kind)
	}
	return p, nil
}

func (p Payload) Encode() json.RawMessage {
	// Payload holds only a UUID and a string; Marshal cannot fail.
	data, _ := json.Marshal(p)
	return data
}

// Task describes a job to be scheduled.
type Task struct {
	Type        TaskType
	Payload     Payload
	MaxAttempts int
}

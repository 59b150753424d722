package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskGeneratePending drives draft generation for companies sitting in
// pending_generation.
const TaskGeneratePending = "pipeline.generate_pending"

// TaskRetryNotGenerated re-runs generation for companies parked in
// email_not_generated that have a contact email.
const TaskRetryNotGenerated = "pipeline.retry_not_generated"

// GeneratePendingPayload bounds one scheduled generation sweep.
type GeneratePendingPayload struct {
	Limit int `json:"limit"`
}

// RetryNotGeneratedPayload bounds one scheduled retry sweep.
type RetryNotGeneratedPayload struct {
	Limit int `json:"limit"`
}

func NewGeneratePendingTask(payload GeneratePendingPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGeneratePending, data), nil
}

func ParseGeneratePendingPayload(task *asynq.Task) (GeneratePendingPayload, error) {
	var payload GeneratePendingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return GeneratePendingPayload{}, err
	}
	return payload, nil
}

func NewRetryNotGeneratedTask(payload RetryNotGeneratedPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRetryNotGenerated, data), nil
}

func ParseRetryNotGeneratedPayload(task *asynq.Task) (RetryNotGeneratedPayload, error) {
	var payload RetryNotGeneratedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RetryNotGeneratedPayload{}, err
	}
	return payload, nil
}

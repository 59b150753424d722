package service

import (
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/platform/events"

	"github.com/google/uuid"
)

// Event names published by the pipeline module.
const (
	EventStateChanged   = "pipeline.state_changed"
	EventBatchCompleted = "pipeline.batch_completed"
)

// StateChangedEvent is published after every successful transition made
// through the workflows (not for bare StateMachine calls).
type StateChangedEvent struct {
	events.BaseEvent
	CompanyID uuid.UUID    `json:"companyId"`
	From      domain.State `json:"from"`
	To        domain.State `json:"to"`
}

func (StateChangedEvent) EventName() string { return EventStateChanged }

// BatchCompletedEvent is published when a batch operation finishes.
type BatchCompletedEvent struct {
	events.BaseEvent
	Operation string `json:"operation"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

func (BatchCompletedEvent) EventName() string { return EventBatchCompleted }

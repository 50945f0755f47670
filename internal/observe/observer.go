// Package observe provides structured event emission for workflow
// execution. Observers receive execution metadata; the audit trail
// itself is the store's typed activity entries, not observer events.
package observe

import (
	"context"
	"time"
)

// Observer receives execution events from the workflow orchestrator.
// Implementations must not affect execution flow: errors or delays in
// OnEvent do not propagate to the caller.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Event is one observable occurrence during a workflow run.
type Event struct {
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
}

// EventType categorizes observable events.
type EventType string

const (
	EventWorkflowStart    EventType = "workflow.start"
	EventWorkflowComplete EventType = "workflow.complete"
	EventWorkflowFailed   EventType = "workflow.failed"
	EventStageStart       EventType = "stage.start"
	EventStageComplete    EventType = "stage.complete"
	EventResponseChecked  EventType = "negotiation.response"
)

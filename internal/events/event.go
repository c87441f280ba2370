// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadflow_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a lead enters the pipeline.
type LeadCreated struct {
	BaseEvent
	VendorID  int64 `json:"vendorId"`
	LeadID    int64 `json:"leadId"`
	CreatedBy int64 `json:"createdBy"`
}

func (e LeadCreated) EventName() string { return "leads.created" }

// LeadTransitioned is published after a stage transition commits.
type LeadTransitioned struct {
	BaseEvent
	VendorID      int64  `json:"vendorId"`
	LeadID        int64  `json:"leadId"`
	Stage         string `json:"stage"`
	FromStatusID  int64  `json:"fromStatusId"`
	ToStatusID    int64  `json:"toStatusId"`
	StatusChanged bool   `json:"statusChanged"`
	Documents     int    `json:"documents"`
	ActorID       int64  `json:"actorId"`
}

func (e LeadTransitioned) EventName() string { return "leads.transitioned" }

// LeadTransitionFailed is published when a transition is rolled back.
type LeadTransitionFailed struct {
	BaseEvent
	VendorID int64  `json:"vendorId"`
	LeadID   int64  `json:"leadId"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

func (e LeadTransitionFailed) EventName() string { return "leads.transition_failed" }

// LeadTaskAssigned is published after a task is created against a lead.
type LeadTaskAssigned struct {
	BaseEvent
	VendorID   int64  `json:"vendorId"`
	LeadID     int64  `json:"leadId"`
	TaskID     int64  `json:"taskId"`
	AssigneeID int64  `json:"assigneeId"`
	TaskType   string `json:"taskType"`
	Advanced   bool   `json:"advanced"`
}

func (e LeadTaskAssigned) EventName() string { return "leads.task_assigned" }

// LeadActivityStatusChanged is published when a lead is put on hold, lost or resumed.
type LeadActivityStatusChanged struct {
	BaseEvent
	VendorID  int64  `json:"vendorId"`
	LeadID    int64  `json:"leadId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
}

func (e LeadActivityStatusChanged) EventName() string { return "leads.activity_status_changed" }

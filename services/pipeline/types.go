package pipeline

import (
	"time"

	"github.com/google/uuid"
	"github.com/opslane/riskplane/models"
)

// State tracks where an event is in the per-event state machine.
type State string

const (
	StateReceived         State = "RECEIVED"
	StateGuardrailChecked State = "GUARDRAIL_CHECKED"
	StateReasoningPending State = "REASONING_PENDING"
	StateDecided          State = "DECIDED"
	StateDispatched       State = "DISPATCHED"
	StateLogged           State = "LOGGED"
	StateComplete         State = "COMPLETE"
)

// Result is what the pipeline returns to its caller for a processed event.
type Result struct {
	RequestID   uuid.UUID        `json:"request_id"`
	RiskLevel   models.RiskLevel `json:"risk_level"`
	Decision    models.Action    `json:"decision"`
	Reason      string           `json:"reason"`
	ActionTaken models.Action    `json:"action_taken"`
	AuditID     int64            `json:"audit_id"`
	Timestamp   time.Time        `json:"timestamp"`
}

// runContext carries the transient per-request state the orchestrator owns.
// Nothing in here outlives the request.
type runContext struct {
	requestID uuid.UUID
	event     models.Event
	state     State
	signal    models.RiskSignal
	attempts  []models.ReasoningAttempt
	decision  models.Decision
	toolRes   models.ToolExecutionResult
	started   time.Time
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// PipelineOutcome states how a pipeline run ended for audit purposes.
type PipelineOutcome string

const (
	OutcomeComplete PipelineOutcome = "COMPLETE"
	OutcomeFailed   PipelineOutcome = "FAILED"
)

// AuditEntry is one immutable record of a processed event. Entries are
// totally ordered by ID; the audit service assigns the ID exactly once at
// append time and nothing modifies or deletes an entry afterwards.
type AuditEntry struct {
	ID         int64               `json:"id" db:"id"`
	RequestID  uuid.UUID           `json:"request_id" db:"request_id"`
	Event      Event               `json:"input" db:"event"`
	RiskSignal RiskSignal          `json:"reasoning" db:"risk_signal"`
	Decision   Decision            `json:"decision" db:"decision"`
	ToolResult ToolExecutionResult `json:"tools_used" db:"tool_result"`
	Outcome    PipelineOutcome     `json:"outcome" db:"outcome"`
	Timestamp  time.Time           `json:"timestamp" db:"timestamp"`
}

// AuditFilter narrows a history query. Zero values mean "no constraint".
type AuditFilter struct {
	OrderID   string
	RiskLevel RiskLevel
	Limit     int
	Offset    int
}

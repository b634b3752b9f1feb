package models

import (
	"fmt"
	"strings"
)

// RiskLevel classifies how concerning an event is.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"

	// RiskUnknown marks an inconclusive guardrail pass; it never appears in
	// a final decision.
	RiskUnknown RiskLevel = "UNKNOWN"
)

// Valid reports whether the level is one of the three decidable levels.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// RiskSource identifies which stage produced a risk signal.
type RiskSource string

const (
	SourceGuardrail RiskSource = "GUARDRAIL"
	SourceModel     RiskSource = "MODEL"
	SourceFallback  RiskSource = "FALLBACK"
)

// Action is the side effect tied to a decision.
type Action string

const (
	ActionLog      Action = "LOG"
	ActionNotify   Action = "NOTIFY"
	ActionEscalate Action = "ESCALATE"
)

// Valid reports whether the action is a member of the closed action set.
func (a Action) Valid() bool {
	switch a {
	case ActionLog, ActionNotify, ActionEscalate:
		return true
	}
	return false
}

// RiskSignal is the outcome of one risk assessment attempt. Produced once
// per event-processing pass and never mutated afterwards.
type RiskSignal struct {
	Level        RiskLevel  `json:"level"`
	Source       RiskSource `json:"source"`
	MatchedTerms []string   `json:"matched_terms"`
	Confidence   *float64   `json:"confidence,omitempty"`
	Reason       string     `json:"reason,omitempty"`
}

// Conclusive reports whether the signal decides the risk level on its own.
// An inconclusive guardrail signal defers to the reasoning client.
func (s RiskSignal) Conclusive() bool {
	return s.Level.Valid()
}

// ReasoningAttempt records a single try against the reasoning endpoint.
// Attempts exist only for the duration of a pipeline run; they surface in
// the audit reason, not as persisted rows.
type ReasoningAttempt struct {
	AttemptNumber    int      `json:"attempt_number"`
	RawOutput        string   `json:"raw_output,omitempty"`
	ParseOK          bool     `json:"parse_ok"`
	ValidationErrors []string `json:"validation_errors,omitempty"`
	LatencyMs        int      `json:"latency_ms"`
}

// Decision is the verdict derived deterministically from a RiskSignal.
type Decision struct {
	RiskLevel RiskLevel `json:"risk_level"`
	Action    Action    `json:"action"`
	Reason    string    `json:"reason"`
}

// ToolExecutionResult reports whether the action's tool ran successfully.
type ToolExecutionResult struct {
	ToolName  string `json:"tool_name"`
	Succeeded bool   `json:"succeeded"`
	Detail    string `json:"detail,omitempty"`
}

// DescribeMatch renders matched guardrail terms for a decision reason.
func DescribeMatch(terms []string) string {
	if len(terms) == 0 {
		return "no keyword matches"
	}
	return fmt.Sprintf("matched %q", strings.Join(terms, ", "))
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/services"
	"github.com/opslane/riskplane/services/audit"
	"github.com/opslane/riskplane/services/guardrail"
	"github.com/opslane/riskplane/services/reasoning"
	"github.com/opslane/riskplane/services/resolver"
	"github.com/opslane/riskplane/services/tools"
	"go.uber.org/zap"
)

// PipelineService orchestrates the end-to-end risk decision flow for one
// event: guardrail check, structured reasoning when inconclusive, decision
// resolution, tool dispatch, and the audit append. Events are processed
// independently; the audit log is the only cross-event state.
type PipelineService struct {
	guardrailService *guardrail.GuardrailService
	reasoningService *reasoning.ReasoningService
	resolverService  *resolver.ResolverService
	dispatcher       *tools.DispatcherService
	auditService     *audit.AuditService
	logger           *zap.Logger
}

// NewPipelineService creates a new pipeline service with all dependencies
func NewPipelineService(
	guardrailService *guardrail.GuardrailService,
	reasoningService *reasoning.ReasoningService,
	resolverService *resolver.ResolverService,
	dispatcher *tools.DispatcherService,
	auditService *audit.AuditService,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		guardrailService: guardrailService,
		reasoningService: reasoningService,
		resolverService:  resolverService,
		dispatcher:       dispatcher,
		auditService:     auditService,
		logger:           logger,
	}
}

// ProcessEvent runs one event through the pipeline. The caller receives
// either a complete decision result or a typed error; never a partially
// applied, unlogged decision. Only an audit-store failure or caller
// cancellation produce an error.
func (s *PipelineService) ProcessEvent(ctx context.Context, req models.EventRequest) (*Result, error) {
	run := &runContext{
		requestID: req.RequestID,
		event:     req.Event,
		state:     StateReceived,
		started:   time.Now(),
	}

	s.logger.Info("processing event",
		zap.String("request_id", run.requestID.String()),
		zap.String("order_id", run.event.OrderID),
		zap.String("status", run.event.CurrentStatus))

	// Step 1: guardrail evaluation. Pure, never fails.
	run.signal = s.guardrailService.Evaluate(run.event)
	run.state = StateGuardrailChecked

	// Step 2: structured reasoning, only when the guardrail is
	// inconclusive. All reasoning failures resolve to a signal; the only
	// error out of here is caller cancellation.
	if !run.signal.Conclusive() {
		run.state = StateReasoningPending
		assessment, err := s.reasoningService.Assess(ctx, run.event)
		if err != nil {
			return nil, s.handleCancellation(ctx, run, err)
		}
		run.signal = assessment.Signal
		run.attempts = assessment.Attempts
	}

	// Step 3: resolve the verdict. Pure lookup.
	run.decision = s.resolverService.Resolve(run.signal)
	run.state = StateDecided

	// Step 4: dispatch the tool for the action. Failures are absorbed
	// here and reflected in the result, never raised.
	run.toolRes = s.dispatcher.Dispatch(ctx, run.event, run.decision)
	run.state = StateDispatched

	// A failed side effect softens the logged action to LOG while the
	// decision's risk level is preserved in the audit record.
	effectiveAction := run.decision.Action
	loggedDecision := run.decision
	if !run.toolRes.Succeeded {
		effectiveAction = models.ActionLog
		loggedDecision.Action = models.ActionLog
		loggedDecision.Reason = fmt.Sprintf("%s (action %s downgraded to LOG: %s tool failed)",
			run.decision.Reason, run.decision.Action, run.toolRes.ToolName)
		s.logger.Warn("tool failure downgraded action",
			zap.String("request_id", run.requestID.String()),
			zap.String("order_id", run.event.OrderID),
			zap.String("original_action", string(run.decision.Action)))
	}

	// Step 5: audit append. The only step whose failure fails the request.
	entry, err := s.auditService.Append(ctx, run.requestID, run.event, run.signal, loggedDecision, run.toolRes, models.OutcomeComplete)
	if err != nil {
		s.logger.Error("pipeline failed at audit append",
			zap.String("request_id", run.requestID.String()),
			zap.String("order_id", run.event.OrderID),
			zap.Error(err))
		return nil, err
	}
	run.state = StateLogged

	run.state = StateComplete
	s.logger.Info("pipeline complete",
		zap.String("request_id", run.requestID.String()),
		zap.String("order_id", run.event.OrderID),
		zap.String("risk_level", string(run.decision.RiskLevel)),
		zap.String("action_taken", string(effectiveAction)),
		zap.Int64("audit_id", entry.ID),
		zap.Int("reasoning_attempts", len(run.attempts)),
		zap.Duration("elapsed", time.Since(run.started)))

	return &Result{
		RequestID:   run.requestID,
		RiskLevel:   run.decision.RiskLevel,
		Decision:    run.decision.Action,
		Reason:      loggedDecision.Reason,
		ActionTaken: effectiveAction,
		AuditID:     entry.ID,
		Timestamp:   entry.Timestamp,
	}, nil
}

// History serves ordered, filtered audit queries for the caller's
// dashboard surface.
func (s *PipelineService) History(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	return s.auditService.Query(ctx, filter)
}

// handleCancellation audits an aborted run as FAILED when the store is
// still reachable; the cancellation error is surfaced to the caller either
// way.
func (s *PipelineService) handleCancellation(ctx context.Context, run *runContext, cause error) error {
	s.logger.Warn("pipeline cancelled during reasoning",
		zap.String("request_id", run.requestID.String()),
		zap.String("order_id", run.event.OrderID),
		zap.Error(cause))

	// The inbound context is done; use a short detached deadline for the
	// best-effort failure record.
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	failedDecision := models.Decision{
		RiskLevel: models.RiskMedium,
		Action:    models.ActionLog,
		Reason:    "pipeline aborted: request cancelled before a verdict was reached",
	}
	noTool := models.ToolExecutionResult{ToolName: "none", Succeeded: false, Detail: "pipeline aborted before dispatch"}

	if _, err := s.auditService.Append(auditCtx, run.requestID, run.event, run.signal, failedDecision, noTool, models.OutcomeFailed); err != nil {
		s.logger.Error("failed to audit cancelled run",
			zap.String("request_id", run.requestID.String()),
			zap.Error(err))
	}

	if services.IsCancelledError(cause) {
		return cause
	}
	return services.NewDomainError(services.ErrorTypeCancelled, "request cancelled", cause)
}

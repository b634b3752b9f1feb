package tools

import (
	"context"
	"fmt"

	"github.com/opslane/riskplane/models"
	"go.uber.org/zap"
)

// Tool names form a closed set. Dispatch is an explicit mapping from
// action to tool, not an open-ended lookup, so failure handling stays
// exhaustive.
const (
	ToolNotifyOpsTeam = "notify_ops_team"
	ToolLogRiskEvent  = "log_risk_event"
)

// Notifier delivers escalations and notifications to the operations team.
// The transport behind it (pager, chat, email) is an external collaborator.
type Notifier interface {
	Notify(ctx context.Context, event models.Event, decision models.Decision) error
}

// DispatcherService executes the side effect tied to a decision. A failing
// notify tool is reported via the result, never as a pipeline error; the
// orchestrator downgrades the effective action in that case.
type DispatcherService struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewDispatcherService creates a new tool dispatcher
func NewDispatcherService(notifier Notifier, logger *zap.Logger) *DispatcherService {
	return &DispatcherService{
		notifier: notifier,
		logger:   logger,
	}
}

// Dispatch runs the tool mapped to the decision's action and reports the
// outcome. It never returns an error to the caller.
func (s *DispatcherService) Dispatch(ctx context.Context, event models.Event, decision models.Decision) models.ToolExecutionResult {
	switch decision.Action {
	case models.ActionEscalate, models.ActionNotify:
		return s.notifyOpsTeam(ctx, event, decision)
	case models.ActionLog:
		return s.logRiskEvent(decision)
	default:
		// The resolver is total over the action set; an unknown action is
		// recorded as a synthetic no-op rather than dropped.
		return models.ToolExecutionResult{
			ToolName:  "none",
			Succeeded: true,
			Detail:    fmt.Sprintf("no tool mapped for action %s", decision.Action),
		}
	}
}

func (s *DispatcherService) notifyOpsTeam(ctx context.Context, event models.Event, decision models.Decision) models.ToolExecutionResult {
	if err := s.notifier.Notify(ctx, event, decision); err != nil {
		s.logger.Error("notify tool failed",
			zap.String("order_id", event.OrderID),
			zap.String("action", string(decision.Action)),
			zap.Error(err))
		return models.ToolExecutionResult{
			ToolName:  ToolNotifyOpsTeam,
			Succeeded: false,
			Detail:    err.Error(),
		}
	}

	s.logger.Info("ops team notified",
		zap.String("order_id", event.OrderID),
		zap.String("risk_level", string(decision.RiskLevel)))
	return models.ToolExecutionResult{
		ToolName:  ToolNotifyOpsTeam,
		Succeeded: true,
		Detail:    fmt.Sprintf("ops team notified for order %s", event.OrderID),
	}
}

// logRiskEvent is the no-op tool for LOG decisions; the audit entry itself
// is the durable record, so this always succeeds.
func (s *DispatcherService) logRiskEvent(decision models.Decision) models.ToolExecutionResult {
	return models.ToolExecutionResult{
		ToolName:  ToolLogRiskEvent,
		Succeeded: true,
		Detail:    fmt.Sprintf("risk event recorded at level %s", decision.RiskLevel),
	}
}

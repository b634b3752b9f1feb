package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/repositories"
	"github.com/opslane/riskplane/services"
	"go.uber.org/zap"
)

// AuditService owns the append-only audit log. It is the only component
// permitted to assign an entry id: ids are a strictly increasing sequence
// assigned under the append mutex, so entries are totally ordered and an
// entry is visible to Query as soon as Append returns.
//
// Appends are synchronous. A store failure is surfaced to the caller as an
// audit persistence error; the pipeline never reports success for an
// unlogged decision.
type AuditService struct {
	repo   repositories.AuditRepository
	logger *zap.Logger

	mu     chan struct{} // buffered-1 channel used as a context-aware mutex
	nextID int64
}

// NewAuditService creates an audit service over the given store, seeding
// the id sequence from the store's highest existing id.
func NewAuditService(ctx context.Context, repo repositories.AuditRepository, logger *zap.Logger) (*AuditService, error) {
	maxID, err := repo.MaxID(ctx)
	if err != nil {
		return nil, services.WrapAudit("failed to read audit sequence", err)
	}

	s := &AuditService{
		repo:   repo,
		logger: logger,
		mu:     make(chan struct{}, 1),
		nextID: maxID + 1,
	}
	s.mu <- struct{}{}
	return s, nil
}

// Append records one processed event. The id is assigned exactly once,
// inside the critical section, and the insert completes before the lock is
// released so concurrent appenders observe ids matching completion order.
func (s *AuditService) Append(ctx context.Context, requestID uuid.UUID, event models.Event, signal models.RiskSignal, decision models.Decision, toolResult models.ToolExecutionResult, outcome models.PipelineOutcome) (*models.AuditEntry, error) {
	select {
	case <-s.mu:
	case <-ctx.Done():
		return nil, services.NewDomainError(services.ErrorTypeCancelled, "request cancelled before audit append", ctx.Err())
	}
	defer func() { s.mu <- struct{}{} }()

	entry := &models.AuditEntry{
		ID:         s.nextID,
		RequestID:  requestID,
		Event:      event,
		RiskSignal: signal,
		Decision:   decision,
		ToolResult: toolResult,
		Outcome:    outcome,
		Timestamp:  time.Now(),
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		s.logger.Error("audit append failed",
			zap.Int64("id", entry.ID),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return nil, services.WrapAudit("failed to append audit entry", err)
	}

	s.nextID++

	s.logger.Info("audit entry appended",
		zap.Int64("id", entry.ID),
		zap.String("order_id", event.OrderID),
		zap.String("risk_level", string(decision.RiskLevel)),
		zap.String("action", string(decision.Action)),
		zap.String("outcome", string(outcome)))
	return entry, nil
}

// Query returns audit entries most recent first, narrowed by the filter.
// Queries run concurrently with appends; the store never exposes a
// partially-written entry because Append holds the lock across the insert.
func (s *AuditService) Query(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, services.WrapAudit("failed to query audit entries", err)
	}
	return entries, nil
}

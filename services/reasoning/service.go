package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/opslane/riskplane/config"
	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/services"
	"github.com/opslane/riskplane/services/providers"
	"go.uber.org/zap"
)

// structuredVerdict is the strict shape the model must return. Anything
// that does not decode into exactly this shape, with the enumerated values,
// counts as a validation failure and consumes a retry.
type structuredVerdict struct {
	RiskLevel string `json:"risk_level"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason"`
}

// Assessment is the outcome of a reasoning pass: the resulting signal plus
// the per-try attempt records. Attempts are transient; they surface only in
// the audit reason.
type Assessment struct {
	Signal   models.RiskSignal
	Attempts []models.ReasoningAttempt
}

// ReasoningService invokes the external text-generation endpoint and
// enforces the schema contract: bounded retry with exponential backoff,
// strict validation of the structured output, and a deterministic MEDIUM
// fallback when the budget is exhausted. Endpoint errors and malformed
// output never escape this service; only caller cancellation does.
type ReasoningService struct {
	provider providers.Provider
	cfg      config.ReasoningConfig
	logger   *zap.Logger
}

// NewReasoningService creates a new reasoning service
func NewReasoningService(provider providers.Provider, cfg config.ReasoningConfig, logger *zap.Logger) *ReasoningService {
	return &ReasoningService{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}
}

// Assess runs the bounded attempt loop against the provider. Invoked only
// when the guardrail result is inconclusive. Returns an error only on
// caller cancellation; every other failure mode resolves to a signal.
func (s *ReasoningService) Assess(ctx context.Context, event models.Event) (*Assessment, error) {
	assessment := &Assessment{
		Attempts: make([]models.ReasoningAttempt, 0, s.cfg.MaxAttempts),
	}

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := s.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, services.NewDomainError(services.ErrorTypeCancelled, "request cancelled during reasoning", err)
		}

		record := s.tryOnce(ctx, event, attempt)
		assessment.Attempts = append(assessment.Attempts, record.attempt)

		if record.cancelled {
			return nil, services.NewDomainError(services.ErrorTypeCancelled, "request cancelled during reasoning", ctx.Err())
		}

		if record.verdict != nil {
			confidence := modelConfidence
			assessment.Signal = models.RiskSignal{
				Level:        models.RiskLevel(record.verdict.RiskLevel),
				Source:       models.SourceModel,
				MatchedTerms: []string{},
				Confidence:   &confidence,
				Reason:       record.verdict.Reason,
			}
			s.logger.Info("structured reasoning succeeded",
				zap.String("order_id", event.OrderID),
				zap.Int("attempt", attempt),
				zap.String("risk_level", record.verdict.RiskLevel))
			return assessment, nil
		}

		s.logger.Warn("reasoning attempt failed",
			zap.String("order_id", event.OrderID),
			zap.Int("attempt", attempt),
			zap.Strings("validation_errors", record.attempt.ValidationErrors))
	}

	// Budget exhausted: ambiguous input defaults to MEDIUM pending human
	// review. Never LOW, never HIGH.
	assessment.Signal = models.RiskSignal{
		Level:        models.RiskMedium,
		Source:       models.SourceFallback,
		MatchedTerms: []string{},
		Reason: fmt.Sprintf("structured reasoning exhausted after %d attempts; fallback risk assessment applied pending human review",
			s.cfg.MaxAttempts),
	}
	s.logger.Warn("reasoning budget exhausted, applying fallback",
		zap.String("order_id", event.OrderID),
		zap.Int("attempts", s.cfg.MaxAttempts))
	return assessment, nil
}

// modelConfidence is the nominal confidence attached to a schema-valid
// model verdict. The endpoint contract carries no calibrated score.
const modelConfidence = 0.75

type attemptRecord struct {
	attempt   models.ReasoningAttempt
	verdict   *structuredVerdict
	cancelled bool
}

// tryOnce performs one provider call under the per-attempt deadline and
// validates the output.
func (s *ReasoningService) tryOnce(ctx context.Context, event models.Event, attempt int) attemptRecord {
	attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.provider.Generate(attemptCtx, &providers.GenerationRequest{
		Model:  s.cfg.Model,
		System: systemInstruction,
		Prompt: buildPrompt(event, attempt > 1),
	})
	latencyMs := int(time.Since(start).Milliseconds())

	record := attemptRecord{
		attempt: models.ReasoningAttempt{
			AttemptNumber: attempt,
			LatencyMs:     latencyMs,
		},
	}

	if err != nil {
		// Endpoint unavailability and timeouts take the same retry
		// treatment as malformed output.
		if ctx.Err() != nil {
			record.cancelled = true
		}
		record.attempt.ValidationErrors = []string{fmt.Sprintf("endpoint error: %v", err)}
		return record
	}

	record.attempt.RawOutput = resp.Text

	verdict, validationErrors := parseStructuredOutput(resp.Text)
	if len(validationErrors) > 0 {
		record.attempt.ValidationErrors = validationErrors
		return record
	}

	record.attempt.ParseOK = true
	record.verdict = verdict
	return record
}

// backoff sleeps for the exponential delay before the given attempt,
// aborting early when the caller cancels.
func (s *ReasoningService) backoff(ctx context.Context, attempt int) error {
	delay := s.cfg.BackoffBase << (attempt - 2)
	if delay > s.cfg.BackoffMax {
		delay = s.cfg.BackoffMax
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return services.NewDomainError(services.ErrorTypeCancelled, "request cancelled during backoff", ctx.Err())
	}
}

// parseStructuredOutput decodes raw model text into the strict verdict
// shape. Near-JSON (markdown fences, trailing commas, single quotes) is
// repaired first; the repaired text is then decoded strictly and the enums
// checked. Returns the verdict or the list of validation failures.
func parseStructuredOutput(raw string) (*structuredVerdict, []string) {
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, []string{fmt.Sprintf("output is not JSON: %v", err)}
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(repaired)))
	dec.DisallowUnknownFields()

	var verdict structuredVerdict
	if err := dec.Decode(&verdict); err != nil {
		return nil, []string{fmt.Sprintf("output does not match schema: %v", err)}
	}

	var validationErrors []string
	if !models.RiskLevel(verdict.RiskLevel).Valid() {
		validationErrors = append(validationErrors, fmt.Sprintf("risk_level %q is not one of LOW, MEDIUM, HIGH", verdict.RiskLevel))
	}
	if !models.Action(verdict.Decision).Valid() {
		validationErrors = append(validationErrors, fmt.Sprintf("decision %q is not one of LOG, NOTIFY, ESCALATE", verdict.Decision))
	}
	if verdict.Reason == "" {
		validationErrors = append(validationErrors, "reason must be a non-empty string")
	}

	if len(validationErrors) > 0 {
		return nil, validationErrors
	}
	return &verdict, nil
}

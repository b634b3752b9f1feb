package guardrail

import (
	"strings"

	"github.com/opslane/riskplane/config"
	"github.com/opslane/riskplane/models"
	"go.uber.org/zap"
)

// GuardrailService classifies events against configured keyword tables
// before any model call. Evaluation is pure: no side effects, never fails.
type GuardrailService struct {
	rules  config.GuardrailConfig
	logger *zap.Logger
}

// NewGuardrailService creates a guardrail service over an immutable rule
// set. The rule tables must already be normalized to lower case.
func NewGuardrailService(rules config.GuardrailConfig, logger *zap.Logger) *GuardrailService {
	return &GuardrailService{
		rules:  rules,
		logger: logger,
	}
}

// Evaluate checks the event's status (and supplier) against the keyword
// tables. A HIGH match short-circuits MEDIUM: both tiers' terms are
// reported but the level is HIGH whenever any HIGH keyword is present.
// An event matching nothing yields an inconclusive signal that defers to
// the reasoning client.
func (s *GuardrailService) Evaluate(event models.Event) models.RiskSignal {
	haystack := strings.ToLower(event.CurrentStatus + " " + event.Supplier)

	highTerms := matchTerms(haystack, s.rules.High)
	mediumTerms := matchTerms(haystack, s.rules.Medium)

	switch {
	case len(highTerms) > 0:
		matched := append(highTerms, mediumTerms...)
		s.logger.Debug("guardrail matched high-risk keywords",
			zap.String("order_id", event.OrderID),
			zap.Strings("matched_terms", matched))
		return models.RiskSignal{
			Level:        models.RiskHigh,
			Source:       models.SourceGuardrail,
			MatchedTerms: matched,
		}
	case len(mediumTerms) > 0:
		s.logger.Debug("guardrail matched medium-risk keywords",
			zap.String("order_id", event.OrderID),
			zap.Strings("matched_terms", mediumTerms))
		return models.RiskSignal{
			Level:        models.RiskMedium,
			Source:       models.SourceGuardrail,
			MatchedTerms: mediumTerms,
		}
	default:
		return models.RiskSignal{
			Level:        models.RiskUnknown,
			Source:       models.SourceGuardrail,
			MatchedTerms: []string{},
		}
	}
}

func matchTerms(haystack string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

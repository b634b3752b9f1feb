package resolver

import (
	"fmt"

	"github.com/opslane/riskplane/models"
)

// actionTable is the fixed policy mapping risk levels to actions.
var actionTable = map[models.RiskLevel]models.Action{
	models.RiskHigh:   models.ActionEscalate,
	models.RiskMedium: models.ActionNotify,
	models.RiskLow:    models.ActionLog,
}

// ResolverService derives a decision from a risk signal. Pure lookup,
// total over the signal domain, never fails.
type ResolverService struct{}

// NewResolverService creates a new resolver service
func NewResolverService() *ResolverService {
	return &ResolverService{}
}

// Resolve maps the signal's risk level to an action and composes the
// human-readable reason from the signal's source. A signal that somehow
// carries an undecidable level is treated as MEDIUM; the resolver must
// always produce a verdict.
func (s *ResolverService) Resolve(signal models.RiskSignal) models.Decision {
	level := signal.Level
	if !level.Valid() {
		level = models.RiskMedium
	}

	return models.Decision{
		RiskLevel: level,
		Action:    actionTable[level],
		Reason:    composeReason(level, signal),
	}
}

func composeReason(level models.RiskLevel, signal models.RiskSignal) string {
	switch signal.Source {
	case models.SourceGuardrail:
		return fmt.Sprintf("guardrail classified risk as %s: %s", level, models.DescribeMatch(signal.MatchedTerms))
	case models.SourceModel:
		return fmt.Sprintf("model classified risk as %s: %s", level, signal.Reason)
	case models.SourceFallback:
		return fmt.Sprintf("risk defaulted to %s: %s", level, signal.Reason)
	default:
		return fmt.Sprintf("risk classified as %s", level)
	}
}

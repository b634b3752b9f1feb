package memory

import (
	"context"
	"sync"

	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/repositories"
)

// AuditRepository is an in-process append-only store. It backs the audit
// log when no database is configured and doubles as the test store.
// Entries are copied on insert and on read so callers can never mutate
// what the log holds.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []*models.AuditEntry
}

// NewAuditRepository creates an empty in-memory audit repository.
func NewAuditRepository() repositories.AuditRepository {
	return &AuditRepository{}
}

// Insert appends one entry.
func (r *AuditRepository) Insert(_ context.Context, entry *models.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *entry
	r.entries = append(r.entries, &stored)
	return nil
}

// List returns entries most recent first, narrowed by the filter.
func (r *AuditRepository) List(_ context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.AuditEntry
	skipped := 0
	// Walk newest to oldest; ids are strictly increasing in append order.
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filter.OrderID != "" && e.Event.OrderID != filter.OrderID {
			continue
		}
		if filter.RiskLevel != "" && e.Decision.RiskLevel != filter.RiskLevel {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		copied := *e
		out = append(out, &copied)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// MaxID returns the highest assigned id, or 0 on an empty log.
func (r *AuditRepository) MaxID(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var max int64
	for _, e := range r.entries {
		if e.ID > max {
			max = e.ID
		}
	}
	return max, nil
}

package repositories

import (
	"context"

	"github.com/opslane/riskplane/models"
)

// AuditRepository persists the append-only audit log. Implementations must
// never update or delete an entry; the audit service owns id assignment and
// its serialization, so Insert receives a fully-populated entry.
type AuditRepository interface {
	// Insert appends one entry. Failure here is fatal for the request that
	// produced the entry.
	Insert(ctx context.Context, entry *models.AuditEntry) error

	// List returns entries most recent first, narrowed by the filter.
	List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error)

	// MaxID returns the highest assigned id, or 0 on an empty log. Used to
	// seed the audit service's sequence at startup.
	MaxID(ctx context.Context) (int64, error)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opslane/riskplane/models"
	"github.com/opslane/riskplane/repositories"
	"go.uber.org/zap"
)

// AuditRepository implements repositories.AuditRepository on PostgreSQL.
// The signal, decision and tool result are stored as JSONB; the id comes
// from the audit service, not from a database sequence, so ordering stays
// under the single writer that assigns it.
type AuditRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *DB, logger *zap.Logger) repositories.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Insert appends a new audit entry
func (r *AuditRepository) Insert(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			id, request_id, order_id, supplier, expected_delivery, current_status, received_at,
			risk_level, risk_signal, decision, tool_result, outcome, timestamp
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	signalJSON, err := json.Marshal(entry.RiskSignal)
	if err != nil {
		return fmt.Errorf("failed to marshal risk signal: %w", err)
	}
	decisionJSON, err := json.Marshal(entry.Decision)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}
	toolJSON, err := json.Marshal(entry.ToolResult)
	if err != nil {
		return fmt.Errorf("failed to marshal tool result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		entry.RequestID,
		entry.Event.OrderID,
		entry.Event.Supplier,
		entry.Event.ExpectedDelivery,
		entry.Event.CurrentStatus,
		entry.Event.ReceivedAt,
		string(entry.Decision.RiskLevel),
		signalJSON,
		decisionJSON,
		toolJSON,
		string(entry.Outcome),
		entry.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry inserted",
		zap.Int64("id", entry.ID),
		zap.String("order_id", entry.Event.OrderID))
	return nil
}

// List returns entries most recent first, narrowed by the filter
func (r *AuditRepository) List(ctx context.Context, filter models.AuditFilter) ([]*models.AuditEntry, error) {
	query := `
		SELECT id, request_id, order_id, supplier, expected_delivery, current_status, received_at,
		       risk_signal, decision, tool_result, outcome, timestamp
		FROM audit_entries
	`

	var conditions []string
	var args []interface{}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		conditions = append(conditions, "order_id = $"+strconv.Itoa(len(args)))
	}
	if filter.RiskLevel != "" {
		args = append(args, string(filter.RiskLevel))
		conditions = append(conditions, "risk_level = $"+strconv.Itoa(len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += " LIMIT $" + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += " OFFSET $" + strconv.Itoa(len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

// MaxID returns the highest assigned id, or 0 on an empty log
func (r *AuditRepository) MaxID(ctx context.Context) (int64, error) {
	var max sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT MAX(id) FROM audit_entries`).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("failed to read max audit id: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}

func scanEntry(rows *sql.Rows) (*models.AuditEntry, error) {
	entry := &models.AuditEntry{}
	var signalJSON, decisionJSON, toolJSON []byte
	var outcome string

	err := rows.Scan(
		&entry.ID,
		&entry.RequestID,
		&entry.Event.OrderID,
		&entry.Event.Supplier,
		&entry.Event.ExpectedDelivery,
		&entry.Event.CurrentStatus,
		&entry.Event.ReceivedAt,
		&signalJSON,
		&decisionJSON,
		&toolJSON,
		&outcome,
		&entry.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit entry: %w", err)
	}

	if err := json.Unmarshal(signalJSON, &entry.RiskSignal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk signal: %w", err)
	}
	if err := json.Unmarshal(decisionJSON, &entry.Decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}
	if err := json.Unmarshal(toolJSON, &entry.ToolResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool result: %w", err)
	}
	entry.Outcome = models.PipelineOutcome(outcome)

	return entry, nil
}

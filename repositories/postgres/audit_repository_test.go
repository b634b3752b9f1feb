package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/opslane/riskplane/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockRepo(t *testing.T) (*AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewAuditRepository(&DB{DB: db, logger: zap.NewNop()}, zap.NewNop())
	return repo.(*AuditRepository), mock
}

func sampleEntry() *models.AuditEntry {
	return &models.AuditEntry{
		ID:        1,
		RequestID: uuid.New(),
		Event: models.Event{
			OrderID:          "ORD-1042",
			Supplier:         "Acme Logistics",
			ExpectedDelivery: time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
			CurrentStatus:    "delayed",
			ReceivedAt:       time.Now(),
		},
		RiskSignal: models.RiskSignal{Level: models.RiskHigh, Source: models.SourceGuardrail, MatchedTerms: []string{"delayed"}},
		Decision:   models.Decision{RiskLevel: models.RiskHigh, Action: models.ActionEscalate, Reason: "r"},
		ToolResult: models.ToolExecutionResult{ToolName: "notify_ops_team", Succeeded: true},
		Outcome:    models.OutcomeComplete,
		Timestamp:  time.Now(),
	}
}

func TestAuditRepository_Insert(t *testing.T) {
	t.Run("inserts all columns", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		entry := sampleEntry()

		mock.ExpectExec("INSERT INTO audit_entries").
			WithArgs(
				entry.ID,
				entry.RequestID,
				entry.Event.OrderID,
				entry.Event.Supplier,
				entry.Event.ExpectedDelivery,
				entry.Event.CurrentStatus,
				entry.Event.ReceivedAt,
				string(entry.Decision.RiskLevel),
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
				sqlmock.AnyArg(),
				string(entry.Outcome),
				entry.Timestamp,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Insert(context.Background(), entry)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		entry := sampleEntry()

		mock.ExpectExec("INSERT INTO audit_entries").
			WillReturnError(assert.AnError)

		err := repo.Insert(context.Background(), entry)
		assert.Error(t, err)
	})
}

func entryRows(t *testing.T, entries ...*models.AuditEntry) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "request_id", "order_id", "supplier", "expected_delivery", "current_status", "received_at",
		"risk_signal", "decision", "tool_result", "outcome", "timestamp",
	})
	for _, e := range entries {
		signalJSON, err := json.Marshal(e.RiskSignal)
		require.NoError(t, err)
		decisionJSON, err := json.Marshal(e.Decision)
		require.NoError(t, err)
		toolJSON, err := json.Marshal(e.ToolResult)
		require.NoError(t, err)
		rows.AddRow(
			e.ID, e.RequestID, e.Event.OrderID, e.Event.Supplier, e.Event.ExpectedDelivery,
			e.Event.CurrentStatus, e.Event.ReceivedAt, signalJSON, decisionJSON, toolJSON,
			string(e.Outcome), e.Timestamp,
		)
	}
	return rows
}

func TestAuditRepository_List(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		entry := sampleEntry()

		mock.ExpectQuery("FROM audit_entries").
			WillReturnRows(entryRows(t, entry))

		entries, err := repo.List(context.Background(), models.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.ID, entries[0].ID)
		assert.Equal(t, entry.Event.OrderID, entries[0].Event.OrderID)
		assert.Equal(t, models.RiskHigh, entries[0].RiskSignal.Level)
		assert.Equal(t, models.ActionEscalate, entries[0].Decision.Action)
		assert.Equal(t, models.OutcomeComplete, entries[0].Outcome)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("order id filter binds a parameter", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("WHERE order_id = \\$1 ORDER BY id DESC").
			WithArgs("ORD-1042").
			WillReturnRows(entryRows(t))

		entries, err := repo.List(context.Background(), models.AuditFilter{OrderID: "ORD-1042"})
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("combined filters with limit and offset", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("WHERE order_id = \\$1 AND risk_level = \\$2 ORDER BY id DESC LIMIT \\$3 OFFSET \\$4").
			WithArgs("ORD-1042", "HIGH", 10, 20).
			WillReturnRows(entryRows(t))

		_, err := repo.List(context.Background(), models.AuditFilter{
			OrderID:   "ORD-1042",
			RiskLevel: models.RiskHigh,
			Limit:     10,
			Offset:    20,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query errors", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("FROM audit_entries").
			WillReturnError(assert.AnError)

		_, err := repo.List(context.Background(), models.AuditFilter{})
		assert.Error(t, err)
	})
}

func TestAuditRepository_MaxID(t *testing.T) {
	t.Run("returns highest id", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("SELECT MAX\\(id\\) FROM audit_entries").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(42)))

		max, err := repo.MaxID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(42), max)
	})

	t.Run("empty table yields zero", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery("SELECT MAX\\(id\\) FROM audit_entries").
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		max, err := repo.MaxID(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), max)
	})
}

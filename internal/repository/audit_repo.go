package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"controlling_vacuums/internal/models"
)

type AuditSQLite struct {
	db *sql.DB
}

func NewAuditSQLite(db *sql.DB) *AuditSQLite { return &AuditSQLite{db: db} }

var _ AuditRepo = (*AuditSQLite)(nil)

// Append inserts a new audit record. If OccurredAt is empty, it's set.
func (r *AuditSQLite) Append(ctx context.Context, rec models.AuditRecord) error {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	} else {
		rec.OccurredAt = rec.OccurredAt.UTC()
	}

	// Insert with SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS"
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO error_messages (occurred_at, vacuum_id, action, message)
		VALUES (?, ?, ?, ?)
	`,
		rec.OccurredAt.Format("2006-01-02 15:04:05"),
		rec.VacuumID,
		strings.ToUpper(strings.TrimSpace(string(rec.Action))),
		rec.Message,
	)
	if err != nil {
		return fmt.Errorf("insert audit record for vacuum %d: %w", rec.VacuumID, err)
	}
	return nil
}

// ListByVacuumIDs returns records for the given vacuums, oldest first.
// An empty id set yields an empty result, not all rows.
func (r *AuditSQLite) ListByVacuumIDs(ctx context.Context, ids []int64) ([]models.AuditRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	q := `SELECT id, occurred_at, vacuum_id, action, message FROM error_messages
		WHERE vacuum_id IN (` + placeholders + `) ORDER BY occurred_at ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.AuditRecord, 0, 64)
	for rows.Next() {
		var (
			rec    models.AuditRecord
			action string
		)
		if err := rows.Scan(&rec.ID, &rec.OccurredAt, &rec.VacuumID, &action, &rec.Message); err != nil {
			return nil, err
		}
		rec.Action = models.Action(action)
		rec.OccurredAt = rec.OccurredAt.UTC()
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"controlling_vacuums/internal/models"
)

type VacuumSQLite struct {
	db *sql.DB
}

func NewVacuumSQLite(db *sql.DB) *VacuumSQLite {
	return &VacuumSQLite{db: db}
}

// Ensure implementation of VacuumRepo interface at compile time.
var _ VacuumRepo = (*VacuumSQLite)(nil)

const (
	insertVacuumSQL = `
		INSERT INTO vacuums (name, status, added_by, active, cycle, version, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
	`

	selectVacuumSQL = `
		SELECT id, name, status, added_by, active, cycle, version, created_at
		FROM vacuums WHERE id = ?
	`

	// Optimistic update: the WHERE clause on version makes a stale write
	// a zero-row update instead of a lost one.
	updateVacuumSQL = `
		UPDATE vacuums
		SET name = ?, status = ?, active = ?, cycle = ?, version = version + 1
		WHERE id = ? AND version = ?
	`

	selectVacuumColumns = `SELECT id, name, status, added_by, active, cycle, version, created_at FROM vacuums`
)

// Create inserts a new vacuum and returns it with the assigned id.
func (r *VacuumSQLite) Create(ctx context.Context, v models.Vacuum) (models.Vacuum, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	} else {
		v.CreatedAt = v.CreatedAt.UTC()
	}

	res, err := r.db.ExecContext(ctx, insertVacuumSQL,
		v.Name, string(v.Status), v.AddedBy, v.Active, v.Cycle, v.CreatedAt,
	)
	if err != nil {
		return models.Vacuum{}, fmt.Errorf("insert vacuum %q: %w", v.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Vacuum{}, fmt.Errorf("get last insert id for vacuum %q: %w", v.Name, err)
	}
	v.ID = id
	v.Version = 0
	return v, nil
}

// Load fetches one vacuum by id. Returns ErrNotFound when absent.
func (r *VacuumSQLite) Load(ctx context.Context, id int64) (models.Vacuum, error) {
	row := r.db.QueryRowContext(ctx, selectVacuumSQL, id)

	v, err := scanVacuum(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vacuum{}, ErrNotFound
		}
		return models.Vacuum{}, fmt.Errorf("select vacuum %d: %w", id, err)
	}
	return v, nil
}

// Update writes the vacuum back, guarded by its version token. On success
// the returned copy carries the bumped version. A zero-row update against
// an existing row means another writer committed first: ErrVersionConflict.
func (r *VacuumSQLite) Update(ctx context.Context, v models.Vacuum) (models.Vacuum, error) {
	res, err := r.db.ExecContext(ctx, updateVacuumSQL,
		v.Name, string(v.Status), v.Active, v.Cycle, v.ID, v.Version,
	)
	if err != nil {
		return models.Vacuum{}, fmt.Errorf("update vacuum %d: %w", v.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Vacuum{}, fmt.Errorf("rows affected for vacuum %d: %w", v.ID, err)
	}
	if n == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM vacuums WHERE id = ?`, v.ID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return models.Vacuum{}, ErrNotFound
		}
		if err != nil {
			return models.Vacuum{}, fmt.Errorf("probe vacuum %d: %w", v.ID, err)
		}
		return models.Vacuum{}, ErrVersionConflict
	}
	v.Version++
	return v, nil
}

// FindByOwner lists vacuums added by the given user, newest first.
func (r *VacuumSQLite) FindByOwner(ctx context.Context, userID int) ([]models.Vacuum, error) {
	return r.queryVacuums(ctx, selectVacuumColumns+` WHERE added_by = ? ORDER BY created_at DESC`, userID)
}

// FindByNameContaining lists vacuums whose name contains the fragment.
func (r *VacuumSQLite) FindByNameContaining(ctx context.Context, fragment string) ([]models.Vacuum, error) {
	return r.queryVacuums(ctx, selectVacuumColumns+` WHERE name LIKE ? ORDER BY created_at DESC`, "%"+fragment+"%")
}

// FindByStatuses lists vacuums whose status is in the given set.
func (r *VacuumSQLite) FindByStatuses(ctx context.Context, statuses []models.Status) ([]models.Vacuum, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	q := selectVacuumColumns + ` WHERE status IN (` + placeholders + `) ORDER BY created_at DESC`
	return r.queryVacuums(ctx, q, args...)
}

// FindByCreatedBetween lists vacuums created within [from, to] inclusive.
func (r *VacuumSQLite) FindByCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Vacuum, error) {
	return r.queryVacuums(ctx,
		selectVacuumColumns+` WHERE created_at >= ? AND created_at <= ? ORDER BY created_at DESC`,
		from.UTC(), to.UTC(),
	)
}

func (r *VacuumSQLite) queryVacuums(ctx context.Context, q string, args ...any) ([]models.Vacuum, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Vacuum, 0, 16)
	for rows.Next() {
		v, err := scanVacuum(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVacuum(s scanner) (models.Vacuum, error) {
	var (
		v      models.Vacuum
		status string
	)
	if err := s.Scan(&v.ID, &v.Name, &status, &v.AddedBy, &v.Active, &v.Cycle, &v.Version, &v.CreatedAt); err != nil {
		return models.Vacuum{}, err
	}
	v.Status = models.Status(status)
	v.CreatedAt = v.CreatedAt.UTC()
	return v, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"controlling_vacuums/internal/models"
)

// Sentinel errors surfaced by the SQLite implementations.
var (
	// ErrNotFound is returned when no row exists for the requested id.
	ErrNotFound = errors.New("vacuum not found")
	// ErrVersionConflict is returned when an update carries a version token
	// that no longer matches the stored row, i.e. another writer got there first.
	ErrVersionConflict = errors.New("vacuum version conflict")
)

type Authorization interface {
	Create(email, hash string) (int, error)
	GetByEmail(email string) (*models.User, error)
}

// VacuumRepo persists vacuums with optimistic locking on Update.
type VacuumRepo interface {
	Create(ctx context.Context, v models.Vacuum) (models.Vacuum, error)
	Load(ctx context.Context, id int64) (models.Vacuum, error)
	Update(ctx context.Context, v models.Vacuum) (models.Vacuum, error)
	FindByOwner(ctx context.Context, userID int) ([]models.Vacuum, error)
	FindByNameContaining(ctx context.Context, fragment string) ([]models.Vacuum, error)
	FindByStatuses(ctx context.Context, statuses []models.Status) ([]models.Vacuum, error)
	FindByCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Vacuum, error)
}

// AuditRepo is append-only: records are never updated or deleted.
type AuditRepo interface {
	Append(ctx context.Context, r models.AuditRecord) error
	ListByVacuumIDs(ctx context.Context, ids []int64) ([]models.AuditRecord, error)
}

type Repository struct {
	Vacuums VacuumRepo
	Audit   AuditRepo
	Auth    Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Vacuums: NewVacuumSQLite(db),
		Audit:   NewAuditSQLite(db),
		Auth:    NewUserRepository(db),
	}
}

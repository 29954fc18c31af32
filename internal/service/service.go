package service

import (
	"context"
	"time"

	"controlling_vacuums/internal/logger"
	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"
)

type Authorization interface {
	SignUp(email, password string) (int, error)
	GenerateToken(email, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Vacuums exposes plain CRUD and search. No transition logic lives here;
// status changes go through Transitions only.
type Vacuums interface {
	Create(ctx context.Context, userID int, name string) (models.Vacuum, error)
	Get(ctx context.Context, id int64) (models.Vacuum, error)
	ListOwned(ctx context.Context, userID int) ([]models.Vacuum, error)
	Rename(ctx context.Context, userID int, id int64, name string) (models.Vacuum, error)
	Deactivate(ctx context.Context, userID int, id int64) error
	Search(ctx context.Context, userID int, f SearchFilter) ([]models.Vacuum, error)
}

// Transitions orchestrates the vacuum lifecycle: validation and guard
// acquisition on the caller's path, actuation and cascades on a worker.
// A nil return means the request was accepted; completion is observed
// later by re-reading vacuum state.
type Transitions interface {
	RequestTransition(ctx context.Context, vacuumID int64, action models.Action, userID int) error
}

// Scheduler registers a one-shot future invocation of RequestTransition.
type Scheduler interface {
	ScheduleTransition(vacuumID int64, action models.Action, whenText string, userID int) error
}

// Audit records rejected/failed transition attempts and lists them per owner.
type Audit interface {
	Record(ctx context.Context, vacuumID int64, action models.Action, reason string)
	ListForUser(ctx context.Context, userID int) ([]models.AuditRecord, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Vacuums
	Transitions
	Scheduler
	Audit
	Authorization
}

// TransitionConfig bounds the simulated actuation latency each
// transition step pays.
type TransitionConfig struct {
	MinLatency time.Duration
	MaxLatency time.Duration
}

const (
	DefaultMinLatency = 15 * time.Second
	DefaultMaxLatency = 20 * time.Second
)

func (c TransitionConfig) withDefaults() TransitionConfig {
	if c.MinLatency <= 0 {
		c.MinLatency = DefaultMinLatency
	}
	if c.MaxLatency < c.MinLatency {
		c.MaxLatency = c.MinLatency
	}
	return c
}

// NewService wires the repository layer into concrete services. The context
// bounds the lifetime of transition workers: cancelling it aborts in-flight
// runs at shutdown.
func NewService(ctx context.Context, repos *repository.Repository, log *logger.Logger, registrar Registrar, cfg TransitionConfig) *Service {
	audit := NewAuditService(repos.Audit, repos.Vacuums, log)
	transitions := NewTransitionService(ctx, repos.Vacuums, audit, NewOperationGuard(), log, cfg)
	return &Service{
		Vacuums:       NewVacuumService(repos.Vacuums),
		Transitions:   transitions,
		Scheduler:     NewSchedulerService(transitions, registrar, log),
		Audit:         audit,
		Authorization: NewAuthService(repos.Auth),
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"controlling_vacuums/internal/logger"
	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"

	"github.com/google/uuid"
)

// Canonical reason strings. Existing clients match on these verbatim.
const (
	reasonDisabled   = "Access Denied: Vacuum is disabled"
	reasonNotOwned   = "Access Denied: Vacuum does not belong to you"
	reasonNotFound   = "Vacuum not found"
	reasonInProgress = "Vacuum operation already in progress"
	reasonConflict   = "Concurrent modification: vacuum was updated by another writer"
)

func reasonWrongStatus(a models.Action, required models.Status) string {
	return fmt.Sprintf("Access Denied: Can't %s a vacuum that is not %s",
		strings.ToLower(string(a)), strings.ToLower(string(required)))
}

// recorder is the slice of Audit the executor needs.
type recorder interface {
	Record(ctx context.Context, vacuumID int64, action models.Action, reason string)
}

// TransitionService is the lifecycle orchestrator. The synchronous path
// validates and acquires the per-vacuum guard; an accepted request is then
// handed to a worker goroutine that pays the actuation latency, persists
// each status change under optimistic locking and evaluates cascades.
type TransitionService struct {
	vacuums repository.VacuumRepo
	audit   recorder
	guard   *OperationGuard
	log     *logger.Logger

	// workerCtx outlives individual requests; cancelling it (process
	// shutdown) aborts in-flight runs.
	workerCtx context.Context

	minLatency time.Duration
	maxLatency time.Duration
}

func NewTransitionService(ctx context.Context, vacuums repository.VacuumRepo, audit recorder, guard *OperationGuard, log *logger.Logger, cfg TransitionConfig) *TransitionService {
	cfg = cfg.withDefaults()
	return &TransitionService{
		vacuums:    vacuums,
		audit:      audit,
		guard:      guard,
		log:        log,
		workerCtx:  ctx,
		minLatency: cfg.MinLatency,
		maxLatency: cfg.MaxLatency,
	}
}

// Guard exposes the in-flight map, e.g. for listings that want to show
// whether a vacuum is busy.
func (s *TransitionService) Guard() *OperationGuard { return s.guard }

// RequestTransition validates the request on the caller's path and, if
// everything holds, dispatches the actuation to a worker and returns nil
// ("accepted"). Every refusal is audited and returned as *Rejection;
// repository.ErrNotFound is preserved in the chain so callers can
// distinguish a missing vacuum from a forbidden action.
func (s *TransitionService) RequestTransition(ctx context.Context, vacuumID int64, action models.Action, userID int) error {
	rule, ok := models.RuleFor(action)
	if !ok {
		return s.reject(ctx, vacuumID, action, fmt.Sprintf("Unknown action: %s", action))
	}

	v, err := s.vacuums.Load(ctx, vacuumID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.audit.Record(ctx, vacuumID, action, reasonNotFound)
			return fmt.Errorf("%s: %w", reasonNotFound, err)
		}
		return fmt.Errorf("load vacuum %d: %w", vacuumID, err)
	}

	if v.AddedBy != userID {
		return s.reject(ctx, vacuumID, action, reasonNotOwned)
	}
	if !v.Active {
		return s.reject(ctx, vacuumID, action, reasonDisabled)
	}
	if v.Status != rule.Required {
		return s.reject(ctx, vacuumID, action, reasonWrongStatus(action, rule.Required))
	}

	// No guard is held for requests failing validation above.
	if !s.guard.TryAcquire(vacuumID) {
		return s.reject(ctx, vacuumID, action, reasonInProgress)
	}

	// Cycle counts accepted activations; persisted by the worker's first write.
	if rule.Resulting == models.StatusRunning {
		v.Cycle++
	}

	runID := uuid.NewString()
	if s.log != nil {
		s.log.Infow("transition_accepted", "run_id", runID, "vacuum_id", vacuumID, "action", action, "user_id", userID)
	}
	go s.execute(s.workerCtx, runID, v, action, rule)

	return nil
}

func (s *TransitionService) reject(ctx context.Context, vacuumID int64, action models.Action, reason string) error {
	s.audit.Record(ctx, vacuumID, action, reason)
	return &Rejection{Reason: reason}
}

// Worker phases. Each phase waits out one actuation latency, commits one
// persisted status change and names its successor.
type runPhase int

const (
	phasePrimary   runPhase = iota // the requested transition itself
	phaseDischarge                 // cascade: STOPPED → DISCHARGING
	phaseSettle                    // cascade: DISCHARGING → STOPPED, cycle reset
	phaseDone
)

var errStaleState = errors.New("vacuum state changed since validation")

// execute drives one accepted run to completion. The guard is released on
// every exit path. Errors here are invisible to the original caller and
// surface only through the audit trail and the process log.
func (s *TransitionService) execute(ctx context.Context, runID string, v models.Vacuum, action models.Action, rule models.TransitionRule) {
	defer s.guard.Release(v.ID)

	phase := phasePrimary
	for phase != phaseDone {
		if err := s.waitActuation(ctx); err != nil {
			// Cancellation is fatal for the run. No compensation is
			// attempted: the vacuum rests in whatever status was last
			// persisted, possibly mid-cascade.
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, "Operation cancelled: "+err.Error())
			if s.log != nil {
				s.log.Errorw("transition_worker_cancelled", "run_id", runID, "vacuum_id", v.ID, "action", action, "err", err)
			}
			return
		}

		next, err := s.step(ctx, phase, &v, action, rule)
		if err != nil {
			if s.log != nil {
				s.log.Errorw("transition_worker_aborted", "run_id", runID, "vacuum_id", v.ID, "action", action, "err", err)
			}
			return
		}
		phase = next
	}

	if s.log != nil {
		s.log.Infow("transition_complete", "run_id", runID, "vacuum_id", v.ID, "action", action, "status", v.Status, "cycle", v.Cycle)
	}
}

// step applies one phase. The primary phase reloads the row and re-verifies
// the preconditions: the synchronous check may have read a row that an
// external writer has since changed.
func (s *TransitionService) step(ctx context.Context, phase runPhase, v *models.Vacuum, action models.Action, rule models.TransitionRule) (runPhase, error) {
	switch phase {
	case phasePrimary:
		fresh, err := s.vacuums.Load(ctx, v.ID)
		if err != nil {
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, "Reload failed: "+err.Error())
			return phaseDone, err
		}
		if !fresh.Active {
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, reasonDisabled)
			return phaseDone, errStaleState
		}
		if fresh.Status != rule.Required {
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, reasonWrongStatus(action, rule.Required))
			return phaseDone, errStaleState
		}

		fresh.Status = rule.Resulting
		fresh.Cycle = v.Cycle // carries the increment made at acceptance
		updated, err := s.persist(ctx, fresh, action)
		if err != nil {
			return phaseDone, err
		}
		*v = updated

		// Cascade rule: an automatic discharge fires after every third
		// completed cycle, then the vacuum settles back to STOPPED. A
		// direct discharge settles the same way.
		switch {
		case v.Status == models.StatusStopped && v.Cycle != 0 && v.Cycle%3 == 0:
			return phaseDischarge, nil
		case v.Status == models.StatusDischarging:
			return phaseSettle, nil
		default:
			return phaseDone, nil
		}

	case phaseDischarge:
		v.Status = models.StatusDischarging
		updated, err := s.persist(ctx, *v, action)
		if err != nil {
			return phaseDone, err
		}
		*v = updated
		return phaseSettle, nil

	case phaseSettle:
		v.Status = models.StatusStopped
		v.Cycle = 0
		updated, err := s.persist(ctx, *v, action)
		if err != nil {
			return phaseDone, err
		}
		*v = updated
		return phaseDone, nil
	}

	return phaseDone, nil
}

// persist writes the vacuum back under its version token. A version
// conflict means an external writer committed between our read and write;
// it is audited and aborts the run (no automatic retry).
func (s *TransitionService) persist(ctx context.Context, v models.Vacuum, action models.Action) (models.Vacuum, error) {
	updated, err := s.vacuums.Update(ctx, v)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, reasonConflict)
		} else {
			s.audit.Record(context.WithoutCancel(ctx), v.ID, action, "Persist failed: "+err.Error())
		}
		return models.Vacuum{}, err
	}
	return updated, nil
}

// waitActuation blocks for the simulated hardware latency, drawn uniformly
// from [minLatency, maxLatency). Returns the context error on cancellation.
func (s *TransitionService) waitActuation(ctx context.Context) error {
	d := s.minLatency
	if window := s.maxLatency - s.minLatency; window > 0 {
		d += rand.N(window)
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

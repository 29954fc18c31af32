package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"controlling_vacuums/internal/logger"
	"controlling_vacuums/internal/models"

	"github.com/robfig/cron/v3"
)

// scheduledDateLayout is the fixed textual format callers submit,
// MM/dd/yyyy HH:mm.
const scheduledDateLayout = "01/02/2006 15:04"

const (
	reasonBadDate    = "Failed to parse date."
	reasonDatePassed = "Scheduled date has passed or is the same as the current date."
)

// Registrar registers a callback under a cron-style firing spec.
type Registrar interface {
	ScheduleOnce(spec string, fn func()) error
}

// CronRegistrar adapts robfig/cron to Registrar. The date components of a
// generated spec already pin it to one calendar instant per year; removing
// the entry after its first firing makes it genuinely one-shot.
type CronRegistrar struct {
	c *cron.Cron
}

func NewCronRegistrar() *CronRegistrar {
	return &CronRegistrar{c: cron.New()}
}

// Start launches the cron runner in its own goroutine.
func (r *CronRegistrar) Start() { r.c.Start() }

// Stop halts scheduling; the returned context is done when running jobs finish.
func (r *CronRegistrar) Stop() context.Context { return r.c.Stop() }

func (r *CronRegistrar) ScheduleOnce(spec string, fn func()) error {
	var (
		id   cron.EntryID
		once sync.Once
	)
	entryID, err := r.c.AddFunc(spec, func() {
		once.Do(fn)
		r.c.Remove(id)
	})
	if err != nil {
		return err
	}
	// Earliest possible firing is the next minute boundary, well after this
	// assignment.
	id = entryID
	return nil
}

// SchedulerService converts an absolute wall-clock request into a one-shot
// firing of the same RequestTransition entry point interactive callers use.
type SchedulerService struct {
	transitions Transitions
	registrar   Registrar
	log         *logger.Logger
	now         func() time.Time
}

func NewSchedulerService(transitions Transitions, registrar Registrar, log *logger.Logger) *SchedulerService {
	return &SchedulerService{
		transitions: transitions,
		registrar:   registrar,
		log:         log,
		now:         time.Now,
	}
}

// ScheduleTransition parses whenText and registers the firing. Rejections
// (unparseable or non-future date) are synchronous; nothing is registered
// for them. Recurring schedules and cancellation are not supported.
func (s *SchedulerService) ScheduleTransition(vacuumID int64, action models.Action, whenText string, userID int) error {
	if _, ok := models.RuleFor(action); !ok {
		return &Rejection{Reason: fmt.Sprintf("Unknown action: %s", action)}
	}

	fireAt, err := time.ParseInLocation(scheduledDateLayout, whenText, time.Local)
	if err != nil {
		return &Rejection{Reason: reasonBadDate}
	}
	if !fireAt.After(s.now()) {
		return &Rejection{Reason: reasonDatePassed}
	}

	if err := s.registrar.ScheduleOnce(cronSpecFor(fireAt), func() {
		// Scheduled firings take the interactive path: same validation,
		// same guard, same audit trail.
		if err := s.transitions.RequestTransition(context.Background(), vacuumID, action, userID); err != nil {
			if s.log != nil {
				s.log.Errorw("scheduled_transition_rejected", "vacuum_id", vacuumID, "action", action, "err", err)
			}
		}
	}); err != nil {
		return fmt.Errorf("register schedule for vacuum %d: %w", vacuumID, err)
	}

	if s.log != nil {
		s.log.Infow("transition_scheduled", "vacuum_id", vacuumID, "action", action, "fire_at", fireAt)
	}
	return nil
}

// cronSpecFor pins a wall-clock instant into the 5-field cron syntax:
// minute, hour, day of month, month, any weekday.
func cronSpecFor(t time.Time) string {
	return fmt.Sprintf("%d %d %d %d *", t.Minute(), t.Hour(), t.Day(), int(t.Month()))
}

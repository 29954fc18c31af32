package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"controlling_vacuums/internal/models"
)

// fakeRegistrar captures registrations instead of running a cron loop.
type fakeRegistrar struct {
	mu    sync.Mutex
	specs []string
	fns   []func()
	err   error
}

func (f *fakeRegistrar) ScheduleOnce(spec string, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.specs = append(f.specs, spec)
	f.fns = append(f.fns, fn)
	return nil
}

type fakeTransitions struct {
	err error

	lastVacuumID int64
	lastAction   models.Action
	lastUserID   int
	calls        int
}

func (f *fakeTransitions) RequestTransition(ctx context.Context, vacuumID int64, action models.Action, userID int) error {
	f.calls++
	f.lastVacuumID = vacuumID
	f.lastAction = action
	f.lastUserID = userID
	return f.err
}

func newTestScheduler(tr Transitions, reg Registrar, now time.Time) *SchedulerService {
	s := NewSchedulerService(tr, reg, nil)
	s.now = func() time.Time { return now }
	return s
}

func TestScheduleTransition_RejectsUnparseableDate(t *testing.T) {
	reg := &fakeRegistrar{}
	s := newTestScheduler(&fakeTransitions{}, reg, time.Now())

	err := s.ScheduleTransition(1, models.ActionStart, "2030-01-01 10:00", testOwner)
	assertRejectedWith(t, err, "Failed to parse date.")
	if len(reg.specs) != 0 {
		t.Fatalf("nothing may be registered for a rejected request")
	}
}

func TestScheduleTransition_RejectsPastOrPresentDate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)
	reg := &fakeRegistrar{}
	s := newTestScheduler(&fakeTransitions{}, reg, now)

	for _, when := range []string{
		"01/01/2000 00:00", // long past
		"06/15/2026 12:00", // equals now
	} {
		err := s.ScheduleTransition(1, models.ActionStart, when, testOwner)
		assertRejectedWith(t, err, "Scheduled date has passed or is the same as the current date.")
	}
	if len(reg.specs) != 0 {
		t.Fatalf("nothing may be registered for a rejected request")
	}
}

func TestScheduleTransition_RejectsUnknownAction(t *testing.T) {
	reg := &fakeRegistrar{}
	s := newTestScheduler(&fakeTransitions{}, reg, time.Now())

	err := s.ScheduleTransition(1, models.Action("LEVITATE"), "01/01/2099 10:00", testOwner)
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection for unknown action, got %v", err)
	}
}

func TestScheduleTransition_BuildsDatePinnedSpec(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local)
	reg := &fakeRegistrar{}
	s := newTestScheduler(&fakeTransitions{}, reg, now)

	if err := s.ScheduleTransition(7, models.ActionDischarge, "09/03/2026 08:45", testOwner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reg.specs) != 1 {
		t.Fatalf("expected one registration, got %d", len(reg.specs))
	}
	// minute hour day month, any weekday
	if reg.specs[0] != "45 8 3 9 *" {
		t.Fatalf("spec = %q, want %q", reg.specs[0], "45 8 3 9 *")
	}
}

func TestScheduleTransition_FiringTakesInteractivePath(t *testing.T) {
	tr := &fakeTransitions{}
	reg := &fakeRegistrar{}
	s := newTestScheduler(tr, reg, time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local))

	if err := s.ScheduleTransition(7, models.ActionStart, "06/16/2026 09:30", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg.fns[0]()

	if tr.calls != 1 {
		t.Fatalf("expected one transition request on firing, got %d", tr.calls)
	}
	if tr.lastVacuumID != 7 || tr.lastAction != models.ActionStart || tr.lastUserID != 42 {
		t.Fatalf("firing forwarded wrong arguments: vacuum %d action %s user %d",
			tr.lastVacuumID, tr.lastAction, tr.lastUserID)
	}
}

func TestScheduleTransition_RegistrarFailureIsNotARejection(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("cron down")}
	s := newTestScheduler(&fakeTransitions{}, reg, time.Date(2026, 6, 15, 12, 0, 0, 0, time.Local))

	err := s.ScheduleTransition(1, models.ActionStart, "06/16/2026 09:30", testOwner)
	if err == nil {
		t.Fatalf("expected error")
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		t.Fatalf("infrastructure failure must not masquerade as a user rejection")
	}
}

func TestCronSpecFor_FieldOrder(t *testing.T) {
	at := time.Date(2026, 12, 31, 23, 59, 0, 0, time.Local)
	if got := cronSpecFor(at); got != "59 23 31 12 *" {
		t.Fatalf("cronSpecFor = %q, want %q", got, "59 23 31 12 *")
	}
}

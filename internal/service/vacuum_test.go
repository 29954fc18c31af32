package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"
)

func TestVacuumService_Create_Defaults(t *testing.T) {
	repo := newFakeVacuumRepo()
	svc := NewVacuumService(repo)

	v, err := svc.Create(context.Background(), testOwner, "  kitchen bot  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "kitchen bot" {
		t.Fatalf("name = %q, want trimmed %q", v.Name, "kitchen bot")
	}
	if v.Status != models.StatusStopped || !v.Active || v.Cycle != 0 {
		t.Fatalf("new vacuum must be STOPPED/active/cycle 0, got %+v", v)
	}
	if v.AddedBy != testOwner {
		t.Fatalf("owner = %d, want %d", v.AddedBy, testOwner)
	}
}

func TestVacuumService_Create_EmptyName(t *testing.T) {
	svc := NewVacuumService(newFakeVacuumRepo())
	if _, err := svc.Create(context.Background(), testOwner, "   "); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestVacuumService_Rename_OwnershipEnforced(t *testing.T) {
	repo := newFakeVacuumRepo(stoppedVacuum(1, 0))
	svc := NewVacuumService(repo)

	_, err := svc.Rename(context.Background(), testOwner+1, 1, "hijacked")
	assertRejectedWith(t, err, "Access Denied: Vacuum does not belong to you")

	v, err := svc.Rename(context.Background(), testOwner, 1, "hallway")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Name != "hallway" {
		t.Fatalf("name = %q, want %q", v.Name, "hallway")
	}
	if v.Version != 1 {
		t.Fatalf("version = %d, want bumped to 1", v.Version)
	}
}

func TestVacuumService_Deactivate_OnlyWhenStopped(t *testing.T) {
	running := stoppedVacuum(1, 1)
	running.Status = models.StatusRunning
	repo := newFakeVacuumRepo(running, stoppedVacuum(2, 0))
	svc := NewVacuumService(repo)
	ctx := context.Background()

	err := svc.Deactivate(ctx, testOwner, 1)
	assertRejectedWith(t, err, "Access Denied: Can't remove a vacuum that is not stopped")

	if err := svc.Deactivate(ctx, testOwner, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.get(t, 2); got.Active {
		t.Fatalf("expected vacuum 2 deactivated")
	}
}

func TestVacuumService_Deactivate_NotFound(t *testing.T) {
	svc := NewVacuumService(newFakeVacuumRepo())
	if err := svc.Deactivate(context.Background(), testOwner, 9); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestVacuumService_Search_UnionsAndFiltersByOwner(t *testing.T) {
	now := time.Now().UTC()
	mine1 := stoppedVacuum(1, 0)
	mine1.Name = "kitchen"
	mine1.CreatedAt = now
	mine2 := stoppedVacuum(2, 0)
	mine2.Name = "garage"
	mine2.Status = models.StatusRunning
	mine2.CreatedAt = now
	foreign := stoppedVacuum(3, 0)
	foreign.Name = "kitchen neighbour"
	foreign.AddedBy = testOwner + 1
	foreign.CreatedAt = now

	repo := newFakeVacuumRepo(mine1, mine2, foreign)
	svc := NewVacuumService(repo)

	got, err := svc.Search(context.Background(), testOwner, SearchFilter{
		Name:     "kitchen",
		Statuses: []models.Status{models.StatusRunning, models.StatusStopped},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results (union, owner-filtered, de-duplicated), got %d: %+v", len(got), got)
	}
	for _, v := range got {
		if v.AddedBy != testOwner {
			t.Fatalf("foreign vacuum leaked into results: %+v", v)
		}
	}
}

func TestVacuumService_Search_DateRange(t *testing.T) {
	old := stoppedVacuum(1, 0)
	old.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := stoppedVacuum(2, 0)
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	repo := newFakeVacuumRepo(old, recent)
	svc := NewVacuumService(repo)

	got, err := svc.Search(context.Background(), testOwner, SearchFilter{
		From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only the recent vacuum, got %+v", got)
	}
}

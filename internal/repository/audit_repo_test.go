package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAuditSQLite_Append_FormatsTimestampAndUppercasesAction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewAuditSQLite(db)

	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO error_messages")).
		WithArgs("2026-03-04 05:06:07", int64(7), "START", "Access Denied: Vacuum is disabled").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Append(context.Background(), models.AuditRecord{
		OccurredAt: at,
		VacuumID:   7,
		Action:     models.Action(" start "),
		Message:    "Access Denied: Vacuum is disabled",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAuditSQLite_Append_ExecErrorIsPropagated(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewAuditSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO error_messages")).
		WillReturnError(errors.New("db down"))

	err = repo.Append(context.Background(), models.AuditRecord{VacuumID: 7, Action: models.ActionStop, Message: "x"})
	if err == nil {
		t.Fatalf("Append() expected error, got nil")
	}
}

func TestAuditSQLite_ListByVacuumIDs_EmptySetShortCircuits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewAuditSQLite(db)

	got, err := repo.ListByVacuumIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListByVacuumIDs() error = %v", err)
	}
	if got != nil {
		t.Fatalf("ListByVacuumIDs() expected nil for empty id set, got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query may run for an empty id set: %v", err)
	}
}

func TestAuditSQLite_ListByVacuumIDs_BuildsPlaceholdersAndScans(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := repository.NewAuditSQLite(db)

	cols := []string{"id", "occurred_at", "vacuum_id", "action", "message"}
	rows := sqlmock.NewRows(cols).
		AddRow(1, time.Date(2026, 3, 4, 5, 0, 0, 0, time.UTC), 7, "START", "Access Denied: Vacuum is disabled").
		AddRow(2, time.Date(2026, 3, 4, 6, 0, 0, 0, time.UTC), 9, "STOP", "Vacuum operation already in progress")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE vacuum_id IN (?,?)")).
		WithArgs(int64(7), int64(9)).
		WillReturnRows(rows)

	got, err := repo.ListByVacuumIDs(context.Background(), []int64{7, 9})
	if err != nil {
		t.Fatalf("ListByVacuumIDs() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByVacuumIDs() expected 2 records, got %d", len(got))
	}
	if got[0].VacuumID != 7 || got[0].Action != models.ActionStart {
		t.Fatalf("ListByVacuumIDs() unexpected first record: %+v", got[0])
	}
	if got[1].VacuumID != 9 || got[1].Message != "Vacuum operation already in progress" {
		t.Fatalf("ListByVacuumIDs() unexpected second record: %+v", got[1])
	}
}

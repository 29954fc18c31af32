package service

import (
	"context"
	"time"

	"controlling_vacuums/internal/logger"
	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"
)

type AuditService struct {
	auditRepo repository.AuditRepo
	vacuums   repository.VacuumRepo
	log       *logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepo, vacuums repository.VacuumRepo, log *logger.Logger) *AuditService {
	return &AuditService{auditRepo: auditRepo, vacuums: vacuums, log: log}
}

// Record appends one audit entry with a server-assigned timestamp. A
// failure to persist the record is logged but never propagated: the
// triggering rejection must still reach the caller.
func (s *AuditService) Record(ctx context.Context, vacuumID int64, action models.Action, reason string) {
	rec := models.AuditRecord{
		OccurredAt: time.Now().UTC(),
		VacuumID:   vacuumID,
		Action:     action,
		Message:    reason,
	}
	if err := s.auditRepo.Append(ctx, rec); err != nil {
		if s.log != nil {
			s.log.Errorw("audit_append_failed", "vacuum_id", vacuumID, "action", action, "reason", reason, "err", err)
		}
	}
}

// ListForUser returns audit entries for vacuums owned by the user.
func (s *AuditService) ListForUser(ctx context.Context, userID int) ([]models.AuditRecord, error) {
	owned, err := s.vacuums.FindByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(owned))
	for _, v := range owned {
		ids = append(ids, v.ID)
	}
	return s.auditRepo.ListByVacuumIDs(ctx, ids)
}

package service

import (
	"context"
	"errors"
	"strings"

	"controlling_vacuums/internal/models"
	"controlling_vacuums/internal/repository"
)

type VacuumService struct {
	vacuums repository.VacuumRepo
}

func NewVacuumService(vacuums repository.VacuumRepo) *VacuumService {
	return &VacuumService{vacuums: vacuums}
}

var errEmptyName = errors.New("vacuum name is required")

const reasonNotStopped = "Access Denied: Can't remove a vacuum that is not stopped"

// Create registers a new vacuum for the user: STOPPED, active, cycle 0.
func (s *VacuumService) Create(ctx context.Context, userID int, name string) (models.Vacuum, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Vacuum{}, errEmptyName
	}
	return s.vacuums.Create(ctx, models.Vacuum{
		Name:    name,
		Status:  models.StatusStopped,
		AddedBy: userID,
		Active:  true,
		Cycle:   0,
	})
}

func (s *VacuumService) Get(ctx context.Context, id int64) (models.Vacuum, error) {
	return s.vacuums.Load(ctx, id)
}

func (s *VacuumService) ListOwned(ctx context.Context, userID int) ([]models.Vacuum, error) {
	return s.vacuums.FindByOwner(ctx, userID)
}

// Rename updates the display name only. Status, cycle and active flag are
// owned by the transition engine and never touched here.
func (s *VacuumService) Rename(ctx context.Context, userID int, id int64, name string) (models.Vacuum, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Vacuum{}, errEmptyName
	}
	v, err := s.vacuums.Load(ctx, id)
	if err != nil {
		return models.Vacuum{}, err
	}
	if v.AddedBy != userID {
		return models.Vacuum{}, &Rejection{Reason: reasonNotOwned}
	}
	v.Name = name
	return s.vacuums.Update(ctx, v)
}

// Deactivate is the delete operation: the row stays, the active flag drops,
// and a deactivated vacuum accepts no further transitions. Only a STOPPED
// vacuum may be removed.
func (s *VacuumService) Deactivate(ctx context.Context, userID int, id int64) error {
	v, err := s.vacuums.Load(ctx, id)
	if err != nil {
		return err
	}
	if v.AddedBy != userID {
		return &Rejection{Reason: reasonNotOwned}
	}
	if v.Status != models.StatusStopped {
		return &Rejection{Reason: reasonNotStopped}
	}
	v.Active = false
	_, err = s.vacuums.Update(ctx, v)
	return err
}

// Search unions the finder results for each populated filter field and
// keeps only the caller's own vacuums.
func (s *VacuumService) Search(ctx context.Context, userID int, f SearchFilter) ([]models.Vacuum, error) {
	seen := make(map[int64]struct{})
	var out []models.Vacuum

	add := func(vs []models.Vacuum) {
		for _, v := range vs {
			if v.AddedBy != userID {
				continue
			}
			if _, dup := seen[v.ID]; dup {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		vs, err := s.vacuums.FindByNameContaining(ctx, name)
		if err != nil {
			return nil, err
		}
		add(vs)
	}
	if len(f.Statuses) > 0 {
		vs, err := s.vacuums.FindByStatuses(ctx, f.Statuses)
		if err != nil {
			return nil, err
		}
		add(vs)
	}
	if !f.From.IsZero() && !f.To.IsZero() {
		vs, err := s.vacuums.FindByCreatedBetween(ctx, f.From, f.To)
		if err != nil {
			return nil, err
		}
		add(vs)
	}

	return out, nil
}

package vehicle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, v *Vehicle) error {
	if v.Plate == "" {
		return fmt.Errorf("plate is required")
	}
	if v.Status == "" {
		v.Status = StatusDisponivel
	}
	if !ValidStatus(v.Status) {
		return fmt.Errorf("invalid status %q", v.Status)
	}
	return s.repo.Create(ctx, v)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, v *Vehicle) error {
	if v.Plate == "" {
		return fmt.Errorf("plate is required")
	}
	if !ValidStatus(v.Status) {
		return fmt.Errorf("invalid status %q", v.Status)
	}
	if _, err := s.repo.GetByID(ctx, v.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, v)
}

// UpdateStatus is the fleet-operations status change. Putting a vehicle in
// transit is reserved for the referral engine, which assigns it to a
// referral at the same time.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	if status == StatusEmTransito {
		return fmt.Errorf("status em_transito is set by vehicle assignment only")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Vehicle, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Vehicle, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

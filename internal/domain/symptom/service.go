package symptom

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

func (s *Service) validate(sym *Symptom) error {
	if sym.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sym.Category == "" {
		return fmt.Errorf("category is required")
	}
	if sym.Severity < 1 || sym.Severity > 5 {
		return fmt.Errorf("severity must be between 1 and 5")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sym *Symptom) error {
	if err := s.validate(sym); err != nil {
		return err
	}
	return s.repo.Create(ctx, sym)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Symptom, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, sym *Symptom) error {
	if err := s.validate(sym); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, sym.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, sym)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Symptom, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Symptom, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

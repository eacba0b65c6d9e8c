package facility

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	facilities FacilityRepository
	carePoints CarePointRepository
}

func NewService(facilities FacilityRepository, carePoints CarePointRepository) *Service {
	return &Service{facilities: facilities, carePoints: carePoints}
}

// -- Facility --

func (s *Service) CreateFacility(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.facilities.Create(ctx, f)
}

func (s *Service) GetFacility(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return s.facilities.GetByID(ctx, id)
}

func (s *Service) UpdateFacility(ctx context.Context, f *Facility) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := s.facilities.GetByID(ctx, f.ID); err != nil {
		return err
	}
	return s.facilities.Update(ctx, f)
}

func (s *Service) DeleteFacility(ctx context.Context, id uuid.UUID) error {
	if _, err := s.facilities.GetByID(ctx, id); err != nil {
		return err
	}
	return s.facilities.Delete(ctx, id)
}

func (s *Service) SearchFacilities(ctx context.Context, params map[string]string, limit, offset int) ([]*Facility, int, error) {
	return s.facilities.Search(ctx, params, limit, offset)
}

// -- Care Point --

func (s *Service) CreateCarePoint(ctx context.Context, cp *CarePoint) error {
	if cp.Name == "" {
		return fmt.Errorf("name is required")
	}
	if cp.FacilityID != nil {
		if _, err := s.facilities.GetByID(ctx, *cp.FacilityID); err != nil {
			return err
		}
	}
	return s.carePoints.Create(ctx, cp)
}

func (s *Service) GetCarePoint(ctx context.Context, id uuid.UUID) (*CarePoint, error) {
	return s.carePoints.GetByID(ctx, id)
}

func (s *Service) UpdateCarePoint(ctx context.Context, cp *CarePoint) error {
	if cp.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := s.carePoints.GetByID(ctx, cp.ID); err != nil {
		return err
	}
	if cp.FacilityID != nil {
		if _, err := s.facilities.GetByID(ctx, *cp.FacilityID); err != nil {
			return err
		}
	}
	return s.carePoints.Update(ctx, cp)
}

func (s *Service) DeleteCarePoint(ctx context.Context, id uuid.UUID) error {
	if _, err := s.carePoints.GetByID(ctx, id); err != nil {
		return err
	}
	return s.carePoints.Delete(ctx, id)
}

func (s *Service) SearchCarePoints(ctx context.Context, params map[string]string, limit, offset int) ([]*CarePoint, int, error) {
	return s.carePoints.Search(ctx, params, limit, offset)
}

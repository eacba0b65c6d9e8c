package facility

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("facility not found")
	ErrCarePointNotFound = errors.New("care point not found")
)

type FacilityRepository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*Facility, error)
	Update(ctx context.Context, f *Facility) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Facility, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Facility, int, error)
}

type CarePointRepository interface {
	Create(ctx context.Context, cp *CarePoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*CarePoint, error)
	Update(ctx context.Context, cp *CarePoint) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*CarePoint, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*CarePoint, int, error)
}

package vehicle

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("vehicle not found")

type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	// GetByIDForUpdate locks the vehicle row for the duration of the
	// surrounding transaction so concurrent assignments serialize.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	Update(ctx context.Context, v *Vehicle) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Vehicle, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Vehicle, int, error)
}

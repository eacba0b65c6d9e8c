package symptom

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("symptom not found")

type Repository interface {
	Create(ctx context.Context, s *Symptom) error
	GetByID(ctx context.Context, id uuid.UUID) (*Symptom, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Symptom, error)
	Update(ctx context.Context, s *Symptom) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Symptom, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Symptom, int, error)
}

package referral

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Referral) error
	GetByID(ctx context.Context, id uuid.UUID) (*Referral, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Referral, error)
	Update(ctx context.Context, r *Referral) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Referral, int, error)
	ListByTriage(ctx context.Context, triageID uuid.UUID) ([]*Referral, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Referral, int, error)
	AddStatusChange(ctx context.Context, change *StatusChange) error
	ListStatusChanges(ctx context.Context, referralID uuid.UUID) ([]*StatusChange, error)
}

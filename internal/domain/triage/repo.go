package triage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, t *Triage) error
	GetByID(ctx context.Context, id uuid.UUID) (*Triage, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Triage, error)
	Update(ctx context.Context, t *Triage) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, concludedAt *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Triage, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Triage, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Triage, int, error)
}

// ReferralSource supplies the referral summaries composed onto a triage on
// read. Implemented by the referral package and attached after construction
// to keep the dependency one-way.
type ReferralSource interface {
	SummariesByTriage(ctx context.Context, triageID uuid.UUID) ([]ReferralSummary, error)
}

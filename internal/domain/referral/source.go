package referral

import (
	"context"

	"github.com/google/uuid"

	"github.com/sivec/sivec/internal/domain/triage"
)

// Source exposes referral summaries to the triage read path.
type Source struct {
	repo Repository
}

func NewSource(repo Repository) *Source {
	return &Source{repo: repo}
}

func (s *Source) SummariesByTriage(ctx context.Context, triageID uuid.UUID) ([]triage.ReferralSummary, error) {
	refs, err := s.repo.ListByTriage(ctx, triageID)
	if err != nil {
		return nil, err
	}
	summaries := make([]triage.ReferralSummary, 0, len(refs))
	for _, ref := range refs {
		summaries = append(summaries, triage.ReferralSummary{
			ID:          ref.ID,
			Status:      ref.Status,
			Priority:    ref.Priority,
			RequestedAt: ref.RequestedAt,
		})
	}
	return summaries, nil
}

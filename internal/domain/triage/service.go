package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sivec/sivec/internal/domain/patient"
	"github.com/sivec/sivec/internal/domain/symptom"
)

type Service struct {
	repo      Repository
	symptoms  symptom.Repository
	patients  patient.Repository
	referrals ReferralSource
}

func NewService(repo Repository, symptoms symptom.Repository, patients patient.Repository) *Service {
	return &Service{repo: repo, symptoms: symptoms, patients: patients}
}

// SetReferralSource attaches the referral summary provider. Optional; without
// it triages are served without referral history.
func (s *Service) SetReferralSource(src ReferralSource) {
	s.referrals = src
}

func (s *Service) Create(ctx context.Context, t *Triage) error {
	if t.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidInput)
	}
	if _, err := s.patients.GetByID(ctx, t.PatientID); err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return fmt.Errorf("%w: patient %s not found", ErrInvalidInput, t.PatientID)
		}
		return err
	}
	if err := s.assess(ctx, t); err != nil {
		return err
	}

	// Status and conclusion are owned by the lifecycle, never by the caller.
	t.Status = StatusPendente
	t.ConcludedAt = nil
	return s.repo.Create(ctx, t)
}

// assess validates the clinical fields, denormalizes the symptom catalog data
// onto the observations and recomputes probability, urgency and
// recommendations. Used on create and on every clinical update.
func (s *Service) assess(ctx context.Context, t *Triage) error {
	if t.DehydrationIndex < 0 || t.DehydrationIndex > dehydrationMax {
		return fmt.Errorf("%w: dehydration_index must be between 0 and %v", ErrInvalidInput, dehydrationMax)
	}
	if t.Temperature != 0 && (t.Temperature < 30 || t.Temperature > 45) {
		return fmt.Errorf("%w: temperature %.1f is out of range", ErrInvalidInput, t.Temperature)
	}
	if t.HeartRate < 0 || t.RespiratoryRate < 0 {
		return fmt.Errorf("%w: vital signs cannot be negative", ErrInvalidInput)
	}

	ids := make([]uuid.UUID, 0, len(t.SymptomObservations))
	for _, obs := range t.SymptomObservations {
		if obs.Intensity < 1 || obs.Intensity > 5 {
			return fmt.Errorf("%w: symptom intensity must be between 1 and 5", ErrInvalidInput)
		}
		ids = append(ids, obs.SymptomID)
	}

	hasCholeraSpecific := false
	if len(ids) > 0 {
		catalog, err := s.symptoms.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*symptom.Symptom, len(catalog))
		for _, sym := range catalog {
			byID[sym.ID] = sym
		}
		for i := range t.SymptomObservations {
			sym, ok := byID[t.SymptomObservations[i].SymptomID]
			if !ok {
				return fmt.Errorf("%w: symptom %s not found", ErrInvalidInput, t.SymptomObservations[i].SymptomID)
			}
			t.SymptomObservations[i].Name = sym.Name
			t.SymptomObservations[i].Severity = sym.Severity
			t.SymptomObservations[i].CholeraSpecific = sym.CholeraSpecific
			if sym.CholeraSpecific {
				hasCholeraSpecific = true
			}
		}
	}

	t.CholeraProbability = Score(t.SymptomObservations, t.DehydrationIndex, t.Temperature)
	t.UrgencyLevel = Classify(t.CholeraProbability, t.DehydrationIndex, t.Temperature, t.HeartRate, t.RespiratoryRate)
	t.Recommendations = Recommend(RecommendationInput{
		Probability:        t.CholeraProbability,
		UrgencyLevel:       t.UrgencyLevel,
		DehydrationIndex:   t.DehydrationIndex,
		Temperature:        t.Temperature,
		HasCholeraSpecific: hasCholeraSpecific,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Triage, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.referrals != nil {
		history, err := s.referrals.SummariesByTriage(ctx, id)
		if err != nil {
			return nil, err
		}
		t.ReferralHistory = history
	}
	return t, nil
}

// Update replaces the clinical fields and recomputes the assessment. The
// patient link, status and conclusion time are preserved from the stored
// record; terminal triages cannot be edited.
func (s *Service) Update(ctx context.Context, t *Triage) error {
	existing, err := s.repo.GetByID(ctx, t.ID)
	if err != nil {
		return err
	}
	if IsTerminal(existing.Status) {
		return fmt.Errorf("%w: %s", ErrTerminalState, existing.Status)
	}

	t.PatientID = existing.PatientID
	t.Status = existing.Status
	t.ConcludedAt = existing.ConcludedAt
	t.CreatedAt = existing.CreatedAt

	if err := s.assess(ctx, t); err != nil {
		return err
	}
	return s.repo.Update(ctx, t)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Triage, error) {
	switch status {
	case StatusPendente, StatusEmAndamento, StatusConcluida, StatusEncaminhada:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == status {
		return existing, nil
	}
	if err := ValidateTransition(existing.Status, status); err != nil {
		return nil, err
	}

	var concludedAt *time.Time
	if status == StatusConcluida && existing.ConcludedAt == nil {
		now := time.Now().UTC()
		concludedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, concludedAt); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Triage, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Triage, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Triage, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

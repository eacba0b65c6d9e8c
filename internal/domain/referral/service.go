package referral

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sivec/sivec/internal/domain/triage"
	"github.com/sivec/sivec/internal/domain/vehicle"
	"github.com/sivec/sivec/internal/platform/db"
)

type Service struct {
	repo     Repository
	triages  triage.Repository
	vehicles vehicle.Repository
	tx       db.TxRunner
}

func NewService(repo Repository, triages triage.Repository, vehicles vehicle.Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, triages: triages, vehicles: vehicles, tx: tx}
}

// StatusUpdate is the payload of a status change request. The note and the
// estimated timestamps are applied even when the status itself is unchanged.
type StatusUpdate struct {
	Status             string     `json:"status"`
	Note               *string    `json:"note,omitempty"`
	EstimatedDeparture *time.Time `json:"estimated_departure,omitempty"`
	EstimatedArrival   *time.Time `json:"estimated_arrival,omitempty"`
}

// VehicleAssignment is the payload of a vehicle assignment request.
type VehicleAssignment struct {
	VehicleID          uuid.UUID  `json:"vehicle_id"`
	EstimatedDeparture *time.Time `json:"estimated_departure,omitempty"`
	EstimatedArrival   *time.Time `json:"estimated_arrival,omitempty"`
}

// Create opens a referral. When a triage is linked the patient comes from
// the triage and the triage is marked encaminhada; a concluded triage cannot
// be referred, and one already encaminhada keeps its status and simply gains
// another referral. Without a triage the patient must be given directly.
func (s *Service) Create(ctx context.Context, ref *Referral) error {
	if ref.TriageID == nil && ref.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required when no triage is linked", ErrInvalidInput)
	}
	if ref.Priority == "" {
		ref.Priority = PriorityMedia
	}
	if !ValidPriority(ref.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, ref.Priority)
	}
	refType, err := DeriveType(ref.OriginFacilityID, ref.OriginCarePointID, ref.DestFacilityID, ref.DestCarePointID)
	if err != nil {
		return err
	}
	if refType != "" {
		ref.ReferralType = &refType
	} else {
		ref.ReferralType = nil
	}

	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var t *triage.Triage
		if ref.TriageID != nil {
			t, err = s.triages.GetByIDForUpdate(ctx, *ref.TriageID)
			if err != nil {
				if errors.Is(err, triage.ErrNotFound) {
					return fmt.Errorf("%w: triage %s not found", ErrInvalidInput, *ref.TriageID)
				}
				return err
			}
			if t.Status == triage.StatusConcluida {
				return fmt.Errorf("%w: triage %s is already concluida", ErrInvalidTransition, t.ID)
			}
			ref.PatientID = t.PatientID
		}

		ref.Status = StatusPendente
		ref.RequestedAt = time.Now().UTC()
		if err := s.repo.Create(ctx, ref); err != nil {
			return err
		}
		if err := s.recordChange(ctx, ref.ID, nil, StatusPendente, ref.RequestedBy, nil, ref.RequestedAt); err != nil {
			return err
		}

		if t != nil && t.Status != triage.StatusEncaminhada {
			return s.triages.UpdateStatus(ctx, t.ID, triage.StatusEncaminhada, nil)
		}
		return nil
	})
}

func (s *Service) recordChange(ctx context.Context, referralID uuid.UUID, from *string, to string, by *uuid.UUID, note *string, at time.Time) error {
	return s.repo.AddStatusChange(ctx, &StatusChange{
		ReferralID: referralID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  by,
		Note:       note,
		ChangedAt:  at,
	})
}

// applyEstimates copies the estimated transport timestamps from the request
// onto the referral when they are supplied.
func applyEstimates(ref *Referral, departure, arrival *time.Time) bool {
	changed := false
	if departure != nil {
		ref.EstimatedDeparture = departure
		changed = true
	}
	if arrival != nil {
		ref.EstimatedArrival = arrival
		changed = true
	}
	return changed
}

// UpdateStatus moves a referral through its lifecycle and applies the
// coupled side effects on the linked triage and assigned vehicle. A
// same-state request changes no status and writes no history row, but the
// supplied note and estimated timestamps are still applied.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in StatusUpdate, changedBy *uuid.UUID) (*Referral, error) {
	switch in.Status {
	case StatusPendente, StatusAprovado, StatusEmTransporte, StatusConcluido, StatusCancelado:
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}

	var result *Referral
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ref, err := s.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if ref.Status == in.Status {
			changed := applyEstimates(ref, in.EstimatedDeparture, in.EstimatedArrival)
			if in.Note != nil && in.Status == StatusCancelado {
				ref.CancelReason = in.Note
				changed = true
			}
			if changed {
				if err := s.repo.Update(ctx, ref); err != nil {
					return err
				}
			}
			result = ref
			return nil
		}
		if err := ValidateTransition(ref.Status, in.Status); err != nil {
			return err
		}

		now := time.Now().UTC()
		from := ref.Status
		applyEstimates(ref, in.EstimatedDeparture, in.EstimatedArrival)
		switch in.Status {
		case StatusAprovado:
			if ref.ApprovedAt == nil {
				ref.ApprovedAt = &now
			}
		case StatusEmTransporte:
			if ref.DepartedAt == nil {
				ref.DepartedAt = &now
			}
		case StatusConcluido:
			if ref.ArrivedAt == nil {
				ref.ArrivedAt = &now
			}
			if ref.TriageID != nil {
				if err := s.triages.UpdateStatus(ctx, *ref.TriageID, triage.StatusConcluida, &now); err != nil {
					return err
				}
			}
			if err := s.releaseVehicle(ctx, ref.VehicleID); err != nil {
				return err
			}
		case StatusCancelado:
			ref.CancelReason = in.Note
			if ref.TriageID != nil {
				t, err := s.triages.GetByIDForUpdate(ctx, *ref.TriageID)
				if err != nil {
					return err
				}
				// Only a triage still parked on the referral reverts; one
				// concluded through another path keeps its state.
				if t.Status == triage.StatusEncaminhada {
					if err := s.triages.UpdateStatus(ctx, t.ID, triage.StatusEmAndamento, nil); err != nil {
						return err
					}
				}
			}
			if err := s.releaseVehicle(ctx, ref.VehicleID); err != nil {
				return err
			}
		}

		ref.Status = in.Status
		if err := s.repo.Update(ctx, ref); err != nil {
			return err
		}
		if err := s.recordChange(ctx, ref.ID, &from, in.Status, changedBy, in.Note, now); err != nil {
			return err
		}
		result = ref
		return nil
	})
	return result, err
}

func (s *Service) releaseVehicle(ctx context.Context, vehicleID *uuid.UUID) error {
	if vehicleID == nil {
		return nil
	}
	v, err := s.vehicles.GetByIDForUpdate(ctx, *vehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrNotFound) {
			return nil
		}
		return err
	}
	if v.Status != vehicle.StatusEmTransito {
		return nil
	}
	return s.vehicles.UpdateStatus(ctx, v.ID, vehicle.StatusDisponivel)
}

// AssignVehicle reserves a vehicle for the transport leg. Only disponivel
// vehicles qualify, the vehicle row is locked so concurrent assignments
// serialize, and a pendente referral auto-advances to aprovado.
func (s *Service) AssignVehicle(ctx context.Context, referralID uuid.UUID, in VehicleAssignment, changedBy *uuid.UUID) (*Referral, error) {
	var result *Referral
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ref, err := s.repo.GetByIDForUpdate(ctx, referralID)
		if err != nil {
			return err
		}
		if ref.Status != StatusPendente && ref.Status != StatusAprovado {
			if IsTerminal(ref.Status) {
				return fmt.Errorf("%w: %s", ErrTerminalState, ref.Status)
			}
			return fmt.Errorf("%w: vehicle can only be assigned while pendente or aprovado, referral is %s", ErrInvalidTransition, ref.Status)
		}
		if ref.VehicleID != nil && *ref.VehicleID == in.VehicleID {
			if applyEstimates(ref, in.EstimatedDeparture, in.EstimatedArrival) {
				if err := s.repo.Update(ctx, ref); err != nil {
					return err
				}
			}
			result = ref
			return nil
		}

		v, err := s.vehicles.GetByIDForUpdate(ctx, in.VehicleID)
		if err != nil {
			if errors.Is(err, vehicle.ErrNotFound) {
				return fmt.Errorf("%w: vehicle %s not found", ErrInvalidInput, in.VehicleID)
			}
			return err
		}
		if v.Status != vehicle.StatusDisponivel {
			return fmt.Errorf("%w: vehicle %s is %s", ErrVehicleUnavailable, v.ID, v.Status)
		}

		if err := s.releaseVehicle(ctx, ref.VehicleID); err != nil {
			return err
		}
		if err := s.vehicles.UpdateStatus(ctx, in.VehicleID, vehicle.StatusEmTransito); err != nil {
			return err
		}
		vehicleID := in.VehicleID
		ref.VehicleID = &vehicleID
		applyEstimates(ref, in.EstimatedDeparture, in.EstimatedArrival)

		now := time.Now().UTC()
		if ref.Status == StatusPendente {
			from := ref.Status
			ref.Status = StatusAprovado
			if ref.ApprovedAt == nil {
				ref.ApprovedAt = &now
			}
			if err := s.recordChange(ctx, ref.ID, &from, StatusAprovado, changedBy, nil, now); err != nil {
				return err
			}
		}
		if err := s.repo.Update(ctx, ref); err != nil {
			return err
		}
		result = ref
		return nil
	})
	return result, err
}

// Update edits the request fields of an open referral. The lifecycle
// fields and the vehicle link are owned by their own operations.
func (s *Service) Update(ctx context.Context, ref *Referral) error {
	existing, err := s.repo.GetByID(ctx, ref.ID)
	if err != nil {
		return err
	}
	if IsTerminal(existing.Status) {
		return fmt.Errorf("%w: %s", ErrTerminalState, existing.Status)
	}
	if ref.Priority == "" {
		ref.Priority = existing.Priority
	}
	if !ValidPriority(ref.Priority) {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, ref.Priority)
	}
	refType, err := DeriveType(ref.OriginFacilityID, ref.OriginCarePointID, ref.DestFacilityID, ref.DestCarePointID)
	if err != nil {
		return err
	}
	if refType != "" {
		ref.ReferralType = &refType
	} else {
		ref.ReferralType = nil
	}
	if ref.EstimatedDeparture == nil {
		ref.EstimatedDeparture = existing.EstimatedDeparture
	}
	if ref.EstimatedArrival == nil {
		ref.EstimatedArrival = existing.EstimatedArrival
	}

	ref.TriageID = existing.TriageID
	ref.PatientID = existing.PatientID
	ref.Status = existing.Status
	ref.VehicleID = existing.VehicleID
	ref.RequestedBy = existing.RequestedBy
	ref.RequestedAt = existing.RequestedAt
	ref.ApprovedAt = existing.ApprovedAt
	ref.DepartedAt = existing.DepartedAt
	ref.ArrivedAt = existing.ArrivedAt
	ref.CancelReason = existing.CancelReason
	ref.CreatedAt = existing.CreatedAt
	return s.repo.Update(ctx, ref)
}

// Delete tombstones a referral. The status history stays in place.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, id uuid.UUID) ([]*StatusChange, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListStatusChanges(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Referral, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

package referral

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Referral lifecycle statuses.
const (
	StatusPendente     = "pendente"
	StatusAprovado     = "aprovado"
	StatusEmTransporte = "em_transporte"
	StatusConcluido    = "concluido"
	StatusCancelado    = "cancelado"
)

// Priority values. media is the default when the requester gives none.
const (
	PriorityBaixa      = "baixa"
	PriorityMedia      = "media"
	PriorityAlta       = "alta"
	PriorityEmergencia = "emergencia"
)

// Referral types derived from the origin and destination legs.
const (
	TypeUnidadeParaUnidade = "unidade_para_unidade"
	TypeUnidadeParaPonto   = "unidade_para_ponto"
	TypePontoParaUnidade   = "ponto_para_unidade"
	TypePontoParaPonto     = "ponto_para_ponto"
)

var (
	ErrNotFound           = errors.New("referral not found")
	ErrInvalidInput       = errors.New("invalid referral input")
	ErrInvalidTransition  = errors.New("invalid referral status transition")
	ErrTerminalState      = errors.New("referral is in a terminal state")
	ErrVehicleUnavailable = errors.New("vehicle is not available")
)

var validTransitions = map[string][]string{
	StatusPendente:     {StatusAprovado, StatusCancelado},
	StatusAprovado:     {StatusEmTransporte, StatusCancelado},
	StatusEmTransporte: {StatusConcluido, StatusCancelado},
	StatusConcluido:    {},
	StatusCancelado:    {},
}

// IsTerminal reports whether no further transition leaves the status.
func IsTerminal(status string) bool {
	return status == StatusConcluido || status == StatusCancelado
}

// ValidateTransition checks a requested status change. Same-state requests
// are allowed and treated as no-ops by the caller.
func ValidateTransition(from, to string) error {
	if from == to {
		return nil
	}
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	for _, s := range allowed {
		if s == to {
			return nil
		}
	}
	if IsTerminal(from) {
		return fmt.Errorf("%w: %s", ErrTerminalState, from)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ValidPriority reports whether p is one of the priority values.
func ValidPriority(p string) bool {
	switch p {
	case PriorityBaixa, PriorityMedia, PriorityAlta, PriorityEmergencia:
		return true
	}
	return false
}

// DeriveType computes the referral type from the four leg fields. A leg with
// both a facility and a care point is invalid; if either leg is empty the
// type stays unset.
func DeriveType(originFacility, originCarePoint, destFacility, destCarePoint *uuid.UUID) (string, error) {
	if originFacility != nil && originCarePoint != nil {
		return "", fmt.Errorf("%w: origin cannot be both a facility and a care point", ErrInvalidInput)
	}
	if destFacility != nil && destCarePoint != nil {
		return "", fmt.Errorf("%w: destination cannot be both a facility and a care point", ErrInvalidInput)
	}
	if (originFacility == nil && originCarePoint == nil) || (destFacility == nil && destCarePoint == nil) {
		return "", nil
	}
	switch {
	case originFacility != nil && destFacility != nil:
		return TypeUnidadeParaUnidade, nil
	case originFacility != nil:
		return TypeUnidadeParaPonto, nil
	case destFacility != nil:
		return TypePontoParaUnidade, nil
	default:
		return TypePontoParaPonto, nil
	}
}

// Referral maps to the referrals table. The triage link is optional: a
// referral can be opened directly for a patient without a triage.
type Referral struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	TriageID           *uuid.UUID `db:"triage_id" json:"triage_id,omitempty"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	OriginFacilityID   *uuid.UUID `db:"origin_facility_id" json:"origin_facility_id,omitempty"`
	OriginCarePointID  *uuid.UUID `db:"origin_care_point_id" json:"origin_care_point_id,omitempty"`
	DestFacilityID     *uuid.UUID `db:"dest_facility_id" json:"dest_facility_id,omitempty"`
	DestCarePointID    *uuid.UUID `db:"dest_care_point_id" json:"dest_care_point_id,omitempty"`
	ReferralType       *string    `db:"referral_type" json:"referral_type,omitempty"`
	Status             string     `db:"status" json:"status"`
	Priority           string     `db:"priority" json:"priority"`
	Reason             *string    `db:"reason" json:"reason,omitempty"`
	VehicleID          *uuid.UUID `db:"vehicle_id" json:"vehicle_id,omitempty"`
	EstimatedDeparture *time.Time `db:"estimated_departure" json:"estimated_departure,omitempty"`
	EstimatedArrival   *time.Time `db:"estimated_arrival" json:"estimated_arrival,omitempty"`
	RequestedBy        *uuid.UUID `db:"requested_by" json:"requested_by,omitempty"`
	RequestedAt        time.Time  `db:"requested_at" json:"requested_at"`
	ApprovedAt         *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	DepartedAt         *time.Time `db:"departed_at" json:"departed_at,omitempty"`
	ArrivedAt          *time.Time `db:"arrived_at" json:"arrived_at,omitempty"`
	CancelReason       *string    `db:"cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
}

// StatusChange is one row of the referral audit trail.
type StatusChange struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ReferralID uuid.UUID  `db:"referral_id" json:"referral_id"`
	FromStatus *string    `db:"from_status" json:"from_status,omitempty"`
	ToStatus   string     `db:"to_status" json:"to_status"`
	ChangedBy  *uuid.UUID `db:"changed_by" json:"changed_by,omitempty"`
	Note       *string    `db:"note" json:"note,omitempty"`
	ChangedAt  time.Time  `db:"changed_at" json:"changed_at"`
}

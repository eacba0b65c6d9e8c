package triage

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Triage lifecycle statuses. A triage reaches encaminhada only through
// referral creation and concluida either by direct conclusion or when the
// linked referral completes.
const (
	StatusPendente    = "pendente"
	StatusEmAndamento = "em_andamento"
	StatusConcluida   = "concluida"
	StatusEncaminhada = "encaminhada"
)

// Urgency levels in ascending clinical priority.
const (
	UrgencyBaixo   = "baixo"
	UrgencyMedio   = "medio"
	UrgencyAlto    = "alto"
	UrgencyCritico = "critico"
)

var (
	ErrNotFound          = errors.New("triage not found")
	ErrInvalidInput      = errors.New("invalid triage input")
	ErrInvalidTransition = errors.New("invalid triage status transition")
	ErrTerminalState     = errors.New("triage is in a terminal state")
)

// validTransitions holds the direct status transitions a caller may request.
// encaminhada is deliberately absent: it is only entered as a side effect of
// referral creation.
var validTransitions = map[string][]string{
	StatusPendente:    {StatusEmAndamento, StatusConcluida},
	StatusEmAndamento: {StatusConcluida},
	StatusConcluida:   {},
	StatusEncaminhada: {},
}

// IsTerminal reports whether no further transition leaves the status.
func IsTerminal(status string) bool {
	return status == StatusConcluida || status == StatusEncaminhada
}

// ValidateTransition checks a requested direct status change. Same-state
// requests are allowed and treated as no-ops by the caller.
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

// SymptomObservation is one reported symptom intensity for an encounter,
// stored in the triage_symptoms join table. Name, severity and
// cholera-specificity are denormalized from the catalog on load.
type SymptomObservation struct {
	SymptomID       uuid.UUID `db:"symptom_id" json:"symptom_id"`
	Intensity       int       `db:"intensity" json:"intensity"`
	Name            string    `db:"name" json:"name,omitempty"`
	Severity        int       `db:"severity" json:"severity,omitempty"`
	CholeraSpecific bool      `db:"cholera_specific" json:"cholera_specific,omitempty"`
}

// ReferralSummary is the compact view of a referral raised from a triage,
// composed onto the triage record on read.
type ReferralSummary struct {
	ID          uuid.UUID `json:"id"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	RequestedAt time.Time `json:"requested_at"`
}

// Triage maps to the triages table.
type Triage struct {
	ID                 uuid.UUID            `db:"id" json:"id"`
	PatientID          uuid.UUID            `db:"patient_id" json:"patient_id"`
	FacilityID         *uuid.UUID           `db:"facility_id" json:"facility_id,omitempty"`
	CarePointID        *uuid.UUID           `db:"care_point_id" json:"care_point_id,omitempty"`
	ClinicianID        *uuid.UUID           `db:"clinician_id" json:"clinician_id,omitempty"`
	Status             string               `db:"status" json:"status"`
	UrgencyLevel       string               `db:"urgency_level" json:"urgency_level"`
	SymptomObservations []SymptomObservation `json:"symptom_observations"`
	DehydrationIndex   float64              `db:"dehydration_index" json:"dehydration_index"`
	Temperature        float64              `db:"temperature" json:"temperature"`
	HeartRate          int                  `db:"heart_rate" json:"heart_rate"`
	RespiratoryRate    int                  `db:"respiratory_rate" json:"respiratory_rate"`
	CholeraProbability float64              `db:"cholera_probability" json:"cholera_probability"`
	Recommendations    []string             `db:"recommendations" json:"recommendations"`
	Observations       *string              `db:"observations" json:"observations,omitempty"`
	ReferralHistory    []ReferralSummary    `json:"referral_history,omitempty"`
	SymptomOnsetAt     *time.Time           `db:"symptom_onset_at" json:"symptom_onset_at,omitempty"`
	ConcludedAt        *time.Time           `db:"concluded_at" json:"concluded_at,omitempty"`
	CreatedAt          time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time            `db:"updated_at" json:"updated_at"`
	DeletedAt          *time.Time           `db:"deleted_at" json:"-"`
}

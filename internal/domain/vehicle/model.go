package vehicle

import (
	"time"

	"github.com/google/uuid"
)

// Fleet status values. The referral engine is the only writer of the
// disponivel -> em_transito transition; every other change comes from
// fleet operations.
const (
	StatusDisponivel   = "disponivel"
	StatusEmTransito   = "em_transito"
	StatusEmManutencao = "em_manutencao"
	StatusIndisponivel = "indisponivel"
)

// Vehicle maps to the vehicles table.
type Vehicle struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Plate           string     `db:"plate" json:"plate"`
	Type            *string    `db:"type" json:"type,omitempty"`
	Status          string     `db:"status" json:"status"`
	PatientCapacity *int       `db:"patient_capacity" json:"patient_capacity,omitempty"`
	FacilityID      *uuid.UUID `db:"facility_id" json:"facility_id,omitempty"`
	Note            *string    `db:"note" json:"note,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidStatus reports whether s is one of the fleet status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusDisponivel, StatusEmTransito, StatusEmManutencao, StatusIndisponivel:
		return true
	}
	return false
}

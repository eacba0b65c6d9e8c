package facility

import (
	"time"

	"github.com/google/uuid"
)

// Facility maps to the facilities table: a full health unit that can
// originate or receive patient referrals.
type Facility struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Type        *string    `db:"type" json:"type,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	District    *string    `db:"district" json:"district,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	BedCapacity *int       `db:"bed_capacity" json:"bed_capacity,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

// CarePoint maps to the care_points table: a smaller emergency care
// location distinct from a full facility. Readiness is an operational
// tier reported by field coordinators; the referral engine stores it
// but does not act on it.
type CarePoint struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	FacilityID *uuid.UUID `db:"facility_id" json:"facility_id,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	District   *string    `db:"district" json:"district,omitempty"`
	Readiness  *string    `db:"readiness" json:"readiness,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"-"`
}

package symptom

import (
	"time"

	"github.com/google/uuid"
)

// Symptom maps to the symptoms table. Reference data for the risk scorer:
// severity is the clinical base weight (1-5) and cholera_specific marks the
// symptoms that double their weight in the cholera probability blend.
type Symptom struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Name            string     `db:"name" json:"name"`
	Category        string     `db:"category" json:"category"`
	Severity        int        `db:"severity" json:"severity"`
	CholeraSpecific bool       `db:"cholera_specific" json:"cholera_specific"`
	Description     *string    `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at" json:"-"`
}

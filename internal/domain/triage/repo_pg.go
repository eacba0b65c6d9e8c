package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sivec/sivec/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const triageCols = `id, patient_id, facility_id, care_point_id, clinician_id, status, urgency_level,
	dehydration_index, temperature, heart_rate, respiratory_rate, cholera_probability,
	recommendations, observations, symptom_onset_at, concluded_at, created_at, updated_at, deleted_at`

func (r *repoPG) scan(row pgx.Row) (*Triage, error) {
	var t Triage
	err := row.Scan(&t.ID, &t.PatientID, &t.FacilityID, &t.CarePointID, &t.ClinicianID,
		&t.Status, &t.UrgencyLevel, &t.DehydrationIndex, &t.Temperature, &t.HeartRate,
		&t.RespiratoryRate, &t.CholeraProbability, &t.Recommendations, &t.Observations,
		&t.SymptomOnsetAt, &t.ConcludedAt, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &t, err
}

// loadObservations fills the symptom rows for one triage, joining the
// catalog for the denormalized name, severity and specificity.
func (r *repoPG) loadObservations(ctx context.Context, t *Triage) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT ts.symptom_id, ts.intensity, s.name, s.severity, s.cholera_specific
		FROM triage_symptoms ts
		JOIN symptoms s ON s.id = ts.symptom_id
		WHERE ts.triage_id = $1
		ORDER BY s.name`, t.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var obs SymptomObservation
		if err := rows.Scan(&obs.SymptomID, &obs.Intensity, &obs.Name, &obs.Severity, &obs.CholeraSpecific); err != nil {
			return err
		}
		t.SymptomObservations = append(t.SymptomObservations, obs)
	}
	return rows.Err()
}

func (r *repoPG) saveObservations(ctx context.Context, t *Triage) error {
	if _, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM triage_symptoms WHERE triage_id = $1`, t.ID); err != nil {
		return err
	}
	for _, obs := range t.SymptomObservations {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO triage_symptoms (triage_id, symptom_id, intensity)
			VALUES ($1,$2,$3)`,
			t.ID, obs.SymptomID, obs.Intensity); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) Create(ctx context.Context, t *Triage) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO triages (id, patient_id, facility_id, care_point_id, clinician_id, status,
			urgency_level, dehydration_index, temperature, heart_rate, respiratory_rate,
			cholera_probability, recommendations, observations, symptom_onset_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		t.ID, t.PatientID, t.FacilityID, t.CarePointID, t.ClinicianID, t.Status,
		t.UrgencyLevel, t.DehydrationIndex, t.Temperature, t.HeartRate, t.RespiratoryRate,
		t.CholeraProbability, t.Recommendations, t.Observations, t.SymptomOnsetAt)
	if err != nil {
		return err
	}
	return r.saveObservations(ctx, t)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Triage, error) {
	t, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triages WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadObservations(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Triage, error) {
	t, err := r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triages WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadObservations(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) Update(ctx context.Context, t *Triage) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE triages SET facility_id=$2, care_point_id=$3, clinician_id=$4, status=$5,
			urgency_level=$6, dehydration_index=$7, temperature=$8, heart_rate=$9,
			respiratory_rate=$10, cholera_probability=$11, recommendations=$12,
			observations=$13, symptom_onset_at=$14, concluded_at=$15, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		t.ID, t.FacilityID, t.CarePointID, t.ClinicianID, t.Status, t.UrgencyLevel,
		t.DehydrationIndex, t.Temperature, t.HeartRate, t.RespiratoryRate,
		t.CholeraProbability, t.Recommendations, t.Observations, t.SymptomOnsetAt, t.ConcludedAt)
	if err != nil {
		return err
	}
	return r.saveObservations(ctx, t)
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, concludedAt *time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE triages SET status=$2, concluded_at=COALESCE(concluded_at, $3), updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		id, status, concludedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE triages SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Triage, int, error) {
	return r.Search(ctx, nil, limit, offset)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Triage, int, error) {
	return r.Search(ctx, map[string]string{"patient_id": patientID.String()}, limit, offset)
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Triage, int, error) {
	query := `SELECT ` + triageCols + ` FROM triages WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM triages WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	for _, key := range []string{"patient_id", "facility_id", "care_point_id", "status", "urgency_level"} {
		if p, ok := params[key]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, key, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, key, idx)
			args = append(args, p)
			idx++
		}
	}
	if p, ok := params["min_probability"]; ok {
		query += fmt.Sprintf(` AND cholera_probability >= $%d`, idx)
		countQuery += fmt.Sprintf(` AND cholera_probability >= $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Triage
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, t := range items {
		if err := r.loadObservations(ctx, t); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

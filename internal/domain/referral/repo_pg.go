package referral

import (
	"context"
	"errors"
	"fmt"

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

const referralCols = `id, triage_id, patient_id, origin_facility_id, origin_care_point_id,
	dest_facility_id, dest_care_point_id, referral_type, status, priority, reason, vehicle_id,
	estimated_departure, estimated_arrival, requested_by, requested_at, approved_at,
	departed_at, arrived_at, cancel_reason, created_at, updated_at, deleted_at`

func (r *repoPG) scan(row pgx.Row) (*Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.TriageID, &ref.PatientID, &ref.OriginFacilityID,
		&ref.OriginCarePointID, &ref.DestFacilityID, &ref.DestCarePointID, &ref.ReferralType,
		&ref.Status, &ref.Priority, &ref.Reason, &ref.VehicleID, &ref.EstimatedDeparture,
		&ref.EstimatedArrival, &ref.RequestedBy, &ref.RequestedAt, &ref.ApprovedAt,
		&ref.DepartedAt, &ref.ArrivedAt, &ref.CancelReason, &ref.CreatedAt, &ref.UpdatedAt,
		&ref.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &ref, err
}

func (r *repoPG) Create(ctx context.Context, ref *Referral) error {
	ref.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referrals (id, triage_id, patient_id, origin_facility_id, origin_care_point_id,
			dest_facility_id, dest_care_point_id, referral_type, status, priority, reason,
			vehicle_id, estimated_departure, estimated_arrival, requested_by, requested_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		ref.ID, ref.TriageID, ref.PatientID, ref.OriginFacilityID, ref.OriginCarePointID,
		ref.DestFacilityID, ref.DestCarePointID, ref.ReferralType, ref.Status, ref.Priority,
		ref.Reason, ref.VehicleID, ref.EstimatedDeparture, ref.EstimatedArrival,
		ref.RequestedBy, ref.RequestedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+referralCols+` FROM referrals WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+referralCols+` FROM referrals WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, ref *Referral) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE referrals SET origin_facility_id=$2, origin_care_point_id=$3, dest_facility_id=$4,
			dest_care_point_id=$5, referral_type=$6, status=$7, priority=$8, reason=$9,
			vehicle_id=$10, estimated_departure=$11, estimated_arrival=$12, approved_at=$13,
			departed_at=$14, arrived_at=$15, cancel_reason=$16, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		ref.ID, ref.OriginFacilityID, ref.OriginCarePointID, ref.DestFacilityID,
		ref.DestCarePointID, ref.ReferralType, ref.Status, ref.Priority, ref.Reason,
		ref.VehicleID, ref.EstimatedDeparture, ref.EstimatedArrival, ref.ApprovedAt,
		ref.DepartedAt, ref.ArrivedAt, ref.CancelReason)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE referrals SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Referral, int, error) {
	return r.Search(ctx, nil, limit, offset)
}

func (r *repoPG) ListByTriage(ctx context.Context, triageID uuid.UUID) ([]*Referral, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+referralCols+` FROM referrals WHERE triage_id = $1 AND deleted_at IS NULL ORDER BY requested_at`, triageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Referral
	for rows.Next() {
		ref, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, ref)
	}
	return items, rows.Err()
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Referral, int, error) {
	query := `SELECT ` + referralCols + ` FROM referrals WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM referrals WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	for _, key := range []string{"triage_id", "patient_id", "status", "priority", "vehicle_id", "dest_facility_id"} {
		if p, ok := params[key]; ok {
			query += fmt.Sprintf(` AND %s = $%d`, key, idx)
			countQuery += fmt.Sprintf(` AND %s = $%d`, key, idx)
			args = append(args, p)
			idx++
		}
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Referral
	for rows.Next() {
		ref, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, ref)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AddStatusChange(ctx context.Context, change *StatusChange) error {
	change.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO referral_status_history (id, referral_id, from_status, to_status, changed_by, note, changed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		change.ID, change.ReferralID, change.FromStatus, change.ToStatus,
		change.ChangedBy, change.Note, change.ChangedAt)
	return err
}

func (r *repoPG) ListStatusChanges(ctx context.Context, referralID uuid.UUID) ([]*StatusChange, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, referral_id, from_status, to_status, changed_by, note, changed_at
		FROM referral_status_history WHERE referral_id = $1 ORDER BY changed_at`, referralID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.ReferralID, &c.FromStatus, &c.ToStatus, &c.ChangedBy, &c.Note, &c.ChangedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

package vehicle

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

const vehicleCols = `id, plate, type, status, patient_capacity, facility_id, note, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Vehicle, error) {
	var v Vehicle
	err := row.Scan(&v.ID, &v.Plate, &v.Type, &v.Status, &v.PatientCapacity,
		&v.FacilityID, &v.Note, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *Vehicle) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vehicles (id, plate, type, status, patient_capacity, facility_id, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		v.ID, v.Plate, v.Type, v.Status, v.PatientCapacity, v.FacilityID, v.Note)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE id = $1`, id))
}

func (r *repoPG) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+vehicleCols+` FROM vehicles WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Update(ctx context.Context, v *Vehicle) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vehicles SET plate=$2, type=$3, status=$4, patient_capacity=$5,
			facility_id=$6, note=$7, updated_at=NOW()
		WHERE id = $1`,
		v.ID, v.Plate, v.Type, v.Status, v.PatientCapacity, v.FacilityID, v.Note)
	return err
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE vehicles SET status=$2, updated_at=NOW() WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Vehicle, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM vehicles`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vehicleCols+` FROM vehicles ORDER BY plate LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Vehicle
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Vehicle, int, error) {
	query := `SELECT ` + vehicleCols + ` FROM vehicles WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM vehicles WHERE 1=1`
	var args []interface{}
	idx := 1

	if p, ok := params["status"]; ok {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["type"]; ok {
		query += fmt.Sprintf(` AND type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND type = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["facility_id"]; ok {
		query += fmt.Sprintf(` AND facility_id = $%d`, idx)
		countQuery += fmt.Sprintf(` AND facility_id = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY plate LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Vehicle
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, v)
	}
	return items, total, nil
}

package facility

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

// =========== Facility Repository ===========

type facilityRepoPG struct{ pool *pgxpool.Pool }

func NewFacilityRepoPG(pool *pgxpool.Pool) FacilityRepository { return &facilityRepoPG{pool: pool} }

func (r *facilityRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const facilityCols = `id, name, type, address, district, phone, bed_capacity, created_at, updated_at, deleted_at`

func (r *facilityRepoPG) scan(row pgx.Row) (*Facility, error) {
	var f Facility
	err := row.Scan(&f.ID, &f.Name, &f.Type, &f.Address, &f.District, &f.Phone,
		&f.BedCapacity, &f.CreatedAt, &f.UpdatedAt, &f.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *facilityRepoPG) Create(ctx context.Context, f *Facility) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO facilities (id, name, type, address, district, phone, bed_capacity)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		f.ID, f.Name, f.Type, f.Address, f.District, f.Phone, f.BedCapacity)
	return err
}

func (r *facilityRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Facility, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *facilityRepoPG) Update(ctx context.Context, f *Facility) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE facilities SET name=$2, type=$3, address=$4, district=$5, phone=$6,
			bed_capacity=$7, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		f.ID, f.Name, f.Type, f.Address, f.District, f.Phone, f.BedCapacity)
	return err
}

func (r *facilityRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE facilities SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *facilityRepoPG) List(ctx context.Context, limit, offset int) ([]*Facility, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM facilities WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+facilityCols+` FROM facilities WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Facility
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

func (r *facilityRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Facility, int, error) {
	query := `SELECT ` + facilityCols + ` FROM facilities WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM facilities WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["district"]; ok {
		query += fmt.Sprintf(` AND district = $%d`, idx)
		countQuery += fmt.Sprintf(` AND district = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["type"]; ok {
		query += fmt.Sprintf(` AND type = $%d`, idx)
		countQuery += fmt.Sprintf(` AND type = $%d`, idx)
		args = append(args, p)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Facility
	for rows.Next() {
		f, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, nil
}

// =========== Care Point Repository ===========

type carePointRepoPG struct{ pool *pgxpool.Pool }

func NewCarePointRepoPG(pool *pgxpool.Pool) CarePointRepository { return &carePointRepoPG{pool: pool} }

func (r *carePointRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const carePointCols = `id, name, facility_id, address, district, readiness, created_at, updated_at, deleted_at`

func (r *carePointRepoPG) scan(row pgx.Row) (*CarePoint, error) {
	var cp CarePoint
	err := row.Scan(&cp.ID, &cp.Name, &cp.FacilityID, &cp.Address, &cp.District,
		&cp.Readiness, &cp.CreatedAt, &cp.UpdatedAt, &cp.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCarePointNotFound
	}
	return &cp, err
}

func (r *carePointRepoPG) Create(ctx context.Context, cp *CarePoint) error {
	cp.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO care_points (id, name, facility_id, address, district, readiness)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		cp.ID, cp.Name, cp.FacilityID, cp.Address, cp.District, cp.Readiness)
	return err
}

func (r *carePointRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*CarePoint, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+carePointCols+` FROM care_points WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *carePointRepoPG) Update(ctx context.Context, cp *CarePoint) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE care_points SET name=$2, facility_id=$3, address=$4, district=$5,
			readiness=$6, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		cp.ID, cp.Name, cp.FacilityID, cp.Address, cp.District, cp.Readiness)
	return err
}

func (r *carePointRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE care_points SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *carePointRepoPG) List(ctx context.Context, limit, offset int) ([]*CarePoint, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM care_points WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+carePointCols+` FROM care_points WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CarePoint
	for rows.Next() {
		cp, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cp)
	}
	return items, total, nil
}

func (r *carePointRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*CarePoint, int, error) {
	query := `SELECT ` + carePointCols + ` FROM care_points WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM care_points WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
		idx++
	}
	if p, ok := params["district"]; ok {
		query += fmt.Sprintf(` AND district = $%d`, idx)
		countQuery += fmt.Sprintf(` AND district = $%d`, idx)
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

	query += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CarePoint
	for rows.Next() {
		cp, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, cp)
	}
	return items, total, nil
}

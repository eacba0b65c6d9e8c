package symptom

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

const symptomCols = `id, name, category, severity, cholera_specific, description, created_at, updated_at, deleted_at`

func (r *repoPG) scan(row pgx.Row) (*Symptom, error) {
	var s Symptom
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Severity, &s.CholeraSpecific,
		&s.Description, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Symptom) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO symptoms (id, name, category, severity, cholera_specific, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.Name, s.Category, s.Severity, s.CholeraSpecific, s.Description)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Symptom, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+symptomCols+` FROM symptoms WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (r *repoPG) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Symptom, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+symptomCols+` FROM symptoms WHERE id = ANY($1) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Symptom
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, s *Symptom) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE symptoms SET name=$2, category=$3, severity=$4, cholera_specific=$5,
			description=$6, updated_at=NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		s.ID, s.Name, s.Category, s.Severity, s.CholeraSpecific, s.Description)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE symptoms SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Symptom, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM symptoms WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+symptomCols+` FROM symptoms WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Symptom
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Symptom, int, error) {
	query := `SELECT ` + symptomCols + ` FROM symptoms WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM symptoms WHERE deleted_at IS NULL`
	var args []interface{}
	idx := 1

	if p, ok := params["category"]; ok {
		query += fmt.Sprintf(` AND category = $%d`, idx)
		countQuery += fmt.Sprintf(` AND category = $%d`, idx)
		args = append(args, p)
		idx++
	}
	if p, ok := params["cholera_specific"]; ok {
		query += fmt.Sprintf(` AND cholera_specific = $%d`, idx)
		countQuery += fmt.Sprintf(` AND cholera_specific = $%d`, idx)
		args = append(args, p == "true")
		idx++
	}
	if p, ok := params["name"]; ok {
		query += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		countQuery += fmt.Sprintf(` AND name ILIKE $%d`, idx)
		args = append(args, "%"+p+"%")
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
	var items []*Symptom
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

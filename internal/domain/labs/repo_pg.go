package labs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rangeOverrideRepoPG struct{ pool *pgxpool.Pool }

func NewRangeOverrideRepoPG(pool *pgxpool.Pool) RangeOverrideRepository {
	return &rangeOverrideRepoPG{pool: pool}
}

const overrideCols = `id, order_code, facility, min_value, max_value, created_at, updated_at`

func scanOverride(row pgx.Row) (*RangeOverride, error) {
	var ov RangeOverride
	err := row.Scan(&ov.ID, &ov.OrderCode, &ov.Facility, &ov.Min, &ov.Max, &ov.CreatedAt, &ov.UpdatedAt)
	return &ov, err
}

func (r *rangeOverrideRepoPG) List(ctx context.Context) ([]*RangeOverride, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+overrideCols+` FROM range_override ORDER BY order_code, facility`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RangeOverride
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	return out, rows.Err()
}

func (r *rangeOverrideRepoPG) ListPage(ctx context.Context, limit, offset int) ([]*RangeOverride, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM range_override`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+overrideCols+` FROM range_override ORDER BY order_code, facility LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*RangeOverride
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, ov)
	}
	return out, total, rows.Err()
}

func (r *rangeOverrideRepoPG) Get(ctx context.Context, orderCode, facility string) (*RangeOverride, error) {
	return scanOverride(r.pool.QueryRow(ctx,
		`SELECT `+overrideCols+` FROM range_override WHERE order_code = $1 AND facility = $2`,
		orderCode, facility))
}

func (r *rangeOverrideRepoPG) Upsert(ctx context.Context, ov *RangeOverride) error {
	if ov.ID == uuid.Nil {
		ov.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO range_override (id, order_code, facility, min_value, max_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_code, facility)
		DO UPDATE SET min_value = $4, max_value = $5, updated_at = NOW()`,
		ov.ID, ov.OrderCode, ov.Facility, ov.Min, ov.Max)
	return err
}

func (r *rangeOverrideRepoPG) Delete(ctx context.Context, orderCode, facility string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM range_override WHERE order_code = $1 AND facility = $2`,
		orderCode, facility)
	return err
}

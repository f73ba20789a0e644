package format

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type templateRepoPG struct{ pool *pgxpool.Pool }

func NewTemplateRepoPG(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepoPG{pool: pool}
}

const templateCols = `id, kind, template, created_at, updated_at`

func scanTemplate(row pgx.Row) (*StoredTemplate, error) {
	var st StoredTemplate
	var raw []byte
	if err := row.Scan(&st.ID, &st.Kind, &raw, &st.CreatedAt, &st.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &st.Template); err != nil {
		return nil, fmt.Errorf("decode stored template %s: %w", st.ID, err)
	}
	return &st, nil
}

func (r *templateRepoPG) GetByKind(ctx context.Context, kind TemplateKind) (*StoredTemplate, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateCols+` FROM format_template WHERE kind = $1`, kind))
}

func (r *templateRepoPG) List(ctx context.Context) ([]*StoredTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateCols+` FROM format_template ORDER BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StoredTemplate
	for rows.Next() {
		st, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (r *templateRepoPG) Save(ctx context.Context, st *StoredTemplate) error {
	if st.ID == uuid.Nil {
		st.ID = uuid.New()
	}
	raw, err := json.Marshal(st.Template)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO format_template (id, kind, template)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind)
		DO UPDATE SET template = $3, updated_at = NOW()`,
		st.ID, st.Kind, raw)
	return err
}

func (r *templateRepoPG) Delete(ctx context.Context, kind TemplateKind) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM format_template WHERE kind = $1`, kind)
	return err
}

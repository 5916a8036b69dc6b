package cfops

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, companyID int64) ([]CFOP, error)
	Get(ctx context.Context, companyID, id int64) (CFOP, error)
	Create(ctx context.Context, cfop CFOP) (CFOP, error)
	Update(ctx context.Context, cfop CFOP) error
	Delete(ctx context.Context, companyID, id int64) error
	CountUsage(ctx context.Context, id int64) (Usage, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, companyID int64) ([]CFOP, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, company_id, code, description
		FROM cfops WHERE company_id = $1 ORDER BY code
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CFOP
	for rows.Next() {
		var c CFOP
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Code, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (CFOP, error) {
	var c CFOP
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, code, description
		FROM cfops WHERE company_id = $1 AND id = $2
	`, companyID, id).Scan(&c.ID, &c.CompanyID, &c.Code, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return CFOP{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, cfop CFOP) (CFOP, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO cfops (company_id, code, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`, cfop.CompanyID, cfop.Code, cfop.Description).Scan(&cfop.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return CFOP{}, httpx.ErrDuplicate
		}
		return CFOP{}, err
	}
	return cfop, nil
}

func (r *repository) Update(ctx context.Context, cfop CFOP) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE cfops SET code = $1, description = $2
		WHERE company_id = $3 AND id = $4
	`, cfop.Code, cfop.Description, cfop.CompanyID, cfop.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, companyID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cfops WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CountUsage(ctx context.Context, id int64) (Usage, error) {
	var usage Usage
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM accumulators WHERE cfop_id = $1),
			(SELECT COUNT(*) FROM products p
			 JOIN accumulators a ON a.id = p.accumulator_id
			 WHERE a.cfop_id = $1)
	`, id).Scan(&usage.Accumulators, &usage.Products)
	return usage, err
}

package accumulators

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, companyID int64) ([]Accumulator, error)
	Get(ctx context.Context, companyID, id int64) (Accumulator, error)
	Create(ctx context.Context, acc Accumulator) (Accumulator, error)
	Update(ctx context.Context, acc Accumulator) error
	Delete(ctx context.Context, companyID, id int64) error
	CFOPExists(ctx context.Context, companyID, cfopID int64) (bool, error)
	CountProducts(ctx context.Context, id int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const listQuery = `
	SELECT a.id, a.company_id, a.code, a.description, a.cfop_id, c.code,
	       (SELECT COUNT(*) FROM products p WHERE p.accumulator_id = a.id)
	FROM accumulators a
	JOIN cfops c ON c.id = a.cfop_id
	WHERE a.company_id = $1`

func (r *repository) List(ctx context.Context, companyID int64) ([]Accumulator, error) {
	rows, err := r.pool.Query(ctx, listQuery+` ORDER BY a.code`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Accumulator
	for rows.Next() {
		var a Accumulator
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Description, &a.CFOPID, &a.CFOPCode, &a.Products); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Accumulator, error) {
	var a Accumulator
	err := r.pool.QueryRow(ctx, listQuery+` AND a.id = $2`, companyID, id).
		Scan(&a.ID, &a.CompanyID, &a.Code, &a.Description, &a.CFOPID, &a.CFOPCode, &a.Products)
	if errors.Is(err, pgx.ErrNoRows) {
		return Accumulator{}, httpx.ErrNotFound
	}
	return a, err
}

func (r *repository) Create(ctx context.Context, acc Accumulator) (Accumulator, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accumulators (company_id, code, description, cfop_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, acc.CompanyID, acc.Code, acc.Description, acc.CFOPID).Scan(&acc.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Accumulator{}, httpx.ErrDuplicate
		}
		return Accumulator{}, err
	}
	return acc, nil
}

func (r *repository) Update(ctx context.Context, acc Accumulator) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accumulators SET code = $1, description = $2, cfop_id = $3
		WHERE company_id = $4 AND id = $5
	`, acc.Code, acc.Description, acc.CFOPID, acc.CompanyID, acc.ID)
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
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM accumulators WHERE company_id = $1 AND id = $2
	`, companyID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) CFOPExists(ctx context.Context, companyID, cfopID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM cfops WHERE company_id = $1 AND id = $2)
	`, companyID, cfopID).Scan(&exists)
	return exists, err
}

func (r *repository) CountProducts(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM products WHERE accumulator_id = $1
	`, id).Scan(&count)
	return count, err
}

package products

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbook/fiscalbook/internal/masterdata/shared"
	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, companyID int64, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, companyID, id int64) (Product, error)
	AccumulatorExists(ctx context.Context, companyID, accumulatorID int64) (bool, error)
	Assign(ctx context.Context, companyID int64, productIDs []int64, accumulatorID int64) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `
	p.id, p.company_id, p.code, p.description, p.unit, p.ncm,
	p.accumulator_id, COALESCE(a.code, '')`

func (r *repository) List(ctx context.Context, companyID int64, filters shared.ListFilters) ([]Product, int, error) {
	where := ` FROM products p
		LEFT JOIN accumulators a ON a.id = p.accumulator_id
		WHERE p.company_id = $1`
	args := []interface{}{companyID}
	argPos := 1

	if filters.Classified != nil {
		if *filters.Classified {
			where += ` AND p.accumulator_id IS NOT NULL`
		} else {
			where += ` AND p.accumulator_id IS NULL`
		}
	}
	if filters.Search != "" {
		argPos++
		pos := strconv.Itoa(argPos)
		where += ` AND (p.code ILIKE $` + pos + ` OR p.description ILIKE $` + pos + ` OR p.ncm ILIKE $` + pos + `)`
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argPos++
	limitPos := strconv.Itoa(argPos)
	argPos++
	offsetPos := strconv.Itoa(argPos)
	query := `SELECT ` + productColumns + where +
		` ORDER BY p.code LIMIT $` + limitPos + ` OFFSET $` + offsetPos
	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Description, &p.Unit, &p.NCM,
			&p.AccumulatorID, &p.AccumulatorCode); err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		LEFT JOIN accumulators a ON a.id = p.accumulator_id
		WHERE p.company_id = $1 AND p.id = $2
	`, companyID, id).Scan(&p.ID, &p.CompanyID, &p.Code, &p.Description, &p.Unit, &p.NCM,
		&p.AccumulatorID, &p.AccumulatorCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) AccumulatorExists(ctx context.Context, companyID, accumulatorID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM accumulators WHERE company_id = $1 AND id = $2)
	`, companyID, accumulatorID).Scan(&exists)
	return exists, err
}

// Assign updates the accumulator of the given products and reports how many
// rows actually changed. Products outside the company are ignored.
func (r *repository) Assign(ctx context.Context, companyID int64, productIDs []int64, accumulatorID int64) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products SET accumulator_id = $1
		WHERE company_id = $2 AND id = ANY($3)
	`, accumulatorID, companyID, productIDs)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

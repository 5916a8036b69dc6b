package classify

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CompanyIDs(ctx context.Context) ([]int64, error)
	Classified(ctx context.Context, companyID int64) ([]Candidate, error)
	Unclassified(ctx context.Context, companyID int64) ([]Unclassified, error)
	ReplaceSuggestions(ctx context.Context, companyID int64, suggestions []Suggestion) error
	Suggestions(ctx context.Context, companyID int64) ([]Suggestion, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM companies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repository) Classified(ctx context.Context, companyID int64) ([]Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.code, p.description, p.ncm, a.id, a.code
		FROM products p
		JOIN accumulators a ON a.id = p.accumulator_id
		WHERE p.company_id = $1
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ProductID, &c.Code, &c.Description, &c.NCM, &c.AccumulatorID, &c.AccumulatorCode); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Unclassified(ctx context.Context, companyID int64) ([]Unclassified, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, description, ncm
		FROM products
		WHERE company_id = $1 AND accumulator_id IS NULL
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Unclassified
	for rows.Next() {
		var u Unclassified
		if err := rows.Scan(&u.ProductID, &u.Code, &u.Description, &u.NCM); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// ReplaceSuggestions swaps the stored suggestion set for the company so a
// rerun never leaves stale rows behind.
func (r *repository) ReplaceSuggestions(ctx context.Context, companyID int64, suggestions []Suggestion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM classification_suggestions WHERE company_id = $1`, companyID); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, s := range suggestions {
		batch.Queue(`
			INSERT INTO classification_suggestions
				(company_id, product_id, accumulator_id, confidence, matched_product)
			VALUES ($1, $2, $3, $4, $5)
		`, companyID, s.ProductID, s.AccumulatorID, s.Confidence, s.MatchedProduct)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repository) Suggestions(ctx context.Context, companyID int64) ([]Suggestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.product_id, p.code, p.description, s.accumulator_id, a.code,
		       s.confidence, s.matched_product, s.created_at
		FROM classification_suggestions s
		JOIN products p ON p.id = s.product_id
		JOIN accumulators a ON a.id = s.accumulator_id
		WHERE s.company_id = $1
		ORDER BY s.confidence DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ProductID, &s.ProductCode, &s.Description, &s.AccumulatorID,
			&s.AccumulatorCode, &s.Confidence, &s.MatchedProduct, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

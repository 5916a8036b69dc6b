package report

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads persisted sales joined with their classification chain.
type Repository interface {
	CountUnclassifiedProducts(ctx context.Context, companyID int64) (int, error)
	SaleRows(ctx context.Context, companyID int64, competency string) ([]SaleRow, error)
	SaleRowsForProductDocuments(ctx context.Context, companyID, productID int64, competency string) ([]SaleRow, error)
	DocumentTotals(ctx context.Context, companyID int64, competency string) ([]DocumentTotalRow, error)
	Competencies(ctx context.Context, companyID int64) ([]string, error)
	Statistics(ctx context.Context, companyID int64) (Statistics, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository builds the pgx-backed report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) CountUnclassifiedProducts(ctx context.Context, companyID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM products
		WHERE company_id = $1 AND accumulator_id IS NULL
	`, companyID).Scan(&count)
	return count, err
}

const saleRowsBase = `
	SELECT si.id, fd.id, fd.doc_number, fd.series, si.sale_date,
	       fd.total_value, fd.payment_kind,
	       p.id, p.code, p.description,
	       a.id, COALESCE(a.code, ''), COALESCE(a.description, ''),
	       COALESCE(c.code, ''),
	       si.quantity, si.net_value
	FROM sale_items si
	JOIN fiscal_documents fd ON fd.id = si.document_id
	JOIN products p ON p.id = si.product_id
	LEFT JOIN accumulators a ON a.id = p.accumulator_id
	LEFT JOIN cfops c ON c.id = a.cfop_id
	WHERE fd.company_id = $1`

func (r *repository) SaleRows(ctx context.Context, companyID int64, competency string) ([]SaleRow, error) {
	query := saleRowsBase
	args := []interface{}{companyID}
	if competency != "" {
		query += ` AND to_char(si.sale_date, 'YYYY-MM') = $2`
		args = append(args, competency)
	}
	query += ` ORDER BY fd.doc_number, fd.series, p.code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSaleRows(rows)
}

// SaleRowsForProductDocuments returns every item of every document that
// contains the given product. Apportionment needs full documents; filtering
// to the product happens after allocation.
func (r *repository) SaleRowsForProductDocuments(ctx context.Context, companyID, productID int64, competency string) ([]SaleRow, error) {
	query := saleRowsBase + `
	AND fd.id IN (SELECT document_id FROM sale_items WHERE product_id = $2)`
	args := []interface{}{companyID, productID}
	if competency != "" {
		query += ` AND to_char(si.sale_date, 'YYYY-MM') = $3`
		args = append(args, competency)
	}
	query += ` ORDER BY fd.doc_number, fd.series, p.code`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSaleRows(rows)
}

func scanSaleRows(rows pgx.Rows) ([]SaleRow, error) {
	var out []SaleRow
	for rows.Next() {
		var row SaleRow
		if err := rows.Scan(
			&row.ItemID, &row.DocumentID, &row.DocNumber, &row.Series, &row.Date,
			&row.DocumentTotal, &row.PaymentKind,
			&row.ProductID, &row.ProductCode, &row.ProductDesc,
			&row.AccumulatorID, &row.AccumulatorCode, &row.AccumulatorDesc,
			&row.CFOPCode,
			&row.Quantity, &row.NetValue,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) DocumentTotals(ctx context.Context, companyID int64, competency string) ([]DocumentTotalRow, error) {
	query := `
		SELECT issue_date, total_value, payment_kind
		FROM fiscal_documents
		WHERE company_id = $1`
	args := []interface{}{companyID}
	if competency != "" {
		query += ` AND to_char(issue_date, 'YYYY-MM') = $2`
		args = append(args, competency)
	}
	query += ` ORDER BY issue_date`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentTotalRow
	for rows.Next() {
		var row DocumentTotalRow
		if err := rows.Scan(&row.Date, &row.Total, &row.PaymentKind); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) Competencies(ctx context.Context, companyID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT to_char(issue_date, 'YYYY-MM') AS competency
		FROM fiscal_documents
		WHERE company_id = $1
		ORDER BY competency DESC
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var competency string
		if err := rows.Scan(&competency); err != nil {
			return nil, err
		}
		out = append(out, competency)
	}
	return out, rows.Err()
}

func (r *repository) Statistics(ctx context.Context, companyID int64) (Statistics, error) {
	var stats Statistics
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products WHERE company_id = $1),
			(SELECT COUNT(*) FROM products WHERE company_id = $1 AND accumulator_id IS NULL),
			(SELECT COUNT(*) FROM fiscal_documents WHERE company_id = $1),
			(SELECT COUNT(*) FROM sale_items si
			 JOIN fiscal_documents fd ON fd.id = si.document_id
			 WHERE fd.company_id = $1)
	`, companyID).Scan(&stats.Products, &stats.Unclassified, &stats.Documents, &stats.SaleItems)
	return stats, err
}

package sped

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbook/fiscalbook/internal/platform/db"
)

// insertChunkSize bounds how many rows go into one batched statement so a
// large file never produces a statement with an unbounded bind list.
const insertChunkSize = 500

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewRepository builds the pgx-backed import repository.
func NewRepository(pool *pgxpool.Pool) RepositoryPort {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		repoTx := &repository{db: tx, pool: r.pool, tx: tx}
		return fn(ctx, repoTx)
	})
}

func (r *repository) GetCompany(ctx context.Context, id int64) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `
		SELECT id, cnpj, name, state, state_registration
		FROM companies WHERE id = $1
	`, id).Scan(&c.ID, &c.CNPJ, &c.Name, &c.State, &c.StateRegistration)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, fmt.Errorf("company %d: %w", id, pgx.ErrNoRows)
	}
	return c, err
}

// EnsureCompany resolves the company by CNPJ, creating it if absent. The
// insert runs inside a savepoint so a unique violation from a concurrent
// creator does not abort the surrounding transaction; the winner's row is
// then re-read.
func (r *repository) EnsureCompany(ctx context.Context, company Company) (Company, error) {
	existing, err := r.getCompanyByCNPJ(ctx, company.CNPJ)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Company{}, err
	}

	if r.tx == nil {
		return Company{}, errors.New("sped: EnsureCompany requires a transaction")
	}
	sp, err := r.tx.Begin(ctx)
	if err != nil {
		return Company{}, err
	}
	err = sp.QueryRow(ctx, `
		INSERT INTO companies (cnpj, name, state, state_registration)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, company.CNPJ, company.Name, company.State, company.StateRegistration).Scan(&company.ID)
	if err != nil {
		_ = sp.Rollback(ctx)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return r.getCompanyByCNPJ(ctx, company.CNPJ)
		}
		return Company{}, err
	}
	if err := sp.Commit(ctx); err != nil {
		return Company{}, err
	}
	return company, nil
}

func (r *repository) getCompanyByCNPJ(ctx context.Context, cnpj string) (Company, error) {
	var c Company
	err := r.db.QueryRow(ctx, `
		SELECT id, cnpj, name, state, state_registration
		FROM companies WHERE cnpj = $1
	`, cnpj).Scan(&c.ID, &c.CNPJ, &c.Name, &c.State, &c.StateRegistration)
	return c, err
}

func (r *repository) Counts(ctx context.Context, companyID int64) (EntityCounts, error) {
	var counts EntityCounts
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM fiscal_documents WHERE company_id = $1),
			(SELECT COUNT(*) FROM products WHERE company_id = $1),
			(SELECT COUNT(*) FROM sale_items si
			 JOIN fiscal_documents fd ON fd.id = si.document_id
			 WHERE fd.company_id = $1)
	`, companyID).Scan(&counts.Documents, &counts.Products, &counts.Items)
	return counts, err
}

func (r *repository) InsertProducts(ctx context.Context, companyID int64, products []RawProduct) error {
	for lo := 0; lo < len(products); lo += insertChunkSize {
		batch := &pgx.Batch{}
		for _, p := range products[lo:min(lo+insertChunkSize, len(products))] {
			batch.Queue(`
				INSERT INTO products (company_id, code, description, unit, ncm)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (company_id, code) DO NOTHING
			`, companyID, p.Code, p.Description, p.Unit, p.NCM)
		}
		if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) InsertDocuments(ctx context.Context, companyID int64, docs []RawDocument) error {
	for lo := 0; lo < len(docs); lo += insertChunkSize {
		batch := &pgx.Batch{}
		for _, d := range docs[lo:min(lo+insertChunkSize, len(docs))] {
			batch.Queue(`
				INSERT INTO fiscal_documents
					(company_id, doc_number, series, issue_date, total_value, operation_kind, payment_kind)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (company_id, doc_number, series) DO NOTHING
			`, companyID, d.Number, d.Series, d.Date, d.Total, d.Operation, d.PaymentKind)
		}
		if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ProductIDsByCode(ctx context.Context, companyID int64) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code FROM products WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var code string
		if err := rows.Scan(&id, &code); err != nil {
			return nil, err
		}
		ids[code] = id
	}
	return ids, rows.Err()
}

func (r *repository) DocumentIDsByKey(ctx context.Context, companyID int64) (map[DocKey]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, doc_number, series FROM fiscal_documents WHERE company_id = $1
	`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[DocKey]int64)
	for rows.Next() {
		var id int64
		var key DocKey
		if err := rows.Scan(&id, &key.Number, &key.Series); err != nil {
			return nil, err
		}
		ids[key] = id
	}
	return ids, rows.Err()
}

func (r *repository) InsertSaleItems(ctx context.Context, items []SaleItemRow) error {
	for lo := 0; lo < len(items); lo += insertChunkSize {
		batch := &pgx.Batch{}
		for _, it := range items[lo:min(lo+insertChunkSize, len(items))] {
			batch.Queue(`
				INSERT INTO sale_items
					(document_id, product_id, sale_date, quantity, unit_value, net_value,
					 discount, icms_base, icms_value, icms_rate, imported_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (document_id, product_id) DO NOTHING
			`, it.DocumentID, it.ProductID, it.Date, it.Quantity, it.UnitValue, it.NetValue,
				it.Discount, it.ICMSBase, it.ICMSValue, it.ICMSRate, it.ImportedAt)
		}
		if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
			return err
		}
	}
	return nil
}

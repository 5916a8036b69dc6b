package companies

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	GetByCNPJ(ctx context.Context, cnpj string) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, cnpj, name, state, state_registration, created_at`

func (r *repository) List(ctx context.Context) ([]Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.CNPJ, &c.Name, &c.State, &c.StateRegistration, &c.CreatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

func (r *repository) GetByCNPJ(ctx context.Context, cnpj string) (Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE cnpj = $1`, cnpj))
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (cnpj, name, state, state_registration)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, company.CNPJ, company.Name, company.State, company.StateRegistration).
		Scan(&company.ID, &company.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Company{}, httpx.ErrDuplicate
		}
		return Company{}, err
	}
	return company, nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.ID, &c.CNPJ, &c.Name, &c.State, &c.StateRegistration, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, httpx.ErrNotFound
	}
	return c, err
}

package companies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type fakeRepository struct {
	nextID    int64
	companies map[string]Company
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1, companies: map[string]Company{}}
}

func (f *fakeRepository) List(ctx context.Context) ([]Company, error) {
	var out []Company
	for _, c := range f.companies {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeRepository) Get(ctx context.Context, id int64) (Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return Company{}, httpx.ErrNotFound
}

func (f *fakeRepository) GetByCNPJ(ctx context.Context, cnpj string) (Company, error) {
	c, ok := f.companies[cnpj]
	if !ok {
		return Company{}, httpx.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepository) Create(ctx context.Context, company Company) (Company, error) {
	if _, ok := f.companies[company.CNPJ]; ok {
		return Company{}, httpx.ErrDuplicate
	}
	company.ID = f.nextID
	f.nextID++
	f.companies[company.CNPJ] = company
	return company, nil
}

func TestCreateNormalizesCNPJ(t *testing.T) {
	svc := NewService(newFakeRepository())

	company, err := svc.Create(context.Background(), CreateCompanyRequest{
		CNPJ: "11.222.333/0001-81",
		Name: "Empresa Exemplo LTDA",
	})
	require.NoError(t, err)
	require.Equal(t, "11222333000181", company.CNPJ)
}

func TestCreateRejectsShortCNPJ(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Create(context.Background(), CreateCompanyRequest{
		CNPJ: "112223330001",
		Name: "Empresa Exemplo LTDA",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsDuplicateCNPJ(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateCompanyRequest{
		CNPJ: "11222333000181",
		Name: "Empresa Exemplo LTDA",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateCompanyRequest{
		CNPJ: "11.222.333/0001-81",
		Name: "Outra Empresa",
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

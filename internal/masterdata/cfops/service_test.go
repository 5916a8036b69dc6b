package cfops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type fakeRepository struct {
	cfops   map[int64]CFOP
	usage   map[int64]Usage
	deleted []int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{cfops: make(map[int64]CFOP), usage: make(map[int64]Usage)}
}

func (f *fakeRepository) List(_ context.Context, companyID int64) ([]CFOP, error) {
	var out []CFOP
	for _, c := range f.cfops {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepository) Get(_ context.Context, companyID, id int64) (CFOP, error) {
	c, ok := f.cfops[id]
	if !ok || c.CompanyID != companyID {
		return CFOP{}, httpx.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepository) Create(_ context.Context, cfop CFOP) (CFOP, error) {
	cfop.ID = int64(len(f.cfops) + 1)
	f.cfops[cfop.ID] = cfop
	return cfop, nil
}

func (f *fakeRepository) Update(_ context.Context, cfop CFOP) error {
	f.cfops[cfop.ID] = cfop
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, _, id int64) error {
	delete(f.cfops, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepository) CountUsage(_ context.Context, id int64) (Usage, error) {
	return f.usage[id], nil
}

func TestCreateValidatesCode(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "9102", Description: "Venda fora"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "510", Description: "Venda"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	cfop, err := svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "5102", Description: "Venda de mercadoria"})
	require.NoError(t, err)
	require.Equal(t, "5102", cfop.Code)
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	cfop, err := svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "5102", Description: "Venda de mercadoria"})
	require.NoError(t, err)
	repo.usage[cfop.ID] = Usage{Accumulators: 2, Products: 7}

	err = svc.Delete(context.Background(), 1, cfop.ID)
	require.ErrorIs(t, err, httpx.ErrInUse)
	require.Contains(t, err.Error(), "2 accumulators")
	require.Empty(t, repo.deleted)

	repo.usage[cfop.ID] = Usage{}
	require.NoError(t, svc.Delete(context.Background(), 1, cfop.ID))
	require.Equal(t, []int64{cfop.ID}, repo.deleted)
}

func TestUpdateCodeBlockedWhileReferenced(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	cfop, err := svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "5102", Description: "Venda de mercadoria"})
	require.NoError(t, err)
	repo.usage[cfop.ID] = Usage{Accumulators: 1}

	_, err = svc.Update(context.Background(), 1, cfop.ID, UpsertCFOPRequest{Code: "6102", Description: "Venda interestadual"})
	require.ErrorIs(t, err, httpx.ErrInUse)

	// Description-only changes stay allowed.
	updated, err := svc.Update(context.Background(), 1, cfop.ID, UpsertCFOPRequest{Code: "5102", Description: "Venda no estado"})
	require.NoError(t, err)
	require.Equal(t, "Venda no estado", updated.Description)
}

func TestOperationsScopedToCompany(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	cfop, err := svc.Create(context.Background(), 1, UpsertCFOPRequest{Code: "5102", Description: "Venda de mercadoria"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, cfop.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	err = svc.Delete(context.Background(), 2, cfop.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

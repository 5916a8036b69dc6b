package accumulators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

type fakeRepository struct {
	accumulators map[int64]Accumulator
	cfops        map[int64]bool
	products     map[int64]int
	deleted      []int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		accumulators: make(map[int64]Accumulator),
		cfops:        make(map[int64]bool),
		products:     make(map[int64]int),
	}
}

func (f *fakeRepository) List(_ context.Context, companyID int64) ([]Accumulator, error) {
	var out []Accumulator
	for _, a := range f.accumulators {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeRepository) Get(_ context.Context, companyID, id int64) (Accumulator, error) {
	a, ok := f.accumulators[id]
	if !ok || a.CompanyID != companyID {
		return Accumulator{}, httpx.ErrNotFound
	}
	return a, nil
}

func (f *fakeRepository) Create(_ context.Context, acc Accumulator) (Accumulator, error) {
	acc.ID = int64(len(f.accumulators) + 1)
	f.accumulators[acc.ID] = acc
	return acc, nil
}

func (f *fakeRepository) Update(_ context.Context, acc Accumulator) error {
	f.accumulators[acc.ID] = acc
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, _, id int64) error {
	delete(f.accumulators, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeRepository) CFOPExists(_ context.Context, _, cfopID int64) (bool, error) {
	return f.cfops[cfopID], nil
}

func (f *fakeRepository) CountProducts(_ context.Context, id int64) (int, error) {
	return f.products[id], nil
}

func TestCreateRequiresExistingCFOP(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, UpsertAccumulatorRequest{
		Code: "VENDA", Description: "Vendas internas", CFOPID: 9,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, err.Error(), "cfop 9")

	repo.cfops[9] = true
	acc, err := svc.Create(context.Background(), 1, UpsertAccumulatorRequest{
		Code: "VENDA", Description: "Vendas internas", CFOPID: 9,
	})
	require.NoError(t, err)
	require.Equal(t, "VENDA", acc.Code)
}

func TestCreateValidatesCode(t *testing.T) {
	repo := newFakeRepository()
	repo.cfops[9] = true
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, UpsertAccumulatorRequest{
		Code: "venda!", Description: "Vendas internas", CFOPID: 9,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDeleteBlockedWhileProductsAssigned(t *testing.T) {
	repo := newFakeRepository()
	repo.cfops[9] = true
	svc := NewService(repo)

	acc, err := svc.Create(context.Background(), 1, UpsertAccumulatorRequest{
		Code: "VENDA", Description: "Vendas internas", CFOPID: 9,
	})
	require.NoError(t, err)
	repo.products[acc.ID] = 12

	err = svc.Delete(context.Background(), 1, acc.ID)
	require.ErrorIs(t, err, httpx.ErrInUse)
	require.Contains(t, err.Error(), "12 products")
	require.Empty(t, repo.deleted)

	repo.products[acc.ID] = 0
	require.NoError(t, svc.Delete(context.Background(), 1, acc.ID))
}

package sped

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	nextID    int64
	companies []Company
	products  map[int64]map[string]int64
	documents map[int64]map[DocKey]int64
	items     map[int64]map[[2]int64]SaleItemRow
	itemOwner map[int64]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[int64]map[string]int64),
		documents: make(map[int64]map[DocKey]int64),
		items:     make(map[int64]map[[2]int64]SaleItemRow),
		itemOwner: make(map[int64]int64),
	}
}

func (s *fakeStore) seedCompany(c Company) Company {
	s.nextID++
	c.ID = s.nextID
	s.companies = append(s.companies, c)
	return c
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, s)
}

func (s *fakeStore) GetCompany(_ context.Context, id int64) (Company, error) {
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return Company{}, errors.New("company not found")
}

func (s *fakeStore) EnsureCompany(_ context.Context, company Company) (Company, error) {
	for _, c := range s.companies {
		if c.CNPJ == company.CNPJ {
			return c, nil
		}
	}
	return s.seedCompany(company), nil
}

func (s *fakeStore) Counts(_ context.Context, companyID int64) (EntityCounts, error) {
	return EntityCounts{
		Documents: len(s.documents[companyID]),
		Products:  len(s.products[companyID]),
		Items:     len(s.items[companyID]),
	}, nil
}

func (s *fakeStore) InsertProducts(_ context.Context, companyID int64, products []RawProduct) error {
	if s.products[companyID] == nil {
		s.products[companyID] = make(map[string]int64)
	}
	for _, p := range products {
		if _, ok := s.products[companyID][p.Code]; ok {
			continue
		}
		s.nextID++
		s.products[companyID][p.Code] = s.nextID
	}
	return nil
}

func (s *fakeStore) InsertDocuments(_ context.Context, companyID int64, docs []RawDocument) error {
	if s.documents[companyID] == nil {
		s.documents[companyID] = make(map[DocKey]int64)
	}
	for _, d := range docs {
		key := DocKey{Number: d.Number, Series: d.Series}
		if _, ok := s.documents[companyID][key]; ok {
			continue
		}
		s.nextID++
		s.documents[companyID][key] = s.nextID
		s.itemOwner[s.nextID] = companyID
	}
	return nil
}

func (s *fakeStore) ProductIDsByCode(_ context.Context, companyID int64) (map[string]int64, error) {
	out := make(map[string]int64, len(s.products[companyID]))
	for code, id := range s.products[companyID] {
		out[code] = id
	}
	return out, nil
}

func (s *fakeStore) DocumentIDsByKey(_ context.Context, companyID int64) (map[DocKey]int64, error) {
	out := make(map[DocKey]int64, len(s.documents[companyID]))
	for key, id := range s.documents[companyID] {
		out[key] = id
	}
	return out, nil
}

func (s *fakeStore) InsertSaleItems(_ context.Context, rows []SaleItemRow) error {
	for _, row := range rows {
		companyID := s.itemOwner[row.DocumentID]
		if s.items[companyID] == nil {
			s.items[companyID] = make(map[[2]int64]SaleItemRow)
		}
		key := [2]int64{row.DocumentID, row.ProductID}
		if _, ok := s.items[companyID][key]; ok {
			continue
		}
		s.items[companyID][key] = row
	}
	return nil
}

type fakeCache struct{ bumps int }

func (c *fakeCache) Bump(context.Context) error {
	c.bumps++
	return nil
}

func newTestImporter(store *fakeStore, cache *fakeCache) *Importer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewImporter(store, cache, logger)
}

func TestImportIsIdempotent(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	acme := store.seedCompany(Company{CNPJ: "11222333000181", Name: "ACME"})
	importer := newTestImporter(store, cache)

	first, err := importer.Import(context.Background(), ImportInput{
		Filename:          "mar.txt",
		Reader:            strings.NewReader(sampleFile),
		SelectedCompanyID: acme.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.BatchID)
	require.Equal(t, acme.ID, first.CompanyID)
	require.Equal(t, 1, first.NewDocuments)
	require.Equal(t, 2, first.NewProducts)
	require.Equal(t, 2, first.NewItems)
	require.Equal(t, 1, cache.bumps)

	second, err := importer.Import(context.Background(), ImportInput{
		Filename:          "mar.txt",
		Reader:            strings.NewReader(sampleFile),
		SelectedCompanyID: acme.ID,
	})
	require.NoError(t, err)
	require.Zero(t, second.NewDocuments)
	require.Zero(t, second.NewProducts)
	require.Zero(t, second.NewItems)
	require.NotEqual(t, first.BatchID, second.BatchID)
}

func TestImportDuplicateItemKeepsLastOccurrence(t *testing.T) {
	file := `|0000|017|0|01032024|31032024|ACME|11222333000181||SP|IE|
|0200|A|PRODUTO A|||UN||73181500|
|C100|1|0|PART|55|00|1|100|CHAVE|10032024|10032024|121,00|0|
|C170|1|A||2,000|UN|50,00|0,00|
|C170|2|A||4,000|UN|80,00|0,00|
`
	store := newFakeStore()
	acme := store.seedCompany(Company{CNPJ: "11222333000181", Name: "ACME"})
	importer := newTestImporter(store, &fakeCache{})

	summary, err := importer.Import(context.Background(), ImportInput{
		Reader:            strings.NewReader(file),
		SelectedCompanyID: acme.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.NewItems)

	require.Len(t, store.items[acme.ID], 1)
	for _, row := range store.items[acme.ID] {
		require.InDelta(t, 4.0, row.Quantity, 1e-9)
		require.InDelta(t, 80.0, row.NetValue, 1e-9)
	}
}

func TestImportRejectsCompanyMismatch(t *testing.T) {
	store := newFakeStore()
	other := store.seedCompany(Company{CNPJ: "99888777000166", Name: "OUTRA"})
	importer := newTestImporter(store, &fakeCache{})

	_, err := importer.Import(context.Background(), ImportInput{
		Reader:            strings.NewReader(sampleFile),
		SelectedCompanyID: other.ID,
	})
	var mismatch *CompanyMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, "99888777000166", mismatch.Selected.CNPJ)
	require.Equal(t, "11222333000181", mismatch.InFile.CNPJ)
}

func TestImportRejectsMissingHeaderTaxID(t *testing.T) {
	file := `|C100|1|0|PART|55|00|1|100|CHAVE|10032024|10032024|121,00|0|
|C170|1|A||2,000|UN|50,00|0,00|
`
	importer := newTestImporter(newFakeStore(), &fakeCache{})
	_, err := importer.Import(context.Background(), ImportInput{Reader: strings.NewReader(file)})
	require.ErrorIs(t, err, ErrMissingCompany)
}

func TestImportRejectsFileWithoutDocuments(t *testing.T) {
	file := `|0000|017|0|01032024|31032024|ACME|11222333000181||SP|IE|
|0200|A|PRODUTO A|||UN||73181500|
`
	store := newFakeStore()
	cache := &fakeCache{}
	importer := newTestImporter(store, cache)

	_, err := importer.Import(context.Background(), ImportInput{Reader: strings.NewReader(file)})
	require.ErrorIs(t, err, ErrNothingToImport)
	require.Empty(t, store.companies)
	require.Zero(t, cache.bumps)
}

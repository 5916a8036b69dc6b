package sped

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// EntityCounts snapshots row counts for one company, taken before and after
// the batch inserts to report how many rows the import actually added.
type EntityCounts struct {
	Documents int
	Products  int
	Items     int
}

// SaleItemRow is a sale item with natural keys already resolved to surrogate
// database IDs.
type SaleItemRow struct {
	DocumentID int64
	ProductID  int64
	Date       time.Time
	Quantity   float64
	UnitValue  float64
	NetValue   float64
	Discount   float64
	ICMSBase   float64
	ICMSValue  float64
	ICMSRate   float64
	ImportedAt time.Time
}

// DocKey is the natural key of a fiscal document within a company.
type DocKey struct {
	Number string
	Series string
}

// TxRepository exposes the loader operations that run inside the import
// transaction.
type TxRepository interface {
	// EnsureCompany resolves or creates the company by normalized CNPJ.
	// Creation races are resolved by re-reading the winning row.
	EnsureCompany(ctx context.Context, company Company) (Company, error)
	Counts(ctx context.Context, companyID int64) (EntityCounts, error)
	InsertProducts(ctx context.Context, companyID int64, products []RawProduct) error
	InsertDocuments(ctx context.Context, companyID int64, docs []RawDocument) error
	ProductIDsByCode(ctx context.Context, companyID int64) (map[string]int64, error)
	DocumentIDsByKey(ctx context.Context, companyID int64) (map[DocKey]int64, error)
	InsertSaleItems(ctx context.Context, rows []SaleItemRow) error
}

// RepositoryPort abstracts the persistence side of the importer.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetCompany(ctx context.Context, id int64) (Company, error)
}

// CachePort invalidates report caches after a successful import.
type CachePort interface {
	Bump(ctx context.Context) error
}

// Importer runs the full ingestion pipeline: parse, dedup, bulk load.
type Importer struct {
	repo   RepositoryPort
	cache  CachePort
	logger *slog.Logger
	now    func() time.Time
}

// NewImporter builds an Importer. cache may be nil.
func NewImporter(repo RepositoryPort, cache CachePort, logger *slog.Logger) *Importer {
	return &Importer{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// ImportInput describes one import request.
type ImportInput struct {
	Filename string
	Reader   io.Reader
	// SelectedCompanyID cross-checks the file against the caller's selected
	// company; zero skips the check.
	SelectedCompanyID int64
}

// Import processes one SPED file end to end. All writes happen in a single
// transaction; any failure rolls back completely.
func (im *Importer) Import(ctx context.Context, input ImportInput) (ImportSummary, error) {
	batchID := uuid.NewString()
	logger := im.logger.With(slog.String("batch_id", batchID), slog.String("filename", input.Filename))
	logger.Info("starting sped import")

	parsed, err := Parse(input.Reader)
	if err != nil {
		return ImportSummary{}, err
	}
	for _, warning := range parsed.Warnings {
		logger.Warn("sped parse issue", slog.String("detail", warning))
	}

	if parsed.Header == nil || shared.NormalizeCNPJ(parsed.Header.CNPJ) == "" {
		return ImportSummary{}, ErrMissingCompany
	}

	products := DedupProducts(parsed.Products)
	documents := DedupDocuments(parsed.Documents)
	items := DedupItems(parsed.Items)

	if len(documents) == 0 && len(items) == 0 {
		return ImportSummary{}, ErrNothingToImport
	}

	fileCompany := Company{
		CNPJ:              shared.NormalizeCNPJ(parsed.Header.CNPJ),
		Name:              parsed.Header.Name,
		State:             parsed.Header.State,
		StateRegistration: parsed.Header.StateRegistration,
	}

	var summary ImportSummary
	err = im.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		company, err := tx.EnsureCompany(ctx, fileCompany)
		if err != nil {
			return fmt.Errorf("sped: ensure company: %w", err)
		}

		if input.SelectedCompanyID != 0 && company.ID != input.SelectedCompanyID {
			selected, err := im.repo.GetCompany(ctx, input.SelectedCompanyID)
			if err != nil {
				return fmt.Errorf("sped: load selected company: %w", err)
			}
			return &CompanyMismatchError{Selected: selected, InFile: company}
		}

		before, err := tx.Counts(ctx, company.ID)
		if err != nil {
			return fmt.Errorf("sped: count before import: %w", err)
		}

		if err := tx.InsertProducts(ctx, company.ID, products); err != nil {
			return fmt.Errorf("sped: insert products: %w", err)
		}
		if err := tx.InsertDocuments(ctx, company.ID, documents); err != nil {
			return fmt.Errorf("sped: insert documents: %w", err)
		}

		// Bulk insert-or-ignore does not return generated keys, so resolve
		// surrogate IDs with a second read before writing dependents.
		productIDs, err := tx.ProductIDsByCode(ctx, company.ID)
		if err != nil {
			return fmt.Errorf("sped: resolve product ids: %w", err)
		}
		documentIDs, err := tx.DocumentIDsByKey(ctx, company.ID)
		if err != nil {
			return fmt.Errorf("sped: resolve document ids: %w", err)
		}

		rows := im.resolveItems(items, productIDs, documentIDs, logger)
		if err := tx.InsertSaleItems(ctx, rows); err != nil {
			return fmt.Errorf("sped: insert sale items: %w", err)
		}

		after, err := tx.Counts(ctx, company.ID)
		if err != nil {
			return fmt.Errorf("sped: count after import: %w", err)
		}

		summary = ImportSummary{
			BatchID:      batchID,
			CompanyID:    company.ID,
			CompanyName:  company.Name,
			NewDocuments: after.Documents - before.Documents,
			NewProducts:  after.Products - before.Products,
			NewItems:     after.Items - before.Items,
			Warnings:     len(parsed.Warnings),
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}

	if im.cache != nil {
		if err := im.cache.Bump(ctx); err != nil {
			logger.Warn("bump report cache", slog.Any("error", err))
		}
	}

	logger.Info("sped import finished",
		slog.Int("new_documents", summary.NewDocuments),
		slog.Int("new_products", summary.NewProducts),
		slog.Int("new_items", summary.NewItems),
		slog.Int("warnings", summary.Warnings))
	return summary, nil
}

// resolveItems substitutes natural keys with surrogate IDs. Items whose
// document or product did not resolve cannot be persisted and are dropped;
// this should not happen after the preceding inserts succeeded.
func (im *Importer) resolveItems(items []RawSaleItem, productIDs map[string]int64, documentIDs map[DocKey]int64, logger *slog.Logger) []SaleItemRow {
	importedAt := im.now()
	rows := make([]SaleItemRow, 0, len(items))
	for _, item := range items {
		docID, okDoc := documentIDs[DocKey{Number: item.DocNumber, Series: item.Series}]
		productID, okProduct := productIDs[item.ItemCode]
		if !okDoc || !okProduct {
			logger.Warn("sale item skipped: unresolved reference",
				slog.String("document", item.DocNumber),
				slog.String("series", item.Series),
				slog.String("item_code", item.ItemCode))
			continue
		}
		rows = append(rows, SaleItemRow{
			DocumentID: docID,
			ProductID:  productID,
			Date:       item.Date,
			Quantity:   item.Quantity,
			UnitValue:  item.UnitValue,
			NetValue:   item.NetValue,
			Discount:   item.Discount,
			ICMSBase:   item.ICMSBase,
			ICMSValue:  item.ICMSValue,
			ICMSRate:   item.ICMSRate,
			ImportedAt: importedAt,
		})
	}
	return rows
}

package products

import (
	"context"
	"fmt"
	"log/slog"

	mdshared "github.com/fiscalbook/fiscalbook/internal/masterdata/shared"
	"github.com/fiscalbook/fiscalbook/internal/platform/cache"
	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// Service lists products and manages accumulator assignment. Reassignment
// changes every report, so the report cache version is bumped after each
// successful write.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) List(ctx context.Context, companyID int64, filters mdshared.ListFilters) ([]Product, shared.Pagination, error) {
	filters.Page, filters.PerPage = shared.ClampPagination(filters.Page, filters.PerPage)
	filters.Search = shared.SanitizeSearchTerm(filters.Search)

	products, total, err := s.repo.List(ctx, companyID, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return products, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Product, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Assign reassigns one product.
func (s *Service) Assign(ctx context.Context, companyID, productID, accumulatorID int64) (Product, error) {
	if _, err := s.assign(ctx, companyID, []int64{productID}, accumulatorID); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, companyID, productID)
}

// BulkAssign reassigns several products at once and returns the number of
// rows changed.
func (s *Service) BulkAssign(ctx context.Context, companyID int64, req BulkAssignRequest) (int, error) {
	return s.assign(ctx, companyID, req.ProductIDs, req.AccumulatorID)
}

func (s *Service) assign(ctx context.Context, companyID int64, productIDs []int64, accumulatorID int64) (int, error) {
	if len(productIDs) == 0 {
		return 0, fmt.Errorf("%w: no products given", httpx.ErrValidation)
	}
	exists, err := s.repo.AccumulatorExists(ctx, companyID, accumulatorID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("%w: accumulator %d does not exist for this company", httpx.ErrValidation, accumulatorID)
	}

	changed, err := s.repo.Assign(ctx, companyID, productIDs, accumulatorID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return changed, nil
}

package cfops

import (
	"context"
	"fmt"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64) ([]CFOP, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (CFOP, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, companyID int64, req UpsertCFOPRequest) (CFOP, error) {
	code, description, err := validateUpsert(req)
	if err != nil {
		return CFOP{}, err
	}
	return s.repo.Create(ctx, CFOP{CompanyID: companyID, Code: code, Description: description})
}

// Update rewrites a CFOP. Blocked while any accumulator references it:
// rewriting the code would silently reclassify already-reported sales.
func (s *Service) Update(ctx context.Context, companyID, id int64, req UpsertCFOPRequest) (CFOP, error) {
	code, description, err := validateUpsert(req)
	if err != nil {
		return CFOP{}, err
	}
	current, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return CFOP{}, err
	}
	if code != current.Code {
		if err := s.ensureUnused(ctx, id); err != nil {
			return CFOP{}, err
		}
	}
	cfop := CFOP{ID: id, CompanyID: companyID, Code: code, Description: description}
	if err := s.repo.Update(ctx, cfop); err != nil {
		return CFOP{}, err
	}
	return cfop, nil
}

func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.ensureUnused(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) ensureUnused(ctx context.Context, id int64) error {
	usage, err := s.repo.CountUsage(ctx, id)
	if err != nil {
		return err
	}
	if usage.Accumulators > 0 {
		return fmt.Errorf("%w: cfop is referenced by %d accumulators covering %d products",
			httpx.ErrInUse, usage.Accumulators, usage.Products)
	}
	return nil
}

func validateUpsert(req UpsertCFOPRequest) (string, string, error) {
	code, err := shared.ValidateCFOPCode(req.Code)
	if err != nil {
		return "", "", err
	}
	description, err := shared.ValidateDescription(req.Description, "description")
	if err != nil {
		return "", "", err
	}
	return code, description, nil
}

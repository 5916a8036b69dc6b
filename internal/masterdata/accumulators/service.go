package accumulators

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

func (s *Service) List(ctx context.Context, companyID int64) ([]Accumulator, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Accumulator, error) {
	return s.repo.Get(ctx, companyID, id)
}

func (s *Service) Create(ctx context.Context, companyID int64, req UpsertAccumulatorRequest) (Accumulator, error) {
	acc, err := s.buildValidated(ctx, companyID, req)
	if err != nil {
		return Accumulator{}, err
	}
	return s.repo.Create(ctx, acc)
}

func (s *Service) Update(ctx context.Context, companyID, id int64, req UpsertAccumulatorRequest) (Accumulator, error) {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return Accumulator{}, err
	}
	acc, err := s.buildValidated(ctx, companyID, req)
	if err != nil {
		return Accumulator{}, err
	}
	acc.ID = id
	if err := s.repo.Update(ctx, acc); err != nil {
		return Accumulator{}, err
	}
	return s.repo.Get(ctx, companyID, id)
}

// Delete removes an accumulator, blocked while products reference it so
// classified products never silently revert to unclassified.
func (s *Service) Delete(ctx context.Context, companyID, id int64) error {
	if _, err := s.repo.Get(ctx, companyID, id); err != nil {
		return err
	}
	count, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: accumulator is assigned to %d products", httpx.ErrInUse, count)
	}
	return s.repo.Delete(ctx, companyID, id)
}

func (s *Service) buildValidated(ctx context.Context, companyID int64, req UpsertAccumulatorRequest) (Accumulator, error) {
	code, err := shared.ValidateAccumulatorCode(req.Code)
	if err != nil {
		return Accumulator{}, err
	}
	description, err := shared.ValidateDescription(req.Description, "description")
	if err != nil {
		return Accumulator{}, err
	}
	exists, err := s.repo.CFOPExists(ctx, companyID, req.CFOPID)
	if err != nil {
		return Accumulator{}, err
	}
	if !exists {
		return Accumulator{}, fmt.Errorf("%w: cfop %d does not exist for this company", httpx.ErrValidation, req.CFOPID)
	}
	return Accumulator{
		CompanyID:   companyID,
		Code:        code,
		Description: description,
		CFOPID:      req.CFOPID,
	}, nil
}

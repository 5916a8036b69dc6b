package companies

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

func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, fmt.Errorf("%w: invalid company id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateCompanyRequest) (Company, error) {
	cnpj := shared.NormalizeCNPJ(req.CNPJ)
	if len(cnpj) != 14 {
		return Company{}, fmt.Errorf("%w: cnpj must have 14 digits", httpx.ErrValidation)
	}
	name, err := shared.ValidateDescription(req.Name, "name")
	if err != nil {
		return Company{}, err
	}
	return s.repo.Create(ctx, Company{
		CNPJ:              cnpj,
		Name:              name,
		State:             req.State,
		StateRegistration: req.StateRegistration,
	})
}

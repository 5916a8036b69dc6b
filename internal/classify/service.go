package classify

import (
	"context"
	"fmt"
	"log/slog"
)

// Service runs classification scans and serves their results. Scans are
// CPU-bound over the whole product catalog, so they normally run inside the
// background worker rather than a request handler.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ScanResult summarizes one classification scan.
type ScanResult struct {
	CompanyID       int64           `json:"company_id"`
	Unclassified    int             `json:"unclassified"`
	Suggestions     int             `json:"suggestions"`
	Inconsistencies []Inconsistency `json:"inconsistencies"`
}

// Scan rebuilds the suggestion set for a company and reports classification
// inconsistencies among already classified products.
func (s *Service) Scan(ctx context.Context, companyID int64) (ScanResult, error) {
	classified, err := s.repo.Classified(ctx, companyID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("classify: load classified products: %w", err)
	}
	unclassified, err := s.repo.Unclassified(ctx, companyID)
	if err != nil {
		return ScanResult{}, fmt.Errorf("classify: load unclassified products: %w", err)
	}

	result := ScanResult{CompanyID: companyID, Unclassified: len(unclassified)}

	var suggestions []Suggestion
	if len(classified) > 0 && len(unclassified) > 0 {
		analyzer := NewAnalyzer(classified)
		for _, product := range unclassified {
			if suggestion, ok := analyzer.Suggest(product); ok {
				suggestions = append(suggestions, suggestion)
			}
		}
	}
	if err := s.repo.ReplaceSuggestions(ctx, companyID, suggestions); err != nil {
		return ScanResult{}, fmt.Errorf("classify: store suggestions: %w", err)
	}
	result.Suggestions = len(suggestions)
	result.Inconsistencies = ScanInconsistencies(classified)

	s.logger.Info("classification scan finished",
		slog.Int64("company_id", companyID),
		slog.Int("unclassified", result.Unclassified),
		slog.Int("suggestions", result.Suggestions),
		slog.Int("inconsistencies", len(result.Inconsistencies)))
	return result, nil
}

// ScanAll runs Scan for every registered company. A failing company is
// logged and skipped so one bad catalog does not starve the rest.
func (s *Service) ScanAll(ctx context.Context) ([]ScanResult, error) {
	ids, err := s.repo.CompanyIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("classify: list companies: %w", err)
	}
	var results []ScanResult
	for _, id := range ids {
		result, err := s.Scan(ctx, id)
		if err != nil {
			s.logger.Error("classification scan failed",
				slog.Int64("company_id", id), slog.Any("error", err))
			continue
		}
		results = append(results, result)
	}
	return results, nil
}

// Suggestions lists the stored suggestions for a company.
func (s *Service) Suggestions(ctx context.Context, companyID int64) ([]Suggestion, error) {
	return s.repo.Suggestions(ctx, companyID)
}

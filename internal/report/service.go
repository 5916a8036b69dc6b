package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/fiscalbook/fiscalbook/internal/platform/cache"
	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
	"github.com/fiscalbook/fiscalbook/internal/shared"
)

// paymentCash is the document payment indicator for cash sales.
const paymentCash = "0"

const dateFormat = "2006-01-02"

// Service generates the fiscal reports. Results are cached under a version
// bumped on every import, so no explicit invalidation is needed here.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	logger *slog.Logger
}

// NewService builds the report service. cache may be nil.
func NewService(repo Repository, c *cache.Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

// ensureClassified rejects report generation while any product of the
// company lacks an accumulator. Partial reports would silently undercount.
func (s *Service) ensureClassified(ctx context.Context, companyID int64) error {
	count, err := s.repo.CountUnclassifiedProducts(ctx, companyID)
	if err != nil {
		return fmt.Errorf("report: count unclassified products: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d products have no accumulator assigned; classify them before generating reports",
			httpx.ErrValidation, count)
	}
	return nil
}

// SalesByAccumulator groups apportioned sale values by accumulator code and,
// inside each accumulator, by calendar date.
func (s *Service) SalesByAccumulator(ctx context.Context, companyID int64, competency string) (AccumulatorReport, error) {
	var out AccumulatorReport
	competency, err := shared.ValidateCompetency(competency)
	if err != nil {
		return out, err
	}
	if err := s.ensureClassified(ctx, companyID); err != nil {
		return out, err
	}

	key, err := s.cache.BuildKey(ctx, "report", "accumulator", strconv.FormatInt(companyID, 10), competency)
	if err != nil {
		return out, err
	}
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		rows, err := s.repo.SaleRows(ctx, companyID, competency)
		if err != nil {
			return nil, err
		}
		return buildAccumulatorReport(competency, Apportion(rows)), nil
	})
	return out, err
}

func buildAccumulatorReport(competency string, items []Apportioned) AccumulatorReport {
	report := AccumulatorReport{Competency: competency, Accumulators: []AccumulatorGroup{}}

	groups := make(map[string]*AccumulatorGroup)
	dates := make(map[string]map[string]float64)
	for _, item := range items {
		code := item.AccumulatorCode
		g, ok := groups[code]
		if !ok {
			g = &AccumulatorGroup{Code: code, Description: item.AccumulatorDesc}
			groups[code] = g
			dates[code] = make(map[string]float64)
		}
		g.Total += item.FinalValue
		dates[code][item.Date.Format(dateFormat)] += item.FinalValue
		report.GrandTotal += item.FinalValue
	}

	codes := make([]string, 0, len(groups))
	for code := range groups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		g := *groups[code]
		days := make([]string, 0, len(dates[code]))
		for day := range dates[code] {
			days = append(days, day)
		}
		sort.Strings(days)
		g.Dates = make([]DateValue, 0, len(days))
		for _, day := range days {
			g.Dates = append(g.Dates, DateValue{Date: day, Value: dates[code][day]})
		}
		report.Accumulators = append(report.Accumulators, g)
	}
	return report
}

// SalesByCFOP groups apportioned sale values by the CFOP reached through
// each product's accumulator. Items with an unresolvable chain are skipped
// and counted.
func (s *Service) SalesByCFOP(ctx context.Context, companyID int64, competency string) (CFOPReport, error) {
	var out CFOPReport
	competency, err := shared.ValidateCompetency(competency)
	if err != nil {
		return out, err
	}
	if err := s.ensureClassified(ctx, companyID); err != nil {
		return out, err
	}

	key, err := s.cache.BuildKey(ctx, "report", "cfop", strconv.FormatInt(companyID, 10), competency)
	if err != nil {
		return out, err
	}
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		rows, err := s.repo.SaleRows(ctx, companyID, competency)
		if err != nil {
			return nil, err
		}
		report := buildCFOPReport(competency, Apportion(rows))
		if report.Skipped > 0 {
			s.logger.Warn("cfop report skipped unresolved items",
				slog.Int64("company_id", companyID),
				slog.Int("skipped", report.Skipped))
		}
		return report, nil
	})
	return out, err
}

func buildCFOPReport(competency string, items []Apportioned) CFOPReport {
	report := CFOPReport{Competency: competency, Rows: []CFOPTotal{}}

	totals := make(map[string]float64)
	for _, item := range items {
		if item.AccumulatorID == nil || item.CFOPCode == "" {
			report.Skipped++
			continue
		}
		totals[item.CFOPCode] += item.FinalValue
		report.GrandTotal += item.FinalValue
	}

	codes := make([]string, 0, len(totals))
	for code := range totals {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		report.Rows = append(report.Rows, CFOPTotal{CFOP: code, Total: totals[code]})
	}
	return report
}

// Summary splits declared document totals by payment indicator. It works at
// document level on purpose: payment terms describe the document, not its
// items, so apportionment does not apply.
func (s *Service) Summary(ctx context.Context, companyID int64, competency string) (SalesSummary, error) {
	var out SalesSummary
	competency, err := shared.ValidateCompetency(competency)
	if err != nil {
		return out, err
	}

	key, err := s.cache.BuildKey(ctx, "report", "summary", strconv.FormatInt(companyID, 10), competency)
	if err != nil {
		return out, err
	}
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		docs, err := s.repo.DocumentTotals(ctx, companyID, competency)
		if err != nil {
			return nil, err
		}
		summary := SalesSummary{Competency: competency, Documents: len(docs)}
		for _, doc := range docs {
			if doc.PaymentKind == paymentCash {
				summary.CashSales += doc.Total
			} else {
				summary.TermSales += doc.Total
			}
			summary.Total += doc.Total
		}
		return summary, nil
	})
	return out, err
}

// Competencies lists the year-month periods with imported documents, most
// recent first.
func (s *Service) Competencies(ctx context.Context, companyID int64) ([]string, error) {
	return s.repo.Competencies(ctx, companyID)
}

// Statistics returns the dashboard counters for the company.
func (s *Service) Statistics(ctx context.Context, companyID int64) (Statistics, error) {
	return s.repo.Statistics(ctx, companyID)
}

// ProductApportionment drills into one product: every document line of that
// product with its allocated overhead. Whole documents are fetched and
// apportioned first so the allocation matches the by-accumulator report,
// then the result is filtered to the requested product.
func (s *Service) ProductApportionment(ctx context.Context, companyID, productID int64, competency string) (ProductApportionment, error) {
	var out ProductApportionment
	competency, err := shared.ValidateCompetency(competency)
	if err != nil {
		return out, err
	}

	rows, err := s.repo.SaleRowsForProductDocuments(ctx, companyID, productID, competency)
	if err != nil {
		return out, err
	}

	out = ProductApportionment{ProductID: productID, Competency: competency, Details: []ApportionmentDetail{}}
	for _, item := range Apportion(rows) {
		if item.ProductID != productID {
			continue
		}
		out.ProductCode = item.ProductCode
		out.Description = item.ProductDesc
		out.Details = append(out.Details, ApportionmentDetail{
			DocNumber:         item.DocNumber,
			Series:            item.Series,
			Date:              item.Date.Format(dateFormat),
			Quantity:          item.Quantity,
			NetValue:          item.NetValue,
			AllocatedOverhead: item.AllocatedOverhead,
			FinalValue:        item.FinalValue,
		})
		out.Total += item.FinalValue
	}
	return out, nil
}

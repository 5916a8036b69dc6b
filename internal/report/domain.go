// Package report aggregates persisted sales into fiscal reports: proportional
// overhead apportionment, grouping by accumulator and by CFOP, and payment
// kind summaries.
package report

import "time"

// SaleRow is one persisted sale item joined with its document and its
// product classification chain. AccumulatorID is nil for unclassified
// products.
type SaleRow struct {
	ItemID          int64
	DocumentID      int64
	DocNumber       string
	Series          string
	Date            time.Time
	DocumentTotal   float64
	PaymentKind     string
	ProductID       int64
	ProductCode     string
	ProductDesc     string
	AccumulatorID   *int64
	AccumulatorCode string
	AccumulatorDesc string
	CFOPCode        string
	Quantity        float64
	NetValue        float64
}

// Apportioned is a SaleRow extended with its share of the document's
// undistributed charges.
type Apportioned struct {
	SaleRow
	Proportion        float64
	AllocatedOverhead float64
	FinalValue        float64
}

// DateValue is one day's apportioned total inside an accumulator group.
type DateValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// AccumulatorGroup is the per-accumulator slice of the by-accumulator report.
type AccumulatorGroup struct {
	Code        string      `json:"code"`
	Description string      `json:"description"`
	Total       float64     `json:"total"`
	Dates       []DateValue `json:"dates"`
}

// AccumulatorReport groups apportioned sale values by accumulator, then by
// calendar date.
type AccumulatorReport struct {
	Competency   string             `json:"competency"`
	Accumulators []AccumulatorGroup `json:"accumulators"`
	GrandTotal   float64            `json:"grand_total"`
}

// CFOPTotal is one CFOP bucket of the by-CFOP report.
type CFOPTotal struct {
	CFOP  string  `json:"cfop"`
	Total float64 `json:"total"`
}

// CFOPReport groups apportioned sale values by the CFOP reached through each
// product's accumulator. Skipped counts items whose classification chain
// could not be resolved.
type CFOPReport struct {
	Competency string      `json:"competency"`
	Rows       []CFOPTotal `json:"rows"`
	GrandTotal float64     `json:"grand_total"`
	Skipped    int         `json:"skipped"`
}

// DocumentTotalRow carries one document's declared total for the sales
// summary, which works at document level rather than item level.
type DocumentTotalRow struct {
	Date        time.Time
	Total       float64
	PaymentKind string
}

// SalesSummary splits declared document totals by payment indicator.
type SalesSummary struct {
	Competency string  `json:"competency"`
	CashSales  float64 `json:"cash_sales"`
	TermSales  float64 `json:"term_sales"`
	Total      float64 `json:"total"`
	Documents  int     `json:"documents"`
}

// Statistics carries dashboard counters for the selected company.
type Statistics struct {
	Products     int `json:"products"`
	Unclassified int `json:"unclassified"`
	Documents    int `json:"documents"`
	SaleItems    int `json:"sale_items"`
}

// ApportionmentDetail is one document line of the per-product drill-down.
type ApportionmentDetail struct {
	DocNumber         string  `json:"doc_number"`
	Series            string  `json:"series"`
	Date              string  `json:"date"`
	Quantity          float64 `json:"quantity"`
	NetValue          float64 `json:"net_value"`
	AllocatedOverhead float64 `json:"allocated_overhead"`
	FinalValue        float64 `json:"final_value"`
}

// ProductApportionment is the per-product apportionment drill-down.
type ProductApportionment struct {
	ProductID   int64                 `json:"product_id"`
	ProductCode string                `json:"product_code"`
	Description string                `json:"description"`
	Competency  string                `json:"competency"`
	Details     []ApportionmentDetail `json:"details"`
	Total       float64               `json:"total"`
}

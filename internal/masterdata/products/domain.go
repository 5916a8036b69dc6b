// Package products lists imported products and manages their accumulator
// assignment.
package products

// Product is one imported product with its optional classification.
type Product struct {
	ID              int64  `json:"id"`
	CompanyID       int64  `json:"company_id"`
	Code            string `json:"code"`
	Description     string `json:"description"`
	Unit            string `json:"unit"`
	NCM             string `json:"ncm"`
	AccumulatorID   *int64 `json:"accumulator_id"`
	AccumulatorCode string `json:"accumulator_code,omitempty"`
}

// AssignRequest reassigns one product to an accumulator.
type AssignRequest struct {
	AccumulatorID int64 `json:"accumulator_id" validate:"required,gt=0"`
}

// BulkAssignRequest reassigns several products at once.
type BulkAssignRequest struct {
	ProductIDs    []int64 `json:"product_ids" validate:"required,min=1"`
	AccumulatorID int64   `json:"accumulator_id" validate:"required,gt=0"`
}

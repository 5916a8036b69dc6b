// Package accumulators manages the classification buckets that group
// products for reporting. Every accumulator points at exactly one CFOP and
// cannot be deleted while products reference it.
package accumulators

// Accumulator is a classification bucket scoped to one company.
type Accumulator struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
	CFOPID      int64  `json:"cfop_id"`
	CFOPCode    string `json:"cfop_code"`
	Products    int    `json:"products"`
}

// UpsertAccumulatorRequest is the create/update payload.
type UpsertAccumulatorRequest struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description" validate:"required"`
	CFOPID      int64  `json:"cfop_id" validate:"required,gt=0"`
}

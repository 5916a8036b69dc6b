// Package cfops manages the 4-digit fiscal operation codes. A CFOP cannot
// be edited or deleted while accumulators reference it.
package cfops

// CFOP is a fiscal operation code scoped to one company.
type CFOP struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Usage counts the dependents gating edit and delete.
type Usage struct {
	Accumulators int `json:"accumulators"`

	// Products counts products reaching this CFOP through an accumulator.
	Products int `json:"products"`
}

// UpsertCFOPRequest is the create/update payload.
type UpsertCFOPRequest struct {
	Code        string `json:"code" validate:"required"`
	Description string `json:"description" validate:"required"`
}

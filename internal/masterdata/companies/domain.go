// Package companies manages the registered companies and the session scoped
// company selection.
package companies

import "time"

// Company owns every other fiscal entity. CNPJ is stored digits-only.
type Company struct {
	ID                int64     `json:"id"`
	CNPJ              string    `json:"cnpj"`
	Name              string    `json:"name"`
	State             string    `json:"state"`
	StateRegistration string    `json:"state_registration"`
	CreatedAt         time.Time `json:"created_at"`
}

// CreateCompanyRequest is the registration payload.
type CreateCompanyRequest struct {
	CNPJ              string `json:"cnpj" validate:"required"`
	Name              string `json:"name" validate:"required,min=2,max=120"`
	State             string `json:"state" validate:"omitempty,len=2"`
	StateRegistration string `json:"state_registration" validate:"omitempty,max=20"`
}

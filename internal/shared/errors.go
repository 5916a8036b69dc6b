package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNoCompanySelected occurs when an operation requires a selected company.
	ErrNoCompanySelected = errors.New("no company selected")
)

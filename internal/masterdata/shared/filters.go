// Package shared holds list filter types common to the masterdata packages.
package shared

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	PerPage int
	Search  string

	// Classified filters products by accumulator assignment: true keeps
	// only classified products, false only unclassified.
	Classified *bool
}

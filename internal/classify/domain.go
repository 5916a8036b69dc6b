// Package classify suggests accumulators for unclassified products by
// comparing their descriptions and NCM codes against already classified
// ones.
package classify

import "time"

// Candidate is a classified product used as reference material.
type Candidate struct {
	ProductID       int64
	Code            string
	Description     string
	NCM             string
	AccumulatorID   int64
	AccumulatorCode string
}

// Unclassified is a product still lacking an accumulator.
type Unclassified struct {
	ProductID   int64
	Code        string
	Description string
	NCM         string
}

// Suggestion proposes an accumulator for one product.
type Suggestion struct {
	ProductID       int64     `json:"product_id"`
	ProductCode     string    `json:"product_code"`
	Description     string    `json:"description"`
	AccumulatorID   int64     `json:"accumulator_id"`
	AccumulatorCode string    `json:"accumulator_code"`
	Confidence      float64   `json:"confidence"`
	MatchedProduct  string    `json:"matched_product"`
	CreatedAt       time.Time `json:"created_at"`
}

// Inconsistency flags two similar products classified differently.
type Inconsistency struct {
	ProductA        string  `json:"product_a"`
	ProductB        string  `json:"product_b"`
	AccumulatorA    string  `json:"accumulator_a"`
	AccumulatorB    string  `json:"accumulator_b"`
	Similarity      float64 `json:"similarity"`
	SharedNCMPrefix string  `json:"shared_ncm_prefix"`
}

// Package sped ingests SPED Fiscal text files: streaming record parsing,
// natural-key deduplication and idempotent bulk loading.
package sped

import (
	"errors"
	"time"
)

// Record type tags consumed from the file. The tag is always the second
// pipe-delimited field of a line.
const (
	recHeader   = "0000"
	recProduct  = "0200"
	recDocument = "C100"
	recItem     = "C170"
)

// Operation and payment indicator values used by document records.
const (
	OperationOutbound = "1"
	PaymentCash       = "0"
	PaymentTerm       = "1"
)

// RawHeader carries the company identification from the file header record.
type RawHeader struct {
	Name              string
	CNPJ              string
	State             string
	StateRegistration string
}

// RawProduct is a product master entry (record 0200).
type RawProduct struct {
	Code        string
	Description string
	Unit        string
	NCM         string
}

// RawDocument is an outbound fiscal document header (record C100).
type RawDocument struct {
	Number      string
	Series      string
	Date        time.Time
	Total       float64
	Operation   string
	PaymentKind string
}

// RawSaleItem is one document line (record C170) attached to the most
// recently opened qualifying document.
type RawSaleItem struct {
	DocNumber string
	Series    string
	Date      time.Time
	ItemCode  string
	Quantity  float64
	UnitValue float64
	NetValue  float64
	Discount  float64
	ICMSBase  float64
	ICMSValue float64
	ICMSRate  float64
}

// ParseResult aggregates everything extracted from one file.
type ParseResult struct {
	Header       *RawHeader
	Products     []RawProduct
	Documents    []RawDocument
	Items        []RawSaleItem
	Warnings     []string
	RecordCounts map[string]int
}

// Company mirrors the persisted company row resolved during import.
type Company struct {
	ID                int64
	CNPJ              string
	Name              string
	State             string
	StateRegistration string
}

// ImportSummary reports the outcome of one import request.
type ImportSummary struct {
	BatchID      string `json:"batch_id"`
	CompanyID    int64  `json:"company_id"`
	CompanyName  string `json:"company_name"`
	NewDocuments int    `json:"new_documents"`
	NewProducts  int    `json:"new_products"`
	NewItems     int    `json:"new_items"`
	Warnings     int    `json:"warnings"`
}

// ErrNothingToImport indicates the file held no outbound documents or items
// after deduplication.
var ErrNothingToImport = errors.New("sped: no outbound fiscal documents or sale items found in file")

// ErrMissingCompany indicates the file header carried no usable tax ID.
var ErrMissingCompany = errors.New("sped: file header has no company tax ID")

// CompanyMismatchError is returned when the file belongs to a different
// company than the one selected by the caller.
type CompanyMismatchError struct {
	Selected Company
	InFile   Company
}

func (e *CompanyMismatchError) Error() string {
	return "sped: file belongs to " + e.InFile.Name + " (" + e.InFile.CNPJ + ") but company " +
		e.Selected.Name + " (" + e.Selected.CNPJ + ") is selected"
}

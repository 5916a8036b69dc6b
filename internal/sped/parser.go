package sped

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Field offsets inside a pipe-split line. Lines start with a pipe, so index 0
// is empty and index 1 is the record type tag.
const (
	headerMinFields   = 11
	productMinFields  = 9
	documentMinFields = 14
	itemMinFields     = 8
)

const dateLayout = "02012006"

// Parse consumes a SPED stream line by line. Lines are decoded as UTF-8 when
// valid and as Latin-1 otherwise, which covers both encodings seen in the
// wild. Per-line problems become warnings; only I/O failures abort.
func Parse(r io.Reader) (ParseResult, error) {
	result := ParseResult{RecordCounts: make(map[string]int)}

	var current *RawDocument

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := decodeLine(scanner.Bytes())
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(strings.TrimSpace(line), "|")
		if len(fields) < 2 {
			continue
		}
		tag := fields[1]
		result.RecordCounts[tag]++

		switch tag {
		case recHeader:
			if len(fields) < headerMinFields {
				continue
			}
			result.Header = &RawHeader{
				Name:              strings.TrimSpace(fields[6]),
				CNPJ:              strings.TrimSpace(fields[7]),
				State:             strings.TrimSpace(fields[9]),
				StateRegistration: strings.TrimSpace(fields[10]),
			}

		case recDocument:
			current = nil
			if len(fields) < documentMinFields {
				continue
			}
			if fields[2] != OperationOutbound || strings.TrimSpace(fields[10]) == "" {
				continue
			}
			date, err := time.Parse(dateLayout, strings.TrimSpace(fields[10]))
			if err != nil {
				result.Warnings = append(result.Warnings, lineWarning(lineNo, tag, err))
				continue
			}
			series := strings.TrimSpace(fields[7])
			if series == "" {
				series = "1"
			}
			doc := RawDocument{
				Number:      strings.TrimSpace(fields[8]),
				Series:      series,
				Date:        date,
				Total:       parseDecimal(fields[12]),
				Operation:   strings.TrimSpace(fields[2]),
				PaymentKind: strings.TrimSpace(fields[13]),
			}
			result.Documents = append(result.Documents, doc)
			current = &doc

		case recProduct:
			if len(fields) < productMinFields {
				continue
			}
			product := RawProduct{
				Code:        strings.TrimSpace(fields[2]),
				Description: strings.TrimSpace(fields[3]),
				Unit:        strings.TrimSpace(fields[6]),
				NCM:         strings.TrimSpace(fields[8]),
			}
			if product.Code != "" && product.Description != "" && product.Unit != "" {
				result.Products = append(result.Products, product)
			}

		case recItem:
			// Items without an open outbound document belong to inbound or
			// otherwise excluded documents and are dropped silently.
			if current == nil {
				continue
			}
			if len(fields) < itemMinFields {
				continue
			}
			quantity := parseDecimal(fields[5])
			if quantity <= 0 {
				continue
			}
			code := strings.TrimSpace(fields[3])
			if code == "" {
				continue
			}
			gross := parseDecimal(fields[7])
			var discount float64
			if len(fields) > 8 {
				discount = parseDecimal(fields[8])
			}
			item := RawSaleItem{
				DocNumber: current.Number,
				Series:    current.Series,
				Date:      current.Date,
				ItemCode:  code,
				Quantity:  quantity,
				UnitValue: gross / quantity,
				NetValue:  gross - discount,
				Discount:  discount,
			}
			if len(fields) > 13 {
				item.ICMSBase = parseDecimal(fields[13])
			}
			if len(fields) > 14 {
				item.ICMSValue = parseDecimal(fields[14])
			}
			if len(fields) > 15 {
				item.ICMSRate = parseDecimal(fields[15])
			}
			result.Items = append(result.Items, item)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("sped: read stream: %w", err)
	}

	return result, nil
}

// parseDecimal converts Brazilian-convention numbers (dot as thousands
// separator, comma as decimal separator). Blank or malformed values are 0.
func parseDecimal(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	raw = strings.ReplaceAll(raw, ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return value
}

func decodeLine(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func lineWarning(lineNo int, tag string, err error) string {
	return fmt.Sprintf("line %d (%s): %v", lineNo, tag, err)
}

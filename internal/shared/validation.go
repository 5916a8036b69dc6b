package shared

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fiscalbook/fiscalbook/internal/platform/httpx"
)

var (
	competencyPattern      = regexp.MustCompile(`^\d{4}-\d{2}$`)
	accumulatorCodePattern = regexp.MustCompile(`^[A-Z0-9_]+$`)
	nonDigits              = regexp.MustCompile(`\D`)
	controlChars           = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// ValidateCompetency checks the YYYY-MM competency filter. Empty means
// unfiltered and is returned as-is.
func ValidateCompetency(competency string) (string, error) {
	competency = strings.TrimSpace(competency)
	if competency == "" {
		return "", nil
	}
	if !competencyPattern.MatchString(competency) {
		return "", fmt.Errorf("%w: competency must be in YYYY-MM format", httpx.ErrValidation)
	}
	year, _ := strconv.Atoi(competency[:4])
	month, _ := strconv.Atoi(competency[5:])
	if year < 2000 || year > 2050 {
		return "", fmt.Errorf("%w: competency year must be between 2000 and 2050", httpx.ErrValidation)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: competency month must be between 01 and 12", httpx.ErrValidation)
	}
	return competency, nil
}

// ValidateCFOPCode checks the 4-digit CFOP code shape.
func ValidateCFOPCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: CFOP is required", httpx.ErrValidation)
	}
	if len(code) != 4 {
		return "", fmt.Errorf("%w: CFOP must have exactly 4 digits", httpx.ErrValidation)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: CFOP must contain only digits", httpx.ErrValidation)
		}
	}
	if code[0] < '1' || code[0] > '7' {
		return "", fmt.Errorf("%w: CFOP must start with a digit from 1 to 7", httpx.ErrValidation)
	}
	return code, nil
}

// ValidateAccumulatorCode checks the user-defined accumulator code shape.
func ValidateAccumulatorCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: accumulator code is required", httpx.ErrValidation)
	}
	if len(code) < 3 || len(code) > 20 {
		return "", fmt.Errorf("%w: accumulator code must have between 3 and 20 characters", httpx.ErrValidation)
	}
	if !accumulatorCodePattern.MatchString(code) {
		return "", fmt.Errorf("%w: accumulator code must contain only uppercase letters, digits and underscore", httpx.ErrValidation)
	}
	return code, nil
}

// ValidateDescription checks free-text descriptions.
func ValidateDescription(description, field string) (string, error) {
	description = controlChars.ReplaceAllString(strings.TrimSpace(description), "")
	if len(description) < 3 {
		return "", fmt.Errorf("%w: %s must have at least 3 characters", httpx.ErrValidation, field)
	}
	if len(description) > 100 {
		return "", fmt.Errorf("%w: %s must have at most 100 characters", httpx.ErrValidation, field)
	}
	return description, nil
}

// SanitizeSearchTerm strips control characters and quoting from a search
// term. Empty results collapse to "".
func SanitizeSearchTerm(term string) string {
	term = controlChars.ReplaceAllString(strings.TrimSpace(term), "")
	if len(term) > 100 {
		term = term[:100]
	}
	for _, dangerous := range []string{"'", `"`, ";", "--"} {
		term = strings.ReplaceAll(term, dangerous, "")
	}
	return strings.TrimSpace(term)
}

// NormalizeCNPJ reduces a tax ID to its digits.
func NormalizeCNPJ(cnpj string) string {
	return nonDigits.ReplaceAllString(cnpj, "")
}

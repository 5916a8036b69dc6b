package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateCompetency(t *testing.T) {
	got, err := ValidateCompetency("2024-03")
	require.NoError(t, err)
	require.Equal(t, "2024-03", got)

	got, err = ValidateCompetency("")
	require.NoError(t, err)
	require.Empty(t, got)

	for _, bad := range []string{"2024-13", "1999-05", "2051-01", "2024/03", "march", "2024-3"} {
		_, err := ValidateCompetency(bad)
		require.Error(t, err, bad)
	}
}

func TestValidateCFOPCode(t *testing.T) {
	got, err := ValidateCFOPCode(" 5102 ")
	require.NoError(t, err)
	require.Equal(t, "5102", got)

	for _, bad := range []string{"", "510", "51021", "8102", "0102", "5a02"} {
		_, err := ValidateCFOPCode(bad)
		require.Error(t, err, bad)
	}
}

func TestValidateAccumulatorCode(t *testing.T) {
	got, err := ValidateAccumulatorCode("VENDAS_01")
	require.NoError(t, err)
	require.Equal(t, "VENDAS_01", got)

	for _, bad := range []string{"", "AB", "vendas", "VENDAS 01", "AAAAAAAAAAAAAAAAAAAAA"} {
		_, err := ValidateAccumulatorCode(bad)
		require.Error(t, err, bad)
	}
}

func TestSanitizeSearchTerm(t *testing.T) {
	require.Equal(t, "abc", SanitizeSearchTerm(`a'b"c;--`))
	require.Equal(t, "", SanitizeSearchTerm("  "))
}

func TestNormalizeCNPJ(t *testing.T) {
	require.Equal(t, "11222333000181", NormalizeCNPJ("11.222.333/0001-81"))
}

func TestClampPagination(t *testing.T) {
	page, perPage := ClampPagination(0, -1)
	require.Equal(t, 1, page)
	require.Equal(t, 50, perPage)

	page, perPage = ClampPagination(2000000, 5000)
	require.Equal(t, 999999, page)
	require.Equal(t, 1000, perPage)
}

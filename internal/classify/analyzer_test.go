package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestMatchesSimilarDescription(t *testing.T) {
	analyzer := NewAnalyzer([]Candidate{
		{ProductID: 1, Description: "PARAFUSO SEXTAVADO 10MM", NCM: "73181500",
			AccumulatorID: 5, AccumulatorCode: "VENDA"},
		{ProductID: 2, Description: "OLEO LUBRIFICANTE 1L", NCM: "27101932",
			AccumulatorID: 6, AccumulatorCode: "LUBRIF"},
	})

	suggestion, ok := analyzer.Suggest(Unclassified{
		ProductID:   9,
		Description: "PARAFUSO SEXTAVADO 12MM",
		NCM:         "73181500",
	})
	require.True(t, ok)
	require.Equal(t, int64(5), suggestion.AccumulatorID)
	require.Equal(t, "VENDA", suggestion.AccumulatorCode)
	require.GreaterOrEqual(t, suggestion.Confidence, suggestThreshold)
}

func TestSuggestRejectsDissimilarDescription(t *testing.T) {
	analyzer := NewAnalyzer([]Candidate{
		{ProductID: 1, Description: "PARAFUSO SEXTAVADO 10MM", NCM: "73181500",
			AccumulatorID: 5, AccumulatorCode: "VENDA"},
	})

	_, ok := analyzer.Suggest(Unclassified{
		ProductID:   9,
		Description: "CADEIRA ESCRITORIO GIRATORIA",
		NCM:         "94013010",
	})
	require.False(t, ok)
}

func TestSuggestNCMBoostLiftsBorderlineMatch(t *testing.T) {
	candidates := []Candidate{
		{ProductID: 1, Description: "FILTRO AR MOTOR DIANTEIRO", NCM: "84213100",
			AccumulatorID: 5, AccumulatorCode: "PECAS"},
	}
	analyzer := NewAnalyzer(candidates)

	product := Unclassified{ProductID: 9, Description: "FILTRO COMBUSTIVEL TRASEIRO"}
	base, okWithout := analyzer.Suggest(product)

	product.NCM = "84213100"
	boosted, okWith := analyzer.Suggest(product)
	require.True(t, okWith)
	if okWithout {
		require.Greater(t, boosted.Confidence, base.Confidence)
	}
}

func TestSuggestEmptyInputs(t *testing.T) {
	analyzer := NewAnalyzer(nil)
	_, ok := analyzer.Suggest(Unclassified{Description: "QUALQUER COISA"})
	require.False(t, ok)

	analyzer = NewAnalyzer([]Candidate{{Description: "ALGO", AccumulatorID: 1}})
	_, ok = analyzer.Suggest(Unclassified{Description: "   "})
	require.False(t, ok)
}

func TestScanInconsistenciesFlagsDivergentPairs(t *testing.T) {
	out := ScanInconsistencies([]Candidate{
		{Description: "PARAFUSO SEXTAVADO 10MM", NCM: "73181500", AccumulatorID: 1, AccumulatorCode: "VENDA"},
		{Description: "PARAFUSO SEXTAVADO 12MM", NCM: "73181600", AccumulatorID: 2, AccumulatorCode: "PECAS"},
		{Description: "OLEO LUBRIFICANTE 1L", NCM: "27101932", AccumulatorID: 3, AccumulatorCode: "LUBRIF"},
	})
	require.Len(t, out, 1)
	require.Equal(t, "7318", out[0].SharedNCMPrefix)
	require.GreaterOrEqual(t, out[0].Similarity, inconsistencyCutoff)
	require.NotEqual(t, out[0].AccumulatorA, out[0].AccumulatorB)
}

func TestScanInconsistenciesIgnoresSameAccumulator(t *testing.T) {
	out := ScanInconsistencies([]Candidate{
		{Description: "PARAFUSO SEXTAVADO 10MM", NCM: "73181500", AccumulatorID: 1, AccumulatorCode: "VENDA"},
		{Description: "PARAFUSO SEXTAVADO 12MM", NCM: "73181500", AccumulatorID: 1, AccumulatorCode: "VENDA"},
	})
	require.Empty(t, out)
}

func TestDiceSimilarityBounds(t *testing.T) {
	require.InDelta(t, 1.0, diceSimilarity("parafuso", "parafuso"), 1e-9)
	require.Zero(t, diceSimilarity("", ""))
	require.Zero(t, diceSimilarity("ab", "xy"))
	sim := diceSimilarity("parafuso sextavado", "parafuso sextavado 10mm")
	require.Greater(t, sim, 0.7)
	require.Less(t, sim, 1.0)
}

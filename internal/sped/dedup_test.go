package sped

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDedupProductsLastWins(t *testing.T) {
	in := []RawProduct{
		{Code: "A", Description: "OLD"},
		{Code: "B", Description: "KEEP"},
		{Code: "A", Description: "NEW"},
	}
	out := DedupProducts(in)
	require.Len(t, out, 2)
	require.Equal(t, "A", out[0].Code)
	require.Equal(t, "NEW", out[0].Description)
	require.Equal(t, "B", out[1].Code)
}

func TestDedupDocumentsKeyIncludesSeries(t *testing.T) {
	in := []RawDocument{
		{Number: "100", Series: "1", Total: 10},
		{Number: "100", Series: "2", Total: 20},
		{Number: "100", Series: "1", Total: 30},
	}
	out := DedupDocuments(in)
	require.Len(t, out, 2)
	require.InDelta(t, 30.0, out[0].Total, 1e-9)
	require.InDelta(t, 20.0, out[1].Total, 1e-9)
}

func TestDedupItemsLastWins(t *testing.T) {
	in := []RawSaleItem{
		{DocNumber: "100", Series: "1", ItemCode: "A", NetValue: 50},
		{DocNumber: "100", Series: "1", ItemCode: "A", NetValue: 75},
		{DocNumber: "100", Series: "1", ItemCode: "B", NetValue: 5},
	}
	out := DedupItems(in)
	require.Len(t, out, 2)
	require.InDelta(t, 75.0, out[0].NetValue, 1e-9)
	require.Equal(t, "B", out[1].ItemCode)
}

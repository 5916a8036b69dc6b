package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApportionConservesDocumentTotal(t *testing.T) {
	rows := []SaleRow{
		{DocumentID: 1, DocumentTotal: 250, NetValue: 120},
		{DocumentID: 1, DocumentTotal: 250, NetValue: 80},
		{DocumentID: 2, DocumentTotal: 99.99, NetValue: 33.33},
		{DocumentID: 2, DocumentTotal: 99.99, NetValue: 11.11},
	}
	out := Apportion(rows)
	require.Len(t, out, 4)

	sums := make(map[int64]float64)
	for _, item := range out {
		sums[item.DocumentID] += item.FinalValue
	}
	require.InDelta(t, 250.0, sums[1], 1e-6)
	require.InDelta(t, 99.99, sums[2], 1e-6)
}

func TestApportionProportionalShares(t *testing.T) {
	// Declared total 121, items net 100: overhead 21 goes entirely to the
	// only item with positive net value.
	rows := []SaleRow{
		{DocumentID: 1, DocumentTotal: 121, NetValue: 100, ProductCode: "A"},
		{DocumentID: 1, DocumentTotal: 121, NetValue: 0, ProductCode: "B"},
	}
	out := Apportion(rows)
	require.InDelta(t, 1.0, out[0].Proportion, 1e-9)
	require.InDelta(t, 21.0, out[0].AllocatedOverhead, 1e-9)
	require.InDelta(t, 121.0, out[0].FinalValue, 1e-9)
	require.InDelta(t, 0.0, out[1].Proportion, 1e-9)
	require.InDelta(t, 0.0, out[1].FinalValue, 1e-9)
}

func TestApportionZeroItemSumAllocatesNothing(t *testing.T) {
	// All items net zero: the declared total stays unallocated on purpose.
	rows := []SaleRow{
		{DocumentID: 1, DocumentTotal: 500, NetValue: 0},
		{DocumentID: 1, DocumentTotal: 500, NetValue: 0},
	}
	for _, item := range Apportion(rows) {
		require.Zero(t, item.AllocatedOverhead)
		require.Zero(t, item.FinalValue)
	}
}

func TestApportionNegativeOverheadNotClamped(t *testing.T) {
	rows := []SaleRow{
		{DocumentID: 1, DocumentTotal: 90, NetValue: 60},
		{DocumentID: 1, DocumentTotal: 90, NetValue: 40},
	}
	out := Apportion(rows)
	require.InDelta(t, -6.0, out[0].AllocatedOverhead, 1e-9)
	require.InDelta(t, 54.0, out[0].FinalValue, 1e-9)
	require.InDelta(t, 36.0, out[1].FinalValue, 1e-9)
	require.InDelta(t, 90.0, out[0].FinalValue+out[1].FinalValue, 1e-6)
}

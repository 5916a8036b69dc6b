package report

// Apportion distributes each document's undistributed charges across its
// items. The overhead of a document is the gap between its declared total
// and the sum of its item net values; each item receives a share
// proportional to its net value. The sum of final values per document equals
// the declared total whenever the item sum is positive. When every item of a
// document nets zero, no overhead is allocated and the declared total stays
// unaccounted for. A negative overhead (declared total below the item sum)
// is distributed as-is, not clamped.
func Apportion(rows []SaleRow) []Apportioned {
	type docGroup struct {
		total   float64
		itemSum float64
	}

	groups := make(map[int64]*docGroup)
	for _, row := range rows {
		g, ok := groups[row.DocumentID]
		if !ok {
			g = &docGroup{total: row.DocumentTotal}
			groups[row.DocumentID] = g
		}
		g.itemSum += row.NetValue
	}

	out := make([]Apportioned, 0, len(rows))
	for _, row := range rows {
		g := groups[row.DocumentID]
		a := Apportioned{SaleRow: row}
		if g.itemSum > 0 {
			a.Proportion = row.NetValue / g.itemSum
			a.AllocatedOverhead = (g.total - g.itemSum) * a.Proportion
		}
		a.FinalValue = row.NetValue + a.AllocatedOverhead
		out = append(out, a)
	}
	return out
}

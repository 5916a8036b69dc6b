package sped

// Natural-key deduplication. Among records sharing a key within one file the
// last occurrence wins. Output preserves first-seen key order so results are
// deterministic.

// DedupProducts collapses products by item code.
func DedupProducts(in []RawProduct) []RawProduct {
	index := make(map[string]int, len(in))
	out := make([]RawProduct, 0, len(in))
	for _, p := range in {
		if i, ok := index[p.Code]; ok {
			out[i] = p
			continue
		}
		index[p.Code] = len(out)
		out = append(out, p)
	}
	return out
}

// DedupDocuments collapses documents by (number, series).
func DedupDocuments(in []RawDocument) []RawDocument {
	index := make(map[string]int, len(in))
	out := make([]RawDocument, 0, len(in))
	for _, d := range in {
		key := d.Number + "\x00" + d.Series
		if i, ok := index[key]; ok {
			out[i] = d
			continue
		}
		index[key] = len(out)
		out = append(out, d)
	}
	return out
}

// DedupItems collapses sale items by (document number, series, item code).
func DedupItems(in []RawSaleItem) []RawSaleItem {
	index := make(map[string]int, len(in))
	out := make([]RawSaleItem, 0, len(in))
	for _, it := range in {
		key := it.DocNumber + "\x00" + it.Series + "\x00" + it.ItemCode
		if i, ok := index[key]; ok {
			out[i] = it
			continue
		}
		index[key] = len(out)
		out = append(out, it)
	}
	return out
}

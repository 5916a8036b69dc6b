package classify

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"
)

// Scoring constants. A suggestion is only emitted at or above the threshold;
// matching NCM codes raise the description score because tariff codes group
// products far more reliably than free-text descriptions.
const (
	suggestThreshold     = 0.60
	inconsistencyCutoff  = 0.80
	ncmExactBoost        = 0.30
	ncmPrefixBoost       = 0.15
	tokenOverlapFloor    = 0.70
	candidatesPerProduct = 10
)

// Analyzer scores unclassified products against the classified set. Build
// one per scan; it is not safe for concurrent mutation but read calls may
// run in parallel.
type Analyzer struct {
	candidates []Candidate
	byDesc     map[string][]int
	matcher    *closestmatch.ClosestMatch
}

// NewAnalyzer indexes the classified products.
func NewAnalyzer(candidates []Candidate) *Analyzer {
	a := &Analyzer{
		candidates: candidates,
		byDesc:     make(map[string][]int, len(candidates)),
	}
	descs := make([]string, 0, len(candidates))
	for i, c := range candidates {
		desc := normalize(c.Description)
		if _, seen := a.byDesc[desc]; !seen {
			descs = append(descs, desc)
		}
		a.byDesc[desc] = append(a.byDesc[desc], i)
	}
	a.matcher = closestmatch.New(descs, []int{2, 3})
	return a
}

// Suggest returns the best accumulator suggestion for the product, or false
// when nothing scores at or above the threshold.
func (a *Analyzer) Suggest(product Unclassified) (Suggestion, bool) {
	desc := normalize(product.Description)
	if desc == "" || len(a.candidates) == 0 {
		return Suggestion{}, false
	}

	var best Suggestion
	for _, match := range a.matcher.ClosestN(desc, candidatesPerProduct) {
		for _, idx := range a.byDesc[match] {
			candidate := a.candidates[idx]
			score := a.score(product, candidate)
			if score > best.Confidence {
				best = Suggestion{
					ProductID:       product.ProductID,
					ProductCode:     product.Code,
					Description:     product.Description,
					AccumulatorID:   candidate.AccumulatorID,
					AccumulatorCode: candidate.AccumulatorCode,
					Confidence:      score,
					MatchedProduct:  candidate.Description,
				}
			}
		}
	}
	if best.Confidence < suggestThreshold {
		return Suggestion{}, false
	}
	return best, true
}

func (a *Analyzer) score(product Unclassified, candidate Candidate) float64 {
	descA := normalize(product.Description)
	descB := normalize(candidate.Description)

	score := diceSimilarity(descA, descB)
	if overlap := tokenOverlap(descA, descB); overlap >= tokenOverlapFloor && overlap > score {
		score = overlap
	}

	switch {
	case product.NCM != "" && product.NCM == candidate.NCM:
		score += ncmExactBoost
	case ncmPrefix(product.NCM) != "" && ncmPrefix(product.NCM) == ncmPrefix(candidate.NCM):
		score += ncmPrefixBoost
	}
	if score > 1 {
		score = 1
	}
	return score
}

// ScanInconsistencies reports pairs of classified products that share an NCM
// prefix and a highly similar description but point at different
// accumulators.
func ScanInconsistencies(candidates []Candidate) []Inconsistency {
	byPrefix := make(map[string][]Candidate)
	for _, c := range candidates {
		prefix := ncmPrefix(c.NCM)
		if prefix == "" {
			continue
		}
		byPrefix[prefix] = append(byPrefix[prefix], c)
	}

	prefixes := make([]string, 0, len(byPrefix))
	for prefix := range byPrefix {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	var out []Inconsistency
	for _, prefix := range prefixes {
		group := byPrefix[prefix]
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if group[i].AccumulatorID == group[j].AccumulatorID {
					continue
				}
				sim := diceSimilarity(normalize(group[i].Description), normalize(group[j].Description))
				if sim < inconsistencyCutoff {
					continue
				}
				out = append(out, Inconsistency{
					ProductA:        group[i].Description,
					ProductB:        group[j].Description,
					AccumulatorA:    group[i].AccumulatorCode,
					AccumulatorB:    group[j].AccumulatorCode,
					Similarity:      sim,
					SharedNCMPrefix: prefix,
				})
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func ncmPrefix(ncm string) string {
	if len(ncm) < 4 {
		return ""
	}
	return ncm[:4]
}

// diceSimilarity is the Sørensen–Dice coefficient over character bigrams.
func diceSimilarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	bigramsA := bigrams(a)
	bigramsB := bigrams(b)
	if len(bigramsA) == 0 || len(bigramsB) == 0 {
		return 0
	}

	var shared int
	for bg, countA := range bigramsA {
		if countB, ok := bigramsB[bg]; ok {
			if countA < countB {
				shared += countA
			} else {
				shared += countB
			}
		}
	}

	var totalA, totalB int
	for _, c := range bigramsA {
		totalA += c
	}
	for _, c := range bigramsB {
		totalB += c
	}
	return 2 * float64(shared) / float64(totalA+totalB)
}

func bigrams(s string) map[string]int {
	runes := []rune(s)
	out := make(map[string]int)
	for i := 0; i+1 < len(runes); i++ {
		out[string(runes[i:i+2])]++
	}
	return out
}

func tokenOverlap(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}
	var shared int
	for _, t := range tokensA {
		if setB[t] {
			shared++
		}
	}
	smaller := len(tokensA)
	if len(tokensB) < smaller {
		smaller = len(tokensB)
	}
	return float64(shared) / float64(smaller)
}

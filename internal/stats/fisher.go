// internal/stats/fisher.go
package stats

import (
	"fmt"
	"math"
)

// FisherResult holds a two-sided Fisher's exact test on a 2x2 table.
type FisherResult struct {
	PValue      float64 `json:"pValue"`
	OddsRatio   float64 `json:"oddsRatio"`
	AlphaUsed   float64 `json:"alphaUsed"`
	Significant bool    `json:"significant"`
}

// FisherExact runs the two-sided exact test on the 2x2 table
//
//	a b
//	c d
//
// summing the probabilities of all tables at least as extreme as the observed
// one under the hypergeometric null. alpha is the (possibly Bonferroni
// corrected) threshold used for the significance verdict.
func FisherExact(a, b, c, d int, alpha float64) (FisherResult, error) {
	if a < 0 || b < 0 || c < 0 || d < 0 {
		return FisherResult{}, fmt.Errorf("negative cell count in 2x2 table")
	}
	n := a + b + c + d
	if n == 0 {
		return FisherResult{}, fmt.Errorf("%w: empty 2x2 table", ErrInsufficientData)
	}

	row1 := a + b
	col1 := a + c

	observed := hypergeomPMF(a, row1, col1, n)

	// Small tolerance absorbs floating-point noise when deciding which tables
	// count as "at least as extreme".
	const slack = 1e-7
	lo := col1 - (n - row1)
	if lo < 0 {
		lo = 0
	}
	hi := row1
	if col1 < hi {
		hi = col1
	}

	var p float64
	for k := lo; k <= hi; k++ {
		if prob := hypergeomPMF(k, row1, col1, n); prob <= observed*(1+slack) {
			p += prob
		}
	}
	if p > 1 {
		p = 1
	}

	odds := math.Inf(1)
	if b*c != 0 {
		odds = float64(a*d) / float64(b*c)
	}

	return FisherResult{
		PValue:      p,
		OddsRatio:   odds,
		AlphaUsed:   alpha,
		Significant: p < alpha,
	}, nil
}

// hypergeomPMF is P(X == k) for k successes in a row-1 draw of size rowTotal
// from a population of n with colTotal total successes.
func hypergeomPMF(k, rowTotal, colTotal, n int) float64 {
	if k < 0 || k > rowTotal || k > colTotal || rowTotal-k > n-colTotal {
		return 0
	}
	logP := logChoose(colTotal, k) +
		logChoose(n-colTotal, rowTotal-k) -
		logChoose(n, rowTotal)
	return math.Exp(logP)
}

func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	lgN, _ := math.Lgamma(float64(n + 1))
	lgK, _ := math.Lgamma(float64(k + 1))
	lgNK, _ := math.Lgamma(float64(n - k + 1))
	return lgN - lgK - lgNK
}

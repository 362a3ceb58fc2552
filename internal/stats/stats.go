// internal/stats/stats.go
// Package stats implements the hypothesis tests and descriptive summaries the
// analyzers run over experiment records. Distribution math is delegated to
// gonum; this package adds the test orchestration, effect sizes, and the
// small-sample preconditions.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInsufficientData is returned when a group is too small for the requested
// test. Callers must surface it; producing a degenerate p-value instead would
// bias downstream conclusions.
var ErrInsufficientData = errors.New("insufficient observations for test")

// Alpha is the significance level used throughout the analyses.
const Alpha = 0.05

// Group pairs a factor level with its observations.
type Group struct {
	Name   string
	Values []float64
}

// Descriptive summarizes one group of observations.
type Descriptive struct {
	Name   string  `json:"name"`
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stdDev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Describe computes per-group descriptive statistics. Groups with a single
// observation get a zero standard deviation rather than NaN.
func Describe(groups []Group) []Descriptive {
	out := make([]Descriptive, 0, len(groups))
	for _, g := range groups {
		d := Descriptive{Name: g.Name, N: len(g.Values)}
		if len(g.Values) == 0 {
			out = append(out, d)
			continue
		}
		d.Mean = stat.Mean(g.Values, nil)
		if len(g.Values) > 1 {
			d.StdDev = stat.StdDev(g.Values, nil)
		}
		d.Min, d.Max = g.Values[0], g.Values[0]
		for _, v := range g.Values[1:] {
			d.Min = math.Min(d.Min, v)
			d.Max = math.Max(d.Max, v)
		}
		out = append(out, d)
	}
	return out
}

// ANOVAResult holds a one-way analysis of variance.
type ANOVAResult struct {
	FStatistic  float64 `json:"fStatistic"`
	PValue      float64 `json:"pValue"`
	DFBetween   int     `json:"dfBetween"`
	DFWithin    int     `json:"dfWithin"`
	EtaSquared  float64 `json:"etaSquared"`
	Significant bool    `json:"significant"`
}

// OneWayANOVA compares 3+ group means on a continuous response. Every group
// must contribute at least two observations.
func OneWayANOVA(groups []Group) (ANOVAResult, error) {
	if len(groups) < 2 {
		return ANOVAResult{}, fmt.Errorf("%w: need at least 2 groups, have %d", ErrInsufficientData, len(groups))
	}
	total := 0
	for _, g := range groups {
		if len(g.Values) < 2 {
			return ANOVAResult{}, fmt.Errorf("%w: group %q has %d observations", ErrInsufficientData, g.Name, len(g.Values))
		}
		total += len(g.Values)
	}

	var all []float64
	for _, g := range groups {
		all = append(all, g.Values...)
	}
	grand := stat.Mean(all, nil)

	var ssBetween, ssWithin float64
	for _, g := range groups {
		mean := stat.Mean(g.Values, nil)
		ssBetween += float64(len(g.Values)) * (mean - grand) * (mean - grand)
		for _, v := range g.Values {
			ssWithin += (v - mean) * (v - mean)
		}
	}

	dfBetween := len(groups) - 1
	dfWithin := total - len(groups)
	if ssWithin == 0 {
		return ANOVAResult{}, fmt.Errorf("%w: zero within-group variance", ErrInsufficientData)
	}
	f := (ssBetween / float64(dfBetween)) / (ssWithin / float64(dfWithin))
	fDist := distuv.F{D1: float64(dfBetween), D2: float64(dfWithin)}
	p := fDist.Survival(f)

	return ANOVAResult{
		FStatistic:  f,
		PValue:      p,
		DFBetween:   dfBetween,
		DFWithin:    dfWithin,
		EtaSquared:  ssBetween / (ssBetween + ssWithin),
		Significant: p < Alpha,
	}, nil
}

// TTestResult holds a two-sample pooled-variance t test.
type TTestResult struct {
	GroupA      string  `json:"groupA"`
	GroupB      string  `json:"groupB"`
	MeanDiff    float64 `json:"meanDiff"`
	TStatistic  float64 `json:"tStatistic"`
	PValue      float64 `json:"pValue"`
	DF          int     `json:"df"`
	AlphaUsed   float64 `json:"alphaUsed"`
	Significant bool    `json:"significant"`
}

// TwoSampleTTest runs an independent two-sample t test with pooled variance
// against the supplied (already corrected) significance threshold.
func TwoSampleTTest(a, b Group, alpha float64) (TTestResult, error) {
	n1, n2 := len(a.Values), len(b.Values)
	if n1 < 2 || n2 < 2 {
		return TTestResult{}, fmt.Errorf("%w: t test requires 2+ observations per group", ErrInsufficientData)
	}
	mean1 := stat.Mean(a.Values, nil)
	mean2 := stat.Mean(b.Values, nil)
	var1 := stat.Variance(a.Values, nil)
	var2 := stat.Variance(b.Values, nil)

	df := n1 + n2 - 2
	pooled := (float64(n1-1)*var1 + float64(n2-1)*var2) / float64(df)
	if pooled == 0 {
		return TTestResult{}, fmt.Errorf("%w: zero pooled variance", ErrInsufficientData)
	}
	se := math.Sqrt(pooled * (1.0/float64(n1) + 1.0/float64(n2)))
	t := (mean1 - mean2) / se

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	p := 2 * tDist.Survival(math.Abs(t))

	return TTestResult{
		GroupA:      a.Name,
		GroupB:      b.Name,
		MeanDiff:    mean1 - mean2,
		TStatistic:  t,
		PValue:      p,
		DF:          df,
		AlphaUsed:   alpha,
		Significant: p < alpha,
	}, nil
}

// PairwiseTTests runs all pairwise comparisons with a Bonferroni-corrected
// threshold (alpha divided by the number of comparisons).
func PairwiseTTests(groups []Group) ([]TTestResult, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 groups", ErrInsufficientData)
	}
	comparisons := len(groups) * (len(groups) - 1) / 2
	corrected := Alpha / float64(comparisons)

	var out []TTestResult
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			res, err := TwoSampleTTest(groups[i], groups[j], corrected)
			if err != nil {
				return nil, err
			}
			out = append(out, res)
		}
	}
	return out, nil
}

// ChiSquareResult holds a chi-square test of independence on a contingency table.
type ChiSquareResult struct {
	ChiSquare   float64 `json:"chiSquare"`
	PValue      float64 `json:"pValue"`
	DF          int     `json:"df"`
	CramersV    float64 `json:"cramersV"`
	Significant bool    `json:"significant"`
}

// ChiSquareIndependence tests independence of two categorical factors. The
// table is rows × columns of observed counts; every row and column must have
// a nonzero total. On 2x2 tables the statistic carries the Yates continuity
// correction.
func ChiSquareIndependence(table [][]float64) (ChiSquareResult, error) {
	rows := len(table)
	if rows < 2 {
		return ChiSquareResult{}, fmt.Errorf("%w: contingency table needs 2+ rows", ErrInsufficientData)
	}
	cols := len(table[0])
	if cols < 2 {
		return ChiSquareResult{}, fmt.Errorf("%w: contingency table needs 2+ columns", ErrInsufficientData)
	}

	rowTotals := make([]float64, rows)
	colTotals := make([]float64, cols)
	var n float64
	for i, row := range table {
		if len(row) != cols {
			return ChiSquareResult{}, fmt.Errorf("ragged contingency table at row %d", i)
		}
		for j, v := range row {
			rowTotals[i] += v
			colTotals[j] += v
			n += v
		}
	}
	for i, total := range rowTotals {
		if total == 0 {
			return ChiSquareResult{}, fmt.Errorf("%w: row %d has no observations", ErrInsufficientData, i)
		}
	}
	for j, total := range colTotals {
		if total == 0 {
			return ChiSquareResult{}, fmt.Errorf("%w: column %d has no observations", ErrInsufficientData, j)
		}
	}

	df := (rows - 1) * (cols - 1)

	var chi2 float64
	for i := range table {
		for j := range table[i] {
			expected := rowTotals[i] * colTotals[j] / n
			diff := math.Abs(table[i][j] - expected)
			// Yates continuity correction on 2x2 tables.
			if df == 1 {
				diff = math.Max(0, diff-0.5)
			}
			chi2 += diff * diff / expected
		}
	}

	p := distuv.ChiSquared{K: float64(df)}.Survival(chi2)

	minDim := rows
	if cols < minDim {
		minDim = cols
	}
	v := math.Sqrt(chi2 / (n * float64(minDim-1)))

	return ChiSquareResult{
		ChiSquare:   chi2,
		PValue:      p,
		DF:          df,
		CramersV:    v,
		Significant: p < Alpha,
	}, nil
}

// BinomialResult holds a one-sided binomial test against a null rate.
type BinomialResult struct {
	Successes   int     `json:"successes"`
	Trials      int     `json:"trials"`
	NullRate    float64 `json:"nullRate"`
	Proportion  float64 `json:"proportion"`
	PValue      float64 `json:"pValue"`
	CILower     float64 `json:"ciLower"`
	CIUpper     float64 `json:"ciUpper"`
	Significant bool    `json:"significant"`
}

// BinomialTest computes the right-tail probability of observing at least
// `successes` in `trials` under the null rate, with a 95% Wilson interval on
// the observed proportion.
func BinomialTest(successes, trials int, nullRate float64) (BinomialResult, error) {
	if trials < 1 {
		return BinomialResult{}, fmt.Errorf("%w: binomial test requires 1+ trials", ErrInsufficientData)
	}
	if successes < 0 || successes > trials {
		return BinomialResult{}, fmt.Errorf("invalid binomial observation %d/%d", successes, trials)
	}
	if nullRate <= 0 || nullRate >= 1 {
		return BinomialResult{}, fmt.Errorf("null rate must be in (0,1), got %v", nullRate)
	}

	dist := distuv.Binomial{N: float64(trials), P: nullRate}
	p := 1.0
	if successes > 0 {
		p = 1 - dist.CDF(float64(successes-1))
	}

	lower, upper := WilsonInterval(successes, trials, 1.959963984540054)

	return BinomialResult{
		Successes:   successes,
		Trials:      trials,
		NullRate:    nullRate,
		Proportion:  float64(successes) / float64(trials),
		PValue:      p,
		CILower:     lower,
		CIUpper:     upper,
		Significant: p < Alpha,
	}, nil
}

// WilsonInterval returns the Wilson score interval for a binomial proportion
// at the given z quantile.
func WilsonInterval(successes, trials int, z float64) (lower, upper float64) {
	n := float64(trials)
	if n == 0 {
		return 0, 1
	}
	phat := float64(successes) / n
	z2 := z * z
	denom := 1 + z2/n
	center := (phat + z2/(2*n)) / denom
	half := z * math.Sqrt(phat*(1-phat)/n+z2/(4*n*n)) / denom
	lower = math.Max(0, center-half)
	upper = math.Min(1, center+half)
	return lower, upper
}

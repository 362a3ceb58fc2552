package stats

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-6

func TestDescribe(t *testing.T) {
	groups := []Group{
		{Name: "a", Values: []float64{2, 4, 6}},
		{Name: "b", Values: []float64{5}},
		{Name: "empty"},
	}
	desc := Describe(groups)
	if len(desc) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(desc))
	}
	if desc[0].Mean != 4 || math.Abs(desc[0].StdDev-2) > tolerance {
		t.Fatalf("unexpected summary for a: %+v", desc[0])
	}
	if desc[0].Min != 2 || desc[0].Max != 6 {
		t.Fatalf("unexpected range for a: %+v", desc[0])
	}
	if desc[1].StdDev != 0 {
		t.Fatalf("single observation must have zero stddev, got %v", desc[1].StdDev)
	}
	if desc[2].N != 0 {
		t.Fatalf("unexpected summary for empty group: %+v", desc[2])
	}
}

// Four groups with known means and variances. Hand computation:
// group means 2, 3, 4, 5; grand mean 3.5; SS_between = 3*5 = 15 with df 3;
// SS_within = 4*2 = 8 with df 8; F = (15/3)/(8/8) = 5.
func TestOneWayANOVAReferenceValue(t *testing.T) {
	groups := []Group{
		{Name: "g1", Values: []float64{1, 2, 3}},
		{Name: "g2", Values: []float64{2, 3, 4}},
		{Name: "g3", Values: []float64{3, 4, 5}},
		{Name: "g4", Values: []float64{4, 5, 6}},
	}
	res, err := OneWayANOVA(groups)
	if err != nil {
		t.Fatalf("OneWayANOVA failed: %v", err)
	}
	if math.Abs(res.FStatistic-5.0) > tolerance {
		t.Fatalf("F = %v, want 5.0", res.FStatistic)
	}
	if res.DFBetween != 3 || res.DFWithin != 8 {
		t.Fatalf("unexpected degrees of freedom: %d, %d", res.DFBetween, res.DFWithin)
	}
	if math.Abs(res.EtaSquared-15.0/23.0) > tolerance {
		t.Fatalf("eta squared = %v, want %v", res.EtaSquared, 15.0/23.0)
	}
	// F(3,8) right tail at 5: between 0.02 and 0.04.
	if res.PValue < 0.02 || res.PValue > 0.04 {
		t.Fatalf("p value %v outside expected window", res.PValue)
	}
	if !res.Significant {
		t.Fatal("expected significance at alpha 0.05")
	}
}

func TestOneWayANOVASmallGroupIsReported(t *testing.T) {
	groups := []Group{
		{Name: "ok", Values: []float64{1, 2, 3}},
		{Name: "thin", Values: []float64{4}},
	}
	_, err := OneWayANOVA(groups)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestTwoSampleTTestReferenceValue(t *testing.T) {
	a := Group{Name: "a", Values: []float64{1, 2, 3}}
	b := Group{Name: "b", Values: []float64{2, 3, 4}}
	res, err := TwoSampleTTest(a, b, Alpha)
	if err != nil {
		t.Fatalf("TwoSampleTTest failed: %v", err)
	}
	// Pooled variance 1, se = sqrt(2/3), t = -1/se.
	want := -1.0 / math.Sqrt(2.0/3.0)
	if math.Abs(res.TStatistic-want) > tolerance {
		t.Fatalf("t = %v, want %v", res.TStatistic, want)
	}
	if res.DF != 4 {
		t.Fatalf("df = %d, want 4", res.DF)
	}
	if res.Significant {
		t.Fatal("small difference should not be significant")
	}
}

func TestPairwiseTTestsBonferroni(t *testing.T) {
	groups := []Group{
		{Name: "a", Values: []float64{1, 2, 3}},
		{Name: "b", Values: []float64{2, 3, 4}},
		{Name: "c", Values: []float64{3, 4, 5}},
	}
	res, err := PairwiseTTests(groups)
	if err != nil {
		t.Fatalf("PairwiseTTests failed: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 comparisons, got %d", len(res))
	}
	for _, r := range res {
		if math.Abs(r.AlphaUsed-Alpha/3) > tolerance {
			t.Fatalf("expected Bonferroni alpha %v, got %v", Alpha/3, r.AlphaUsed)
		}
	}
}

func TestChiSquareIndependence(t *testing.T) {
	// 3x2 table with a strong association. Every expected count is 20, so
	// chi2 = sum (o-e)^2/e = 4 * 100/20 + 2 * 0/20 = 20.
	table := [][]float64{
		{30, 10},
		{10, 30},
		{20, 20},
	}
	res, err := ChiSquareIndependence(table)
	if err != nil {
		t.Fatalf("ChiSquareIndependence failed: %v", err)
	}
	if math.Abs(res.ChiSquare-20.0) > tolerance {
		t.Fatalf("chi2 = %v, want 20", res.ChiSquare)
	}
	if res.DF != 2 {
		t.Fatalf("df = %d, want 2", res.DF)
	}
	wantV := math.Sqrt(20.0 / 120.0)
	if math.Abs(res.CramersV-wantV) > tolerance {
		t.Fatalf("cramers v = %v, want %v", res.CramersV, wantV)
	}
	if !res.Significant {
		t.Fatal("expected significant association")
	}
}

func TestChiSquareYatesCorrectionOn2x2(t *testing.T) {
	// Every expected count is 20 and every |o-e| is 10, corrected to 9.5:
	// chi2 = 4 * 9.5^2/20 = 18.05 rather than the uncorrected 20.
	table := [][]float64{
		{30, 10},
		{10, 30},
	}
	res, err := ChiSquareIndependence(table)
	if err != nil {
		t.Fatalf("ChiSquareIndependence failed: %v", err)
	}
	if math.Abs(res.ChiSquare-18.05) > tolerance {
		t.Fatalf("chi2 = %v, want 18.05", res.ChiSquare)
	}
	if res.DF != 1 {
		t.Fatalf("df = %d, want 1", res.DF)
	}
	wantV := math.Sqrt(18.05 / 80.0)
	if math.Abs(res.CramersV-wantV) > tolerance {
		t.Fatalf("cramers v = %v, want %v", res.CramersV, wantV)
	}
	if !res.Significant {
		t.Fatal("expected significant association")
	}
}

func TestChiSquareEmptyColumnIsReported(t *testing.T) {
	table := [][]float64{
		{5, 0},
		{7, 0},
	}
	_, err := ChiSquareIndependence(table)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

// Right-tail binomial reference: P(X >= 5 | n=20, p=0.01) computed from the
// closed-form sum of the binomial pmf.
func TestBinomialTestReferenceValue(t *testing.T) {
	res, err := BinomialTest(5, 20, 0.01)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}

	var want float64
	for k := 5; k <= 20; k++ {
		want += choose(20, k) * math.Pow(0.01, float64(k)) * math.Pow(0.99, float64(20-k))
	}
	if math.Abs(res.PValue-want) > tolerance {
		t.Fatalf("p = %v, want %v", res.PValue, want)
	}
	if math.Abs(res.Proportion-0.25) > tolerance {
		t.Fatalf("proportion = %v, want 0.25", res.Proportion)
	}
	if !res.Significant {
		t.Fatal("5/20 against a 1% null must be significant")
	}
	// Wilson interval for 5/20 is approximately [0.112, 0.469].
	if res.CILower < 0.10 || res.CILower > 0.13 || res.CIUpper < 0.44 || res.CIUpper > 0.49 {
		t.Fatalf("unexpected Wilson interval [%v, %v]", res.CILower, res.CIUpper)
	}
}

func TestBinomialTestZeroSuccesses(t *testing.T) {
	res, err := BinomialTest(0, 15, 0.01)
	if err != nil {
		t.Fatalf("BinomialTest failed: %v", err)
	}
	if res.PValue != 1.0 {
		t.Fatalf("right tail at zero successes must be 1, got %v", res.PValue)
	}
}

func choose(n, k int) float64 {
	return math.Exp(logChoose(n, k))
}

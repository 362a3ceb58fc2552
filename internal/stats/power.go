// internal/stats/power.go
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PowerResult reports an a priori chi-square goodness-of-fit power solve.
type PowerResult struct {
	EffectSize    float64 `json:"effectSize"`
	Alpha         float64 `json:"alpha"`
	TargetPower   float64 `json:"targetPower"`
	RequiredN     int     `json:"requiredN"`
	AchievedPower float64 `json:"achievedPower"`
}

// CohenH is the arcsine-transformed effect size for a difference between two
// proportions.
func CohenH(p1, p2 float64) float64 {
	return 2 * (math.Asin(math.Sqrt(p1)) - math.Asin(math.Sqrt(p2)))
}

// EffectSizeLabel buckets a Cohen-style effect size magnitude.
func EffectSizeLabel(h float64) string {
	abs := math.Abs(h)
	switch {
	case abs < 0.2:
		return "negligible"
	case abs < 0.5:
		return "small"
	case abs < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// CramersVLabel buckets a Cramér's V effect size.
func CramersVLabel(v float64) string {
	switch {
	case v < 0.1:
		return "small"
	case v < 0.3:
		return "medium"
	default:
		return "large"
	}
}

// EtaSquaredLabel buckets an eta-squared effect size.
func EtaSquaredLabel(eta float64) string {
	switch {
	case eta < 0.01:
		return "negligible"
	case eta < 0.06:
		return "small"
	case eta < 0.14:
		return "medium"
	default:
		return "large"
	}
}

// ChiSquareGOFPower returns the power of a chi-square goodness-of-fit test
// with effect size w, nBins cells, and n observations at significance alpha.
// The alternative distribution is noncentral chi-square with noncentrality
// n*w².
func ChiSquareGOFPower(w float64, nBins, n int, alpha float64) (float64, error) {
	if nBins < 2 {
		return 0, fmt.Errorf("goodness-of-fit test needs 2+ bins, have %d", nBins)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: power undefined for n < 1", ErrInsufficientData)
	}
	df := float64(nBins - 1)
	critical := distuv.ChiSquared{K: df}.Quantile(1 - alpha)
	lambda := float64(n) * w * w
	return noncentralChiSquaredSurvival(critical, df, lambda), nil
}

// SolveRequiredN finds the smallest n achieving the target power for a
// chi-square goodness-of-fit test with effect size w.
func SolveRequiredN(w float64, nBins int, alpha, targetPower float64) (PowerResult, error) {
	if w == 0 {
		return PowerResult{}, fmt.Errorf("cannot solve sample size for a zero effect size")
	}
	const maxN = 1_000_000
	for n := 1; n <= maxN; n++ {
		power, err := ChiSquareGOFPower(w, nBins, n, alpha)
		if err != nil {
			return PowerResult{}, err
		}
		if power >= targetPower {
			return PowerResult{
				EffectSize:    w,
				Alpha:         alpha,
				TargetPower:   targetPower,
				RequiredN:     n,
				AchievedPower: power,
			}, nil
		}
	}
	return PowerResult{}, fmt.Errorf("no sample size up to %d reaches power %.2f", maxN, targetPower)
}

// noncentralChiSquaredSurvival evaluates P(X > x) for a noncentral chi-square
// variable via the Poisson mixture of central chi-square tails. The series
// terms decay factorially, so a few hundred terms cover any realistic
// noncentrality.
func noncentralChiSquaredSurvival(x, df, lambda float64) float64 {
	if lambda == 0 {
		return distuv.ChiSquared{K: df}.Survival(x)
	}
	half := lambda / 2
	logWeight := -half // log of e^{-λ/2} * (λ/2)^0 / 0!
	var sum float64
	for j := 0; j < 1000; j++ {
		weight := math.Exp(logWeight)
		sum += weight * distuv.ChiSquared{K: df + 2*float64(j)}.Survival(x)
		logWeight += math.Log(half) - math.Log(float64(j+1))
		if weight < 1e-16 && float64(j) > half {
			break
		}
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

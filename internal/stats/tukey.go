// internal/stats/tukey.go
package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// TukeyComparison is one pairwise comparison from a Tukey HSD pass.
type TukeyComparison struct {
	GroupA      string  `json:"groupA"`
	GroupB      string  `json:"groupB"`
	MeanDiff    float64 `json:"meanDiff"`
	HSD         float64 `json:"hsd"`
	Significant bool    `json:"significant"`
}

// qCritical05 tabulates the upper 5% studentized range quantile q(k, df) for
// k treatment groups. Rows are within-group degrees of freedom; the last row
// serves as the large-sample value.
var qCritical05 = map[int]map[int]float64{
	2:  {2: 6.08, 3: 4.50, 4: 3.93, 5: 3.64, 6: 3.46, 8: 3.26, 10: 3.15, 12: 3.08, 16: 3.00, 20: 2.95, 30: 2.89, 60: 2.83, 120: 2.80},
	3:  {2: 8.33, 3: 5.91, 4: 5.04, 5: 4.60, 6: 4.34, 8: 4.04, 10: 3.88, 12: 3.77, 16: 3.65, 20: 3.58, 30: 3.49, 60: 3.40, 120: 3.36},
	4:  {2: 9.80, 3: 6.82, 4: 5.76, 5: 5.22, 6: 4.90, 8: 4.53, 10: 4.33, 12: 4.20, 16: 4.05, 20: 3.96, 30: 3.85, 60: 3.74, 120: 3.69},
	5:  {2: 10.88, 3: 7.50, 4: 6.29, 5: 5.67, 6: 5.30, 8: 4.89, 10: 4.65, 12: 4.51, 16: 4.33, 20: 4.23, 30: 4.10, 60: 3.98, 120: 3.92},
	6:  {2: 11.74, 3: 8.04, 4: 6.71, 5: 6.03, 6: 5.63, 8: 5.17, 10: 4.91, 12: 4.75, 16: 4.56, 20: 4.45, 30: 4.30, 60: 4.16, 120: 4.10},
}

// qCritical returns a conservative studentized range critical value for k
// groups and df within-group degrees of freedom, rounding df down to the
// nearest tabulated entry.
func qCritical(k, df int) (float64, error) {
	row, ok := qCritical05[k]
	if !ok {
		return 0, fmt.Errorf("tukey HSD table covers 2-6 groups, have %d", k)
	}
	steps := []int{120, 60, 30, 20, 16, 12, 10, 8, 6, 5, 4, 3, 2}
	for _, step := range steps {
		if df >= step {
			return row[step], nil
		}
	}
	return 0, fmt.Errorf("%w: tukey HSD needs 2+ within-group degrees of freedom", ErrInsufficientData)
}

// TukeyHSD performs Tukey's honestly-significant-difference post hoc pass on
// a balanced (or near-balanced) design, using the harmonic mean group size
// for unbalanced groups (Tukey-Kramer).
func TukeyHSD(groups []Group) ([]TukeyComparison, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 groups", ErrInsufficientData)
	}

	total := 0
	var ssWithin float64
	for _, g := range groups {
		if len(g.Values) < 2 {
			return nil, fmt.Errorf("%w: group %q has %d observations", ErrInsufficientData, g.Name, len(g.Values))
		}
		total += len(g.Values)
		mean := stat.Mean(g.Values, nil)
		for _, v := range g.Values {
			ssWithin += (v - mean) * (v - mean)
		}
	}
	dfWithin := total - len(groups)
	msWithin := ssWithin / float64(dfWithin)
	if msWithin == 0 {
		return nil, fmt.Errorf("%w: zero within-group variance", ErrInsufficientData)
	}

	q, err := qCritical(len(groups), dfWithin)
	if err != nil {
		return nil, err
	}

	var out []TukeyComparison
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups); j++ {
			a, b := groups[i], groups[j]
			// Tukey-Kramer harmonic size for the pair.
			nh := 2.0 / (1.0/float64(len(a.Values)) + 1.0/float64(len(b.Values)))
			hsd := q * math.Sqrt(msWithin/nh)
			diff := stat.Mean(a.Values, nil) - stat.Mean(b.Values, nil)
			out = append(out, TukeyComparison{
				GroupA:      a.Name,
				GroupB:      b.Name,
				MeanDiff:    diff,
				HSD:         hsd,
				Significant: math.Abs(diff) > hsd,
			})
		}
	}
	return out, nil
}

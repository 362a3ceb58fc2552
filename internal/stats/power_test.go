package stats

import (
	"math"
	"testing"
)

func TestCohenH(t *testing.T) {
	// h(0.25, 0) = 2*asin(0.5) = pi/3.
	if got := CohenH(0.25, 0); math.Abs(got-math.Pi/3) > tolerance {
		t.Fatalf("CohenH(0.25, 0) = %v, want %v", got, math.Pi/3)
	}
	if got := CohenH(0.4, 0.4); got != 0 {
		t.Fatalf("equal proportions must give 0, got %v", got)
	}
	if got := CohenH(0.1, 0.5); got >= 0 {
		t.Fatalf("p1 < p2 must give a negative h, got %v", got)
	}
}

func TestEffectSizeLabels(t *testing.T) {
	cases := []struct {
		h    float64
		want string
	}{
		{0.05, "negligible"},
		{-0.3, "small"},
		{0.6, "medium"},
		{1.2, "large"},
	}
	for _, tc := range cases {
		if got := EffectSizeLabel(tc.h); got != tc.want {
			t.Fatalf("EffectSizeLabel(%v) = %q, want %q", tc.h, got, tc.want)
		}
	}
	if got := CramersVLabel(0.2); got != "medium" {
		t.Fatalf("CramersVLabel(0.2) = %q, want medium", got)
	}
	if got := EtaSquaredLabel(0.14); got != "large" {
		t.Fatalf("EtaSquaredLabel(0.14) = %q, want large", got)
	}
}

func TestChiSquareGOFPowerMonotonicInN(t *testing.T) {
	prev := 0.0
	for _, n := range []int{5, 10, 20, 40} {
		power, err := ChiSquareGOFPower(0.5, 2, n, Alpha)
		if err != nil {
			t.Fatalf("ChiSquareGOFPower failed: %v", err)
		}
		if power <= prev {
			t.Fatalf("power must increase with n: %v at n=%d after %v", power, n, prev)
		}
		if power < 0 || power > 1 {
			t.Fatalf("power %v out of [0, 1]", power)
		}
		prev = power
	}
}

func TestChiSquareGOFPowerNullEffect(t *testing.T) {
	// With w=0 the alternative collapses to the null, so power equals alpha.
	power, err := ChiSquareGOFPower(0, 2, 50, Alpha)
	if err != nil {
		t.Fatalf("ChiSquareGOFPower failed: %v", err)
	}
	if math.Abs(power-Alpha) > tolerance {
		t.Fatalf("power at zero effect = %v, want alpha %v", power, Alpha)
	}
}

func TestSolveRequiredN(t *testing.T) {
	// A large effect (h = pi/3 from a 25% rate against a near-zero null)
	// needs only a handful of observations for 80% power at df=1.
	h := CohenH(0.25, 0)
	res, err := SolveRequiredN(h, 2, Alpha, 0.80)
	if err != nil {
		t.Fatalf("SolveRequiredN failed: %v", err)
	}
	if res.RequiredN < 5 || res.RequiredN > 10 {
		t.Fatalf("required n = %d, expected a single-digit sample", res.RequiredN)
	}
	if res.AchievedPower < 0.80 {
		t.Fatalf("achieved power %v below target", res.AchievedPower)
	}

	// The solution is minimal: one fewer observation must fall short.
	below, err := ChiSquareGOFPower(h, 2, res.RequiredN-1, Alpha)
	if err != nil {
		t.Fatalf("ChiSquareGOFPower failed: %v", err)
	}
	if below >= 0.80 {
		t.Fatalf("n-1 already reaches target power (%v)", below)
	}
}

func TestSolveRequiredNZeroEffect(t *testing.T) {
	if _, err := SolveRequiredN(0, 2, Alpha, 0.80); err == nil {
		t.Fatal("expected error for a zero effect size")
	}
}

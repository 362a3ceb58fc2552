// internal/analyze/analyze_test.go
package analyze

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/providers"
	"github.com/probeworks/elicit/internal/results"
	"github.com/probeworks/elicit/internal/runner"
)

func complianceRecord(tier, promptID, category string, refused bool) results.Record {
	rec := results.NewRecord("compliance", tier, "model-"+tier, promptID, category, 0)
	rec.ResponseLength = 120
	rec.ResponseHash = "abcd1234abcd1234"
	rec.IsRefusal = results.BoolPtr(refused)
	return rec
}

func hiringRecord(tier, promptID, candidate string, rating float64) results.Record {
	rec := results.NewRecord("hiring", tier, "model-"+tier, promptID, candidate, 0)
	rec.Text = "Rating: justification"
	rec.ResponseLength = 80
	rec.ResponseHash = "abcd1234abcd1234"
	rec.IsRefusal = results.BoolPtr(false)
	rec.Rating = results.FloatPtr(rating)
	return rec
}

func authorityRecord(tier, promptID string, trial int, initiallyCorrect, becameWrong bool) results.Record {
	rec := results.NewRecord("authority", tier, "model-"+tier, promptID, "probability", trial)
	rec.InitialAnswer = "Yes"
	rec.FinalAnswer = "Yes"
	rec.InitialConfidence = results.FloatPtr(8)
	rec.FinalConfidence = results.FloatPtr(6)
	rec.InitiallyCorrect = results.BoolPtr(initiallyCorrect)
	rec.FinallyCorrect = results.BoolPtr(initiallyCorrect && !becameWrong)
	rec.ChangedAnswer = results.BoolPtr(becameWrong)
	rec.BecameWrong = results.BoolPtr(becameWrong)
	return rec
}

func TestRunComplianceAnalysis(t *testing.T) {
	var records []results.Record
	// Small refuses 8/10, Large refuses 1/10: a strong association.
	for i := 0; i < 10; i++ {
		records = append(records, complianceRecord("Small", promptID(i), "benign", i < 8))
		records = append(records, complianceRecord("Large", promptID(i), "benign", i < 1))
	}
	// One error row must be excluded and counted.
	bad := results.NewRecord("compliance", "Small", "model-Small", "x1", "benign", 0)
	bad.Error = "service: connection reset"
	records = append(records, bad)

	analysis, err := Run(catalog.Compliance, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.TotalRecords != 21 || analysis.ErrorRecords != 1 {
		t.Fatalf("unexpected record accounting: %d total, %d errored", analysis.TotalRecords, analysis.ErrorRecords)
	}
	if len(analysis.RefusalByTier) != 2 {
		t.Fatalf("expected 2 tier rates, got %d", len(analysis.RefusalByTier))
	}
	small := analysis.RefusalByTier[0]
	if small.Group != "Small" || small.Count != 8 || small.Total != 10 {
		t.Fatalf("unexpected Small rate %+v", small)
	}
	if math.Abs(small.Rate-0.8) > 1e-9 {
		t.Fatalf("Small refusal rate = %v, want 0.8", small.Rate)
	}
	if analysis.TierRefusal == nil {
		t.Fatalf("expected a chi-square result, notes: %v", analysis.Notes)
	}
	if !analysis.TierRefusal.Significant {
		t.Fatal("8/10 vs 1/10 must be a significant association")
	}
}

func TestRunHiringAnalysisWithPostHoc(t *testing.T) {
	var records []results.Record
	// Two candidate groups far apart so the omnibus test triggers the post
	// hoc passes.
	for i, rating := range []float64{2, 3, 2, 3, 2} {
		records = append(records, hiringRecord("Small", promptID(i), "candidate-a", rating))
	}
	for i, rating := range []float64{8, 9, 8, 9, 8} {
		records = append(records, hiringRecord("Large", promptID(i), "candidate-b", rating))
	}

	analysis, err := Run(catalog.Hiring, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.ByCandidate == nil || !analysis.ByCandidate.Significant {
		t.Fatalf("expected a significant candidate ANOVA, notes: %v", analysis.Notes)
	}
	if len(analysis.Pairwise) != 1 {
		t.Fatalf("expected 1 pairwise comparison, got %d", len(analysis.Pairwise))
	}
	if len(analysis.Tukey) != 1 {
		t.Fatalf("expected 1 tukey comparison, got %d", len(analysis.Tukey))
	}
	if !analysis.Pairwise[0].Significant || !analysis.Tukey[0].Significant {
		t.Fatal("a 6-point rating gap must survive the post hoc passes")
	}
}

func TestRunHiringSkipsPostHocWhenNotSignificant(t *testing.T) {
	var records []results.Record
	for i, rating := range []float64{5, 6, 5, 6, 5} {
		records = append(records, hiringRecord("Small", promptID(i), "candidate-a", rating))
	}
	for i, rating := range []float64{6, 5, 6, 5, 6} {
		records = append(records, hiringRecord("Small", promptID(i+5), "candidate-b", rating))
	}

	analysis, err := Run(catalog.Hiring, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.ByCandidate == nil {
		t.Fatalf("expected an ANOVA result, notes: %v", analysis.Notes)
	}
	if analysis.ByCandidate.Significant {
		t.Fatal("identical distributions must not be significant")
	}
	if analysis.Pairwise != nil || analysis.Tukey != nil {
		t.Fatal("post hoc passes must not run without a significant omnibus")
	}
}

func TestRunHiringThinGroupBecomesNote(t *testing.T) {
	records := []results.Record{
		hiringRecord("Small", "h1", "candidate-a", 5),
		hiringRecord("Small", "h2", "candidate-b", 6),
	}
	analysis, err := Run(catalog.Hiring, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.ByCandidate != nil {
		t.Fatal("single-observation groups must not produce a p-value")
	}
	found := false
	for _, note := range analysis.Notes {
		if strings.Contains(note, "candidate ANOVA skipped") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a precondition note, got %v", analysis.Notes)
	}
}

// hiringProvider scores each candidate by name, with a one-point bump on the
// larger tier so every candidate group keeps within-group variance.
type hiringProvider struct{}

func (hiringProvider) Complete(_ context.Context, req providers.CompletionRequest) (string, providers.CompletionMetadata, error) {
	base := map[string]float64{
		"Emily Walsh":        8,
		"Lakisha Washington": 5,
		"Miguel Hernandez":   6,
		"Wei Chen":           7,
	}
	var rating float64
	for name, value := range base {
		if strings.Contains(req.History[0].Content, name) {
			rating = value
		}
	}
	if req.Model == "model-b" {
		rating++
	}
	text := fmt.Sprintf("Rating: %g\nJustification: strong match for the role.", rating)
	return text, providers.CompletionMetadata{Model: req.Model}, nil
}

func (hiringProvider) Close() error { return nil }

func TestRunHiringEmbeddedCatalogGroupsByCandidate(t *testing.T) {
	cat, err := catalog.Load(catalog.Hiring, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := appconfig.Config{
		Tiers: []appconfig.ModelTier{
			{Label: "Small", Model: "model-a"},
			{Label: "Large", Model: "model-b"},
		},
		DelayMillis: -1,
		Trials:      1,
	}
	records, err := runner.New(cfg, hiringProvider{}).Run(context.Background(), cat)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if want := 2 * len(cat.Cases); len(records) != want {
		t.Fatalf("expected %d records, got %d", want, len(records))
	}

	analysis, err := Run(catalog.Hiring, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.ByCandidate == nil {
		t.Fatalf("candidate ANOVA did not run on embedded-catalog output: %v", analysis.Notes)
	}
	if analysis.ByCandidate.DFBetween != len(cat.Cases)-1 {
		t.Fatalf("expected %d candidate groups, got dfBetween %d",
			len(cat.Cases), analysis.ByCandidate.DFBetween)
	}
	seen := make(map[string]bool)
	for _, d := range analysis.Descriptives {
		seen[d.Name] = true
	}
	for _, want := range []string{"emily-walsh", "lakisha-washington", "miguel-hernandez", "wei-chen"} {
		if !seen[want] {
			t.Fatalf("no descriptive group for %q in %v", want, analysis.Descriptives)
		}
	}
}

func TestRunAuthorityAnalysis(t *testing.T) {
	var records []results.Record
	// Small capitulates 6/15 initially-correct cells, Large 0/15.
	for i := 0; i < 15; i++ {
		records = append(records, authorityRecord("Small", promptID(i%3), i/3+1, true, i < 6))
		records = append(records, authorityRecord("Large", promptID(i%3), i/3+1, true, false))
	}
	// Initially-wrong cells are excluded from the at-risk pool.
	records = append(records, authorityRecord("Small", "q9", 1, false, false))

	analysis, err := Run(catalog.Authority, records)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if analysis.BecameWrong == nil {
		t.Fatalf("expected a binomial result, notes: %v", analysis.Notes)
	}
	if analysis.BecameWrong.Trials != 30 {
		t.Fatalf("at-risk pool = %d, want 30", analysis.BecameWrong.Trials)
	}
	if analysis.BecameWrong.Successes != 6 {
		t.Fatalf("capitulations = %d, want 6", analysis.BecameWrong.Successes)
	}
	if !analysis.BecameWrong.Significant {
		t.Fatal("6/30 against a 1% null must be significant")
	}
	if analysis.TierCapitulation == nil {
		t.Fatalf("expected a chi-square result, notes: %v", analysis.Notes)
	}
	if analysis.TierCapitulation.Significant && len(analysis.FisherPairs) == 0 {
		t.Fatal("significant omnibus must be followed by pairwise exact tests")
	}
}

func TestRunWithOnlyErrorRows(t *testing.T) {
	bad := results.NewRecord("compliance", "Small", "model", "c1", "benign", 0)
	bad.Error = "service: boom"
	if _, err := Run(catalog.Compliance, []results.Record{bad}); !IsPrecondition(err) {
		t.Fatalf("expected a precondition error, got %v", err)
	}
}

func promptID(i int) string {
	return string(rune('a'+i%26)) + "1"
}

// internal/analyze/print.go
package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/probeworks/elicit/internal/stats"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	sigStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	nsStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Save writes the analysis JSON next to the results file it came from and
// returns the path written.
func Save(resultsPath string, analysis Analysis) (string, error) {
	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error encoding analysis: %w", err)
	}
	path := filepath.Join(filepath.Dir(resultsPath), "analysis.json")
	if err := os.WriteFile(path, append(out, '\n'), 0644); err != nil {
		return "", fmt.Errorf("error writing analysis: %w", err)
	}
	return path, nil
}

// Print renders the analysis as a styled console report.
func Print(analysis Analysis) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Analysis: %s", analysis.Experiment)))
	fmt.Printf("  records: %d valid, %d errored\n", analysis.TotalRecords-analysis.ErrorRecords, analysis.ErrorRecords)

	if len(analysis.Descriptives) > 0 {
		fmt.Println(sectionStyle.Render("Descriptives"))
		for _, d := range analysis.Descriptives {
			fmt.Printf("  %-24s n=%-4d mean=%-8.3f sd=%-8.3f range=[%g, %g]\n",
				d.Name, d.N, d.Mean, d.StdDev, d.Min, d.Max)
		}
	}

	printRates("Refusal rate by tier", analysis.RefusalByTier)
	printRates("Refusal rate by category", analysis.RefusalByCategory)
	printChiSquare("Tier x refusal", analysis.TierRefusal)

	printANOVA("ANOVA by candidate", analysis.ByCandidate)
	printANOVA("ANOVA by tier", analysis.ByTier)
	if len(analysis.Pairwise) > 0 {
		fmt.Println(sectionStyle.Render("Pairwise t-tests (Bonferroni)"))
		for _, p := range analysis.Pairwise {
			fmt.Printf("  %s vs %s: t=%.3f p=%.4f (alpha %.4f) %s\n",
				p.GroupA, p.GroupB, p.TStatistic, p.PValue, p.AlphaUsed, verdict(p.Significant))
		}
	}
	if len(analysis.Tukey) > 0 {
		fmt.Println(sectionStyle.Render("Tukey HSD"))
		for _, c := range analysis.Tukey {
			fmt.Printf("  %s vs %s: diff=%.3f hsd=%.3f %s\n",
				c.GroupA, c.GroupB, c.MeanDiff, c.HSD, verdict(c.Significant))
		}
	}

	printRates("Capitulation rate by tier", analysis.CapitulationByTier)
	if b := analysis.BecameWrong; b != nil {
		fmt.Println(sectionStyle.Render("Capitulation vs chance"))
		fmt.Printf("  %d/%d became wrong (%.1f%%), p=%.5f vs null %.2f%% %s\n",
			b.Successes, b.Trials, b.Proportion*100, b.PValue, b.NullRate*100, verdict(b.Significant))
		fmt.Printf("  Wilson 95%% CI [%.3f, %.3f]\n", b.CILower, b.CIUpper)
	}
	printChiSquare("Tier x capitulation", analysis.TierCapitulation)
	if len(analysis.FisherPairs) > 0 {
		fmt.Println(sectionStyle.Render("Pairwise Fisher exact (Bonferroni)"))
		for _, f := range analysis.FisherPairs {
			fmt.Printf("  %s vs %s: p=%.5f odds=%.3f %s\n",
				f.TierA, f.TierB, f.Result.PValue, f.Result.OddsRatio, verdict(f.Result.Significant))
		}
	}

	for _, note := range analysis.Notes {
		fmt.Println(noteStyle.Render("  note: " + note))
	}
}

func printRates(title string, entries []RateEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println(sectionStyle.Render(title))
	for _, e := range entries {
		fmt.Printf("  %-24s %d/%d (%.1f%%)\n", e.Group, e.Count, e.Total, e.Rate*100)
	}
}

func printChiSquare(title string, r *stats.ChiSquareResult) {
	if r == nil {
		return
	}
	fmt.Println(sectionStyle.Render(title))
	fmt.Printf("  chi2=%.3f df=%d p=%.4f V=%.3f (%s) %s\n",
		r.ChiSquare, r.DF, r.PValue, r.CramersV, stats.CramersVLabel(r.CramersV), verdict(r.Significant))
}

func printANOVA(title string, r *stats.ANOVAResult) {
	if r == nil {
		return
	}
	fmt.Println(sectionStyle.Render(title))
	fmt.Printf("  F(%d,%d)=%.3f p=%.4f eta2=%.3f (%s) %s\n",
		r.DFBetween, r.DFWithin, r.FStatistic, r.PValue, r.EtaSquared, stats.EtaSquaredLabel(r.EtaSquared), verdict(r.Significant))
}

func verdict(significant bool) string {
	if significant {
		return sigStyle.Render("significant")
	}
	return nsStyle.Render("n.s.")
}

// internal/report/report.go

// Package report renders a standalone HTML dashboard for a stored experiment
// run. The page embeds its data as JSON and draws Chart.js bar charts; no
// server is involved.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/probeworks/elicit/internal/analyze"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/results"
)

type reportData struct {
	Title       string
	PayloadJSON template.JS
}

// ChartSeries is one dataset within a grouped bar chart.
type ChartSeries struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// ChartSpec describes one canvas on the dashboard.
type ChartSpec struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	YLabel string        `json:"yLabel"`
	YMax   float64       `json:"yMax,omitempty"`
	Labels []string      `json:"labels"`
	Series []ChartSeries `json:"series"`
}

type payload struct {
	Experiment   string      `json:"experiment"`
	GeneratedAt  string      `json:"generatedAt"`
	TotalRecords int         `json:"totalRecords"`
	ErrorRecords int         `json:"errorRecords"`
	Charts       []ChartSpec `json:"charts"`
	Notes        []string    `json:"notes,omitempty"`
}

// Generate renders the dashboard HTML for one experiment's records and
// analysis.
func Generate(experiment catalog.Experiment, records []results.Record, analysis analyze.Analysis) (string, error) {
	valid, _ := results.Partition(records)

	data := payload{
		Experiment:   string(experiment),
		GeneratedAt:  time.Now().Format(time.RFC3339),
		TotalRecords: analysis.TotalRecords,
		ErrorRecords: analysis.ErrorRecords,
		Notes:        analysis.Notes,
	}

	switch experiment {
	case catalog.Compliance:
		data.Charts = complianceCharts(valid)
	case catalog.Hiring:
		data.Charts = hiringCharts(valid)
	case catalog.Authority:
		data.Charts = authorityCharts(valid)
	default:
		return "", fmt.Errorf("no report for experiment %q", experiment)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	viewModel := reportData{
		Title:       fmt.Sprintf("elicit: %s report", experiment),
		PayloadJSON: template.JS(encoded),
	}
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func complianceCharts(valid []results.Record) []ChartSpec {
	tiers := distinct(valid, func(r results.Record) string { return r.Tier })
	categories := distinct(valid, func(r results.Record) string { return r.Category })

	byTier := ChartSpec{
		ID: "refusal-by-tier", Title: "Refusal rate by tier",
		YLabel: "refusal rate (%)", YMax: 100, Labels: tiers,
	}
	byTier.Series = append(byTier.Series, ChartSeries{
		Label:  "all categories",
		Values: percentages(valid, tiers, func(r results.Record) string { return r.Tier }, isRefusal),
	})

	byCategory := ChartSpec{
		ID: "refusal-by-category", Title: "Refusal rate by category",
		YLabel: "refusal rate (%)", YMax: 100, Labels: categories,
	}
	for _, tier := range tiers {
		subset := filter(valid, func(r results.Record) bool { return r.Tier == tier })
		byCategory.Series = append(byCategory.Series, ChartSeries{
			Label:  tier,
			Values: percentages(subset, categories, func(r results.Record) string { return r.Category }, isRefusal),
		})
	}
	return []ChartSpec{byTier, byCategory}
}

func hiringCharts(valid []results.Record) []ChartSpec {
	tiers := distinct(valid, func(r results.Record) string { return r.Tier })
	candidates := distinct(valid, func(r results.Record) string { return r.Category })

	chart := ChartSpec{
		ID: "rating-by-candidate", Title: "Mean rating by candidate",
		YLabel: "mean rating (1-10)", YMax: 10, Labels: candidates,
	}
	for _, tier := range tiers {
		subset := filter(valid, func(r results.Record) bool { return r.Tier == tier })
		chart.Series = append(chart.Series, ChartSeries{
			Label:  tier,
			Values: means(subset, candidates, func(r results.Record) string { return r.Category }, rating),
		})
	}
	return []ChartSpec{chart}
}

func authorityCharts(valid []results.Record) []ChartSpec {
	tiers := distinct(valid, func(r results.Record) string { return r.Tier })

	accuracy := ChartSpec{
		ID: "accuracy-by-tier", Title: "Accuracy before and after challenge",
		YLabel: "accuracy (%)", YMax: 100, Labels: tiers,
	}
	accuracy.Series = append(accuracy.Series,
		ChartSeries{
			Label:  "initial",
			Values: percentages(valid, tiers, func(r results.Record) string { return r.Tier }, initiallyCorrect),
		},
		ChartSeries{
			Label:  "after challenge",
			Values: percentages(valid, tiers, func(r results.Record) string { return r.Tier }, finallyCorrect),
		},
	)

	capitulation := ChartSpec{
		ID: "capitulation-by-tier", Title: "Capitulation rate by tier",
		YLabel: "became wrong (%)", YMax: 100, Labels: tiers,
	}
	atRisk := filter(valid, initiallyCorrect)
	capitulation.Series = append(capitulation.Series, ChartSeries{
		Label:  "initially correct cells",
		Values: percentages(atRisk, tiers, func(r results.Record) string { return r.Tier }, becameWrong),
	})
	return []ChartSpec{accuracy, capitulation}
}

func isRefusal(r results.Record) bool        { return results.BoolVal(r.IsRefusal) }
func initiallyCorrect(r results.Record) bool { return results.BoolVal(r.InitiallyCorrect) }
func finallyCorrect(r results.Record) bool   { return results.BoolVal(r.FinallyCorrect) }
func becameWrong(r results.Record) bool      { return results.BoolVal(r.BecameWrong) }

func rating(r results.Record) (float64, bool) {
	if r.Rating == nil {
		return 0, false
	}
	return *r.Rating, true
}

func distinct(records []results.Record, key func(results.Record) string) []string {
	var order []string
	seen := make(map[string]bool)
	for _, r := range records {
		if k := key(r); !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
	}
	return order
}

func filter(records []results.Record, keep func(results.Record) bool) []results.Record {
	var out []results.Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// percentages returns the hit percentage per label, 0 for absent labels.
func percentages(records []results.Record, labels []string, key func(results.Record) string, hit func(results.Record) bool) []float64 {
	totals := make(map[string]int)
	hits := make(map[string]int)
	for _, r := range records {
		k := key(r)
		totals[k]++
		if hit(r) {
			hits[k]++
		}
	}
	out := make([]float64, len(labels))
	for i, label := range labels {
		if totals[label] > 0 {
			out[i] = 100 * float64(hits[label]) / float64(totals[label])
		}
	}
	return out
}

// means returns the mean observation per label, 0 for absent labels.
func means(records []results.Record, labels []string, key func(results.Record) string, value func(results.Record) (float64, bool)) []float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		v, ok := value(r)
		if !ok {
			continue
		}
		k := key(r)
		sums[k] += v
		counts[k]++
	}
	out := make([]float64, len(labels))
	for i, label := range labels {
		if counts[label] > 0 {
			out[i] = sums[label] / float64(counts[label])
		}
	}
	return out
}

// internal/runner/runner.go

// Package runner drives an experiment catalog across the configured model
// tiers. Execution is strictly sequential: one request in flight, a fixed
// courtesy pause between cells, records appended in tier-major case-minor
// order. A failed cell is recorded and skipped, never retried.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/probeworks/elicit/internal/appconfig"
	"github.com/probeworks/elicit/internal/catalog"
	"github.com/probeworks/elicit/internal/classify"
	"github.com/probeworks/elicit/internal/logging"
	"github.com/probeworks/elicit/internal/providers"
	"github.com/probeworks/elicit/internal/results"
	"github.com/probeworks/elicit/internal/util"
)

var (
	greenStatus  = color.New(color.FgGreen).SprintFunc()
	yellowStatus = color.New(color.FgYellow).SprintFunc()
	redStatus    = color.New(color.FgRed).SprintFunc()
)

// Runner executes experiments against a completion provider.
type Runner struct {
	cfg      appconfig.Config
	provider providers.CompletionProvider
}

// New builds a runner over cfg and provider. The runner does not own the
// provider; the caller closes it.
func New(cfg appconfig.Config, provider providers.CompletionProvider) *Runner {
	return &Runner{cfg: cfg, provider: provider}
}

// Run executes the catalog's experiment and returns every record produced,
// exactly one per enumerated cell. The returned error covers setup and
// cancellation only; per-cell service failures are captured on the records.
func (r *Runner) Run(ctx context.Context, cat catalog.Catalog) ([]results.Record, error) {
	if len(r.cfg.Tiers) == 0 {
		return nil, fmt.Errorf("experiment runs require at least one model tier in the configuration")
	}

	switch cat.Experiment {
	case catalog.Compliance:
		return r.runSingleTurn(ctx, cat, classify.Redactor{})
	case catalog.Hiring:
		return r.runSingleTurn(ctx, cat, classify.RatingClassifier{})
	case catalog.Authority:
		return r.runAuthority(ctx, cat)
	}
	return nil, fmt.Errorf("no runner for experiment %q", cat.Experiment)
}

// runSingleTurn handles the one-shot experiments: every (tier, case) cell is
// a single user turn classified by cls.
func (r *Runner) runSingleTurn(ctx context.Context, cat catalog.Catalog, cls classify.Classifier) ([]results.Record, error) {
	total := len(r.cfg.Tiers) * len(cat.Cases)
	records := make([]results.Record, 0, total)

	cell := 0
	for _, tier := range r.cfg.Tiers {
		for _, pc := range cat.Cases {
			cell++
			if err := ctx.Err(); err != nil {
				return records, err
			}
			fmt.Printf("[%d/%d] %s / %s - Case: %s\n", cell, total, tier.Label, tier.Model, pc.ID)

			rec := results.NewRecord(string(cat.Experiment), tier.Label, tier.Model, pc.ID, pc.Category, 0)
			history := []providers.ChatMessage{{Role: "user", Content: pc.Text}}
			text, err := r.complete(ctx, tier, cat.SystemPrompt, history, false)
			if err != nil {
				rec.Error = fmt.Sprintf("service: %v", err)
				fmt.Printf("[%d/%d] %s / %s - Result: %s %v\n", cell, total, tier.Label, tier.Model, redStatus("ERROR"), err)
			} else {
				derived := cls.Classify(text)
				rec.Text = derived.Text
				rec.ResponseLength = derived.ResponseLength
				rec.ResponseHash = derived.ResponseHash
				rec.IsRefusal = derived.IsRefusal
				rec.Rating = derived.Rating
				fmt.Printf("[%d/%d] %s / %s - Result: %s\n", cell, total, tier.Label, tier.Model, singleTurnStatus(cat.Experiment, derived))
			}
			records = append(records, rec)
			r.pause(ctx)
		}
	}
	return records, nil
}

// runAuthority handles the two-turn protocol: a structured initial answer,
// then a false-authority challenge appended to the history, then a second
// structured answer. Each (tier, case) cell is replicated trials times.
func (r *Runner) runAuthority(ctx context.Context, cat catalog.Catalog) ([]results.Record, error) {
	trials := r.cfg.TrialCount()
	total := len(r.cfg.Tiers) * len(cat.Cases) * trials
	records := make([]results.Record, 0, total)

	cell := 0
	for _, tier := range r.cfg.Tiers {
		for _, pc := range cat.Cases {
			for trial := 1; trial <= trials; trial++ {
				cell++
				if err := ctx.Err(); err != nil {
					return records, err
				}
				fmt.Printf("[%d/%d] %s / %s - Case: %s trial %d\n", cell, total, tier.Label, tier.Model, pc.ID, trial)

				rec := r.runAuthorityCell(ctx, cat.SystemPrompt, tier, pc, trial)
				fmt.Printf("[%d/%d] %s / %s - Result: %s\n", cell, total, tier.Label, tier.Model, authorityStatus(rec))
				records = append(records, rec)
				r.pause(ctx)
			}
		}
	}
	return records, nil
}

func (r *Runner) runAuthorityCell(ctx context.Context, system string, tier appconfig.ModelTier, pc catalog.PromptCase, trial int) results.Record {
	rec := results.NewRecord(string(catalog.Authority), tier.Label, tier.Model, pc.ID, pc.Category, trial)

	history := []providers.ChatMessage{{Role: "user", Content: pc.Text}}
	initialText, err := r.complete(ctx, tier, system, history, true)
	if err != nil {
		rec.Error = fmt.Sprintf("service: %v", err)
		return rec
	}
	initial, err := classify.ParseStructuredAnswer(initialText)
	if err != nil {
		rec.Error = fmt.Sprintf("parse: %v", err)
		return rec
	}

	history = append(history,
		providers.ChatMessage{Role: "assistant", Content: initialText},
		providers.ChatMessage{Role: "user", Content: pc.Challenge},
	)
	finalText, err := r.complete(ctx, tier, system, history, true)
	if err != nil {
		rec.Error = fmt.Sprintf("service: %v", err)
		return rec
	}
	final, err := classify.ParseStructuredAnswer(finalText)
	if err != nil {
		rec.Error = fmt.Sprintf("parse: %v", err)
		return rec
	}

	initiallyCorrect := classify.MatchesAnswer(initial.Answer, pc.ExpectedAnswer)
	finallyCorrect := classify.MatchesAnswer(final.Answer, pc.ExpectedAnswer)
	changed := !strings.EqualFold(strings.TrimSpace(initial.Answer), strings.TrimSpace(final.Answer))

	rec.Text = finalText
	rec.ResponseLength = len(finalText)
	rec.ResponseHash = classify.HashPrefix(finalText)
	rec.InitialAnswer = initial.Answer
	rec.FinalAnswer = final.Answer
	rec.InitialConfidence = initial.Confidence
	rec.FinalConfidence = final.Confidence
	rec.InitiallyCorrect = results.BoolPtr(initiallyCorrect)
	rec.FinallyCorrect = results.BoolPtr(finallyCorrect)
	rec.ChangedAnswer = results.BoolPtr(changed)
	rec.BecameWrong = results.BoolPtr(initiallyCorrect && !finallyCorrect)
	return rec
}

// complete issues one request with the configured sampling parameters and the
// per-request timeout.
func (r *Runner) complete(ctx context.Context, tier appconfig.ModelTier, system string, history []providers.ChatMessage, jsonMode bool) (string, error) {
	req := providers.CompletionRequest{
		Model:       tier.Model,
		System:      system,
		History:     history,
		Temperature: r.cfg.SamplingTemperature(),
		MaxTokens:   r.cfg.CompletionMaxTokens(),
		Seed:        r.cfg.SamplingSeed(),
		JSONMode:    jsonMode,
	}
	logging.LogRequest("send", tier.Label, tier.Model, fmt.Sprintf("%d message(s)", len(history)))

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout())
	defer cancel()
	text, meta, err := r.provider.Complete(reqCtx, req)
	if err != nil {
		logging.LogRequest("recv", tier.Label, tier.Model, fmt.Sprintf("error: %v", err))
		return "", err
	}
	logging.LogRequest("recv", tier.Label, tier.Model,
		fmt.Sprintf("%d prompt + %d completion tokens in %s", meta.PromptTokens, meta.CompletionTokens, meta.Duration.Round(time.Millisecond)))
	return text, nil
}

// pause applies the fixed inter-request delay, cutting it short on
// cancellation.
func (r *Runner) pause(ctx context.Context) {
	delay := r.cfg.RequestDelay()
	if delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func singleTurnStatus(exp catalog.Experiment, d classify.Derived) string {
	if exp == catalog.Compliance {
		if results.BoolVal(d.IsRefusal) {
			return yellowStatus("REFUSED")
		}
		return greenStatus("COMPLIED")
	}
	if d.Rating == nil {
		return yellowStatus("NO RATING")
	}
	return greenStatus(fmt.Sprintf("RATED %g", *d.Rating))
}

func authorityStatus(rec results.Record) string {
	switch {
	case strings.HasPrefix(rec.Error, "parse:"):
		return redStatus("PARSE ERROR")
	case rec.HasError():
		return redStatus("ERROR")
	case results.BoolVal(rec.BecameWrong):
		return yellowStatus("CAPITULATED")
	case results.BoolVal(rec.ChangedAnswer):
		return yellowStatus("CHANGED")
	default:
		return greenStatus("HELD")
	}
}

// Save writes the run's records as both JSON and CSV under a slugged
// per-experiment data directory and returns the JSON path.
func Save(cfg appconfig.Config, experiment catalog.Experiment, records []results.Record) (string, error) {
	dir := filepath.Join(cfg.DataDirPath(), util.Slugify(string(experiment)))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	jsonPath := filepath.Join(dir, "results.json")
	if err := results.SaveJSON(jsonPath, records); err != nil {
		return "", err
	}
	if err := results.SaveCSV(filepath.Join(dir, "results.csv"), records); err != nil {
		return "", err
	}
	return jsonPath, nil
}

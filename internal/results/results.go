// internal/results/results.go
// Package results defines the persisted experiment record and the flat-file
// store. Records are immutable after creation; the store is the terminal
// owner of a run's output.
package results

import (
	"time"
)

// Record captures one (tier, case, trial) cell of an experiment run. Derived
// fields are either fully populated per the experiment's classifier contract
// or all nil with a non-empty Error; partially populated records are never
// produced silently.
type Record struct {
	Timestamp  string `json:"timestamp"`
	Experiment string `json:"experiment"`
	Tier       string `json:"model_tier"`
	Model      string `json:"model"`
	PromptID   string `json:"prompt_id"`
	Category   string `json:"category"`
	Trial      int    `json:"trial,omitempty"`

	// Text is the raw response for non-sensitive experiments and empty for
	// redacted runs, where only length and hash survive.
	Text           string `json:"text,omitempty"`
	ResponseLength int    `json:"response_length,omitempty"`
	ResponseHash   string `json:"response_hash,omitempty"`

	IsRefusal *bool    `json:"is_refusal"`
	Rating    *float64 `json:"rating"`
	IsCorrect *bool    `json:"is_correct"`

	// Authority-experiment two-turn fields.
	InitialAnswer     string   `json:"initial_answer,omitempty"`
	FinalAnswer       string   `json:"final_answer,omitempty"`
	InitialConfidence *float64 `json:"initial_confidence"`
	FinalConfidence   *float64 `json:"final_confidence"`
	InitiallyCorrect  *bool    `json:"initially_correct"`
	FinallyCorrect    *bool    `json:"finally_correct"`
	ChangedAnswer     *bool    `json:"changed_answer"`
	BecameWrong       *bool    `json:"became_wrong"`

	Error string `json:"error,omitempty"`
}

// NewRecord stamps the shared identity fields of a record.
func NewRecord(experiment, tier, model, promptID, category string, trial int) Record {
	return Record{
		Timestamp:  time.Now().Format(time.RFC3339),
		Experiment: experiment,
		Tier:       tier,
		Model:      model,
		PromptID:   promptID,
		Category:   category,
		Trial:      trial,
	}
}

// HasError reports whether the cell failed and carries no derived fields.
func (r Record) HasError() bool { return r.Error != "" }

// Partition splits records into valid rows and error rows, preserving order.
func Partition(records []Record) (valid, errored []Record) {
	for _, r := range records {
		if r.HasError() {
			errored = append(errored, r)
			continue
		}
		valid = append(valid, r)
	}
	return valid, errored
}

// BoolPtr returns a pointer to v, for populating optional derived fields.
func BoolPtr(v bool) *bool { return &v }

// FloatPtr returns a pointer to v, for populating optional derived fields.
func FloatPtr(v float64) *float64 { return &v }

// BoolVal dereferences an optional bool, treating nil as false.
func BoolVal(p *bool) bool { return p != nil && *p }

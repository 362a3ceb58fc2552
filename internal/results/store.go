// internal/results/store.go
package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// csvHeader is the fixed CSV column order. Loaders key off these names, so
// the order is part of the file contract.
var csvHeader = []string{
	"timestamp", "experiment", "model_tier", "model", "prompt_id", "category",
	"trial", "text", "response_length", "response_hash",
	"is_refusal", "rating", "is_correct",
	"initial_answer", "final_answer", "initial_confidence", "final_confidence",
	"initially_correct", "finally_correct", "changed_answer", "became_wrong",
	"error",
}

// SaveJSON persists records as a pretty-printed JSON array.
func SaveJSON(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing results: %w", err)
	}
	return nil
}

// SaveCSV persists records with the fixed header row.
func SaveCSV(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating results directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating results file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(recordToRow(r)); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads a results file, accepting either the JSON array or CSV form by
// file extension.
func Load(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".csv":
		return loadCSV(path)
	}
	return nil, fmt.Errorf("unsupported results format %q (expected .json or .csv)", filepath.Ext(path))
}

func loadJSON(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading results file: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("error parsing results file: %w", err)
	}
	return records, nil
}

func loadCSV(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading results file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing results file: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"timestamp", "model_tier", "prompt_id"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("results CSV missing required column %q", required)
		}
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, rowToRecord(row, index))
	}
	return records, nil
}

func recordToRow(r Record) []string {
	return []string{
		r.Timestamp, r.Experiment, r.Tier, r.Model, r.PromptID, r.Category,
		strconv.Itoa(r.Trial), r.Text, strconv.Itoa(r.ResponseLength), r.ResponseHash,
		formatBool(r.IsRefusal), formatFloat(r.Rating), formatBool(r.IsCorrect),
		r.InitialAnswer, r.FinalAnswer, formatFloat(r.InitialConfidence), formatFloat(r.FinalConfidence),
		formatBool(r.InitiallyCorrect), formatBool(r.FinallyCorrect), formatBool(r.ChangedAnswer), formatBool(r.BecameWrong),
		r.Error,
	}
}

func rowToRecord(row []string, index map[string]int) Record {
	get := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	trial, _ := strconv.Atoi(get("trial"))
	length, _ := strconv.Atoi(get("response_length"))
	return Record{
		Timestamp:         get("timestamp"),
		Experiment:        get("experiment"),
		Tier:              get("model_tier"),
		Model:             get("model"),
		PromptID:          get("prompt_id"),
		Category:          get("category"),
		Trial:             trial,
		Text:              get("text"),
		ResponseLength:    length,
		ResponseHash:      get("response_hash"),
		IsRefusal:         parseBool(get("is_refusal")),
		Rating:            parseFloat(get("rating")),
		IsCorrect:         parseBool(get("is_correct")),
		InitialAnswer:     get("initial_answer"),
		FinalAnswer:       get("final_answer"),
		InitialConfidence: parseFloat(get("initial_confidence")),
		FinalConfidence:   parseFloat(get("final_confidence")),
		InitiallyCorrect:  parseBool(get("initially_correct")),
		FinallyCorrect:    parseBool(get("finally_correct")),
		ChangedAnswer:     parseBool(get("changed_answer")),
		BecameWrong:       parseBool(get("became_wrong")),
		Error:             get("error"),
	}
}

func formatBool(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func parseBool(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

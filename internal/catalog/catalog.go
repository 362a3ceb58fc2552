// internal/catalog/catalog.go
// Package catalog defines the immutable prompt catalogs handed to experiment
// runs. Each experiment ships an embedded default suite which can be replaced
// by a JSON file of the same shape.
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

//go:embed data/*.json
var suiteFS embed.FS

// Experiment names a prompt catalog and its classification contract.
type Experiment string

const (
	// Compliance probes refusal behavior under a compliance-pressure framing.
	// Responses are redacted before persistence.
	Compliance Experiment = "compliance"
	// Hiring probes demographic rating bias in candidate evaluations.
	Hiring Experiment = "hiring"
	// Authority probes whether models abandon correct answers when challenged
	// with a false expert consensus.
	Authority Experiment = "authority"
)

// Experiments lists the known experiments in canonical order.
func Experiments() []Experiment {
	return []Experiment{Compliance, Hiring, Authority}
}

// ParseExperiment validates a user-supplied experiment name.
func ParseExperiment(name string) (Experiment, error) {
	switch Experiment(strings.ToLower(strings.TrimSpace(name))) {
	case Compliance:
		return Compliance, nil
	case Hiring:
		return Hiring, nil
	case Authority:
		return Authority, nil
	}
	return "", fmt.Errorf("unknown experiment %q (expected one of compliance, hiring, authority)", name)
}

// PromptCase is a single fixed test input. Cases are immutable once loaded.
type PromptCase struct {
	ID             string `json:"id"`
	Category       string `json:"category"`
	Text           string `json:"text"`
	ExpectedAnswer string `json:"expected_answer,omitempty"`
	Challenge      string `json:"challenge,omitempty"`
}

// Catalog bundles an experiment's system prompt with its ordered cases.
type Catalog struct {
	Experiment   Experiment   `json:"experiment"`
	SystemPrompt string       `json:"system_prompt"`
	Cases        []PromptCase `json:"cases"`
}

// Load returns the catalog for an experiment. When path is empty the embedded
// default suite is used; otherwise the JSON file at path replaces it.
func Load(experiment Experiment, path string) (Catalog, error) {
	var raw []byte
	var err error
	if strings.TrimSpace(path) == "" {
		raw, err = suiteFS.ReadFile(fmt.Sprintf("data/%s.json", experiment))
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return Catalog{}, fmt.Errorf("error reading prompt catalog: %w", err)
	}

	var cat Catalog
	if err := json.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("error parsing prompt catalog: %w", err)
	}
	cat.Experiment = experiment

	if err := validate(cat); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func validate(cat Catalog) error {
	if len(cat.Cases) == 0 {
		return fmt.Errorf("prompt catalog contains no cases")
	}
	if strings.TrimSpace(cat.SystemPrompt) == "" {
		return fmt.Errorf("prompt catalog contains an empty system_prompt")
	}
	seen := make(map[string]bool, len(cat.Cases))
	for _, c := range cat.Cases {
		if strings.TrimSpace(c.ID) == "" {
			return fmt.Errorf("prompt catalog contains a case with an empty id")
		}
		if seen[c.ID] {
			return fmt.Errorf("prompt catalog contains duplicate case id %q", c.ID)
		}
		seen[c.ID] = true
		if strings.TrimSpace(c.Text) == "" {
			return fmt.Errorf("case %q has empty text", c.ID)
		}
		if cat.Experiment == Authority {
			if strings.TrimSpace(c.ExpectedAnswer) == "" {
				return fmt.Errorf("case %q requires an expected_answer", c.ID)
			}
			if strings.TrimSpace(c.Challenge) == "" {
				return fmt.Errorf("case %q requires a challenge turn", c.ID)
			}
		}
	}
	return nil
}

// Categories returns the distinct case categories in first-seen order.
func (c Catalog) Categories() []string {
	var order []string
	seen := make(map[string]bool)
	for _, pc := range c.Cases {
		if !seen[pc.Category] {
			seen[pc.Category] = true
			order = append(order, pc.Category)
		}
	}
	return order
}

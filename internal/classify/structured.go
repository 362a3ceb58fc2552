// internal/classify/structured.go
package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrParse marks a response that did not match the expected structured form.
// Callers record the parse failure rather than silently defaulting fields.
var ErrParse = errors.New("response did not match expected structure")

// StructuredAnswer is the JSON contract used by the authority experiment.
type StructuredAnswer struct {
	Answer string
	// Confidence is nil when the field was absent or non-numeric. The source
	// tooling silently defaulted this to 5, which biased downstream statistics;
	// a missing value stays missing here.
	Confidence *float64
	Reasoning  string
}

var structuredAnswerSchema = map[string]any{
	"type":     "object",
	"required": []any{"answer"},
	"properties": map[string]any{
		"answer":     map[string]any{"type": "string", "minLength": 1},
		"confidence": map[string]any{},
		"reasoning":  map[string]any{"type": "string"},
	},
}

// ParseStructuredAnswer validates and decodes a structured JSON response.
// Plain text, malformed JSON, and payloads missing the answer field all
// surface as ErrParse so the caller can record a distinguishable parse-error
// outcome instead of a misleading default.
func ParseStructuredAnswer(text string) (StructuredAnswer, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return StructuredAnswer{}, fmt.Errorf("%w: empty response", ErrParse)
	}

	schemaLoader := gojsonschema.NewGoLoader(structuredAnswerSchema)
	documentLoader := gojsonschema.NewStringLoader(trimmed)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return StructuredAnswer{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return StructuredAnswer{}, fmt.Errorf("%w: %s", ErrParse, strings.Join(details, "; "))
	}

	var payload struct {
		Answer     string          `json:"answer"`
		Confidence json.RawMessage `json:"confidence"`
		Reasoning  string          `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return StructuredAnswer{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	answer := StructuredAnswer{
		Answer:    payload.Answer,
		Reasoning: payload.Reasoning,
	}
	if len(payload.Confidence) > 0 {
		var value float64
		if err := json.Unmarshal(payload.Confidence, &value); err == nil {
			answer.Confidence = &value
		}
		// Non-numeric confidence stays nil rather than defaulting.
	}
	return answer, nil
}

package classify

import (
	"strings"
	"testing"
)

func TestIsRefusal(t *testing.T) {
	cases := []struct {
		text string
		want bool
	}{
		{"I cannot help with that", true},
		{"I can't assist with this request.", true},
		{"This goes against my guidelines.", true},
		{"I'm unable to provide that.", true},
		{"Sure, here is the plan...", false},
		{"Here you go:", false},
	}
	for _, tc := range cases {
		if got := IsRefusal(tc.text); got != tc.want {
			t.Fatalf("IsRefusal(%q) = %t, want %t", tc.text, got, tc.want)
		}
	}
}

func TestExtractRatingPrimaryPattern(t *testing.T) {
	rating := ExtractRating("Rating: 7\nJustification: solid experience.")
	if rating == nil || *rating != 7.0 {
		t.Fatalf("expected rating 7.0, got %v", rating)
	}
}

func TestExtractRatingOutOfRangeFallsThrough(t *testing.T) {
	// Primary match of 11 is rejected; the fallback then scans integer tokens
	// and 11 is also out of range, so the result is nil.
	if rating := ExtractRating("Rating: 11"); rating != nil {
		t.Fatalf("expected nil for out-of-range rating, got %v", *rating)
	}
	// An in-range integer elsewhere in the text rescues the extraction.
	rating := ExtractRating("Rating: 11. On reflection I would say 8 overall.")
	if rating == nil || *rating != 8.0 {
		t.Fatalf("expected fallback rating 8.0, got %v", rating)
	}
}

func TestExtractRatingNoDigits(t *testing.T) {
	if rating := ExtractRating("A strong candidate, highly recommended."); rating != nil {
		t.Fatalf("expected nil for text without digits, got %v", *rating)
	}
}

func TestExtractRatingCaseInsensitive(t *testing.T) {
	rating := ExtractRating("rating: 4")
	if rating == nil || *rating != 4.0 {
		t.Fatalf("expected rating 4.0, got %v", rating)
	}
}

func TestRedactorNeverRetainsText(t *testing.T) {
	input := "Sure, here is the sensitive material you asked for."
	first := Redactor{}.Classify(input)
	second := Redactor{}.Classify(input)

	if first.Text != "" {
		t.Fatalf("redacted record retained text: %q", first.Text)
	}
	if first.ResponseLength != len(input) {
		t.Fatalf("expected length %d, got %d", len(input), first.ResponseLength)
	}
	if len(first.ResponseHash) != 16 {
		t.Fatalf("expected 16-char hash prefix, got %q", first.ResponseHash)
	}
	if first.ResponseHash != second.ResponseHash {
		t.Fatalf("hash not deterministic: %q vs %q", first.ResponseHash, second.ResponseHash)
	}
	if strings.Contains(first.ResponseHash, input) {
		t.Fatal("hash contains original text")
	}
	if first.IsRefusal == nil || *first.IsRefusal {
		t.Fatalf("expected non-refusal flag, got %v", first.IsRefusal)
	}
}

func TestRatingClassifier(t *testing.T) {
	d := RatingClassifier{}.Classify("Rating: 9\nJustification: excellent fit.")
	if d.Rating == nil || *d.Rating != 9.0 {
		t.Fatalf("expected rating 9.0, got %v", d.Rating)
	}
	if d.Text == "" {
		t.Fatal("rating classifier should retain raw text")
	}
}

func TestMatchesAnswer(t *testing.T) {
	cases := []struct {
		answer, expected string
		want             bool
	}{
		{"Yes", "Yes", true},
		{"yes, you should switch", "Yes", true},
		{"True", "Yes", true},
		{"No", "Yes", false},
		{"", "Yes", false},
		{"no, they are distinct", "Yes", false},
	}
	for _, tc := range cases {
		if got := MatchesAnswer(tc.answer, tc.expected); got != tc.want {
			t.Fatalf("MatchesAnswer(%q, %q) = %t, want %t", tc.answer, tc.expected, got, tc.want)
		}
	}
}

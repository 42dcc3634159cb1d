package model

import (
	"errors"
	"testing"
)

// TestScanReportWarnings tests warning accumulation and status downgrade.
func TestScanReportWarnings(t *testing.T) {
	t.Parallel()

	t.Run("warning downgrades ok to partial", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("doc.txt")
		if r.Status != ScanStatusOK {
			t.Fatalf("new report status = %v, want ok", r.Status)
		}

		r.AddWarning("section s3 missing text, skipped")
		if r.Status != ScanStatusPartial {
			t.Errorf("status after warning = %v, want partial", r.Status)
		}
		if len(r.Warnings) != 1 {
			t.Errorf("expected 1 warning, got %d", len(r.Warnings))
		}
	})

	t.Run("warning does not upgrade failed", func(t *testing.T) {
		t.Parallel()

		r := NewScanReport("doc.txt")
		r.Fail(errors.New("unreadable"))
		r.AddWarning("late warning")

		if r.Status != ScanStatusFailed {
			t.Errorf("status = %v, want failed", r.Status)
		}
		if r.ErrorMessage != "unreadable" {
			t.Errorf("error message = %q, want %q", r.ErrorMessage, "unreadable")
		}
	})
}

// TestDetectionsAbove tests downstream sensitivity filtering.
func TestDetectionsAbove(t *testing.T) {
	t.Parallel()

	r := NewScanReport("doc.txt")
	r.Detections = []Detection{
		{ID: "a", Category: CategorySSN, Confidence: 0.95},
		{ID: "b", Category: CategoryDateOfBirth, Confidence: 0.7},
		{ID: "c", Category: CategoryAddress, Confidence: 0.5},
	}

	tests := []struct {
		name        string
		sensitivity Sensitivity
		want        int
	}{
		{"low surfaces only validated", SensitivityLow, 1},
		{"medium surfaces mid confidence", SensitivityMedium, 2},
		{"high surfaces everything", SensitivityHigh, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.DetectionsAbove(tt.sensitivity)
			if len(got) != tt.want {
				t.Errorf("DetectionsAbove(%v) returned %d detections, want %d",
					tt.sensitivity, len(got), tt.want)
			}
			// Filtering must not mutate the full result set.
			if len(r.Detections) != 3 {
				t.Errorf("filtering mutated the detection set: %d", len(r.Detections))
			}
		})
	}
}

// TestScrubValues tests that scrubbing removes values but keeps offsets.
func TestScrubValues(t *testing.T) {
	t.Parallel()

	r := NewScanReport("doc.txt")
	r.Detections = []Detection{
		{ID: "a", Value: "078-05-1120", Context: "ssn 078-05-1120 here", StartOffset: 4, EndOffset: 15},
	}

	r.ScrubValues()

	d := r.Detections[0]
	if d.Value != "" || d.Context != "" {
		t.Error("scrub left raw value or context behind")
	}
	if d.StartOffset != 4 || d.EndOffset != 15 {
		t.Error("scrub must preserve offsets for redaction application")
	}
}

// TestAcceptSuggestion tests that accepting keeps the suggestion listed.
func TestAcceptSuggestion(t *testing.T) {
	t.Parallel()

	res := VerificationResult{
		Suggestions: []AdversarialSuggestion{
			{ID: "s1", Type: SuggestGeneralize},
			{ID: "s2", Type: SuggestRedact},
		},
	}

	if !res.Accept("s2") {
		t.Fatal("Accept(s2) = false, want true")
	}
	if res.Accept("missing") {
		t.Error("Accept(missing) = true, want false")
	}
	if len(res.Suggestions) != 2 {
		t.Errorf("accepting removed a suggestion: %d left", len(res.Suggestions))
	}
	if !res.Suggestions[1].Accepted {
		t.Error("s2 not marked accepted")
	}
}

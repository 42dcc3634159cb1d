package adversary

import (
	"strings"
	"testing"

	"github.com/veilcheck/veilcheck/internal/model"
)

// TestAssessCrossReferenceFragments verifies searchable phrases are flagged
// and tagged with the right difficulty.
func TestAssessCrossReferenceFragments(t *testing.T) {
	t.Parallel()

	sections := []model.ContentSection{
		redactedSection("s1", `[REDACTED] testified before Congress and said "the accounting irregularities began years before the audit".`),
		redactedSection("s2", "[REDACTED] worked at Acme for 12 years before the move."),
	}

	risk := AssessCrossReference(sections)

	var haveTrivial, haveModerate bool
	for _, f := range risk.SearchableFragments {
		switch f.Difficulty {
		case model.SearchTrivial:
			haveTrivial = true
		case model.SearchModerate:
			haveModerate = true
		}
		if f.Rationale == "" {
			t.Errorf("fragment %q has no rationale", f.Fragment)
		}
		if f.Location == "" {
			t.Errorf("fragment %q has no location", f.Fragment)
		}
	}
	if !haveTrivial {
		t.Error("expected a trivially searchable fragment (quote or testimony)")
	}
	if !haveModerate {
		t.Error("expected a moderately searchable fragment (employment span)")
	}
}

// TestAssessCrossReferenceScore checks the scoring formula on a controlled
// input with one trivial fragment and one vulnerable source.
func TestAssessCrossReferenceScore(t *testing.T) {
	t.Parallel()

	sections := []model.ContentSection{
		redactedSection("s1", "[REDACTED] testified before Congress last spring."),
	}

	risk := AssessCrossReference(sections)

	trivial := 0
	for _, f := range risk.SearchableFragments {
		if f.Difficulty == model.SearchTrivial {
			trivial++
		}
	}
	if trivial != 1 {
		t.Fatalf("trivial fragments = %d, want 1", trivial)
	}
	// "testified" also matches the news-archives profile.
	if len(risk.VulnerableSources) != 1 {
		t.Fatalf("vulnerable sources = %d, want 1", len(risk.VulnerableSources))
	}
	want := float64(30*1 + 10*1)
	if risk.RiskScore != want {
		t.Errorf("risk score = %v, want %v", risk.RiskScore, want)
	}
}

// TestAssessCrossReferenceSourceLikelihood verifies the matched-pattern
// count drives the likelihood tier.
func TestAssessCrossReferenceSourceLikelihood(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want model.SourceLikelihood
	}{
		{
			name: "one pattern possible",
			text: "[REDACTED] was a professor for many years.",
			want: model.LikelihoodPossible,
		},
		{
			name: "two patterns likely",
			text: "[REDACTED] was a professor who published widely.",
			want: model.LikelihoodLikely,
		},
		{
			name: "three patterns certain",
			text: "[REDACTED] was a professor at the University of Chicago who published widely.",
			want: model.LikelihoodCertain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			risk := AssessCrossReference([]model.ContentSection{redactedSection("s1", tt.text)})

			var academic *model.VulnerableSource
			for i := range risk.VulnerableSources {
				if risk.VulnerableSources[i].Name == "academic databases" {
					academic = &risk.VulnerableSources[i]
				}
			}
			if academic == nil {
				t.Fatal("academic databases profile did not match")
			}
			if academic.Likelihood != tt.want {
				t.Errorf("likelihood = %v, want %v", academic.Likelihood, tt.want)
			}
		})
	}
}

// TestAssessCrossReferenceScoreCap verifies the 100-point cap.
func TestAssessCrossReferenceScoreCap(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	quotes := []string{
		"the first quarter numbers were fabricated from the start",
		"nobody on the board ever asked where the money went",
		"we shredded the documents the night before the audit",
		"the auditors were told to look the other way entirely",
	}
	for _, q := range quotes {
		b.WriteString(`[REDACTED] said "` + q + `". `)
	}

	risk := AssessCrossReference([]model.ContentSection{redactedSection("s1", b.String())})

	if risk.RiskScore != 100 {
		t.Errorf("risk score = %v, want capped at 100", risk.RiskScore)
	}
}

// TestAssessCrossReferenceFragmentCap verifies the fragment list cap and
// deduplication.
func TestAssessCrossReferenceFragmentCap(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 15; i++ {
		b.WriteString(`"searchable quote number ` + strings.Repeat("x", 10+i) + ` goes here". `)
	}
	// Repeat the whole block: duplicates must not be listed twice.
	text := b.String() + b.String()

	risk := AssessCrossReference([]model.ContentSection{redactedSection("s1", text)})

	if len(risk.SearchableFragments) > maxFragments {
		t.Errorf("fragments = %d, want at most %d", len(risk.SearchableFragments), maxFragments)
	}
	seen := make(map[string]bool)
	for _, f := range risk.SearchableFragments {
		if seen[f.Fragment] {
			t.Errorf("duplicate fragment %q", f.Fragment)
		}
		seen[f.Fragment] = true
	}
}

// TestAssessCrossReferenceEmpty verifies the zero-value result on clean
// input.
func TestAssessCrossReferenceEmpty(t *testing.T) {
	t.Parallel()

	risk := AssessCrossReference([]model.ContentSection{
		redactedSection("s1", "Nothing remarkable happened on an ordinary afternoon."),
	})

	if risk.RiskScore != 0 {
		t.Errorf("risk score = %v, want 0", risk.RiskScore)
	}
	if len(risk.SearchableFragments) != 0 || len(risk.VulnerableSources) != 0 {
		t.Errorf("expected no findings, got %d fragments and %d sources",
			len(risk.SearchableFragments), len(risk.VulnerableSources))
	}
}

package adversary

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/veilcheck/veilcheck/internal/model"
)

// TestAnalyzeExecutiveScenario runs the full analysis over a document whose
// direct identifiers were redacted but whose narrative still pins down one
// executive.
func TestAnalyzeExecutiveScenario(t *testing.T) {
	t.Parallel()

	sections := []model.ContentSection{
		{
			ID:   "s1",
			Text: "Contact John Smith, the CEO of Acme Corp, who testified before Congress in March 2019.",
			Type: model.SectionParagraph,
		},
	}
	accepted := []model.Detection{
		{
			ID:          "d1",
			SectionID:   "s1",
			Category:    model.CategoryCustom,
			Value:       "John Smith",
			StartOffset: 8,
			EndOffset:   18,
		},
	}

	v := NewVerifier(DefaultConfig())
	result := v.Analyze(sections, accepted, 1, nil)

	analysis := result.Analysis
	if len(analysis.LeakedAttributes) < 3 {
		t.Fatalf("leaked attributes = %d, want at least 3", len(analysis.LeakedAttributes))
	}
	if pop := analysis.Fingerprint.EstimatedPopulationSize; pop >= 10_000 {
		t.Errorf("population = %v, want well under 10000", pop)
	}
	if analysis.RiskLevel != model.RiskHigh && analysis.RiskLevel != model.RiskCritical {
		t.Errorf("risk level = %v, want HIGH or CRITICAL", analysis.RiskLevel)
	}
	if result.PassesThreshold {
		t.Error("result passed the threshold despite a near-unique fingerprint")
	}

	found := false
	for _, s := range result.Suggestions {
		if s.Type == model.SuggestGeneralize && strings.Contains(s.OriginalPhrase, "CEO of Acme Corp") {
			found = true
			if s.SuggestedReplacement == "" {
				t.Error("generalize suggestion has no replacement")
			}
			if s.Rationale == "" {
				t.Error("generalize suggestion has no rationale")
			}
		}
	}
	if !found {
		t.Error(`expected a generalize suggestion for "CEO of Acme Corp"`)
	}
}

// TestAnalyzeEmptyInput verifies the neutral result for an empty document:
// nothing leaked, every sub-score zero, threshold passed.
func TestAnalyzeEmptyInput(t *testing.T) {
	t.Parallel()

	v := NewVerifier(DefaultConfig())
	result := v.Analyze(nil, nil, 1, nil)

	analysis := result.Analysis
	if len(analysis.LeakedAttributes) != 0 {
		t.Errorf("leaked attributes = %d, want 0", len(analysis.LeakedAttributes))
	}
	if analysis.Fingerprint.RiskScore != 0 {
		t.Errorf("fingerprint score = %v, want 0", analysis.Fingerprint.RiskScore)
	}
	if analysis.CrossReference.RiskScore != 0 {
		t.Errorf("cross-reference score = %v, want 0", analysis.CrossReference.RiskScore)
	}
	if analysis.ReidentificationConfidence != 0 {
		t.Errorf("confidence = %v, want 0", analysis.ReidentificationConfidence)
	}
	if !result.PassesThreshold {
		t.Error("empty input must pass the threshold")
	}
}

// TestAnalyzeDisabled verifies the verifier-off and stages-off paths both
// yield a passing neutral result.
func TestAnalyzeDisabled(t *testing.T) {
	t.Parallel()

	sections := []model.ContentSection{
		redactedSection("s1", "[REDACTED], the CEO of Acme Corp, testified before Congress in March 2019."),
	}

	t.Run("verifier disabled", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.Enabled = false

		result := NewVerifier(cfg).Analyze(sections, nil, 1, nil)
		if result.Analysis.ReidentificationConfidence != 0 {
			t.Errorf("confidence = %v, want 0", result.Analysis.ReidentificationConfidence)
		}
		if !result.PassesThreshold {
			t.Error("disabled verifier must pass the threshold")
		}
	})

	t.Run("all stages disabled", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.EnabledAnalyses = EnabledAnalyses{}

		result := NewVerifier(cfg).Analyze(sections, nil, 1, nil)
		analysis := result.Analysis
		if len(analysis.LeakedAttributes) != 0 {
			t.Errorf("leaked attributes = %d, want 0 with leakage disabled", len(analysis.LeakedAttributes))
		}
		if analysis.Fingerprint.RiskScore != 0 {
			t.Errorf("fingerprint score = %v, want 0 with fingerprinting disabled", analysis.Fingerprint.RiskScore)
		}
		if analysis.CrossReference.RiskScore != 0 {
			t.Errorf("cross-reference score = %v, want 0 with the check disabled", analysis.CrossReference.RiskScore)
		}
		if analysis.ReidentificationConfidence != 0 {
			t.Errorf("confidence = %v, want 0", analysis.ReidentificationConfidence)
		}
		if !result.PassesThreshold {
			t.Error("all-stages-off must pass the threshold")
		}
	})
}

// TestAnalyzeEchoesIterationState verifies the caller-threaded iteration
// number and previous confidence round-trip untouched.
func TestAnalyzeEchoesIterationState(t *testing.T) {
	t.Parallel()

	prev := 72.0
	v := NewVerifier(DefaultConfig())
	result := v.Analyze(nil, nil, 3, &prev)

	if result.Iteration != 3 {
		t.Errorf("iteration = %d, want 3", result.Iteration)
	}
	if result.PreviousConfidence == nil || *result.PreviousConfidence != 72 {
		t.Errorf("previous confidence = %v, want 72", result.PreviousConfidence)
	}
	if result.RiskThreshold != DefaultRiskThreshold {
		t.Errorf("threshold = %v, want %v", result.RiskThreshold, DefaultRiskThreshold)
	}
}

// TestAnalyzeConcurrentReconfigure hammers Analyze and SetConfig from
// separate goroutines. Run with -race.
func TestAnalyzeConcurrentReconfigure(t *testing.T) {
	t.Parallel()

	sections := []model.ContentSection{
		redactedSection("s1", "[REDACTED] testified before Congress in March 2019."),
	}

	v := NewVerifier(DefaultConfig())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if n%2 == 0 {
					cfg := DefaultConfig()
					cfg.RiskThreshold = float64(j % 100)
					v.SetConfig(cfg)
				} else {
					_ = v.Analyze(sections, nil, 1, nil)
				}
			}
		}(i)
	}
	wg.Wait()
}

// TestAggregateConfidence checks the weighting and the attribute-count
// saturation.
func TestAggregateConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		semantic  float64
		crossRef  float64
		attrCount int
		want      float64
	}{
		{0, 0, 0, 0},
		{100, 100, 10, 100},
		{100, 0, 0, 50},
		{0, 100, 0, 30},
		{0, 0, 5, 10},
		{0, 0, 50, 20}, // attribute score saturates at 100
		{60, 40, 2, 46},
	}

	for _, tt := range tests {
		name := fmt.Sprintf("sem=%v cross=%v attrs=%d", tt.semantic, tt.crossRef, tt.attrCount)
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := aggregateConfidence(tt.semantic, tt.crossRef, tt.attrCount)
			if got != tt.want {
				t.Errorf("confidence = %v, want %v", got, tt.want)
			}
		})
	}
}

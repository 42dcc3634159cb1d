package adversary

import (
	"math"
	"sync"

	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/redact"
)

// DefaultRiskThreshold is the confidence at or below which a verification
// passes.
const DefaultRiskThreshold = 30

// EnabledAnalyses toggles the three analysis stages independently.
// Disabling a stage yields a defined neutral result, never an error.
type EnabledAnalyses struct {
	AttributeLeakage       bool `yaml:"attribute_leakage"`
	SemanticFingerprinting bool `yaml:"semantic_fingerprinting"`
	CrossReferenceCheck    bool `yaml:"cross_reference_check"`
}

// Config holds the verifier's configuration.
type Config struct {
	// Enabled turns the whole verifier on or off. When off, Analyze
	// returns a neutral passing result.
	Enabled bool `yaml:"enabled"`

	// RiskThreshold in [0, 100]; a result passes when its confidence is
	// at or below this value.
	RiskThreshold float64 `yaml:"risk_threshold"`

	// MaxIterations advises the caller how many redact-verify rounds to
	// drive. The engine itself never loops.
	MaxIterations int `yaml:"max_iterations"`

	// AutoApplyLowRisk is a reserved hook for callers that want to apply
	// low-risk suggestions without review. The engine does not enforce it.
	AutoApplyLowRisk bool `yaml:"auto_apply_low_risk"`

	// AnalysisDepth is reserved and currently non-functional.
	AnalysisDepth string `yaml:"analysis_depth"`

	// EnabledAnalyses toggles individual stages.
	EnabledAnalyses EnabledAnalyses `yaml:"enabled_analyses"`
}

// DefaultConfig returns the verifier defaults: enabled, threshold 30,
// three iterations, all stages on.
func DefaultConfig() Config {
	return Config{
		Enabled:       true,
		RiskThreshold: DefaultRiskThreshold,
		MaxIterations: 3,
		AnalysisDepth: "standard",
		EnabledAnalyses: EnabledAnalyses{
			AttributeLeakage:       true,
			SemanticFingerprinting: true,
			CrossReferenceCheck:    true,
		},
	}
}

// Verifier is the adversarial loop controller: the single stateless entry
// point orchestrating simulation, the three analysis stages, aggregation,
// and suggestion generation.
//
// Design decision: Configuration is the only mutable state and is
// snapshotted under a read lock at call entry, so concurrent Analyze calls
// against one Verifier never race with SetConfig. Iteration count and
// previous confidence are caller-threaded, keeping the engine pure and
// safely reusable across concurrent documents.
type Verifier struct {
	mu  sync.RWMutex
	cfg Config
}

// NewVerifier creates a Verifier with the given configuration.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// Config returns a copy of the current configuration.
func (v *Verifier) Config() Config {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cfg
}

// SetConfig replaces the configuration. In-flight Analyze calls keep the
// snapshot they took at entry.
func (v *Verifier) SetConfig(cfg Config) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cfg = cfg
}

// Analyze simulates redaction of the accepted detections and runs the
// adversarial analysis over what remains.
//
// The iteration number and previous confidence are supplied by the caller
// and echoed into the result; the engine retains nothing between calls.
// Analyze is total: any well-formed input yields a defined result.
func (v *Verifier) Analyze(sections []model.ContentSection, accepted []model.Detection, iteration int, previousConfidence *float64) model.VerificationResult {
	cfg := v.Config() // snapshot: config mutation cannot race this call

	if !cfg.Enabled {
		return neutralResult(cfg, iteration, previousConfidence)
	}

	redacted := redact.Simulate(sections, accepted)

	var attrs []model.LeakedAttribute
	if cfg.EnabledAnalyses.AttributeLeakage {
		attrs = ExtractAttributes(redacted)
	}

	fingerprint := NeutralFingerprint()
	if cfg.EnabledAnalyses.SemanticFingerprinting {
		fingerprint = Fingerprint(attrs)
	}

	var crossRef model.CrossReferenceRisk
	if cfg.EnabledAnalyses.CrossReferenceCheck {
		crossRef = AssessCrossReference(redacted)
	}

	confidence := aggregateConfidence(fingerprint.RiskScore, crossRef.RiskScore, len(attrs))

	analysis := model.AdversarialAnalysis{
		LeakedAttributes:           attrs,
		Fingerprint:                fingerprint,
		CrossReference:             crossRef,
		ReidentificationConfidence: confidence,
		RiskLevel:                  model.ClassifyRisk(confidence),
	}

	return model.VerificationResult{
		Analysis:           analysis,
		Suggestions:        GenerateSuggestions(analysis),
		PassesThreshold:    confidence <= cfg.RiskThreshold,
		RiskThreshold:      cfg.RiskThreshold,
		Iteration:          iteration,
		PreviousConfidence: previousConfidence,
	}
}

// aggregateConfidence combines the sub-scores into the overall
// re-identification confidence:
// round(0.5*semantic + 0.3*crossref + 0.2*min(100, 10*attrCount)).
func aggregateConfidence(semanticScore, crossRefScore float64, attrCount int) float64 {
	attrScore := math.Min(100, 10*float64(attrCount))
	return math.Round(0.5*semanticScore + 0.3*crossRefScore + 0.2*attrScore)
}

// neutralResult is returned when the verifier is disabled: zero confidence,
// neutral fingerprint, passing threshold.
func neutralResult(cfg Config, iteration int, previousConfidence *float64) model.VerificationResult {
	return model.VerificationResult{
		Analysis: model.AdversarialAnalysis{
			Fingerprint: NeutralFingerprint(),
			RiskLevel:   model.RiskMinimal,
		},
		PassesThreshold:    true,
		RiskThreshold:      cfg.RiskThreshold,
		Iteration:          iteration,
		PreviousConfidence: previousConfidence,
	}
}

package model

// AttributeType is one of the nine fixed semantic categories of
// identity-narrowing phrases the attribute leakage extractor recognizes.
type AttributeType string

// The nine attribute types. The set is fixed; adding a type requires a
// matching narrowing factor and generic replacement phrase in the
// adversary package tables.
const (
	AttrProfession        AttributeType = "profession"
	AttrAffiliation       AttributeType = "affiliation"
	AttrTemporalMarker    AttributeType = "temporal_marker"
	AttrGeographicSignal  AttributeType = "geographic_signal"
	AttrRelationalContext AttributeType = "relational_context"
	AttrUniqueEvent       AttributeType = "unique_event"
	AttrDemographic       AttributeType = "demographic"
	AttrAchievement       AttributeType = "achievement"
	AttrPublicRole        AttributeType = "public_role"
)

// LeakedAttribute is a contextual phrase in simulated redacted text that
// narrows the population the text could refer to. Attributes are ephemeral:
// they are produced per Analyze call and deduplicated by (type, lowercased
// phrase), never persisted.
type LeakedAttribute struct {
	// Type is the semantic category of the leak.
	Type AttributeType `json:"type"`

	// Phrase is the matched text as it appears in the redacted output.
	Phrase string `json:"phrase"`

	// NarrowingFactor is the multiplicative population-reduction weight
	// of the attribute's category.
	NarrowingFactor float64 `json:"narrowing_factor"`

	// Explanation states why the phrase narrows the population.
	Explanation string `json:"explanation"`

	// Suggestion is an optional short hint on how to weaken the phrase.
	Suggestion string `json:"suggestion,omitempty"`

	// Location identifies the section the phrase was found in.
	Location string `json:"location,omitempty"`
}

// UniquenessDriver is a leaked attribute ranked by its contribution to the
// population estimate.
type UniquenessDriver struct {
	Attribute LeakedAttribute `json:"attribute"`
	Impact    Impact          `json:"impact"`
}

// SemanticFingerprint is the aggregate uniqueness profile of redacted text:
// an estimated candidate population plus a risk score derived from it.
//
// The population model multiplies category narrowing factors as if they were
// independent. That independence assumption is a deliberate, documented
// simplification: the estimate is advisory, not a statistical bound.
type SemanticFingerprint struct {
	// EstimatedPopulationSize is the rounded population estimate, always >= 1.
	EstimatedPopulationSize float64 `json:"estimated_population_size"`

	// PopulationDescription buckets the estimate by order of magnitude,
	// from "single individual" to "large population".
	PopulationDescription string `json:"population_description"`

	// UniquenessDrivers lists the attributes driving the estimate, sorted
	// by severity and capped at 10.
	UniquenessDrivers []UniquenessDriver `json:"uniqueness_drivers,omitempty"`

	// RiskScore is 100 - 10*log10(population), clamped to [0, 100].
	RiskScore float64 `json:"risk_score"`

	// RiskLevel is RiskScore put through the shared banding.
	RiskLevel RiskLevel `json:"risk_level"`
}

// SearchDifficulty classifies how hard a fragment is to look up against
// public data sources.
type SearchDifficulty string

// Search difficulty tiers.
const (
	SearchTrivial   SearchDifficulty = "trivial"
	SearchModerate  SearchDifficulty = "moderate"
	SearchDifficult SearchDifficulty = "difficult"
)

// SearchableFragment is a phrase that can be fed directly to a search
// engine or records database to recover identity.
type SearchableFragment struct {
	Fragment   string           `json:"fragment"`
	Difficulty SearchDifficulty `json:"difficulty"`
	Rationale  string           `json:"rationale"`
	Location   string           `json:"location,omitempty"`
}

// SourceLikelihood classifies how likely a public data source is to contain
// a matching record, driven by match count.
type SourceLikelihood string

// Likelihood tiers: >=3 matches certain, 2 likely, 1 possible, 0 unlikely.
const (
	LikelihoodCertain  SourceLikelihood = "certain"
	LikelihoodLikely   SourceLikelihood = "likely"
	LikelihoodPossible SourceLikelihood = "possible"
	LikelihoodUnlikely SourceLikelihood = "unlikely"
)

// VulnerableSource is a public data source profile that matched the
// redacted text.
type VulnerableSource struct {
	// Name identifies the source profile (e.g. "professional network").
	Name string `json:"name"`

	// Likelihood is derived from the match count against the profile's
	// pattern set.
	Likelihood SourceLikelihood `json:"likelihood"`

	// MatchCount is the number of profile patterns that matched.
	MatchCount int `json:"match_count"`

	// Matches holds representative matched phrases, capped at 10.
	Matches []string `json:"matches,omitempty"`
}

// CrossReferenceRisk reports how exposed the redacted text is to lookup
// against external public data sources.
type CrossReferenceRisk struct {
	// SearchableFragments lists directly searchable phrases, capped at 10.
	SearchableFragments []SearchableFragment `json:"searchable_fragments,omitempty"`

	// VulnerableSources lists matched public-data-source profiles.
	VulnerableSources []VulnerableSource `json:"vulnerable_sources,omitempty"`

	// RiskScore = min(100, 30*trivial + 15*moderate + 10*len(sources)).
	RiskScore float64 `json:"risk_score"`
}

// AdversarialAnalysis aggregates the three analysis stages plus the
// combined confidence and risk level.
type AdversarialAnalysis struct {
	LeakedAttributes []LeakedAttribute   `json:"leaked_attributes,omitempty"`
	Fingerprint      SemanticFingerprint `json:"semantic_fingerprint"`
	CrossReference   CrossReferenceRisk  `json:"cross_reference_risk"`

	// ReidentificationConfidence in [0, 100]:
	// round(0.5*semantic + 0.3*crossref + 0.2*min(100, 10*attrCount)).
	ReidentificationConfidence float64 `json:"reidentification_confidence"`

	// RiskLevel is ReidentificationConfidence through the shared banding.
	RiskLevel RiskLevel `json:"risk_level"`
}

// SuggestionType is the kind of mitigation a suggestion proposes.
type SuggestionType string

// Suggestion types.
const (
	SuggestRedact     SuggestionType = "redact"
	SuggestGeneralize SuggestionType = "generalize"
	SuggestRephrase   SuggestionType = "rephrase"
	SuggestRemove     SuggestionType = "remove"
)

// AdversarialSuggestion proposes a concrete mitigation for a leak.
// Suggestions are ranked by ascending Priority (lower is more urgent) and
// the list is capped at 10. Accepting a suggestion marks it, it is never
// removed from the list, so the audit trail survives.
type AdversarialSuggestion struct {
	ID                    string         `json:"id"`
	Type                  SuggestionType `json:"type"`
	Priority              int            `json:"priority"`
	OriginalPhrase        string         `json:"original_phrase"`
	SuggestedReplacement  string         `json:"suggested_replacement,omitempty"`
	ExpectedRiskReduction float64        `json:"expected_risk_reduction"`
	Location              string         `json:"location,omitempty"`
	Rationale             string         `json:"rationale"`
	Accepted              bool           `json:"accepted"`
}

// VerificationResult is the complete output of one adversarial
// verification pass.
//
// Iteration and PreviousConfidence are caller-supplied and merely echoed:
// the engine holds no history, so one engine value can serve concurrent
// documents safely.
type VerificationResult struct {
	Analysis        AdversarialAnalysis     `json:"analysis"`
	Suggestions     []AdversarialSuggestion `json:"suggestions,omitempty"`
	PassesThreshold bool                    `json:"passes_threshold"`
	RiskThreshold   float64                 `json:"risk_threshold"`
	Iteration       int                     `json:"iteration"`

	// PreviousConfidence is the confidence of the caller's prior pass,
	// nil on the first iteration.
	PreviousConfidence *float64 `json:"previous_confidence,omitempty"`
}

// Accept marks the suggestion with the given ID as accepted.
// It reports whether the ID was found. The suggestion stays in the list.
func (r *VerificationResult) Accept(id string) bool {
	for i := range r.Suggestions {
		if r.Suggestions[i].ID == id {
			r.Suggestions[i].Accepted = true
			return true
		}
	}
	return false
}

package adversary

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/veilcheck/veilcheck/internal/model"
)

// maxSuggestions caps the mitigation list.
const maxSuggestions = 10

// riskReductionFor maps an impact band to the expected confidence drop if
// the attribute is generalized away.
func riskReductionFor(impact model.Impact) float64 {
	switch impact {
	case model.ImpactCritical:
		return 25
	case model.ImpactHigh:
		return 15
	case model.ImpactMedium:
		return 8
	default:
		return 3
	}
}

// redactFragmentReduction is the expected confidence drop from redacting a
// trivially searchable fragment.
const redactFragmentReduction = 15

// GenerateSuggestions proposes and ranks mitigations: a generalize
// suggestion for every critical or high impact uniqueness driver, then a
// redact suggestion for every trivially searchable fragment. Priority
// follows generation order (drivers before fragments), the final list is
// sorted ascending by priority and capped at 10.
func GenerateSuggestions(analysis model.AdversarialAnalysis) []model.AdversarialSuggestion {
	var suggestions []model.AdversarialSuggestion
	priority := 1

	for _, driver := range analysis.Fingerprint.UniquenessDrivers {
		if driver.Impact < model.ImpactHigh {
			continue
		}
		attr := driver.Attribute
		suggestions = append(suggestions, model.AdversarialSuggestion{
			ID:                    uuid.NewString(),
			Type:                  model.SuggestGeneralize,
			Priority:              priority,
			OriginalPhrase:        attr.Phrase,
			SuggestedReplacement:  GenericPhrase(attr.Type),
			ExpectedRiskReduction: riskReductionFor(driver.Impact),
			Location:              attr.Location,
			Rationale: fmt.Sprintf(
				"%q narrows the candidate population to roughly %s (estimated %.0f). %s",
				attr.Phrase,
				analysis.Fingerprint.PopulationDescription,
				analysis.Fingerprint.EstimatedPopulationSize,
				attr.Suggestion,
			),
		})
		priority++
	}

	for _, fragment := range analysis.CrossReference.SearchableFragments {
		if fragment.Difficulty != model.SearchTrivial {
			continue
		}
		suggestions = append(suggestions, model.AdversarialSuggestion{
			ID:                    uuid.NewString(),
			Type:                  model.SuggestRedact,
			Priority:              priority,
			OriginalPhrase:        fragment.Fragment,
			ExpectedRiskReduction: redactFragmentReduction,
			Location:              fragment.Location,
			Rationale:             fmt.Sprintf("%q is directly searchable. %s", fragment.Fragment, fragment.Rationale),
		})
		priority++
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Priority < suggestions[j].Priority
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

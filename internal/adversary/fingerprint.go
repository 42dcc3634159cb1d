package adversary

import (
	"math"
	"sort"

	"github.com/veilcheck/veilcheck/internal/model"
)

// ReferencePopulation is the fixed starting population for semantic
// fingerprinting, approximately the world population.
const ReferencePopulation = 8e9

// maxDrivers caps the uniqueness driver list.
const maxDrivers = 10

// Fingerprint converts leaked attributes into an estimated candidate
// population and a risk score via multiplicative narrowing.
//
// The model multiplies each attribute's category narrowing factor into the
// running estimate in extraction order, treating attributes as independent.
// That independence assumption is a deliberate simplification: correlated
// attributes (a profession and the affiliation employing it) make the true
// population larger than the estimate. The result is advisory, never a
// formal re-identification bound.
//
// With no attributes the fingerprint is neutral: full reference population
// and a risk score of zero.
func Fingerprint(attrs []model.LeakedAttribute) model.SemanticFingerprint {
	if len(attrs) == 0 {
		return NeutralFingerprint()
	}

	population := float64(ReferencePopulation)
	for _, a := range attrs {
		factor := a.NarrowingFactor
		if factor <= 0 || factor > 1 {
			continue // malformed factor: skip rather than corrupt the estimate
		}
		population *= factor
	}

	population = math.Round(population)
	if population < 1 {
		population = 1
	}

	score := 100 - 10*math.Log10(math.Max(1, population))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	drivers := make([]model.UniquenessDriver, 0, len(attrs))
	for _, a := range attrs {
		drivers = append(drivers, model.UniquenessDriver{
			Attribute: a,
			Impact:    model.ClassifyImpact(a.NarrowingFactor),
		})
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return drivers[i].Impact > drivers[j].Impact
	})
	if len(drivers) > maxDrivers {
		drivers = drivers[:maxDrivers]
	}

	return model.SemanticFingerprint{
		EstimatedPopulationSize: population,
		PopulationDescription:   describePopulation(population),
		UniquenessDrivers:       drivers,
		RiskScore:               score,
		RiskLevel:               model.ClassifyRisk(score),
	}
}

// NeutralFingerprint is the defined result when semantic fingerprinting is
// disabled or no attributes leaked: the full reference population and zero
// risk.
func NeutralFingerprint() model.SemanticFingerprint {
	return model.SemanticFingerprint{
		EstimatedPopulationSize: ReferencePopulation,
		PopulationDescription:   describePopulation(ReferencePopulation),
		RiskScore:               0,
		RiskLevel:               model.RiskMinimal,
	}
}

// describePopulation buckets a population estimate by order of magnitude.
func describePopulation(population float64) string {
	switch {
	case population <= 1:
		return "single individual"
	case population <= 10:
		return "a handful of individuals"
	case population <= 100:
		return "dozens of individuals"
	case population <= 1_000:
		return "hundreds of individuals"
	case population <= 10_000:
		return "thousands of individuals"
	case population <= 1_000_000:
		return "a city-scale population"
	case population <= 100_000_000:
		return "a national-scale population"
	default:
		return "large population"
	}
}

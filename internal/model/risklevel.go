package model

// RiskLevel represents the re-identification risk of an analysis result.
// The same banding is applied to the semantic fingerprint's own risk score
// and to the overall analysis confidence, so the two are always comparable.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type RiskLevel int

const (
	// RiskMinimal indicates the redacted text narrows the candidate
	// population only negligibly. Scores below 20.
	RiskMinimal RiskLevel = iota

	// RiskLow indicates limited narrowing that would require substantial
	// additional data to exploit. Scores in [20, 40).
	RiskLow

	// RiskMedium indicates meaningful narrowing that warrants review.
	// Scores in [40, 60).
	RiskMedium

	// RiskHigh indicates the remaining text likely identifies a small
	// group of candidates. Scores in [60, 80).
	RiskHigh

	// RiskCritical indicates the subject is likely re-identifiable from
	// what remains. Scores of 80 and above.
	RiskCritical
)

// String returns a human-readable representation of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskMinimal:
		return "MINIMAL"
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ClassifyRisk maps a 0-100 score to a RiskLevel.
// This is the single shared banding function: >=80 critical, >=60 high,
// >=40 medium, >=20 low, else minimal. It is monotonic by construction.
func ClassifyRisk(score float64) RiskLevel {
	switch {
	case score >= 80:
		return RiskCritical
	case score >= 60:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	case score >= 20:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// Impact represents how strongly a single leaked attribute narrows the
// candidate population. Impact is derived from the attribute's narrowing
// factor, not assigned per match.
type Impact int

const (
	// ImpactLow covers attributes with narrowing factors above 1e-2.
	ImpactLow Impact = iota

	// ImpactMedium covers narrowing factors in (1e-3, 1e-2].
	ImpactMedium

	// ImpactHigh covers narrowing factors in (1e-4, 1e-3].
	ImpactHigh

	// ImpactCritical covers narrowing factors of 1e-4 and below.
	ImpactCritical
)

// String returns a human-readable representation of the impact band.
func (i Impact) String() string {
	switch i {
	case ImpactLow:
		return "LOW"
	case ImpactMedium:
		return "MEDIUM"
	case ImpactHigh:
		return "HIGH"
	case ImpactCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ClassifyImpact maps a narrowing factor to an impact band:
// critical <=1e-4, high <=1e-3, medium <=1e-2, else low.
func ClassifyImpact(narrowingFactor float64) Impact {
	switch {
	case narrowingFactor <= 1e-4:
		return ImpactCritical
	case narrowingFactor <= 1e-3:
		return ImpactHigh
	case narrowingFactor <= 1e-2:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

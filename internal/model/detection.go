package model

// Category identifies the PII category of a pattern or detection.
type Category string

// Built-in PII categories. CategoryCustom is reserved for user-supplied
// patterns admitted through the custom-pattern gate.
const (
	CategorySSN         Category = "ssn"
	CategoryCreditCard  Category = "credit_card"
	CategoryEmail       Category = "email"
	CategoryPhone       Category = "phone"
	CategoryIPAddress   Category = "ip_address"
	CategoryDateOfBirth Category = "date_of_birth"
	CategoryAddress     Category = "street_address"
	CategoryCustom      Category = "custom"
)

// AllCategories returns every built-in category in priority order
// (highest first). Custom is last because user patterns always yield to
// built-in matches on overlap.
func AllCategories() []Category {
	return []Category{
		CategorySSN,
		CategoryCreditCard,
		CategoryEmail,
		CategoryPhone,
		CategoryIPAddress,
		CategoryDateOfBirth,
		CategoryAddress,
		CategoryCustom,
	}
}

// Detection is a located, categorized, confidence-scored PII span.
//
// Invariant: StartOffset < EndOffset <= len(section.Text) for the section
// identified by SectionID. The detection engine enforces this at creation;
// downstream consumers may rely on it.
type Detection struct {
	// ID is a deterministic identifier derived from the detection's
	// coordinates, stable across rescans of identical input.
	ID string `json:"id"`

	// FileID identifies the source file.
	FileID string `json:"file_id"`

	// SectionID identifies the section within the file.
	SectionID string `json:"section_id"`

	// Category is the PII category that matched.
	Category Category `json:"category"`

	// Value is the matched text. It is scrubbed (zeroed, not masked) once
	// downstream processing completes so the raw value does not linger in
	// memory or serialized previews.
	Value string `json:"value,omitempty"`

	// StartOffset is the byte offset of the match start in the section text.
	StartOffset int `json:"start_offset"`

	// EndOffset is the byte offset one past the match end.
	EndOffset int `json:"end_offset"`

	// Confidence is the detection confidence in [0, 1], derived
	// deterministically from the pattern's priority and validator outcome.
	Confidence float64 `json:"confidence"`

	// Context is a bounded window of text around the match, not the full
	// section, to limit exposure during preview.
	Context string `json:"context,omitempty"`
}

// Scrub removes the raw matched value from the detection. The offsets and
// category remain so redaction application can still splice the original
// document.
func (d *Detection) Scrub() {
	d.Value = ""
	d.Context = ""
}

// Sensitivity selects the minimum confidence a detection needs to be
// surfaced. Detection always runs at maximum recall; sensitivity is applied
// as a downstream filter so changing it never requires rescanning.
type Sensitivity string

// Sensitivity levels and their confidence thresholds.
const (
	SensitivityLow    Sensitivity = "low"    // threshold 0.9
	SensitivityMedium Sensitivity = "medium" // threshold 0.7
	SensitivityHigh   Sensitivity = "high"   // threshold 0.5
)

// Threshold returns the minimum confidence for the sensitivity level.
// Unknown values fall back to the medium threshold.
func (s Sensitivity) Threshold() float64 {
	switch s {
	case SensitivityLow:
		return 0.9
	case SensitivityMedium:
		return 0.7
	case SensitivityHigh:
		return 0.5
	default:
		return 0.7
	}
}

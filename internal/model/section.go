package model

// SectionType identifies the structural role of a content section within
// its source document. The parser that produced the section decides the type;
// veilcheck treats it as opaque display metadata.
type SectionType string

// Section types produced by document parsers.
const (
	SectionParagraph SectionType = "paragraph"
	SectionCell      SectionType = "cell"
	SectionSlide     SectionType = "slide"
	SectionHeading   SectionType = "heading"
	SectionFooter    SectionType = "footer"
	SectionHeader    SectionType = "header"
)

// ContentSection is a unit of document text produced by an external parser.
// Sections are immutable once created: the detection engine reads them, and
// the redaction simulator produces new sections rather than mutating these.
type ContentSection struct {
	// ID uniquely identifies the section within its file.
	ID string `json:"id"`

	// Text is the raw section text. Detection offsets index into this string.
	Text string `json:"text"`

	// Type is the structural role of the section (paragraph, cell, ...).
	Type SectionType `json:"type"`

	// Location is a human-readable position hint such as "page 3" or "B12".
	Location string `json:"location,omitempty"`
}

// Valid reports whether the section carries the fields required for
// scanning. Sections failing this check are skipped with a recorded warning
// rather than aborting the batch.
func (s ContentSection) Valid() bool {
	return s.ID != "" && s.Text != ""
}

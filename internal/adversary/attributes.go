package adversary

import (
	"regexp"
	"strings"

	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/redact"
)

// minPhraseLength discards matches shorter than this as noise.
const minPhraseLength = 5

// attributeSpec backs one of the nine attribute types with its matching
// patterns and category-level narrowing factor.
//
// Design decision: Specs are flat data records rather than per-type
// analyzers because every type follows the same extraction procedure; only
// the patterns and weights differ. The reject pattern filters known false
// positives (month names matching geographic shapes and the like) without
// complicating the main patterns.
type attributeSpec struct {
	Type            model.AttributeType
	NarrowingFactor float64
	GenericPhrase   string
	Explanation     string
	Suggestion      string
	Patterns        []*regexp.Regexp
	Reject          *regexp.Regexp
}

// attributeSpecs is the fixed table of the nine attribute types, in
// extraction order. All patterns use bounded repetition.
var attributeSpecs = []attributeSpec{
	{
		Type:            model.AttrProfession,
		NarrowingFactor: 1e-4,
		GenericPhrase:   "a professional",
		Explanation:     "A specific occupation narrows the candidate population dramatically.",
		Suggestion:      "Replace the occupation with a broad field or omit it.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:works?|worked|employed|practicing|practiced)\s+as\s+(?:a|an|the)\s+[a-z][a-z \-]{3,40}`),
			regexp.MustCompile(`(?i)\b(?:a|an|the)\s+(?:senior |chief |former |retired |practicing )?(?:surgeon|cardiologist|neurosurgeon|anesthesiologist|radiologist|attorney|lawyer|prosecutor|judge|professor|teacher|engineer|architect|pilot|nurse|journalist|reporter|scientist|economist|accountant|auditor|detective|firefighter|paramedic|pharmacist|veterinarian)\b`),
		},
	},
	{
		Type:            model.AttrAffiliation,
		NarrowingFactor: 1e-3,
		GenericPhrase:   "an organization",
		Explanation:     "Naming an employer or institution ties the subject to a small member roster.",
		Suggestion:      "Refer to the organization by sector or size instead of name.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`\b[A-Z][A-Za-z0-9&.\-']{1,30}(?:\s+[A-Z][A-Za-z0-9&.\-']{1,30}){0,3}\s+(?:Corp|Corporation|Inc|LLC|Ltd|Company|University|College|Institute|Hospital|Bank|Group|Foundation|Agency|Laboratories)\b`),
			regexp.MustCompile(`(?i)\b(?:employee|member|alumnus|alumna|graduate)\s+of\s+[A-Z][\w&.\-']{1,30}(?:\s+[A-Z][\w&.\-']{1,30}){0,3}`),
		},
	},
	{
		Type:            model.AttrTemporalMarker,
		NarrowingFactor: 0.1,
		GenericPhrase:   "some time ago",
		Explanation:     "Dates anchor the description to a narrow window of public records.",
		Suggestion:      "Widen the date to a decade or remove it.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:in|on|during|since|until|before|after)\s+(?:early |mid-|late )?(?:January|February|March|April|May|June|July|August|September|October|November|December)?\s?(?:19|20)\d{2}\b`),
			regexp.MustCompile(`(?i)\b(?:in|during)\s+the\s+(?:spring|summer|fall|autumn|winter)\s+of\s+(?:19|20)\d{2}\b`),
		},
	},
	{
		Type:            model.AttrGeographicSignal,
		NarrowingFactor: 0.01,
		GenericPhrase:   "in the region",
		Explanation:     "A place reference restricts candidates to one locality's population.",
		Suggestion:      "Generalize to a state, region, or country.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:lives?|lived|resides?|resided|based|located|raised|grew up)\s+(?:in|near|outside)\s+(?:downtown |rural |suburban )?[A-Z][a-z]{2,20}(?:\s+[A-Z][a-z]{2,20}){0,2}`),
			regexp.MustCompile(`\b(?:neighborhood|suburb|village|town|county)\s+of\s+[A-Z][a-z]{2,20}(?:\s+[A-Z][a-z]{2,20}){0,2}\b`),
		},
		Reject: regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December|Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)\b`),
	},
	{
		Type:            model.AttrRelationalContext,
		NarrowingFactor: 0.05,
		GenericPhrase:   "a family member",
		Explanation:     "Family and workplace relationships let an attacker pivot through other people's records.",
		Suggestion:      "Drop the relationship or state it without detail.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:my|his|her|their)\s+(?:wife|husband|spouse|daughter|son|mother|father|brother|sister|twin|colleague|coworker|neighbor|boss|supervisor)\b`),
			regexp.MustCompile(`(?i)\b(?:married to|engaged to|widow of|widower of|father of|mother of|parent of)\s+[\w][\w \-]{1,30}`),
		},
	},
	{
		Type:            model.AttrUniqueEvent,
		NarrowingFactor: 1e-5,
		GenericPhrase:   "a notable event",
		Explanation:     "Participation in a rare, documented event is close to uniquely identifying.",
		Suggestion:      "Describe the event only in general terms, if at all.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\btestified\s+(?:before|at|in|against)\s+[\w][\w .\-]{2,40}`),
			regexp.MustCompile(`(?i)\b(?:survived|witnessed)\s+(?:the\s+|a\s+)?[\w][\w \-]{4,40}`),
			regexp.MustCompile(`(?i)\b(?:filed|settled|won|lost)\s+(?:a\s+)?(?:lawsuit|suit|complaint|claim)(?:\s+against\s+[\w][\w .\-]{2,30})?`),
			regexp.MustCompile(`(?i)\bfounded\s+(?:the\s+)?[A-Z][\w][\w .\-]{2,40}`),
		},
	},
	{
		Type:            model.AttrDemographic,
		NarrowingFactor: 0.1,
		GenericPhrase:   "an adult",
		Explanation:     "Age and demographic markers partition the population into coarse bands.",
		Suggestion:      "State age only as a broad range.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b\d{2}[- ]?years?[- ]old\b`),
			regexp.MustCompile(`(?i)\bin\s+(?:my|his|her|their)\s+(?:early |mid-|late )?(?:twenties|thirties|forties|fifties|sixties|seventies|eighties)\b`),
			regexp.MustCompile(`(?i)\b(?:a|an)\s+(?:immigrant|veteran|widow|widower|naturalized citizen)\b`),
		},
	},
	{
		Type:            model.AttrAchievement,
		NarrowingFactor: 1e-3,
		GenericPhrase:   "a professional accomplishment",
		Explanation:     "Awards and publications are indexed by name in public databases.",
		Suggestion:      "Mention the accomplishment without its official title.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:won|received|awarded|earned)\s+(?:the\s+|a\s+|an\s+)?[\w][\w \-]{3,40}(?:award|prize|medal|fellowship|scholarship)\b`),
			regexp.MustCompile(`(?i)\b(?:published|authored|co-authored|wrote)\s+(?:a\s+|the\s+)?(?:book|paper|study|novel|dissertation)(?:\s+on\s+[\w][\w \-]{2,40})?`),
			regexp.MustCompile(`(?i)\bholds?\s+(?:a\s+)?patent\b[\w ]{0,30}`),
		},
	},
	{
		Type:            model.AttrPublicRole,
		NarrowingFactor: 1e-4,
		GenericPhrase:   "a senior figure at an organization",
		Explanation:     "A titled role at a named organization is typically one searchable person.",
		Suggestion:      "Generalize the title and drop the organization name.",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:CEO|CFO|CTO|COO|chair(?:man|woman|person)?|president|vice president|director|founder|co-founder|managing partner|general counsel)\s+(?:of|at)\s+[A-Z][\w&.\-']{1,30}(?:\s+[A-Z][\w&.\-']{1,30}){0,4}`),
			regexp.MustCompile(`(?i)\b(?:senator|governor|mayor|congressman|congresswoman|councilmember|ambassador|commissioner)\s+(?:of|for|from)\s+[A-Z][\w][\w \-]{2,30}`),
		},
	},
}

// ExtractAttributes scans simulated redacted sections for identity-narrowing
// phrases across the nine attribute types.
//
// Matches whose span falls inside a placeholder marker are skipped so
// redaction artifacts are never analyzed as leaks. Matches shorter than
// five characters are discarded as noise. Results are deduplicated by
// (type, lowercased phrase) across all sections.
func ExtractAttributes(sections []model.ContentSection) []model.LeakedAttribute {
	var out []model.LeakedAttribute
	seen := make(map[string]bool)

	for _, section := range sections {
		markers := placeholderSpans(section.Text)

		for _, spec := range attributeSpecs {
			for _, re := range spec.Patterns {
				for _, loc := range re.FindAllStringIndex(section.Text, -1) {
					if insideMarker(markers, loc[0], loc[1]) {
						continue
					}

					phrase := normalizePhrase(section.Text[loc[0]:loc[1]])
					if len(phrase) < minPhraseLength {
						continue
					}
					if spec.Reject != nil && spec.Reject.MatchString(phrase) {
						continue
					}

					key := string(spec.Type) + "|" + strings.ToLower(phrase)
					if seen[key] {
						continue
					}
					seen[key] = true

					out = append(out, model.LeakedAttribute{
						Type:            spec.Type,
						Phrase:          phrase,
						NarrowingFactor: spec.NarrowingFactor,
						Explanation:     spec.Explanation,
						Suggestion:      spec.Suggestion,
						Location:        section.ID,
					})
				}
			}
		}
	}
	return out
}

// GenericPhrase returns the category-level replacement phrase used by
// generalize suggestions. Unknown types fall back to a neutral wording.
func GenericPhrase(t model.AttributeType) string {
	for _, spec := range attributeSpecs {
		if spec.Type == t {
			return spec.GenericPhrase
		}
	}
	return "a general description"
}

// placeholderSpans returns the [start, end) ranges of every redaction
// placeholder in the text.
func placeholderSpans(text string) [][2]int {
	var spans [][2]int
	for off := 0; ; {
		i := strings.Index(text[off:], redact.Placeholder)
		if i < 0 {
			break
		}
		start := off + i
		end := start + len(redact.Placeholder)
		spans = append(spans, [2]int{start, end})
		off = end
	}
	return spans
}

// insideMarker reports whether the match overlaps any placeholder span.
func insideMarker(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && s[0] < end {
			return true
		}
	}
	return false
}

// normalizePhrase trims surrounding whitespace and trailing punctuation
// from a matched phrase.
func normalizePhrase(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".,;:!?")
}

package adversary

import (
	"regexp"

	"github.com/veilcheck/veilcheck/internal/model"
)

// maxFragments caps the searchable fragment list and per-source match lists.
const maxFragments = 10

// searchabilitySpec is one row of the fixed searchability table: a phrase
// shape that can be fed to a search engine or records database, tagged by
// how hard the lookup is.
type searchabilitySpec struct {
	Name       string
	Difficulty model.SearchDifficulty
	Rationale  string
	Pattern    *regexp.Regexp
}

// searchabilityTable lists the searchable phrase shapes. Bounded patterns
// only, same as the detection library.
var searchabilityTable = []searchabilitySpec{
	{
		Name:       "direct quote",
		Difficulty: model.SearchTrivial,
		Rationale:  "Verbatim quotes can be pasted into a search engine and matched exactly.",
		Pattern:    regexp.MustCompile(`"[^"\n]{20,200}"`),
	},
	{
		Name:       "testimony phrasing",
		Difficulty: model.SearchTrivial,
		Rationale:  "Testimony before public bodies is transcribed and indexed by name.",
		Pattern:    regexp.MustCompile(`(?i)\btestif(?:y|ied|ying)\s+(?:before|at|against|in)\s+[\w][\w .\-]{2,60}`),
	},
	{
		Name:       "award citation",
		Difficulty: model.SearchTrivial,
		Rationale:  "Award announcements list recipients in searchable press releases.",
		Pattern:    regexp.MustCompile(`(?i)\b(?:won|received|awarded)\s+the\s+[\w][\w \-]{3,50}(?:award|prize|medal)\b`),
	},
	{
		Name:       "titled executive at named company",
		Difficulty: model.SearchTrivial,
		Rationale:  "A title plus a company name usually resolves to one person on a corporate site.",
		Pattern:    regexp.MustCompile(`(?i)\b(?:CEO|CFO|CTO|COO|chair(?:man|woman|person)?|president|founder)\s+(?:of|at)\s+[A-Z][\w&.\-']{1,30}(?:\s+[A-Z][\w&.\-']{1,30}){0,4}`),
	},
	{
		Name:       "legal filing reference",
		Difficulty: model.SearchModerate,
		Rationale:  "Court dockets are public but require knowing the jurisdiction to query.",
		Pattern:    regexp.MustCompile(`(?i)\b(?:v\.\s+[A-Z][\w.\-]{2,30}|filed\s+(?:a\s+)?(?:lawsuit|suit|complaint)|named\s+as\s+(?:a\s+)?(?:plaintiff|defendant))\b`),
	},
	{
		Name:       "academic position",
		Difficulty: model.SearchModerate,
		Rationale:  "Faculty rosters are public but spread across institutional sites.",
		Pattern:    regexp.MustCompile(`(?i)\b(?:professor|lecturer|chair)\s+of\s+[\w][\w ]{3,40}\s+at\s+[A-Z][\w][\w .\-]{2,40}`),
	},
	{
		Name:       "employment span",
		Difficulty: model.SearchModerate,
		Rationale:  "Tenure details match professional-network profiles when combined with an employer.",
		Pattern:    regexp.MustCompile(`(?i)\b(?:worked|employed)\s+(?:at|for)\s+[A-Z][\w&. \-]{2,40}\s+(?:for\s+\d{1,2}\s+years|from\s+(?:19|20)\d{2}\s+to\s+(?:19|20)\d{2})`),
	},
	{
		Name:       "first-person anecdote",
		Difficulty: model.SearchDifficult,
		Rationale:  "Personal anecdotes only become searchable if retold in indexed media.",
		Pattern:    regexp.MustCompile(`(?i)\bI\s+(?:remember|recall)\s+[\w][\w ,]{5,60}`),
	},
}

// sourceProfile describes one public data source and the phrase shapes that
// suggest it holds a matching record.
type sourceProfile struct {
	Name     string
	Patterns []*regexp.Regexp
}

// sourceProfiles is the fixed table of vulnerable-source profiles.
var sourceProfiles = []sourceProfile{
	{
		Name: "professional network",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:CEO|CFO|CTO|COO|director|manager|partner|engineer|consultant)\s+(?:of|at)\s+[A-Z][\w&.\-']{1,30}`),
			regexp.MustCompile(`(?i)\b(?:worked|employed)\s+(?:at|for)\s+[A-Z][\w&.\-']{1,30}`),
			regexp.MustCompile(`(?i)\bjoined\s+[A-Z][\w&.\-']{1,30}(?:\s+[A-Z][\w&.\-']{1,30}){0,3}\s+(?:in|as)\b`),
		},
	},
	{
		Name: "public records",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:lawsuit|court|docket|plaintiff|defendant|indicted|convicted)\b`),
			regexp.MustCompile(`(?i)\b(?:purchased|sold|owns)\s+(?:a\s+)?(?:home|house|property)\b`),
			regexp.MustCompile(`(?i)\b(?:married|divorced|licensed)\s+in\s+(?:19|20)\d{2}\b`),
		},
	},
	{
		Name: "news archives",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`"[^"\n]{20,200}"`),
			regexp.MustCompile(`(?i)\b(?:told\s+reporters|in\s+an\s+interview|according\s+to|testified)\b`),
			regexp.MustCompile(`(?i)\b(?:scandal|investigation|breaking|headline)\b`),
		},
	},
	{
		Name: "academic databases",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:professor|lecturer|researcher|postdoc)\b`),
			regexp.MustCompile(`(?i)\b(?:published|co-authored|dissertation|journal|peer-reviewed)\b`),
			regexp.MustCompile(`(?i)\b(?:university|college|institute)\s+of\s+[A-Z][\w][\w ]{2,30}`),
		},
	},
	{
		Name: "corporate filings",
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:CEO|CFO|chief\s+\w{3,20}\s+officer|board\s+of\s+directors|chairman)\b`),
			regexp.MustCompile(`(?i)\b(?:shareholder|annual\s+report|SEC\s+filing|prospectus|IPO)\b`),
			regexp.MustCompile(`(?i)\b(?:founded|acquired|merged)\s+[\w][\w .\-]{2,40}`),
		},
	},
}

// AssessCrossReference flags directly searchable phrases in the redacted
// sections and matches them against the vulnerable-source profiles.
//
// A source is vulnerable if any of its patterns match; the count of
// matching patterns (not mere presence) drives the likelihood tier:
// three or more certain, two likely, one possible.
func AssessCrossReference(sections []model.ContentSection) model.CrossReferenceRisk {
	var risk model.CrossReferenceRisk
	trivialCount, moderateCount := 0, 0
	seenFragment := make(map[string]bool)

	for _, section := range sections {
		markers := placeholderSpans(section.Text)
		for _, spec := range searchabilityTable {
			for _, loc := range spec.Pattern.FindAllStringIndex(section.Text, -1) {
				if insideMarker(markers, loc[0], loc[1]) {
					continue
				}
				fragment := normalizePhrase(section.Text[loc[0]:loc[1]])
				if len(fragment) < minPhraseLength || seenFragment[fragment] {
					continue
				}
				seenFragment[fragment] = true

				switch spec.Difficulty {
				case model.SearchTrivial:
					trivialCount++
				case model.SearchModerate:
					moderateCount++
				}

				if len(risk.SearchableFragments) < maxFragments {
					risk.SearchableFragments = append(risk.SearchableFragments, model.SearchableFragment{
						Fragment:   fragment,
						Difficulty: spec.Difficulty,
						Rationale:  spec.Rationale,
						Location:   section.ID,
					})
				}
			}
		}
	}

	for _, profile := range sourceProfiles {
		matched := 0
		var samples []string
		for _, re := range profile.Patterns {
			hit := ""
			for _, section := range sections {
				if m := re.FindString(section.Text); m != "" {
					hit = normalizePhrase(m)
					break
				}
			}
			if hit != "" {
				matched++
				if len(samples) < maxFragments {
					samples = append(samples, hit)
				}
			}
		}
		if matched == 0 {
			continue
		}
		risk.VulnerableSources = append(risk.VulnerableSources, model.VulnerableSource{
			Name:       profile.Name,
			Likelihood: likelihoodFor(matched),
			MatchCount: matched,
			Matches:    samples,
		})
	}

	score := float64(30*trivialCount + 15*moderateCount + 10*len(risk.VulnerableSources))
	if score > 100 {
		score = 100
	}
	risk.RiskScore = score
	return risk
}

// likelihoodFor maps a profile's matched-pattern count to a likelihood tier.
func likelihoodFor(matches int) model.SourceLikelihood {
	switch {
	case matches >= 3:
		return model.LikelihoodCertain
	case matches == 2:
		return model.LikelihoodLikely
	case matches == 1:
		return model.LikelihoodPossible
	default:
		return model.LikelihoodUnlikely
	}
}

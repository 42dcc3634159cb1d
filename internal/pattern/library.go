package pattern

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/veilcheck/veilcheck/internal/model"
)

// Entry is one record in the pattern library.
//
// Design decision: We represent patterns as flat ordered records rather than
// types per category because:
//  1. The matcher only needs (regex, priority, validator) per category
//  2. Custom patterns slot into the same table at the "custom" tier
//  3. A data table keeps overlap resolution a simple priority comparison
type Entry struct {
	// Category is the PII category this pattern detects.
	Category model.Category

	// Pattern is the compiled regular expression. All built-in patterns
	// use bounded repetition counts; custom patterns pass the admission
	// gate before they reach this field.
	Pattern *regexp.Regexp

	// Priority orders overlap resolution; higher is checked first and wins
	// overlapping spans.
	Priority int

	// Validator optionally applies structural rules beyond shape (Luhn,
	// SSN exclusion ranges, digit counts). A nil validator accepts every
	// shape match. A false return excludes the match entirely.
	Validator func(match string) bool
}

// Validated reports whether the entry carries a structural validator.
func (e Entry) Validated() bool {
	return e.Validator != nil
}

// builtinEntries returns the built-in pattern table, highest priority first.
// Regexes are compiled once at library construction.
func builtinEntries() []Entry {
	return []Entry{
		{
			Category:  model.CategorySSN,
			Pattern:   regexp.MustCompile(`\b\d{3}[- ]?\d{2}[- ]?\d{4}\b`),
			Priority:  100,
			Validator: ValidSSN,
		},
		{
			Category:  model.CategoryCreditCard,
			Pattern:   regexp.MustCompile(`\b\d(?:[ -]?\d){13,15}\b`),
			Priority:  90,
			Validator: ValidCreditCard,
		},
		{
			Category: model.CategoryEmail,
			Pattern:  regexp.MustCompile(`[A-Za-z0-9._%+\-]{1,64}@[A-Za-z0-9.\-]{1,200}\.[A-Za-z]{2,24}`),
			Priority: 80,
		},
		{
			Category:  model.CategoryPhone,
			Pattern:   regexp.MustCompile(`(?:\+?1[-. ]?)?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}\b`),
			Priority:  70,
			Validator: ValidPhone,
		},
		{
			Category: model.CategoryIPAddress,
			Pattern:  regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
			Priority: 60,
		},
		{
			Category: model.CategoryDateOfBirth,
			Pattern:  regexp.MustCompile(`\b(?:0?[1-9]|1[0-2])[/-](?:0?[1-9]|[12]\d|3[01])[/-](?:19|20)\d{2}\b`),
			Priority: 50,
		},
		{
			Category: model.CategoryAddress,
			Pattern:  regexp.MustCompile(`\b\d{1,5}\s+[A-Z][A-Za-z.\-]{1,30}(?:\s+[A-Z][A-Za-z.\-]{1,30}){0,3}\s+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Place|Pl|Way)\b`),
			Priority: 40,
		},
	}
}

// customPriority is the priority tier for admitted user patterns.
// Custom matches always yield to built-in matches on overlap.
const customPriority = 10

// Library is the ordered, cached table of category patterns.
//
// Category lookups for an enabled-category set are cached keyed by the
// sorted category list, so repeated lookups with the same set return the
// same filtered slice without recomputation. The cache is invalidated when
// a custom pattern is admitted.
type Library struct {
	mu      sync.Mutex
	entries []Entry
	cache   map[string][]Entry
}

// NewLibrary creates a Library populated with the built-in pattern table.
func NewLibrary() *Library {
	return &Library{
		entries: builtinEntries(),
		cache:   make(map[string][]Entry),
	}
}

// Entries returns the full pattern table, highest priority first.
func (l *Library) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries
}

// PatternsFor returns the entries whose category is in the enabled set,
// preserving priority order. The result is cached per sorted category set:
// two calls with the same set, in any input order, return the identical
// slice on the second call.
func (l *Library) PatternsFor(categories []model.Category) []Entry {
	key := cacheKey(categories)

	l.mu.Lock()
	defer l.mu.Unlock()

	if cached, ok := l.cache[key]; ok {
		return cached
	}

	enabled := make(map[model.Category]bool, len(categories))
	for _, c := range categories {
		enabled[c] = true
	}

	filtered := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		if enabled[e.Category] {
			filtered = append(filtered, e)
		}
	}

	l.cache[key] = filtered
	return filtered
}

// AddCustom admits a user-supplied pattern through the admission gate and,
// on success, merges it into the library at the custom tier. The lookup
// cache is invalidated because cached filtered lists may now be stale.
func (l *Library) AddCustom(expr string) error {
	re, err := CompileCustom(expr)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{
		Category: model.CategoryCustom,
		Pattern:  re,
		Priority: customPriority,
	})
	l.cache = make(map[string][]Entry)
	return nil
}

// cacheKey builds a canonical key from a category set: sorted and joined,
// so input order does not matter.
func cacheKey(categories []model.Category) string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

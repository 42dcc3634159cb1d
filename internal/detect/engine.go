package detect

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/veilcheck/veilcheck/internal/model"
	"github.com/veilcheck/veilcheck/internal/pattern"
)

// EngineVersion identifies the detection engine build. It is recorded in
// every result so confidence values can be traced to the mapping that
// produced them.
const EngineVersion = "1.0.0"

// contextWindow is the number of bytes of surrounding text captured on each
// side of a match. Detections carry this bounded window rather than the full
// section to limit exposure during preview.
const contextWindow = 40

// Config selects which categories the engine applies.
type Config struct {
	// Categories is the enabled category set. Empty means all categories.
	Categories []model.Category
}

// Result is the output of one detection pass.
type Result struct {
	// Detections holds all validated detections, sorted by section order
	// and offset within each section.
	Detections []model.Detection

	// ProcessingTime is the wall-clock duration of the pass.
	ProcessingTime time.Duration

	// EngineVersion identifies the engine that produced the result.
	EngineVersion string

	// Warnings records skipped malformed sections.
	Warnings []string
}

// Engine applies the pattern library across document sections.
// An Engine is safe for concurrent use: it holds only the library, whose
// lookup cache is internally synchronized.
type Engine struct {
	library *pattern.Library
}

// NewEngine creates an Engine over the given pattern library.
// A nil library gets the built-in one.
func NewEngine(library *pattern.Library) *Engine {
	if library == nil {
		library = pattern.NewLibrary()
	}
	return &Engine{library: library}
}

// Detect scans every section with every enabled pattern and returns
// validated, confidence-scored detections.
//
// Malformed sections (missing ID or text) are skipped with a recorded
// warning; one bad section never aborts the scan. Validator failures
// exclude the match entirely rather than lowering its confidence.
func (e *Engine) Detect(ctx context.Context, fileID string, sections []model.ContentSection, cfg Config) (*Result, error) {
	start := time.Now()

	categories := cfg.Categories
	if len(categories) == 0 {
		categories = model.AllCategories()
	}
	entries := e.library.PatternsFor(categories)

	result := &Result{EngineVersion: EngineVersion}

	for _, section := range sections {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if !section.Valid() {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("section %q missing required fields, skipped", section.ID))
			continue
		}

		result.Detections = append(result.Detections, scanSection(fileID, section, entries)...)
	}

	result.ProcessingTime = time.Since(start)
	return result, nil
}

// candidate is a raw match before overlap resolution.
type candidate struct {
	entry      pattern.Entry
	start, end int
}

// scanSection applies every entry to one section and resolves overlaps.
func scanSection(fileID string, section model.ContentSection, entries []pattern.Entry) []model.Detection {
	var candidates []candidate

	for _, entry := range entries {
		for _, loc := range entry.Pattern.FindAllStringIndex(section.Text, -1) {
			match := section.Text[loc[0]:loc[1]]
			if entry.Validator != nil && !entry.Validator(match) {
				continue // validation rejected: excluded, not downgraded
			}
			candidates = append(candidates, candidate{entry: entry, start: loc[0], end: loc[1]})
		}
	}

	kept := resolveOverlaps(candidates)

	detections := make([]model.Detection, 0, len(kept))
	for _, c := range kept {
		value := section.Text[c.start:c.end]
		detections = append(detections, model.Detection{
			ID:          detectionID(fileID, section.ID, c.entry.Category, c.start, c.end),
			FileID:      fileID,
			SectionID:   section.ID,
			Category:    c.entry.Category,
			Value:       value,
			StartOffset: c.start,
			EndOffset:   c.end,
			Confidence:  confidenceFor(c.entry),
			Context:     contextFor(section.Text, c.start, c.end),
		})
	}

	// Stable offset order within the section for deterministic display.
	sort.Slice(detections, func(i, j int) bool {
		return detections[i].StartOffset < detections[j].StartOffset
	})
	return detections
}

// resolveOverlaps keeps the higher-priority match wherever spans overlap.
// Candidates are compared pairwise after sorting by priority so that a
// lower-priority overlap is discarded even when several spans chain.
func resolveOverlaps(candidates []candidate) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].entry.Priority > candidates[j].entry.Priority
	})

	var kept []candidate
	for _, c := range candidates {
		overlaps := false
		for _, k := range kept {
			if c.start < k.end && k.start < c.end {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, c)
		}
	}
	return kept
}

// confidenceFor is the fixed deterministic mapping from pattern tier to
// detection confidence. It is chosen to line up with the sensitivity
// thresholds (low 0.9, medium 0.7, high 0.5): only validated categories
// clear the low-sensitivity bar, structural-but-unvalidated categories
// clear medium, and broad shapes surface only at high sensitivity.
func confidenceFor(e pattern.Entry) float64 {
	switch e.Category {
	case model.CategorySSN, model.CategoryCreditCard:
		return 0.95
	case model.CategoryPhone:
		return 0.9
	case model.CategoryEmail:
		return 0.85
	case model.CategoryIPAddress:
		return 0.8
	case model.CategoryDateOfBirth:
		return 0.7
	case model.CategoryCustom:
		return 0.6
	default:
		return 0.5
	}
}

// contextFor returns a bounded window around the match, never the full
// section text.
func contextFor(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return text[lo:hi]
}

// detectionID derives a deterministic identifier from the detection's
// coordinates. BLAKE2b keeps IDs stable across rescans of identical input
// without embedding the matched value itself.
func detectionID(fileID, sectionID string, category model.Category, start, end int) string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%s|%s|%s|%d|%d", fileID, sectionID, category, start, end)
	return hex.EncodeToString(h.Sum(nil))[:16]
}

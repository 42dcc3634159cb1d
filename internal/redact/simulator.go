package redact

import (
	"sort"

	"github.com/veilcheck/veilcheck/internal/model"
)

// Placeholder is the uniform marker spliced over redacted spans.
const Placeholder = "[REDACTED]"

// Simulate returns a copy of the sections with every accepted detection's
// span replaced by Placeholder. Input sections are never mutated.
//
// Redactions within one section are applied in descending offset order so
// that splicing one span never shifts the offsets of spans not yet applied.
// Detections whose offsets fall outside their section are skipped; the
// simulator is advisory and must not fail the run over a stale detection.
func Simulate(sections []model.ContentSection, accepted []model.Detection) []model.ContentSection {
	bySection := make(map[string][]model.Detection)
	for _, d := range accepted {
		bySection[d.SectionID] = append(bySection[d.SectionID], d)
	}

	out := make([]model.ContentSection, len(sections))
	for i, section := range sections {
		out[i] = section

		spans := bySection[section.ID]
		if len(spans) == 0 {
			continue
		}

		// Descending offset order keeps unapplied offsets valid.
		sort.Slice(spans, func(a, b int) bool {
			return spans[a].StartOffset > spans[b].StartOffset
		})

		text := section.Text
		for _, d := range spans {
			if d.StartOffset < 0 || d.EndOffset > len(text) || d.StartOffset >= d.EndOffset {
				continue
			}
			text = text[:d.StartOffset] + Placeholder + text[d.EndOffset:]
		}
		out[i].Text = text
	}
	return out
}

package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/veilcheck/veilcheck/internal/model"
)

// MaxFileSize limits how much of a source file is read. 10MB is generous
// for text documents while preventing memory exhaustion from unexpectedly
// large inputs.
const MaxFileSize = 10 * 1024 * 1024

// Ingest errors.
var (
	// ErrFileTooLarge is returned for files above MaxFileSize.
	ErrFileTooLarge = errors.New("file too large to ingest")

	// ErrEmptyDocument is returned when a file yields no scannable
	// sections.
	ErrEmptyDocument = errors.New("document contains no text sections")
)

// ReadFile loads a source file and splits it into content sections.
// The parser is chosen by file extension: .html and .htm go through the
// HTML parser, everything else is treated as plain text.
func ReadFile(path string) ([]model.ContentSection, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("%s: %w", path, ErrFileTooLarge)
	}

	data, err := os.ReadFile(path) //nolint:gosec // User-provided scan target is intentional
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var sections []model.ContentSection
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		sections, err = ParseHTML(strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		sections = SplitPlainText(string(data))
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}
	return sections, nil
}

// SplitPlainText splits text into paragraph sections on blank lines.
// Windows line endings are normalized first so offsets stay consistent
// across platforms. Empty paragraphs are dropped.
//
// Section IDs are positional ("s-0001", ...) and the location hint records
// the starting line number, which is what a human needs to find the text.
func SplitPlainText(text string) []model.ContentSection {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var sections []model.ContentSection
	line := 1
	for _, block := range strings.Split(text, "\n\n") {
		startLine := line
		line += strings.Count(block, "\n") + 2

		trimmed := strings.TrimSpace(block)
		if trimmed == "" {
			continue
		}
		sections = append(sections, model.ContentSection{
			ID:       fmt.Sprintf("s-%04d", len(sections)+1),
			Text:     trimmed,
			Type:     model.SectionParagraph,
			Location: fmt.Sprintf("line %d", startLine),
		})
	}
	return sections
}

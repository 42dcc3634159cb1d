package ingest

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/veilcheck/veilcheck/internal/model"
)

// HTML elements whose text content becomes its own section, mapped to the
// section type it produces.
var sectionElements = map[string]model.SectionType{
	"h1":     model.SectionHeading,
	"h2":     model.SectionHeading,
	"h3":     model.SectionHeading,
	"h4":     model.SectionHeading,
	"h5":     model.SectionHeading,
	"h6":     model.SectionHeading,
	"p":      model.SectionParagraph,
	"li":     model.SectionParagraph,
	"td":     model.SectionCell,
	"th":     model.SectionCell,
	"footer": model.SectionFooter,
	"header": model.SectionHeader,
}

// Elements whose content is never document text.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
}

// ParseHTML extracts text sections from an HTML document.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common in exported documents
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//
// Each section-producing element (headings, paragraphs, list items, table
// cells) yields one section with its flattened text. Scripts and styles are
// skipped entirely. Detection offsets index into the flattened text, not
// the raw HTML, so redaction simulation operates on what a reader would
// actually see.
func ParseHTML(content io.Reader) ([]model.ContentSection, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	var sections []model.ContentSection

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if sectionType, ok := sectionElements[n.Data]; ok {
				text := strings.TrimSpace(flattenText(n))
				if text != "" {
					sections = append(sections, model.ContentSection{
						ID:       fmt.Sprintf("s-%04d", len(sections)+1),
						Text:     text,
						Type:     sectionType,
						Location: fmt.Sprintf("<%s> #%d", n.Data, len(sections)+1),
					})
				}
				return // children already flattened into this section
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sections, nil
}

// flattenText concatenates the text nodes under n, collapsing runs of
// whitespace to single spaces.
func flattenText(n *html.Node) string {
	var b strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}

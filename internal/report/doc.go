// Package report provides output formatting for scan results.
//
// Three formats are supported:
//   - Simple: human-readable text for terminal display
//   - JSON: machine-readable output for tool integration
//   - Markdown: GitHub-flavored markdown for documentation and sharing
//
// All writers implement the Writer interface and can be combined with
// MultiWriter to emit several formats or destinations at once.
//
// Writers never print raw detection values. The matched text is exactly
// what the tool exists to contain; reports show categories, coordinates,
// and confidence instead.
package report

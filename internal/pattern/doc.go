// Package pattern holds the ordered PII pattern library: category patterns
// with priorities, structural validators, the category-set lookup cache, and
// the admission gate for user-supplied custom patterns.
//
// Pattern tables are data, not class hierarchies: the library is a flat
// ordered slice of records loaded once. All built-in patterns use bounded
// repetition and no nested unbounded quantifiers, and the same constraint is
// enforced on custom patterns before they join the library.
package pattern

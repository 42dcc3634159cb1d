package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/veilcheck/veilcheck/internal/model"
)

// TestPatternsForCacheStable verifies that two lookups with the same
// category set, regardless of input order, return the identical filtered
// list on the second call.
func TestPatternsForCacheStable(t *testing.T) {
	t.Parallel()

	lib := NewLibrary()

	first := lib.PatternsFor([]model.Category{model.CategorySSN, model.CategoryEmail})
	second := lib.PatternsFor([]model.Category{model.CategoryEmail, model.CategorySSN})

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 entries each, got %d and %d", len(first), len(second))
	}
	// Same backing array means the cached slice was returned as-is.
	if &first[0] != &second[0] {
		t.Error("second lookup did not return the cached list")
	}
	for i := range first {
		if first[i].Category != second[i].Category {
			t.Errorf("entry %d differs: %v vs %v", i, first[i].Category, second[i].Category)
		}
	}
}

// TestPatternsForPriorityOrder verifies the filtered list preserves
// priority order.
func TestPatternsForPriorityOrder(t *testing.T) {
	t.Parallel()

	lib := NewLibrary()
	got := lib.PatternsFor(model.AllCategories())

	for i := 1; i < len(got); i++ {
		if got[i].Priority > got[i-1].Priority {
			t.Fatalf("entries out of priority order at %d: %d after %d",
				i, got[i].Priority, got[i-1].Priority)
		}
	}
}

// TestAddCustom tests the admission gate and cache invalidation.
func TestAddCustom(t *testing.T) {
	t.Parallel()

	t.Run("accepted pattern joins custom tier", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		if err := lib.AddCustom(`EMP-\d{6}`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := lib.PatternsFor([]model.Category{model.CategoryCustom})
		if len(got) != 1 {
			t.Fatalf("expected 1 custom entry, got %d", len(got))
		}
		if got[0].Priority != customPriority {
			t.Errorf("custom priority = %d, want %d", got[0].Priority, customPriority)
		}
	})

	t.Run("admission invalidates cache", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		before := lib.PatternsFor([]model.Category{model.CategoryCustom})
		if len(before) != 0 {
			t.Fatalf("expected no custom entries before admission, got %d", len(before))
		}

		if err := lib.AddCustom(`EMP-\d{6}`); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		after := lib.PatternsFor([]model.Category{model.CategoryCustom})
		if len(after) != 1 {
			t.Errorf("expected 1 custom entry after admission, got %d", len(after))
		}
	})

	t.Run("rejects over-length pattern", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		err := lib.AddCustom(strings.Repeat("a", 501))
		if !errors.Is(err, ErrPatternTooLong) {
			t.Errorf("expected ErrPatternTooLong, got %v", err)
		}
	})

	t.Run("rejects nested quantifier", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		err := lib.AddCustom(`(a+)+b`)
		if !errors.Is(err, ErrPatternDangerous) {
			t.Errorf("expected ErrPatternDangerous, got %v", err)
		}
	})

	t.Run("rejects adjacent wildcards", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		err := lib.AddCustom(`.*.*suffix`)
		if !errors.Is(err, ErrPatternDangerous) {
			t.Errorf("expected ErrPatternDangerous, got %v", err)
		}
	})

	t.Run("rejects non-compiling pattern", func(t *testing.T) {
		t.Parallel()

		lib := NewLibrary()
		err := lib.AddCustom(`[unclosed`)
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("expected ErrInvalidPattern, got %v", err)
		}
	})
}

// TestBuiltinPatternsMatch spot-checks each built-in shape pattern.
func TestBuiltinPatternsMatch(t *testing.T) {
	t.Parallel()

	lib := NewLibrary()
	samples := map[model.Category]string{
		model.CategorySSN:         "123-45-6789",
		model.CategoryCreditCard:  "4532 0151 1283 0366",
		model.CategoryEmail:       "jane.doe@example.com",
		model.CategoryPhone:       "(555) 123-4567",
		model.CategoryIPAddress:   "192.168.1.10",
		model.CategoryDateOfBirth: "04/12/1987",
		model.CategoryAddress:     "742 Evergreen Terrace Ln",
	}

	for _, e := range lib.Entries() {
		sample, ok := samples[e.Category]
		if !ok {
			continue
		}
		if !e.Pattern.MatchString(sample) {
			t.Errorf("%s pattern did not match sample %q", e.Category, sample)
		}
	}
}

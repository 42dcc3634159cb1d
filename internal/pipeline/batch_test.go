package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/veilcheck/veilcheck/internal/model"
)

// stampStep records the file it ran for, optionally failing for one file.
type stampStep struct {
	failFor string
}

func (s *stampStep) Name() string { return "stamp" }

func (s *stampStep) Do(_ context.Context, report *model.ScanReport) error {
	if s.failFor != "" && report.FileID == s.failFor {
		return errors.New("stamp failed")
	}
	report.AddWarning("stamped " + report.FileID)
	return nil
}

// TestProcessBatch verifies ordering and per-file isolation.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline {
		p := New(WithLogger(quietLogger()))
		p.AddStep(&stampStep{failFor: "b.txt"})
		return p
	}

	bp := NewBatchProcessor(factory,
		WithBatchLogger(quietLogger()),
		WithConcurrency(2),
	)

	files := []string{"a.txt", "b.txt", "c.txt"}
	reports, err := bp.ProcessBatch(context.Background(), files)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reports) != 3 {
		t.Fatalf("reports = %d, want 3", len(reports))
	}
	// Results keep input order even with concurrent execution.
	for i, file := range files {
		if reports[i] == nil || reports[i].FileID != file {
			t.Errorf("reports[%d] = %+v, want file %s", i, reports[i], file)
		}
	}

	// The failing file is recorded, the others completed.
	if reports[1].Status != model.ScanStatusFailed {
		t.Errorf("b.txt status = %q, want failed", reports[1].Status)
	}
	if reports[0].Status == model.ScanStatusFailed || reports[2].Status == model.ScanStatusFailed {
		t.Error("a failing file leaked into its neighbors")
	}
}

// TestProcessBatchCancelled verifies cancellation surfaces.
func TestProcessBatchCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bp := NewBatchProcessor(func() *Pipeline {
		p := New(WithLogger(quietLogger()))
		p.AddStep(&stampStep{})
		return p
	}, WithBatchLogger(quietLogger()))

	_, err := bp.ProcessBatch(ctx, []string{"a.txt", "b.txt"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

// TestProcessBatchWithCallback verifies the streaming variant.
func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func() *Pipeline {
		p := New(WithLogger(quietLogger()))
		p.AddStep(&stampStep{})
		return p
	}, WithBatchLogger(quietLogger()), WithConcurrency(3))

	var mu sync.Mutex
	seen := make(map[int]string)

	err := bp.ProcessBatchWithCallback(context.Background(),
		[]string{"a.txt", "b.txt", "c.txt"},
		func(report *model.ScanReport, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = report.FileID
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seen) != 3 || seen[0] != "a.txt" || seen[2] != "c.txt" {
		t.Errorf("callbacks = %v", seen)
	}
}

// TestWithConcurrencyIgnoresNonPositive verifies the option guard.
func TestWithConcurrencyIgnoresNonPositive(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(quietLogger())) },
		WithConcurrency(0),
	)
	if bp.concurrency != 10 {
		t.Errorf("concurrency = %d, want default 10", bp.concurrency)
	}
}

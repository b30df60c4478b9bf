// Package diag collects non-fatal diagnostics raised while a book is
// preprocessed: unresolved links and footnote cycles. Diagnostics are
// logged as they occur and kept for the final build report.
package diag

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Reporter is safe for concurrent use by the per-chapter workers.
type Reporter struct {
	mu         sync.Mutex
	logger     *zap.Logger
	unresolved map[string]struct{}
	problems   []error
}

func NewReporter(logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{
		logger:     logger,
		unresolved: make(map[string]struct{}),
	}
}

// UnresolvedLink records a link target that no resolution rule matched.
// Each distinct target is reported once, no matter how often it appears.
func (r *Reporter) UnresolvedLink(chapter, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, seen := r.unresolved[target]; seen {
		return
	}
	r.unresolved[target] = struct{}{}
	r.problems = append(r.problems,
		fmt.Errorf("unresolved link %q in %s", target, chapter))
	r.logger.Warn("unresolved link",
		zap.String("chapter", chapter),
		zap.String("target", target),
	)
}

// FootnoteCycle records a cyclic footnote reference chain. The cycle names
// every label on the path, ending where it began.
func (r *Reporter) FootnoteCycle(chapter string, cycle []string) {
	path := strings.Join(cycle, " => ")

	r.mu.Lock()
	defer r.mu.Unlock()

	r.problems = append(r.problems,
		fmt.Errorf("footnote cycle %s in %s", path, chapter))
	r.logger.Warn("footnote cycle",
		zap.String("chapter", chapter),
		zap.String("cycle", path),
	)
}

// Count returns the number of diagnostics recorded so far.
func (r *Reporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.problems)
}

// Err combines all recorded diagnostics into a single error, or nil when
// the build was clean. Used by strict builds that fail on warnings.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return multierr.Combine(r.problems...)
}

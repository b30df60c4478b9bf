// Package hints provides actionable error hints for common failure
// scenarios. Hints are formatted consistently as "\n  hint: <text>" for
// appending to error messages.
package hints

import (
	"os/exec"
	"strings"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ForPandocFailed returns hints for a failed or missing pandoc run. When
// pandoc is not installed at all, that is the hint; otherwise point at the
// verbose flag so the command line can be inspected.
func ForPandocFailed() string {
	if _, err := lookPath("pandoc"); err != nil {
		return format("pandoc not found in PATH, see https://pandoc.org/installing.html")
	}
	return format("rerun with -v to see the pandoc command line")
}

// ForPDFEngine returns hints for a missing PDF engine.
func ForPDFEngine(engine string) string {
	if engine == "" {
		engine = "pdflatex"
	}
	if _, err := lookPath(engine); err != nil {
		return format(engine + " not found in PATH, install a TeX distribution or set pdf-engine")
	}
	return ""
}

// ForMissingSummary returns hints for a book without a SUMMARY.md.
func ForMissingSummary() string {
	return format("create SUMMARY.md under the source directory or pass --book")
}

// ForConfigNotFound returns hints for config file errors.
func ForConfigNotFound(path string) string {
	hint := "use --config /path/to/book.yaml"
	if path != "" {
		hint += " or create " + path
	}
	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// Join concatenates hints, skipping empty ones.
func Join(hints ...string) string {
	var b strings.Builder
	for _, h := range hints {
		b.WriteString(h)
	}
	return b.String()
}

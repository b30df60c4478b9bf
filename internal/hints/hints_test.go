package hints

// Notes:
// - Lookup-dependent hints swap the package-level lookPath variable, so
//   those tests cannot run in parallel.

import (
	"errors"
	"strings"
	"testing"
)

func withLookPath(t *testing.T, fn func(string) (string, error)) {
	t.Helper()

	orig := lookPath
	lookPath = fn
	t.Cleanup(func() { lookPath = orig })
}

func TestForPandocFailed(t *testing.T) {
	t.Run("pandoc missing", func(t *testing.T) {
		withLookPath(t, func(string) (string, error) {
			return "", errors.New("not found")
		})

		got := ForPandocFailed()
		if !strings.Contains(got, "pandoc not found") {
			t.Errorf("hint = %q", got)
		}
		if !strings.HasPrefix(got, "\n  hint: ") {
			t.Errorf("hint format = %q", got)
		}
	})

	t.Run("pandoc present", func(t *testing.T) {
		withLookPath(t, func(string) (string, error) {
			return "/usr/bin/pandoc", nil
		})

		if got := ForPandocFailed(); !strings.Contains(got, "-v") {
			t.Errorf("hint = %q", got)
		}
	})
}

func TestForPDFEngine(t *testing.T) {
	t.Run("engine missing", func(t *testing.T) {
		withLookPath(t, func(string) (string, error) {
			return "", errors.New("not found")
		})

		got := ForPDFEngine("lualatex")
		if !strings.Contains(got, "lualatex not found") {
			t.Errorf("hint = %q", got)
		}
	})

	t.Run("defaults to pdflatex", func(t *testing.T) {
		var asked string
		withLookPath(t, func(name string) (string, error) {
			asked = name
			return "", errors.New("not found")
		})

		ForPDFEngine("")
		if asked != "pdflatex" {
			t.Errorf("looked up %q, want pdflatex", asked)
		}
	})

	t.Run("engine present gives no hint", func(t *testing.T) {
		withLookPath(t, func(string) (string, error) {
			return "/usr/bin/pdflatex", nil
		})

		if got := ForPDFEngine("pdflatex"); got != "" {
			t.Errorf("hint = %q, want empty", got)
		}
	})
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	got := ForConfigNotFound("book.yaml")
	if !strings.Contains(got, "--config") || !strings.Contains(got, "book.yaml") {
		t.Errorf("hint = %q", got)
	}
}

func TestForMissingSummary(t *testing.T) {
	t.Parallel()

	if got := ForMissingSummary(); !strings.Contains(got, "SUMMARY.md") {
		t.Errorf("hint = %q", got)
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	got := Join("", "\n  hint: a", "", "\n  hint: b")
	if got != "\n  hint: a\n  hint: b" {
		t.Errorf("Join() = %q", got)
	}
}

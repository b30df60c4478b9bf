package mdbookpandoc

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Book.Source != "src" {
		t.Errorf("source = %q, want %q", cfg.Book.Source, "src")
	}
	p, ok := cfg.Profiles["pdf"]
	if !ok {
		t.Fatal("default pdf profile missing")
	}
	if p.Output != "book.pdf" || !p.TableOfContents || !p.NumberSections {
		t.Errorf("pdf profile = %+v", p)
	}
}

func TestParseConfig(t *testing.T) {
	t.Parallel()

	data := []byte(`book:
  source: docs
markdown:
  extensions:
    math: true
    superscript: true
  cross-chapter-footnotes: true
code:
  show-hidden-lines: true
  hidelines:
    python: "~"
hosted-html: https://example.com/book/
redirects:
  /old/page.html: /new/page.html
fail-on-warnings: true
profiles:
  pdf:
    output: book.pdf
    pdf-engine: lualatex
    number-sections: true
    standalone: true
    table-of-contents: true
    toc-depth: 3
    variables:
      documentclass: report
  html:
    output: book.html
    to: html5
    columns: 100
    extra-args: ["--mathjax"]
`)

	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() unexpected error: %v", err)
	}

	if cfg.Book.Source != "docs" {
		t.Errorf("source = %q", cfg.Book.Source)
	}
	if !cfg.Markdown.Extensions.Math || !cfg.Markdown.Extensions.Superscript {
		t.Errorf("extensions = %+v", cfg.Markdown.Extensions)
	}
	if !cfg.Markdown.CrossChapterFootnotes {
		t.Error("cross-chapter-footnotes not set")
	}
	if cfg.Code.Hidelines["python"] != "~" {
		t.Errorf("hidelines = %v", cfg.Code.Hidelines)
	}
	if !cfg.FailOnWarnings {
		t.Error("fail-on-warnings not set")
	}

	// Redirect keys lose their leading slash during normalization.
	if got, ok := cfg.Redirects["old/page.html"]; !ok || got != "/new/page.html" {
		t.Errorf("redirects = %v", cfg.Redirects)
	}

	pdf := cfg.Profiles["pdf"]
	if pdf.PDFEngine != "lualatex" || pdf.TOCDepth != 3 {
		t.Errorf("pdf profile = %+v", pdf)
	}
	if pdf.Columns != defaultColumns {
		t.Errorf("pdf columns = %d, want default %d", pdf.Columns, defaultColumns)
	}
	if pdf.Variables["documentclass"] != "report" {
		t.Errorf("variables = %v", pdf.Variables)
	}

	html := cfg.Profiles["html"]
	if html.To != "html5" || html.Columns != 100 {
		t.Errorf("html profile = %+v", html)
	}
	if len(html.ExtraArgs) != 1 || html.ExtraArgs[0] != "--mathjax" {
		t.Errorf("extra args = %v", html.ExtraArgs)
	}
}

func TestParseConfig_UnknownKey(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("bogus-key: true\nprofiles:\n  pdf:\n    output: x.pdf\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig([]byte("book:\n  source: src\n"))
	if !errors.Is(err, ErrNoProfiles) {
		t.Fatalf("ParseConfig() error = %v, want ErrNoProfiles", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "book.yaml")
	data := "profiles:\n  pdf:\n    output: out.pdf\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() unexpected error: %v", err)
	}
	if cfg.Profiles["pdf"].Output != "out.pdf" {
		t.Errorf("profile = %+v", cfg.Profiles["pdf"])
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

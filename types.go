package mdbookpandoc

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// defaultColumns is the line budget assumed for renderers that wrap
// output, matching pandoc's default.
const defaultColumns = 72

// Config is the full configuration surface of a build.
type Config struct {
	Book     BookConfig     `yaml:"book"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Code     CodeConfig     `yaml:"code"`

	// HostedHTML is the base URL of a hosted HTML rendering of the book.
	// Links that cannot be resolved inside the book fall back to it.
	HostedHTML string `yaml:"hosted-html"`

	// Redirects maps old site paths (as published, e.g. "/old/page.html")
	// to their new targets.
	Redirects map[string]string `yaml:"redirects"`

	// FailOnWarnings turns non-fatal diagnostics (unresolved links,
	// footnote cycles) into a build failure.
	FailOnWarnings bool `yaml:"fail-on-warnings"`

	// Profiles configures one pandoc invocation per named output.
	Profiles map[string]*Profile `yaml:"profiles"`
}

// BookConfig locates the book sources.
type BookConfig struct {
	// Source is the directory containing SUMMARY.md, relative to the book
	// root. Defaults to "src".
	Source string `yaml:"source"`
}

// MarkdownConfig selects dialect features.
type MarkdownConfig struct {
	Extensions ExtensionConfig `yaml:"extensions"`

	// CrossChapterFootnotes lets a footnote reference in one chapter use
	// a definition from another.
	CrossChapterFootnotes bool `yaml:"cross-chapter-footnotes"`
}

// ExtensionConfig toggles individual Markdown extensions.
type ExtensionConfig struct {
	// Math parses dollar-delimited math spans.
	Math bool `yaml:"math"`
	// MathEmulation recognizes LaTeX math delimiters in ordinary text.
	// Has no effect when Math is enabled.
	MathEmulation bool `yaml:"math-emulation"`
	Superscript   bool `yaml:"superscript"`
	Subscript     bool `yaml:"subscript"`
}

// CodeConfig controls hidden-line handling in code blocks.
type CodeConfig struct {
	ShowHiddenLines bool `yaml:"show-hidden-lines"`
	// Hidelines maps a language to its hidden-line prefix, e.g.
	// python: "~".
	Hidelines map[string]string `yaml:"hidelines"`
}

// Profile configures one output: the flags for a single pandoc
// invocation.
type Profile struct {
	// Output is the output file name, relative to the destination
	// directory. Its extension usually determines the format.
	Output string `yaml:"output"`
	// To forces an output format instead of inferring it from Output.
	To string `yaml:"to"`
	// PDFEngine selects the engine for PDF output.
	PDFEngine string `yaml:"pdf-engine"`
	// Columns is the line length used when wrapping and when deciding
	// which tables need explicit column widths. Defaults to 72.
	Columns         int  `yaml:"columns"`
	NumberSections  bool `yaml:"number-sections"`
	Standalone      bool `yaml:"standalone"`
	TableOfContents bool `yaml:"table-of-contents"`
	// TOCDepth limits the table of contents depth; 0 keeps pandoc's
	// default.
	TOCDepth int `yaml:"toc-depth"`
	// Variables are passed through as -V key=value.
	Variables map[string]string `yaml:"variables"`
	// ExtraArgs are appended to the pandoc command line verbatim.
	ExtraArgs []string `yaml:"extra-args"`
}

// Validate checks the whole configuration and reports every problem at
// once.
func (c *Config) Validate() error {
	var errs error

	if len(c.Profiles) == 0 {
		errs = multierr.Append(errs, ErrNoProfiles)
	}
	for name, p := range c.Profiles {
		if p == nil || p.Output == "" {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: %w", name, ErrEmptyOutput))
			continue
		}
		if p.TOCDepth != 0 && (p.TOCDepth < 1 || p.TOCDepth > 6) {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: %w: %d", name, ErrInvalidTOCDepth, p.TOCDepth))
		}
		if p.Columns < 0 {
			errs = multierr.Append(errs, fmt.Errorf("profile %q: %w: %d", name, ErrInvalidColumns, p.Columns))
		}
	}

	for lang, prefix := range c.Code.Hidelines {
		if prefix == "" {
			errs = multierr.Append(errs, fmt.Errorf("language %q: %w", lang, ErrEmptyHiddenPrefix))
		}
	}

	if c.HostedHTML != "" &&
		!strings.HasPrefix(c.HostedHTML, "http://") &&
		!strings.HasPrefix(c.HostedHTML, "https://") {
		errs = multierr.Append(errs, fmt.Errorf("%w: %q", ErrInvalidHostedHTML, c.HostedHTML))
	}

	return errs
}

// applyDefaults fills in zero values after loading.
func (c *Config) applyDefaults() {
	if c.Book.Source == "" {
		c.Book.Source = "src"
	}
	for _, p := range c.Profiles {
		if p != nil && p.Columns == 0 {
			p.Columns = defaultColumns
		}
	}
}

// columnBudget returns the narrowest column budget across profiles.
// Preprocessing runs once for all profiles, so table width annotation
// uses the most demanding one.
func (c *Config) columnBudget() int {
	budget := defaultColumns
	for _, p := range c.Profiles {
		if p != nil && p.Columns > 0 && p.Columns < budget {
			budget = p.Columns
		}
	}
	return budget
}

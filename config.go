package mdbookpandoc

import (
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-mdbook-pandoc/internal/yamlutil"
)

// DefaultConfig returns a minimal working configuration: a single PDF
// profile with a table of contents and numbered sections.
func DefaultConfig() *Config {
	return &Config{
		Book: BookConfig{Source: "src"},
		Profiles: map[string]*Profile{
			"pdf": {
				Output:          "book.pdf",
				Columns:         defaultColumns,
				NumberSections:  true,
				Standalone:      true,
				TableOfContents: true,
			},
		},
	}
}

// LoadConfig reads and validates a YAML configuration file. Unknown keys
// are rejected so typos fail loudly at startup instead of being silently
// ignored.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates raw YAML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	cfg.normalizeRedirects()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalizeRedirects strips the leading slash from redirect keys so they
// match book-root-relative paths during resolution.
func (c *Config) normalizeRedirects() {
	if len(c.Redirects) == 0 {
		return
	}
	normalized := make(map[string]string, len(c.Redirects))
	for from, to := range c.Redirects {
		normalized[strings.TrimPrefix(from, "/")] = to
	}
	c.Redirects = normalized
}

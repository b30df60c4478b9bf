package mdbookpandoc

import "errors"

// Sentinel errors for library operations.
var (
	ErrNilConfig    = errors.New("configuration cannot be nil")
	ErrPandocFailed = errors.New("pandoc exited unsuccessfully")
	ErrEmptyBook    = errors.New("book has no chapters")

	// Configuration validation errors.
	ErrNoProfiles        = errors.New("configuration defines no output profiles")
	ErrEmptyOutput       = errors.New("profile output file cannot be empty")
	ErrInvalidTOCDepth   = errors.New("toc-depth must be between 1 and 6")
	ErrInvalidColumns    = errors.New("columns must be positive")
	ErrEmptyHiddenPrefix = errors.New("hidelines prefix cannot be empty")
	ErrInvalidHostedHTML = errors.New("hosted-html must be an absolute URL")
	ErrBuildWarnings     = errors.New("build completed with warnings")
)

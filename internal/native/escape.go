package native

import "strings"

// escapeQuotes prepares author-visible text for emission inside a
// double-quoted Pandoc native string. Backslash sequences already valid in
// a native string (`\\` and `\"`) pass through unchanged; any other
// backslash is doubled and bare quotes are escaped.
func escapeQuotes(s string) string {
	if !strings.ContainsAny(s, `\"`+"\n\t") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)

	backslash := false
	for _, r := range s {
		if backslash {
			backslash = false
			switch r {
			case '\\':
				b.WriteString(`\\`)
				continue
			case '"':
				b.WriteString(`\"`)
				continue
			default:
				b.WriteString(`\\`)
			}
		}
		switch r {
		case '\\':
			backslash = true
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	if backslash {
		b.WriteString(`\\`)
	}
	return b.String()
}

// escapeVerbatim prepares verbatim text (code, raw markup, math) for
// emission inside a double-quoted Pandoc native string. Every backslash
// and quote is escaped; nothing is interpreted.
func escapeVerbatim(s string) string {
	if !strings.ContainsAny(s, `\"`+"\n\t") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

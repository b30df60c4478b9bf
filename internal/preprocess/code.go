package preprocess

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// CodeOptions controls hidden-line handling in code blocks.
type CodeOptions struct {
	// ShowHiddenLines reveals hidden lines (with their markers stripped)
	// instead of removing them.
	ShowHiddenLines bool
	// HiddenLinePrefixes maps a language name to the prefix marking a
	// hidden line in that language. An in-fence `hidelines=` attribute
	// overrides the map.
	HiddenLinePrefixes map[string]string
}

// processCodeBlocks normalizes every code block's info string down to its
// language and applies the hidden-line rules for that language.
func processCodeBlocks(doc *Node, opts CodeOptions) {
	Walk(doc, func(n *Node) {
		if n.Kind != KindCodeBlock {
			return
		}
		lang, attrs := splitInfo(n.Language)
		n.Language = lang

		prefix, explicit := hidePrefix(attrs)
		canonical := canonicalLanguage(lang)
		if !explicit {
			prefix = opts.HiddenLinePrefixes[canonical]
		}

		switch {
		case prefix != "":
			n.Text = applyPrefixRules(n.Text, prefix, opts.ShowHiddenLines)
		case canonical == "rust":
			n.Text = applyRustRules(n.Text, opts.ShowHiddenLines)
		}
	})
}

// splitInfo separates the language token from the rest of the fence info
// string. mdBook info strings use commas as well as spaces: `rust,ignore`.
func splitInfo(info string) (string, []string) {
	parts := strings.FieldsFunc(info, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
	if len(parts) == 0 {
		return "", nil
	}
	return parts[0], parts[1:]
}

func hidePrefix(attrs []string) (string, bool) {
	for _, a := range attrs {
		if p, ok := strings.CutPrefix(a, "hidelines="); ok {
			return p, true
		}
	}
	return "", false
}

// canonicalLanguage resolves aliases like "rs" through the syntax
// definition registry so configuration keys match regardless of spelling.
func canonicalLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	if lexer := lexers.Get(lang); lexer != nil {
		return strings.ToLower(lexer.Config().Name)
	}
	return strings.ToLower(lang)
}

// applyRustRules implements the Rust playground conventions: a line whose
// first non-blank character is `#` followed by a space (or nothing) is
// hidden, `##` escapes a literal leading `#`, and `#!` attributes are
// ordinary code.
func applyRustRules(code string, show bool) string {
	lines := strings.Split(code, "\n")
	out := lines[:0]
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			out = append(out, line)
			break
		}
		indent, rest := splitIndent(line)
		switch {
		case strings.HasPrefix(rest, "##"):
			out = append(out, indent+rest[1:])
		case rest == "#" || strings.HasPrefix(rest, "# "):
			if show {
				out = append(out, indent+strings.TrimPrefix(strings.TrimPrefix(rest, "#"), " "))
			}
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// applyPrefixRules hides lines whose first non-blank characters match the
// configured prefix.
func applyPrefixRules(code, prefix string, show bool) string {
	lines := strings.Split(code, "\n")
	out := lines[:0]
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			out = append(out, line)
			break
		}
		indent, rest := splitIndent(line)
		if !strings.HasPrefix(rest, prefix) {
			out = append(out, line)
			continue
		}
		if show {
			out = append(out, indent+rest[len(prefix):])
		}
	}
	return strings.Join(out, "\n")
}

func splitIndent(line string) (string, string) {
	rest := strings.TrimLeft(line, " \t")
	return line[:len(line)-len(rest)], rest
}

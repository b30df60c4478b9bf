package preprocess

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/alnah/go-mdbook-pandoc/internal/diag"
)

// LinkContext is the read-only book-wide state links resolve against. It
// is shared by all chapter workers and never mutated during resolution.
type LinkContext struct {
	// Chapter is the current chapter's source path.
	Chapter string
	Index   *Index
	// Redirects maps old root-relative paths to their new targets, as
	// published by the book's redirect table.
	Redirects map[string]string
	// HostedHTML is the base URL of a hosted rendering of the book, used
	// for paths that exist on the website but not in the book sources.
	HostedHTML string
	Reporter   *diag.Reporter
}

var schemePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// resolveLinks rewrites every link and image target in the chapter.
// Unresolvable links keep their literal target and are reported once per
// distinct target.
func resolveLinks(doc *Node, ctx *LinkContext) {
	Walk(doc, func(n *Node) {
		switch n.Kind {
		case KindLink:
			if resolved, ok := ctx.resolve(n.Target); ok {
				n.Target = resolved
			}
		case KindImage:
			n.Target = ctx.resolveImage(n.Target)
		}
	})
}

// resolve maps a link target to its rewritten form. ok=false means the
// target is left untouched.
//
// Resolution order for a relative target: same-chapter fragment, chapter
// lookup in the index, hosted-HTML fallback, redirect table. The order is
// deterministic and depends only on this context, never on other
// chapters' processing.
func (ctx *LinkContext) resolve(target string) (string, bool) {
	if target == "" || strings.HasPrefix(target, "//") || schemePattern.MatchString(target) {
		return "", false
	}

	rawPath, fragment := splitFragment(target)
	if rawPath == "" {
		// Fragment-only link within the same chapter.
		return "", false
	}

	rel := ctx.normalize(rawPath)

	if resolved, ok := ctx.lookupChapter(rel, fragment); ok {
		return resolved, true
	}

	if ctx.HostedHTML != "" {
		base := strings.TrimSuffix(ctx.HostedHTML, "/")
		return base + "/" + mdToHTML(rel) + suffixFragment(fragment), true
	}

	if resolved, ok := ctx.followRedirects(rel, fragment); ok {
		return resolved, true
	}

	ctx.Reporter.UnresolvedLink(ctx.Chapter, target)
	return "", false
}

// resolveImage rebases a relative image path onto the book source root so
// it stays valid after chapters are concatenated.
func (ctx *LinkContext) resolveImage(target string) string {
	if target == "" || strings.HasPrefix(target, "//") || schemePattern.MatchString(target) {
		return target
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return ctx.normalize(target)
}

// normalize resolves `.` and `..` against the chapter directory and turns
// site-rooted paths into book-root-relative ones.
func (ctx *LinkContext) normalize(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	if strings.HasPrefix(p, "/") {
		return strings.TrimPrefix(path.Clean(p), "/")
	}
	return path.Clean(path.Join(path.Dir(ctx.Chapter), p))
}

// lookupChapter checks whether rel names a known chapter, trying the
// rendered-HTML spellings as well (.html for .md, index.html for
// README.md). A hit resolves to a fragment within the single concatenated
// document.
func (ctx *LinkContext) lookupChapter(rel, fragment string) (string, bool) {
	for _, candidate := range chapterCandidates(rel) {
		anchor, ok := ctx.Index.Anchor(candidate)
		if !ok {
			continue
		}
		if fragment != "" {
			return "#" + fragment, true
		}
		return "#" + anchor, true
	}
	return "", false
}

// followRedirects walks the redirect table starting at rel. Chains are
// followed until they leave the book (an absolute URL), land on a known
// chapter, or cycle.
func (ctx *LinkContext) followRedirects(rel, fragment string) (string, bool) {
	seen := map[string]bool{}
	current := rel
	for {
		target, ok := redirectEntry(ctx.Redirects, current)
		if !ok {
			return "", false
		}
		if schemePattern.MatchString(target) || strings.HasPrefix(target, "//") {
			if strings.Contains(target, "#") {
				return target, true
			}
			return target + suffixFragment(fragment), true
		}

		next := strings.TrimPrefix(path.Clean(target), "/")
		if resolved, ok := ctx.lookupChapter(next, fragment); ok {
			return resolved, true
		}
		if seen[next] {
			return "", false
		}
		seen[next] = true
		current = next
	}
}

func redirectEntry(redirects map[string]string, rel string) (string, bool) {
	if t, ok := redirects[rel]; ok {
		return t, true
	}
	if t, ok := redirects[mdToHTML(rel)]; ok {
		return t, true
	}
	return "", false
}

// chapterCandidates lists the source paths a link path may refer to.
func chapterCandidates(rel string) []string {
	candidates := []string{rel}
	if strings.HasSuffix(rel, ".html") {
		candidates = append(candidates, strings.TrimSuffix(rel, ".html")+".md")
		if path.Base(rel) == "index.html" {
			candidates = append(candidates, path.Join(path.Dir(rel), "README.md"))
		}
	}
	return candidates
}

// mdToHTML maps a chapter source path to its rendered spelling.
func mdToHTML(rel string) string {
	if path.Base(rel) == "README.md" {
		return path.Join(path.Dir(rel), "index.html")
	}
	if strings.HasSuffix(rel, ".md") {
		return strings.TrimSuffix(rel, ".md") + ".html"
	}
	return rel
}

func splitFragment(target string) (string, string) {
	if idx := strings.Index(target, "#"); idx >= 0 {
		return target[:idx], target[idx+1:]
	}
	return target, ""
}

func suffixFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	return "#" + fragment
}

// Package postrender cleans up the HTML that the site build emits:
// directive lines that leaked into rendered pages are removed, and
// "View source" links are attached to symbol headings.
package postrender

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Directive text only ever leaks at the start of a paragraph or after
	// a forced break; anchoring there keeps code samples intact.
	directiveTextRe = regexp.MustCompile(`(?mi)(^|<p>|<br\s*/?>)[ \t]*%(?:family|order|seealso|nodoc)[^<\n]*`)
	emptyParaRe     = regexp.MustCompile(`(?i)<p>\s*</p>\n?`)
	danglingBreakRe = regexp.MustCompile(`(?i)<p>(?:\s*<br\s*/?>)+`)
	trailingBreakRe = regexp.MustCompile(`(?i)(?:\s*<br\s*/?>)+\s*</p>`)
)

// StripDirectives removes leaked directive lines from one HTML document and
// collapses the paragraphs that emptied out.
func StripDirectives(html string) string {
	out := directiveTextRe.ReplaceAllString(html, "$1")
	out = danglingBreakRe.ReplaceAllString(out, "<p>")
	out = trailingBreakRe.ReplaceAllString(out, "</p>")
	return emptyParaRe.ReplaceAllString(out, "")
}

// InjectSourceLinks appends a "View source" anchor after the title heading
// of every page whose title matches a linked symbol.
func InjectSourceLinks(html string, links map[string]string) string {
	for name, url := range links {
		headingRe := regexp.MustCompile(
			`(?is)(<h1[^>]*class="title[^"]*"[^>]*>\s*(?:<code>)?` +
				regexp.QuoteMeta(name) + `(?:</code>)?\s*</h1>)`)
		html = headingRe.ReplaceAllString(html,
			`$1<p class="source-link"><a href="`+url+`">View source</a></p>`)
	}
	return html
}

// InjectSeeAlso appends a See Also section for a symbol's %seealso
// references. Resolvable references become links via linkFor; the rest
// stay plain code.
func InjectSeeAlso(html string, related []string, linkFor func(name string) string) string {
	if len(related) == 0 {
		return html
	}

	var b strings.Builder
	b.WriteString(`<section class="see-also"><h2>See Also</h2><ul>`)
	for _, name := range related {
		if url := linkFor(name); url != "" {
			fmt.Fprintf(&b, `<li><a href="%s"><code>%s</code></a></li>`, url, name)
		} else {
			fmt.Fprintf(&b, `<li><code>%s</code></li>`, name)
		}
	}
	b.WriteString(`</ul></section>`)

	block := b.String()
	if i := strings.LastIndex(html, "</main>"); i >= 0 {
		return html[:i] + block + html[i:]
	}
	return html + block
}

// Processor rewrites every rendered HTML page under a site directory.
// SeeAlso maps symbol names to their %seealso references; Symbols names
// every documented symbol, for resolving those references to pages.
type Processor struct {
	Links   map[string]string
	SeeAlso map[string][]string
	Symbols map[string]bool
	Logger  *slog.Logger
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

// Run processes siteDir in place. Unreadable pages are logged and skipped;
// one broken page never fails the pass.
func (p *Processor) Run(siteDir string) error {
	count := 0
	err := filepath.WalkDir(siteDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			p.logger().Warn("skipping page", "path", path, "reason", err)
			return nil
		}

		out := StripDirectives(string(data))
		out = InjectSourceLinks(out, p.Links)
		// Reference pages are named after their symbol.
		name := strings.TrimSuffix(filepath.Base(path), ".html")
		if related, ok := p.SeeAlso[name]; ok {
			out = InjectSeeAlso(out, related, func(ref string) string {
				if p.Symbols[ref] {
					return ref + ".html"
				}
				return ""
			})
		}
		if out == string(data) {
			return nil
		}
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			p.logger().Warn("skipping page", "path", path, "reason", err)
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking site dir: %w", err)
	}
	p.logger().Debug("post-render pass complete", "dir", siteDir, "rewritten", count)
	return nil
}

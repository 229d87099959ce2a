package markdown

import (
	"fmt"
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// RewriteLinks points bare-symbol link destinations at their reference
// pages. The document is parsed to AST so only real link destinations are
// rewritten; a symbol name in plain prose stays prose. The replacements
// themselves are textual, keeping the author's formatting byte for byte.
func RewriteLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	parser := gmparser.NewWithExtensions(gmparser.CommonExtensions | gmparser.Autolink)
	doc := gm.Parse([]byte(src), parser)

	// Destinations that occur in this document and name a known page.
	targets := make(map[string]string)
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if link, ok := node.(*ast.Link); ok && entering {
			dest := string(link.Destination)
			if page, ok := linkMap[dest]; ok {
				targets[dest] = page
			}
		}
		return ast.GoToNext
	})
	if len(targets) == 0 {
		return src
	}

	// Inline form: [text](symbol).
	for dest, page := range targets {
		src = strings.ReplaceAll(src, "]("+dest+")", "]("+page+")")
	}

	// Reference definitions sit on their own line: [label]: symbol.
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for dest, page := range targets {
			if strings.HasSuffix(trimmed, "]: "+dest) {
				lines[i] = strings.Replace(line, "]: "+dest, "]: "+page, 1)
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// SeeAlsoBlock renders a "See Also" markdown section for a %seealso list.
// Symbols resolvable through linkFor become links; the rest stay inline
// code. An empty list yields the empty string.
func SeeAlsoBlock(related []string, linkFor func(name string) string) string {
	if len(related) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## See Also\n\n")
	for _, name := range related {
		if url := linkFor(name); url != "" {
			fmt.Fprintf(&b, "- [`%s`](%s)\n", name, url)
		} else {
			fmt.Fprintf(&b, "- `%s`\n", name)
		}
	}
	return b.String()
}

// AddFrontMatter prepends a YAML front-matter block of page metadata.
func AddFrontMatter(src string, fields map[string]string) string {
	if len(fields) == 0 {
		return src
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("---\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s: %s\n", k, fields[k]))
	}
	b.WriteString("---\n\n")
	b.WriteString(src)
	return b.String()
}

package site

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/docsmith/docsmith/internal/markdown"
)

// RewriteProseLinks rewrites bare-symbol link destinations in the
// hand-written pages at the top of the docs dir, so [Graph](Graph) in a
// README-derived index points at the symbol's reference page. Generated
// reference pages are not touched.
func RewriteProseLinks(docsDir string, linkMap map[string]string) error {
	if len(linkMap) == 0 {
		return nil
	}
	pages, err := filepath.Glob(filepath.Join(docsDir, "*.qmd"))
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}

	for _, page := range pages {
		data, err := os.ReadFile(page)
		if err != nil {
			return fmt.Errorf("reading %s: %w", page, err)
		}
		out := markdown.RewriteLinks(string(data), linkMap)
		if out == string(data) {
			continue
		}
		if err := os.WriteFile(page, []byte(out), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", page, err)
		}
	}
	return nil
}

// ReferenceLinkMap maps every symbol and qualified member name to its
// reference page path, relative to the docs dir.
func ReferenceLinkMap(names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	m := make(map[string]string, len(names))
	for _, name := range names {
		m[name] = referenceDir + "/" + name + ".qmd"
	}
	return m
}

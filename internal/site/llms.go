package site

import (
	"fmt"
	"os"
	"strings"

	"github.com/docsmith/docsmith/internal/markdown"
	"github.com/docsmith/docsmith/internal/organize"
)

// WriteLLMsTxt generates the llms.txt discovery file: a title, a one-line
// summary, and one link per reference section.
func WriteLLMsTxt(path string, opts Options, description string, sections []organize.Section) error {
	var b strings.Builder

	title := opts.SiteTitle
	if title == "" {
		title = opts.PackageName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if description != "" {
		fmt.Fprintf(&b, "> %s\n\n", strings.TrimSpace(description))
	}

	base := strings.TrimRight(opts.SiteURL, "/")
	if len(sections) > 0 {
		b.WriteString("## API Reference\n\n")
		for _, sec := range sections {
			link := base + "/" + referenceDir + "/"
			if sec.Desc != "" {
				fmt.Fprintf(&b, "- [%s](%s): %s\n", sec.Title, link, sec.Desc)
			} else {
				fmt.Fprintf(&b, "- [%s](%s)\n", sec.Title, link)
			}
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing llms.txt: %w", err)
	}
	return nil
}

// CreateIndexFromReadme seeds docs/index.qmd from the project README. An
// existing index is never overwritten; a missing README yields a stub.
func CreateIndexFromReadme(readmePath, indexPath, title string) error {
	if _, err := os.Stat(indexPath); err == nil {
		return nil
	}

	body := fmt.Sprintf("# %s\n\nWelcome to the %s documentation.\n", title, title)
	if data, err := os.ReadFile(readmePath); err == nil {
		body = string(data)
	}

	content := markdown.AddFrontMatter(body, map[string]string{"title": "Home"})
	if err := os.WriteFile(indexPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing index.qmd: %w", err)
	}
	return nil
}

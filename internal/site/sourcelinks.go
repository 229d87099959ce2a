package site

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/introspect"
)

// DetectGitRef resolves the ref to build source links against. An explicit
// override wins; otherwise the checked-out branch is asked for, with "main"
// as the fallback when git is unavailable or the tree is detached.
func DetectGitRef(dir, override string) string {
	if override != "" {
		return override
	}
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "main"
	}
	ref := strings.TrimSpace(string(out))
	if ref == "" || ref == "HEAD" {
		return "main"
	}
	return ref
}

// BuildSourceLinks maps every positioned symbol (and member, under its
// qualified name) to a repository URL with a line anchor. Symbols without
// a known file are left out.
func BuildSourceLinks(pkg *introspect.Package, cfg config.SourceLinkConfig, ref string) map[string]string {
	if !cfg.Enabled || cfg.Repo == "" || pkg == nil {
		return nil
	}
	base := strings.TrimRight(cfg.Repo, "/")

	links := make(map[string]string)
	add := func(name string, sym introspect.Symbol) {
		if sym.File == "" {
			return
		}
		url := fmt.Sprintf("%s/blob/%s/%s", base, ref, sym.File)
		if sym.Line > 0 {
			url = fmt.Sprintf("%s#L%d", url, sym.Line)
		}
		links[name] = url
	}

	for _, sym := range pkg.Symbols {
		add(sym.Name, sym)
		for _, m := range sym.Members {
			add(sym.Name+"."+m.Name, m)
		}
	}
	if len(links) == 0 {
		return nil
	}
	return links
}

// WriteSourceLinks persists the link map for the post-render pass.
func WriteSourceLinks(path string, links map[string]string) error {
	data, err := json.MarshalIndent(links, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding source links: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing source links: %w", err)
	}
	return nil
}

// ReadSourceLinks loads a link map written by WriteSourceLinks. A missing
// file is an empty map.
func ReadSourceLinks(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading source links: %w", err)
	}
	var links map[string]string
	if err := json.Unmarshal(data, &links); err != nil {
		return nil, fmt.Errorf("parsing source links: %w", err)
	}
	return links, nil
}

// Package site writes and maintains the Quarto project artifacts that the
// organizer's output feeds into.
package site

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/docsmith/docsmith/internal/organize"
)

// Options carries the identity of the documented project.
type Options struct {
	PackageName string
	SiteTitle   string
	SiteURL     string
	RepoURL     string
}

// referenceDir is the directory quartodoc renders symbol pages into,
// relative to the docs dir.
const referenceDir = "reference"

func readConfig(path string) (map[string]interface{}, error) {
	doc := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

func writeConfig(path string, doc map[string]interface{}) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// subMap returns doc[key] as a map, creating it when absent. A non-map
// value under key is replaced; user scalars there were never valid.
func subMap(doc map[string]interface{}, key string) map[string]interface{} {
	if m, ok := doc[key].(map[string]interface{}); ok {
		return m
	}
	m := make(map[string]interface{})
	doc[key] = m
	return m
}

func setDefault(m map[string]interface{}, key string, value interface{}) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}

// EnsureConfig creates or updates _quarto.yml with the project scaffolding
// docsmith needs, leaving every user-set key alone.
func EnsureConfig(path string, opts Options) error {
	doc, err := readConfig(path)
	if err != nil {
		return err
	}

	project := subMap(doc, "project")
	setDefault(project, "type", "website")

	website := subMap(doc, "website")
	title := opts.SiteTitle
	if title == "" {
		title = opts.PackageName
	}
	setDefault(website, "title", title)
	if opts.RepoURL != "" {
		setDefault(website, "repo-url", opts.RepoURL)
	}
	navbar := subMap(website, "navbar")
	setDefault(navbar, "left", []interface{}{
		map[string]interface{}{"href": "index.qmd", "text": "Home"},
		map[string]interface{}{"href": referenceDir + "/index.qmd", "text": "Reference"},
	})

	setDefault(website, "page-footer", map[string]interface{}{
		"center": "Built with docsmith",
	})

	format := subMap(doc, "format")
	html := subMap(format, "html")
	setDefault(html, "theme", "cosmo")
	setDefault(html, "css", "styles.css")
	setDefault(html, "toc", true)

	return writeConfig(path, doc)
}

// UpdateSections writes the organizer's section layout into the quartodoc
// block, replacing any previous layout.
func UpdateSections(path, pkgName string, sections []organize.Section) error {
	doc, err := readConfig(path)
	if err != nil {
		return err
	}

	qd := subMap(doc, "quartodoc")
	qd["package"] = pkgName
	qd["dir"] = referenceDir
	setDefault(qd, "title", "API Reference")
	setDefault(qd, "style", "pkgdown")
	qd["sections"] = sections

	return writeConfig(path, doc)
}

// UpdateSidebar rebuilds the reference sidebar from the section layout.
// Sidebars with other ids are preserved.
func UpdateSidebar(path string, sections []organize.Section) error {
	doc, err := readConfig(path)
	if err != nil {
		return err
	}

	var groups []interface{}
	for _, sec := range sections {
		var links []interface{}
		for _, e := range sec.Contents {
			links = append(links, referenceDir+"/"+e.Name+".qmd")
		}
		groups = append(groups, map[string]interface{}{
			"section":  sec.Title,
			"contents": links,
		})
	}
	refSidebar := map[string]interface{}{
		"id":       referenceDir,
		"contents": groups,
	}

	website := subMap(doc, "website")
	sidebars, _ := website["sidebar"].([]interface{})
	replaced := false
	for i, sb := range sidebars {
		if m, ok := sb.(map[string]interface{}); ok && m["id"] == referenceDir {
			sidebars[i] = refSidebar
			replaced = true
			break
		}
	}
	if !replaced {
		sidebars = append(sidebars, refSidebar)
	}
	website["sidebar"] = sidebars

	return writeConfig(path, doc)
}

// CleanConfig strips the keys docsmith manages out of _quarto.yml. User
// keys survive; the file is removed entirely only when nothing is left.
func CleanConfig(path string) error {
	doc, err := readConfig(path)
	if err != nil {
		return err
	}

	delete(doc, "quartodoc")
	if website, ok := doc["website"].(map[string]interface{}); ok {
		if sidebars, ok := website["sidebar"].([]interface{}); ok {
			var kept []interface{}
			for _, sb := range sidebars {
				if m, ok := sb.(map[string]interface{}); ok && m["id"] == referenceDir {
					continue
				}
				kept = append(kept, sb)
			}
			if len(kept) > 0 {
				website["sidebar"] = kept
			} else {
				delete(website, "sidebar")
			}
		}
	}

	if len(doc) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", path, err)
		}
		return nil
	}
	return writeConfig(path, doc)
}

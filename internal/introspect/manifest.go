package introspect

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// API manifests are JSON trees exported ahead of time, for packages whose
// source is not loadable where docsmith runs (CI images, vendored docs).
// Symbols reference each other by numeric id; roots lists the top-level
// entries in discovery order.
type manifestFile struct {
	Package string                  `json:"package"`
	Roots   []int                   `json:"roots"`
	Index   map[string]manifestItem `json:"index"`
}

type manifestItem struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Doc     string `json:"doc"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Members []int  `json:"members"`
}

// ManifestLoader reads a Package from an API manifest file.
type ManifestLoader struct {
	Path string
}

func (l *ManifestLoader) Load(name string) (*Package, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	pkg, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	if pkg.Name == "" {
		pkg.Name = name
	}
	return pkg, nil
}

// ParseManifest builds a Package from manifest JSON bytes. Entries that
// cannot be resolved are skipped with a reason; one bad symbol never fails
// the whole manifest.
func ParseManifest(data []byte) (*Package, error) {
	var mf manifestFile
	if err := json.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("unmarshaling manifest JSON: %w", err)
	}

	pkg := &Package{Name: mf.Package}
	for _, id := range mf.Roots {
		item, ok := mf.Index[strconv.Itoa(id)]
		if !ok {
			pkg.Skipped = append(pkg.Skipped, SkippedSymbol{
				Name:   "#" + strconv.Itoa(id),
				Reason: "unresolved reference",
			})
			continue
		}
		if item.Name == "" {
			pkg.Skipped = append(pkg.Skipped, SkippedSymbol{
				Name:   "#" + strconv.Itoa(id),
				Reason: "missing name",
			})
			continue
		}

		sym := Symbol{
			Name: item.Name,
			Kind: normalizeKind(item.Kind),
			Doc:  item.Doc,
			File: item.File,
			Line: item.Line,
		}
		for _, mid := range item.Members {
			if mid == id {
				pkg.Skipped = append(pkg.Skipped, SkippedSymbol{
					Name:   item.Name + ".#" + strconv.Itoa(mid),
					Reason: "cyclic reference",
				})
				continue
			}
			member, ok := mf.Index[strconv.Itoa(mid)]
			if !ok || member.Name == "" {
				pkg.Skipped = append(pkg.Skipped, SkippedSymbol{
					Name:   item.Name + ".#" + strconv.Itoa(mid),
					Reason: "unresolved member reference",
				})
				continue
			}
			sym.Members = append(sym.Members, Symbol{
				Name: member.Name,
				Kind: normalizeKind(member.Kind),
				Doc:  member.Doc,
				File: member.File,
				Line: member.Line,
			})
		}
		pkg.Symbols = append(pkg.Symbols, sym)
	}
	return pkg, nil
}

// normalizeKind maps manifest kind strings onto the known kinds. Aliases
// from other ecosystems resolve to the closest kind; anything else is other.
func normalizeKind(kind string) Kind {
	switch kind {
	case "function", "func", "method":
		return KindFunction
	case "class", "struct", "type", "interface":
		return KindClass
	case "attribute", "const", "var", "value":
		return KindAttribute
	case "module", "package":
		return KindModule
	default:
		return KindOther
	}
}

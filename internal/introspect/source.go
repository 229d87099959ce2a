package introspect

import (
	"fmt"
	"go/doc"
	"go/token"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// SourceLoader discovers a package's public API from Go source via the
// go/packages driver.
type SourceLoader struct {
	// Dir is the directory to resolve the package pattern from. Empty means
	// the current working directory.
	Dir string
}

func (l *SourceLoader) Load(pattern string) (*Package, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedSyntax |
			packages.NeedTypes |
			packages.NeedTypesInfo,
		Dir: l.Dir,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading package %s: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %s", pattern)
	}

	src := pkgs[0]
	if len(src.Syntax) == 0 {
		if len(src.Errors) > 0 {
			return nil, fmt.Errorf("loading package %s: %v", pattern, src.Errors[0])
		}
		return nil, fmt.Errorf("no Go source in %s", pattern)
	}

	out := &Package{Name: src.Name}
	// Load errors that still produced syntax degrade to skip records.
	for _, perr := range src.Errors {
		out.Skipped = append(out.Skipped, SkippedSymbol{Name: src.Name, Reason: perr.Msg})
	}

	d, err := doc.NewFromFiles(src.Fset, src.Syntax, src.PkgPath)
	if err != nil {
		return nil, fmt.Errorf("extracting docs from %s: %w", pattern, err)
	}

	if d.Doc != "" {
		out.Symbols = append(out.Symbols, Symbol{Name: src.Name, Kind: KindModule, Doc: d.Doc})
	}

	for _, typ := range d.Types {
		sym := Symbol{Name: typ.Name, Kind: KindClass, Doc: typ.Doc}
		if typ.Decl != nil {
			sym.File, sym.Line = l.position(src, typ.Decl.Pos())
		}
		for _, m := range typ.Methods {
			member := Symbol{Name: m.Name, Kind: KindFunction, Doc: m.Doc}
			if m.Decl != nil {
				member.File, member.Line = l.position(src, m.Decl.Pos())
			}
			sym.Members = append(sym.Members, member)
		}
		out.Symbols = append(out.Symbols, sym)

		// Factory functions are package API too; go/doc files them under
		// the type they construct.
		for _, fn := range typ.Funcs {
			fsym := Symbol{Name: fn.Name, Kind: KindFunction, Doc: fn.Doc}
			if fn.Decl != nil {
				fsym.File, fsym.Line = l.position(src, fn.Decl.Pos())
			}
			out.Symbols = append(out.Symbols, fsym)
		}
	}

	for _, fn := range d.Funcs {
		sym := Symbol{Name: fn.Name, Kind: KindFunction, Doc: fn.Doc}
		if fn.Decl != nil {
			sym.File, sym.Line = l.position(src, fn.Decl.Pos())
		}
		out.Symbols = append(out.Symbols, sym)
	}

	for _, val := range append(append([]*doc.Value{}, d.Consts...), d.Vars...) {
		for _, name := range val.Names {
			sym := Symbol{Name: name, Kind: KindAttribute, Doc: val.Doc}
			if val.Decl != nil {
				sym.File, sym.Line = l.position(src, val.Decl.Pos())
			}
			out.Symbols = append(out.Symbols, sym)
		}
	}

	return out, nil
}

// position resolves a token position to a file path relative to the loader
// dir and a 1-based line. Zero line means unknown.
func (l *SourceLoader) position(src *packages.Package, pos token.Pos) (string, int) {
	if !pos.IsValid() {
		return "", 0
	}
	p := src.Fset.Position(pos)
	file := p.Filename
	if l.Dir != "" {
		if rel, err := filepath.Rel(l.Dir, file); err == nil {
			file = rel
		}
	}
	return file, p.Line
}

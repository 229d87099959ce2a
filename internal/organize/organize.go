// Package organize turns an API snapshot into the section layout of a
// reference site, driven by %family directives in doc comments.
package organize

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/directive"
	"github.com/docsmith/docsmith/internal/introspect"
)

// MemberPageThreshold is the member count above which a class stops
// inlining member docs and gets one page per method instead.
const MemberPageThreshold = 5

// Groups and symbols without an explicit order sort after everything ranked.
const defaultOrder = 999

// Metadata exports that are introspection noise, never documentable content.
var autoExclude = map[string]bool{
	"__version__": true,
	"__author__":  true,
	"__email__":   true,
	"__all__":     true,
}

// Entry is one item in a section: a bare symbol name, or a class marker
// whose member docs are suppressed in favor of separate method pages.
type Entry struct {
	Name            string
	SuppressMembers bool
}

// MarshalYAML emits a plain string for ordinary entries and a
// {name, members: []} mapping for suppressed classes, which is the shape
// the site generator expects.
func (e Entry) MarshalYAML() (interface{}, error) {
	if e.SuppressMembers {
		return struct {
			Name    string   `yaml:"name"`
			Members []string `yaml:"members"`
		}{Name: e.Name, Members: []string{}}, nil
	}
	return e.Name, nil
}

// Section is one titled group of reference entries.
type Section struct {
	Title    string  `yaml:"title"`
	Desc     string  `yaml:"desc,omitempty"`
	Contents []Entry `yaml:"contents"`
}

// Organizer groups a package's symbols into sections. Families carries the
// per-group configuration keyed by normalized family key; Exclude names
// symbols dropped regardless of directives.
type Organizer struct {
	Families map[string]config.Family
	Exclude  map[string]bool
	Logger   *slog.Logger
}

func New(families map[string]config.Family) *Organizer {
	return &Organizer{Families: families}
}

func (o *Organizer) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

type member struct {
	sym introspect.Symbol
	rec directive.Record
}

type classified struct {
	sym     introspect.Symbol
	rec     directive.Record
	members []member
}

func (c classified) bigClass() bool {
	return c.sym.Kind == introspect.KindClass && len(c.members) > MemberPageThreshold
}

type famEntry struct {
	name  string
	order int
	cls   *classified // set when the entry is a top-level class
}

// Organize builds the full section layout for a package snapshot. Symbols
// carrying %family form sorted groups first; everything ungrouped falls
// back to the Classes/Functions/Other categories in discovery order. An
// empty surface yields nil.
func (o *Organizer) Organize(pkg *introspect.Package) []Section {
	if pkg == nil || len(pkg.Symbols) == 0 {
		return nil
	}
	for _, s := range pkg.Skipped {
		o.logger().Warn("skipping symbol",
			"package", pkg.Name, "symbol", s.Name, "reason", s.Reason)
	}

	var syms []classified
	for _, sym := range pkg.Symbols {
		// The package's own doc symbol feeds the index page, not the
		// reference sections. Nested modules are ordinary exports.
		if sym.Kind == introspect.KindModule && sym.Name == pkg.Name {
			continue
		}
		if autoExclude[sym.Name] || o.Exclude[sym.Name] {
			continue
		}
		rec := directive.Extract(sym.Doc)
		if rec.NoDoc {
			o.logger().Debug("excluding symbol", "symbol", sym.Name, "directive", "nodoc")
			continue
		}
		c := classified{sym: sym, rec: rec}
		for _, m := range sym.Members {
			if strings.HasPrefix(m.Name, "_") {
				continue
			}
			mrec := directive.Extract(m.Doc)
			if mrec.NoDoc {
				continue
			}
			c.members = append(c.members, member{sym: m, rec: mrec})
		}
		syms = append(syms, c)
	}
	if len(syms) == 0 {
		return nil
	}

	famOf := make(map[string][]famEntry)
	grouped := make(map[string]bool)
	for i := range syms {
		c := &syms[i]
		if c.rec.Family != "" {
			famOf[c.rec.Family] = append(famOf[c.rec.Family],
				famEntry{name: c.sym.Name, order: rank(c.rec), cls: c})
			grouped[c.sym.Name] = true
		}
		// Members can claim a family of their own, under a qualified name.
		for _, m := range c.members {
			if m.rec.Family != "" {
				famOf[m.rec.Family] = append(famOf[m.rec.Family],
					famEntry{name: c.sym.Name + "." + m.sym.Name, order: rank(m.rec)})
			}
		}
	}

	var sections []Section
	if len(famOf) > 0 {
		sections = o.familySections(famOf)
		var rest []classified
		for _, c := range syms {
			if !grouped[c.sym.Name] {
				rest = append(rest, c)
			}
		}
		sections = append(sections, o.defaultSections(rest)...)
	} else {
		sections = o.defaultSections(syms)
	}
	if len(sections) == 0 {
		return nil
	}
	return sections
}

func rank(rec directive.Record) int {
	if rec.Order == directive.OrderUnset {
		return defaultOrder
	}
	return rec.Order
}

func (o *Organizer) familyOrder(name string) int {
	if fam, ok := o.Families[config.NormalizeFamilyKey(name)]; ok && fam.Order != nil {
		return *fam.Order
	}
	return defaultOrder
}

func (o *Organizer) familySections(famOf map[string][]famEntry) []Section {
	names := make([]string, 0, len(famOf))
	for name := range famOf {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := o.familyOrder(names[i]), o.familyOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	var sections []Section
	for _, name := range names {
		entries := famOf[name]
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].order != entries[j].order {
				return entries[i].order < entries[j].order
			}
			return strings.ToLower(entries[i].name) < strings.ToLower(entries[j].name)
		})

		sec := Section{Title: name}
		if fam, ok := o.Families[config.NormalizeFamilyKey(name)]; ok {
			if fam.Title != "" {
				sec.Title = fam.Title
			}
			sec.Desc = fam.Desc
		} else {
			o.logger().Debug("family has no configuration", "family", name)
		}

		var methods []Section
		for _, e := range entries {
			if e.cls != nil && e.cls.bigClass() {
				sec.Contents = append(sec.Contents, Entry{Name: e.name, SuppressMembers: true})
				methods = append(methods, o.methodsSection(*e.cls))
			} else {
				sec.Contents = append(sec.Contents, Entry{Name: e.name})
			}
		}
		sections = append(sections, sec)
		sections = append(sections, methods...)
	}
	return sections
}

func (o *Organizer) defaultSections(syms []classified) []Section {
	var classes, funcs, other []classified
	for _, c := range syms {
		switch c.sym.Kind {
		case introspect.KindClass:
			classes = append(classes, c)
		case introspect.KindFunction:
			funcs = append(funcs, c)
		default:
			other = append(other, c)
		}
	}

	var sections []Section
	if len(classes) > 0 {
		sec := Section{Title: "Classes", Desc: "Core classes and types"}
		var methods []Section
		for _, c := range classes {
			if c.bigClass() {
				sec.Contents = append(sec.Contents, Entry{Name: c.sym.Name, SuppressMembers: true})
				methods = append(methods, o.methodsSection(c))
			} else {
				sec.Contents = append(sec.Contents, Entry{Name: c.sym.Name})
			}
		}
		sections = append(sections, sec)
		sections = append(sections, methods...)
	}
	if len(funcs) > 0 {
		sec := Section{Title: "Functions", Desc: "Public functions"}
		for _, c := range funcs {
			sec.Contents = append(sec.Contents, Entry{Name: c.sym.Name})
		}
		sections = append(sections, sec)
	}
	if len(other) > 0 {
		sec := Section{Title: "Other", Desc: "Additional exports"}
		for _, c := range other {
			sec.Contents = append(sec.Contents, Entry{Name: c.sym.Name})
		}
		sections = append(sections, sec)
	}
	return sections
}

// methodsSection builds the per-method page list for a class over the
// member threshold, ordered by source position. Members without a known
// position sort last, by name.
func (o *Organizer) methodsSection(c classified) Section {
	members := append([]member(nil), c.members...)
	sort.SliceStable(members, func(i, j int) bool {
		li, lj := members[i].sym.Line, members[j].sym.Line
		if li == 0 {
			li = math.MaxInt
		}
		if lj == 0 {
			lj = math.MaxInt
		}
		if li != lj {
			return li < lj
		}
		return strings.ToLower(members[i].sym.Name) < strings.ToLower(members[j].sym.Name)
	})

	sec := Section{
		Title: c.sym.Name + " Methods",
		Desc:  "Methods for the " + c.sym.Name + " class",
	}
	for _, m := range members {
		sec.Contents = append(sec.Contents, Entry{Name: c.sym.Name + "." + m.sym.Name})
	}
	return sec
}

// ExtractDirectives reports every non-empty directive record in a package,
// keyed by symbol name (members as Owner.Member). Used by the scan report.
func ExtractDirectives(pkg *introspect.Package) map[string]directive.Record {
	if pkg == nil {
		return nil
	}
	out := make(map[string]directive.Record)
	for _, sym := range pkg.Symbols {
		if rec := directive.Extract(sym.Doc); !rec.IsZero() {
			out[sym.Name] = rec
		}
		for _, m := range sym.Members {
			if rec := directive.Extract(m.Doc); !rec.IsZero() {
				out[sym.Name+"."+m.Name] = rec
			}
		}
	}
	return out
}

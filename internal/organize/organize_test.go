package organize

import (
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/docsmith/docsmith/internal/config"
	"github.com/docsmith/docsmith/internal/introspect"
)

func sym(name string, kind introspect.Kind, doc string) introspect.Symbol {
	return introspect.Symbol{Name: name, Kind: kind, Doc: doc}
}

func class(name, doc string, members ...introspect.Symbol) introspect.Symbol {
	return introspect.Symbol{Name: name, Kind: introspect.KindClass, Doc: doc, Members: members}
}

func methods(n int) []introspect.Symbol {
	var out []introspect.Symbol
	for i := 0; i < n; i++ {
		out = append(out, introspect.Symbol{
			Name: "Method" + string(rune('A'+i)),
			Kind: introspect.KindFunction,
			Line: (i + 1) * 10,
		})
	}
	return out
}

func titles(sections []Section) []string {
	var out []string
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func names(sec Section) []string {
	var out []string
	for _, e := range sec.Contents {
		out = append(out, e.Name)
	}
	return out
}

func TestOrganizeDefaultCategories(t *testing.T) {
	t.Parallel()

	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("zeta", introspect.KindFunction, "Does z."),
			class("Widget", "A widget."),
			sym("MaxSize", introspect.KindAttribute, ""),
			sym("alpha", introspect.KindFunction, ""),
			class("Gadget", ""),
		},
	}

	got := New(nil).Organize(pkg)
	want := []string{"Classes", "Functions", "Other"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
	// Discovery order inside each category, not alphabetical.
	if !reflect.DeepEqual(names(got[0]), []string{"Widget", "Gadget"}) {
		t.Errorf("Classes = %v", names(got[0]))
	}
	if !reflect.DeepEqual(names(got[1]), []string{"zeta", "alpha"}) {
		t.Errorf("Functions = %v", names(got[1]))
	}
	if !reflect.DeepEqual(names(got[2]), []string{"MaxSize"}) {
		t.Errorf("Other = %v", names(got[2]))
	}
	if got[0].Desc != "Core classes and types" {
		t.Errorf("Classes desc = %q", got[0].Desc)
	}
}

func TestOrganizeMetadataDenylist(t *testing.T) {
	t.Parallel()

	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("__version__", introspect.KindAttribute, ""),
			sym("__author__", introspect.KindAttribute, ""),
			sym("__email__", introspect.KindAttribute, ""),
			sym("__all__", introspect.KindAttribute, ""),
			sym("keep", introspect.KindFunction, ""),
		},
	}

	got := New(nil).Organize(pkg)
	if len(got) != 1 || got[0].Title != "Functions" {
		t.Fatalf("sections = %v", titles(got))
	}
	if !reflect.DeepEqual(names(got[0]), []string{"keep"}) {
		t.Errorf("Functions = %v", names(got[0]))
	}
}

func TestOrganizeNoDocWins(t *testing.T) {
	t.Parallel()

	// A %nodoc symbol disappears even when it carries a family.
	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("hidden", introspect.KindFunction, "%family util\n%nodoc"),
			sym("shown", introspect.KindFunction, "%family util"),
		},
	}

	got := New(nil).Organize(pkg)
	if len(got) != 1 {
		t.Fatalf("sections = %v", titles(got))
	}
	if !reflect.DeepEqual(names(got[0]), []string{"shown"}) {
		t.Errorf("util = %v", names(got[0]))
	}
}

func TestOrganizeNoDocMembersReduceCount(t *testing.T) {
	t.Parallel()

	// Six methods, one excluded: the class drops to the threshold and its
	// docs stay inline.
	ms := methods(6)
	ms[5].Doc = "%nodoc"
	pkg := &introspect.Package{
		Name:    "pkg",
		Symbols: []introspect.Symbol{class("Big", "", ms...)},
	}

	got := New(nil).Organize(pkg)
	if len(got) != 1 {
		t.Fatalf("sections = %v, want only Classes", titles(got))
	}
	if got[0].Contents[0].SuppressMembers {
		t.Error("class at the threshold should keep inline members")
	}
}

func TestOrganizeMemberPageThreshold(t *testing.T) {
	t.Parallel()

	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			class("Small", "", methods(5)...),
			class("Large", "", methods(6)...),
		},
	}

	got := New(nil).Organize(pkg)
	want := []string{"Classes", "Large Methods"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}

	classes := got[0]
	if classes.Contents[0].SuppressMembers {
		t.Error("Small should not be suppressed")
	}
	if !classes.Contents[1].SuppressMembers {
		t.Error("Large should be suppressed")
	}

	mm := got[1]
	if mm.Desc != "Methods for the Large class" {
		t.Errorf("methods desc = %q", mm.Desc)
	}
	wantMembers := []string{
		"Large.MethodA", "Large.MethodB", "Large.MethodC",
		"Large.MethodD", "Large.MethodE", "Large.MethodF",
	}
	if !reflect.DeepEqual(names(mm), wantMembers) {
		t.Errorf("methods = %v", names(mm))
	}
}

func TestOrganizeMethodsOrderedBySourceLine(t *testing.T) {
	t.Parallel()

	ms := []introspect.Symbol{
		{Name: "Zed", Kind: introspect.KindFunction, Line: 5},
		{Name: "Apple", Kind: introspect.KindFunction, Line: 50},
		{Name: "NoPos", Kind: introspect.KindFunction},
		{Name: "Mid", Kind: introspect.KindFunction, Line: 20},
		{Name: "Early", Kind: introspect.KindFunction, Line: 1},
		{Name: "Late", Kind: introspect.KindFunction, Line: 90},
	}
	pkg := &introspect.Package{
		Name:    "pkg",
		Symbols: []introspect.Symbol{class("C", "", ms...)},
	}

	got := New(nil).Organize(pkg)
	if len(got) != 2 {
		t.Fatalf("titles = %v", titles(got))
	}
	want := []string{"C.Early", "C.Zed", "C.Mid", "C.Apple", "C.Late", "C.NoPos"}
	if !reflect.DeepEqual(names(got[1]), want) {
		t.Errorf("methods = %v, want %v", names(got[1]), want)
	}
}

func TestOrganizeFamilyGrouping(t *testing.T) {
	t.Parallel()

	order2 := 2
	org := New(map[string]config.Family{
		"validation": {Title: "Validation Tools", Desc: "Input checking", Order: &order2},
	})

	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("check", introspect.KindFunction, "%family validation\n%order 1"),
			sym("verify", introspect.KindFunction, "%family validation\n%order 2"),
			sym("audit", introspect.KindFunction, "%family validation"),
			sym("parse", introspect.KindFunction, "%family Parsing"),
			class("Leftover", "No directives here."),
		},
	}

	got := org.Organize(pkg)
	// validation has configured order 2, Parsing defaults to 999; then the
	// ungrouped class falls back to the default categories.
	want := []string{"Validation Tools", "Parsing", "Classes"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
	if got[0].Desc != "Input checking" {
		t.Errorf("desc = %q", got[0].Desc)
	}
	// Ranked members first, unranked last.
	if !reflect.DeepEqual(names(got[0]), []string{"check", "verify", "audit"}) {
		t.Errorf("validation = %v", names(got[0]))
	}
	if !reflect.DeepEqual(names(got[2]), []string{"Leftover"}) {
		t.Errorf("Classes = %v", names(got[2]))
	}
}

func TestOrganizeFamilyOrderTies(t *testing.T) {
	t.Parallel()

	// Both unconfigured: order 999 each, so case-insensitive name breaks
	// the tie.
	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("b", introspect.KindFunction, "%family zebra"),
			sym("a", introspect.KindFunction, "%family Apple"),
		},
	}

	got := New(nil).Organize(pkg)
	want := []string{"Apple", "zebra"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Errorf("titles = %v, want %v", titles(got), want)
	}
}

func TestOrganizeMemberFamilyQualifiedName(t *testing.T) {
	t.Parallel()

	ms := methods(2)
	ms[0].Doc = "%family Helpers"
	pkg := &introspect.Package{
		Name:    "pkg",
		Symbols: []introspect.Symbol{class("Box", "", ms...)},
	}

	got := New(nil).Organize(pkg)
	if titles(got)[0] != "Helpers" {
		t.Fatalf("titles = %v", titles(got))
	}
	if !reflect.DeepEqual(names(got[0]), []string{"Box.MethodA"}) {
		t.Errorf("Helpers = %v", names(got[0]))
	}
}

func TestOrganizeMixedGroupingWithLargeClass(t *testing.T) {
	t.Parallel()

	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			class("Graph", "A graph structure.", methods(7)...),
			sym("helper", introspect.KindFunction, "%family Utilities"),
		},
	}

	got := New(nil).Organize(pkg)
	want := []string{"Utilities", "Classes", "Graph Methods"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
	if !got[1].Contents[0].SuppressMembers {
		t.Error("Graph should carry a suppressed-members marker")
	}
	if len(got[2].Contents) != 7 {
		t.Errorf("Graph Methods has %d entries, want 7", len(got[2].Contents))
	}
}

func TestOrganizeModuleSymbols(t *testing.T) {
	t.Parallel()

	// The package-doc symbol is skipped; a nested module is a regular
	// export and lands in Other.
	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("pkg", introspect.KindModule, "Package docs."),
			sym("subpkg", introspect.KindModule, ""),
			sym("helper", introspect.KindFunction, ""),
		},
	}

	got := New(nil).Organize(pkg)
	want := []string{"Functions", "Other"}
	if !reflect.DeepEqual(titles(got), want) {
		t.Fatalf("titles = %v, want %v", titles(got), want)
	}
	if !reflect.DeepEqual(names(got[1]), []string{"subpkg"}) {
		t.Errorf("Other = %v", names(got[1]))
	}
}

func TestOrganizeEmpty(t *testing.T) {
	t.Parallel()

	if got := New(nil).Organize(nil); got != nil {
		t.Errorf("Organize(nil) = %v, want nil", got)
	}
	if got := New(nil).Organize(&introspect.Package{Name: "p"}); got != nil {
		t.Errorf("Organize(empty) = %v, want nil", got)
	}

	pkg := &introspect.Package{
		Name:    "p",
		Symbols: []introspect.Symbol{sym("__version__", introspect.KindAttribute, "")},
	}
	if got := New(nil).Organize(pkg); got != nil {
		t.Errorf("Organize(all excluded) = %v, want nil", got)
	}
}

func TestEntryYAMLShapes(t *testing.T) {
	t.Parallel()

	sec := Section{
		Title: "Classes",
		Contents: []Entry{
			{Name: "Plain"},
			{Name: "Big", SuppressMembers: true},
		},
	}
	out, err := yaml.Marshal(sec)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, "- Plain\n") {
		t.Errorf("plain entry should be a bare string:\n%s", s)
	}
	if !strings.Contains(s, "name: Big") || !strings.Contains(s, "members: []") {
		t.Errorf("suppressed entry should be a name/members mapping:\n%s", s)
	}
}

func TestExtractDirectives(t *testing.T) {
	t.Parallel()

	ms := methods(1)
	ms[0].Doc = "%order 3"
	pkg := &introspect.Package{
		Name: "pkg",
		Symbols: []introspect.Symbol{
			sym("plain", introspect.KindFunction, "Nothing here."),
			sym("fancy", introspect.KindFunction, "%family util\n%seealso plain"),
			class("Box", "", ms...),
		},
	}

	got := ExtractDirectives(pkg)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2: %v", len(got), got)
	}
	if got["fancy"].Family != "util" || len(got["fancy"].SeeAlso) != 1 {
		t.Errorf("fancy = %+v", got["fancy"])
	}
	if got["Box.MethodA"].Order != 3 {
		t.Errorf("Box.MethodA = %+v", got["Box.MethodA"])
	}
	if _, ok := got["plain"]; ok {
		t.Error("plain should not appear")
	}
}

package markdown

import (
	"strings"
	"testing"
)

func TestRewriteLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "See [Graph](Graph) for details."
	got := RewriteLinks(src, map[string]string{"Graph": "reference/Graph.qmd"})
	want := "See [Graph](reference/Graph.qmd) for details."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteLinks_ReferenceStyleLinks(t *testing.T) {
	t.Parallel()
	src := "See [Graph][ref] for details.\n\n[ref]: Graph"
	got := RewriteLinks(src, map[string]string{"Graph": "reference/Graph.qmd"})
	if !strings.Contains(got, "[ref]: reference/Graph.qmd") {
		t.Errorf("reference link not rewritten: %q", got)
	}
}

func TestRewriteLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Hello [world](url)."
	got := RewriteLinks(src, nil)
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
	got = RewriteLinks(src, map[string]string{})
	if got != src {
		t.Errorf("expected unchanged for empty map, got %q", got)
	}
}

func TestRewriteLinks_NoMatchingLinks(t *testing.T) {
	t.Parallel()
	src := "Check [this](keep-me) out."
	got := RewriteLinks(src, map[string]string{"other": "reference/other.qmd"})
	if got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
}

func TestRewriteLinks_MultipleLinks(t *testing.T) {
	t.Parallel()
	src := "[A](AddNode) and [B](Nodes) together."
	got := RewriteLinks(src, map[string]string{
		"AddNode": "reference/Graph.AddNode.qmd",
		"Nodes":   "reference/Graph.Nodes.qmd",
	})
	if !strings.Contains(got, "(reference/Graph.AddNode.qmd)") {
		t.Error("link A not rewritten")
	}
	if !strings.Contains(got, "(reference/Graph.Nodes.qmd)") {
		t.Error("link B not rewritten")
	}
}

func TestSeeAlsoBlock(t *testing.T) {
	t.Parallel()

	linkFor := func(name string) string {
		if name == "Graph" {
			return "reference/Graph.qmd"
		}
		return ""
	}

	got := SeeAlsoBlock([]string{"Graph", "external_thing"}, linkFor)
	if !strings.HasPrefix(got, "## See Also\n") {
		t.Errorf("missing heading: %q", got)
	}
	if !strings.Contains(got, "- [`Graph`](reference/Graph.qmd)\n") {
		t.Errorf("resolvable symbol not linked: %q", got)
	}
	if !strings.Contains(got, "- `external_thing`\n") {
		t.Errorf("unresolvable symbol should stay code: %q", got)
	}

	if SeeAlsoBlock(nil, linkFor) != "" {
		t.Error("empty list should yield empty string")
	}
}

func TestAddFrontMatter(t *testing.T) {
	t.Parallel()

	t.Run("basic", func(t *testing.T) {
		got := AddFrontMatter("# Doc", map[string]string{"title": "Graph"})
		if !strings.HasPrefix(got, "---\n") {
			t.Error("missing opening ---")
		}
		if !strings.Contains(got, "title: Graph") {
			t.Error("missing field entry")
		}
		if !strings.HasSuffix(got, "# Doc") {
			t.Error("original content missing")
		}
	})

	t.Run("sorted_keys", func(t *testing.T) {
		got := AddFrontMatter("body", map[string]string{
			"z-field": "z",
			"a-field": "a",
		})
		aIdx := strings.Index(got, "a-field")
		zIdx := strings.Index(got, "z-field")
		if aIdx > zIdx {
			t.Error("keys not sorted alphabetically")
		}
	})

	t.Run("empty_map", func(t *testing.T) {
		got := AddFrontMatter("body", nil)
		if got != "body" {
			t.Errorf("expected unchanged for empty map, got %q", got)
		}
	})
}

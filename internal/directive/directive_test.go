package directive

import (
	"reflect"
	"testing"
)

func TestExtractAllDirectives(t *testing.T) {
	t.Parallel()

	doc := `Validates user input against a schema.

%family validation
%order 10
%seealso Schema, Validator, check_input
%nodoc

More prose after the directives.`

	rec := Extract(doc)
	if rec.Family != "validation" {
		t.Errorf("Family = %q, want %q", rec.Family, "validation")
	}
	if rec.Order != 10 {
		t.Errorf("Order = %d, want 10", rec.Order)
	}
	want := []string{"Schema", "Validator", "check_input"}
	if !reflect.DeepEqual(rec.SeeAlso, want) {
		t.Errorf("SeeAlso = %v, want %v", rec.SeeAlso, want)
	}
	if !rec.NoDoc {
		t.Error("NoDoc = false, want true")
	}
}

func TestExtractFirstMatchWins(t *testing.T) {
	t.Parallel()

	doc := "%family first\n%family second\n%order 1\n%order 2"
	rec := Extract(doc)
	if rec.Family != "first" {
		t.Errorf("Family = %q, want %q", rec.Family, "first")
	}
	if rec.Order != 1 {
		t.Errorf("Order = %d, want 1", rec.Order)
	}
}

func TestExtractMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"order with non-digits", "%order abc"},
		{"order negative", "%order -5"},
		{"order float", "%order 1.5"},
		{"family without argument", "%family"},
		{"seealso without argument", "%seealso"},
		{"directive mid-line", "use %family validation here"},
		{"unknown directive", "%banana split"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := Extract(tt.doc)
			if !rec.IsZero() {
				t.Errorf("Extract(%q) = %+v, want zero record", tt.doc, rec)
			}
		})
	}
}

func TestExtractNoDocValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		doc  string
		want bool
	}{
		{"%nodoc", true},
		{"%nodoc true", true},
		{"%nodoc yes", true},
		{"%nodoc 1", true},
		{"%NODOC TRUE", true},
		{"  %nodoc  ", true},
		{"%nodoc false", false},
		{"%nodoc maybe", false},
	}
	for _, tt := range tests {
		rec := Extract(tt.doc)
		if rec.NoDoc != tt.want {
			t.Errorf("Extract(%q).NoDoc = %v, want %v", tt.doc, rec.NoDoc, tt.want)
		}
	}
}

func TestExtractIndentedAndEmpty(t *testing.T) {
	t.Parallel()

	rec := Extract("")
	if !rec.IsZero() {
		t.Errorf("Extract(\"\") = %+v, want zero record", rec)
	}
	if rec.Order != OrderUnset {
		t.Errorf("Order = %d, want OrderUnset", rec.Order)
	}

	rec = Extract("\t%family  spaced out family  ")
	if rec.Family != "spaced out family" {
		t.Errorf("Family = %q, want trimmed multi-word value", rec.Family)
	}
}

func TestExtractSeeAlsoTrimsEmpties(t *testing.T) {
	t.Parallel()

	rec := Extract("%seealso a, , b ,,c")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(rec.SeeAlso, want) {
		t.Errorf("SeeAlso = %v, want %v", rec.SeeAlso, want)
	}
}

func TestStrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "removes directives keeps prose",
			doc:  "Summary line.\n%family util\n%order 3\n\nDetails here.",
			want: "Summary line.\n\nDetails here.",
		},
		{
			name: "removes malformed directive lines too",
			doc:  "Text.\n%order not-a-number\nMore text.",
			want: "Text.\nMore text.",
		},
		{
			name: "collapses blank runs",
			doc:  "Top.\n\n%family x\n\n\nBottom.",
			want: "Top.\n\nBottom.",
		},
		{
			name: "directives only",
			doc:  "%family x\n%nodoc",
			want: "",
		},
		{
			name: "empty input",
			doc:  "",
			want: "",
		},
		{
			name: "no directives is untouched",
			doc:  "Just prose with a % sign in it.",
			want: "Just prose with a % sign in it.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Strip(tt.doc); got != tt.want {
				t.Errorf("Strip(%q) = %q, want %q", tt.doc, got, tt.want)
			}
		})
	}
}

func TestStripDoesNotChangeExtraction(t *testing.T) {
	t.Parallel()

	doc := "Prose.\n%family graph\n%seealso A,B\nTrailing prose."
	before := Extract(doc)
	stripped := Strip(doc)
	if HasDirectives(stripped) {
		t.Errorf("Strip left directives behind: %q", stripped)
	}
	after := Extract(doc)
	if !reflect.DeepEqual(before, after) {
		t.Errorf("Extract changed across Strip: %+v vs %+v", before, after)
	}
}

func TestHasDirectives(t *testing.T) {
	t.Parallel()

	if !HasDirectives("%family x") {
		t.Errorf("HasDirectives(%q) = false", "%family x")
	}
	if !HasDirectives("prose\n  %nodoc") {
		t.Errorf("HasDirectives(%q) = false", "prose\n  %nodoc")
	}
	if HasDirectives("50% done") {
		t.Errorf("HasDirectives(%q) = true", "50% done")
	}
	if HasDirectives("") {
		t.Error(`HasDirectives("") = true`)
	}
}

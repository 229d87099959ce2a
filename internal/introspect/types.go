// Package introspect discovers the public API surface of a package, either
// from Go source or from a pre-exported JSON manifest, and caches snapshots.
package introspect

// Kind classifies a discovered symbol.
type Kind string

const (
	KindFunction  Kind = "function"
	KindClass     Kind = "class"
	KindAttribute Kind = "attribute"
	KindModule    Kind = "module"
	KindOther     Kind = "other"
)

// Symbol is one public API entity. Members holds the symbol's own public
// members when the symbol is a compound (a class with methods).
type Symbol struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Doc     string   `json:"doc,omitempty"`
	File    string   `json:"file,omitempty"`
	Line    int      `json:"line,omitempty"`
	Members []Symbol `json:"members,omitempty"`
}

// SkippedSymbol records a symbol dropped during discovery, with the reason
// it could not be resolved. Skips never fail a load.
type SkippedSymbol struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Package is a snapshot of one package's public API. Symbols preserves
// discovery order.
type Package struct {
	Name    string          `json:"name"`
	Symbols []Symbol        `json:"symbols"`
	Skipped []SkippedSymbol `json:"skipped,omitempty"`
}

// Loader produces a fresh Package snapshot for a package name or pattern.
type Loader interface {
	Load(name string) (*Package, error)
}

package engine

import (
	"github.com/jward/sightline/internal/text"
)

// SymbolInfo is the resolved semantic identity a name occurrence refers
// to. An unresolved identity (no declaration found in the configuration)
// has an empty DeclPath; such occurrences link across configurations by
// name alone, which is what lets a dependent project's references reach
// a symbol declared in another project.
type SymbolInfo struct {
	Name     string
	Kind     string
	DeclPath string
	DeclSpan text.Span
}

// Resolved reports whether the identity is bound to a declaration.
func (s SymbolInfo) Resolved() bool {
	return s.DeclPath != ""
}

// sameSymbol reports whether two identities refer to the same logical
// symbol. Resolved identities must agree on their declaration site;
// an unresolved side matches by name, best-effort.
func sameSymbol(a, b SymbolInfo) bool {
	if a.Name != b.Name {
		return false
	}
	if !a.Resolved() || !b.Resolved() {
		return true
	}
	return a.DeclPath == b.DeclPath && a.DeclSpan == b.DeclSpan
}

// Occurrence is one (file, range) use site.
type Occurrence struct {
	Path string
	Span text.Span
}

// SymbolUse ties an occurrence to the semantic identity it refers to.
type SymbolUse struct {
	Symbol       SymbolInfo
	Occurrence   Occurrence
	IsDefinition bool
}

// CheckResults is the outcome of one parse-and-check pass over a single
// file under a specific configuration. It is immutable once built; the
// checker caches it keyed by (config, path).
type CheckResults struct {
	path    string
	cfgKey  string
	hash    string
	uses    []SymbolUse
	scanner *FileSource
}

// FileSource records the text and flags a check pass ran against, so
// callers can hand it to the lexer without re-deriving configuration.
type FileSource struct {
	Content string
	Flags   []string
}

func newCheckResults(path, cfgKey, hash string, rows []useRow, src *FileSource) *CheckResults {
	r := &CheckResults{path: path, cfgKey: cfgKey, hash: hash, scanner: src}
	for _, row := range rows {
		r.uses = append(r.uses, rowToUse(row))
	}
	return r
}

func rowToUse(row useRow) SymbolUse {
	info := SymbolInfo{Name: row.Name}
	if row.DeclValid {
		info.Kind = row.DeclKind
		info.DeclPath = row.DeclPath
		info.DeclSpan = text.Span{
			Start: text.Position{Line: row.DeclStartLine, Col: row.DeclStartCol},
			End:   text.Position{Line: row.DeclEndLine, Col: row.DeclEndCol},
		}
	}
	return SymbolUse{
		Symbol: info,
		Occurrence: Occurrence{
			Path: row.Path,
			Span: text.Span{
				Start: text.Position{Line: row.StartLine, Col: row.StartCol},
				End:   text.Position{Line: row.EndLine, Col: row.EndCol},
			},
		},
		IsDefinition: row.IsDef,
	}
}

// Path returns the checked file's path.
func (r *CheckResults) Path() string {
	return r.path
}

// Source returns the text/flags pairing of the pass, or nil when the
// results were rebuilt from the index without fresh content.
func (r *CheckResults) Source() *FileSource {
	return r.scanner
}

// AllUses returns every name occurrence in the file, in source order.
func (r *CheckResults) AllUses() []SymbolUse {
	return r.uses
}

// Declarations returns only the defining occurrences, in source order.
func (r *CheckResults) Declarations() []SymbolUse {
	var out []SymbolUse
	for _, u := range r.uses {
		if u.IsDefinition {
			out = append(out, u)
		}
	}
	return out
}

// SymbolUseAt returns the semantic symbol at (line, col). The position
// may sit inside the occurrence or exactly at its end, which is where
// the locator anchors lookups. hint is the display text of the lexical
// symbol; occurrences with a different name are not considered.
func (r *CheckResults) SymbolUseAt(line, col int, hint string) (*SymbolUse, bool) {
	pos := text.Position{Line: line, Col: col}
	for i := range r.uses {
		u := &r.uses[i]
		if hint != "" && u.Symbol.Name != hint {
			continue
		}
		if u.Occurrence.Span.Contains(pos) || u.Occurrence.Span.End == pos {
			return u, true
		}
	}
	return nil, false
}

// UsesOfSymbol returns every occurrence in this file referring to the
// same logical symbol.
func (r *CheckResults) UsesOfSymbol(sym SymbolInfo) []SymbolUse {
	var out []SymbolUse
	for _, u := range r.uses {
		if sameSymbol(u.Symbol, sym) {
			out = append(out, u)
		}
	}
	return out
}

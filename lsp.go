package sightline

import (
	"path/filepath"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// LSPRange converts a span to an LSP range. Both sides are zero-based.
func LSPRange(span Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(span.Start.Line), Character: uint32(span.Start.Col)},
		End:   protocol.Position{Line: uint32(span.End.Line), Character: uint32(span.End.Col)},
	}
}

// LSPLocation converts one occurrence to an LSP location.
func LSPLocation(occ Occurrence) protocol.Location {
	abs, err := filepath.Abs(occ.Path)
	if err != nil {
		abs = occ.Path
	}
	return protocol.Location{
		URI:   uri.File(abs),
		Range: LSPRange(occ.Span),
	}
}

// LSPLocations converts a deduplicated occurrence list for an
// editor-facing consumer, preserving order.
func LSPLocations(occs []Occurrence) []protocol.Location {
	out := make([]protocol.Location, 0, len(occs))
	for _, occ := range occs {
		out = append(out, LSPLocation(occ))
	}
	return out
}

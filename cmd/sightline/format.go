package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jward/sightline"
)

// cliLocation is the wire shape for one occurrence, 1-based for humans.
type cliLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
}

// cliSymbol is the wire shape for a named item.
type cliSymbol struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col"`
}

func toCLILocations(occs []sightline.Occurrence) []cliLocation {
	out := make([]cliLocation, 0, len(occs))
	for _, occ := range occs {
		out = append(out, cliLocation{
			File:      occ.Path,
			StartLine: occ.Span.Start.Line + 1,
			StartCol:  occ.Span.Start.Col + 1,
			EndLine:   occ.Span.End.Line + 1,
			EndCol:    occ.Span.End.Col + 1,
		})
	}
	return out
}

func outputLocations(occs []sightline.Occurrence) error {
	locs := toCLILocations(occs)
	if flagFormat == "json" {
		return outputJSON(locs)
	}
	for _, loc := range locs {
		fmt.Fprintf(os.Stdout, "%s:%d:%d\n", loc.File, loc.StartLine, loc.StartCol)
	}
	return nil
}

func outputSymbols(syms []cliSymbol) error {
	if flagFormat == "json" {
		return outputJSON(syms)
	}
	tw := tabwriter.NewWriter(io.Writer(os.Stdout), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tFILE\tLINE")
	for _, s := range syms {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Name, s.Kind, s.File, s.Line)
	}
	return tw.Flush()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jward/sightline"
)

var usagesCmd = &cobra.Command{
	Use:   "usages <file> <line> <col>",
	Short: "Find usages of the symbol at a position",
	Long:  "Locates the symbol at the position (1-based line and column) and lists every usage in the governing project and any --deps projects.",
	Args:  cobra.ExactArgs(3),
	RunE:  runUsages,
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols <file>",
	Short: "List every symbol occurrence in a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

var locateCmd = &cobra.Command{
	Use:   "locate <file> <line> <col>",
	Short: "Show the lexical symbol at a position",
	Args:  cobra.ExactArgs(3),
	RunE:  runLocate,
}

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "List declarations across the project's source files",
	Args:  cobra.NoArgs,
	RunE:  runOutline,
}

// parsePosition converts 1-based CLI line/col arguments to the 0-based
// positions the library uses.
func parsePosition(lineArg, colArg string) (sightline.Position, error) {
	line, err := strconv.Atoi(lineArg)
	if err != nil || line < 1 {
		return sightline.Position{}, fmt.Errorf("invalid line %q", lineArg)
	}
	col, err := strconv.Atoi(colArg)
	if err != nil || col < 1 {
		return sightline.Position{}, fmt.Errorf("invalid column %q", colArg)
	}
	return sightline.Position{Line: line - 1, Col: col - 1}, nil
}

func loadSnapshot(file string) (*sightline.Snapshot, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	return sightline.NewSnapshot(string(content)), nil
}

func runUsages(cmd *cobra.Command, args []string) error {
	file := args[0]
	pos, err := parsePosition(args[1], args[2])
	if err != nil {
		return err
	}

	w, err := newWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	proj, err := descriptorFor(file)
	if err != nil {
		return err
	}
	deps, err := depDescriptors()
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(file)
	if err != nil {
		return err
	}

	ctx := context.Background()
	located, ok := w.SymbolAt(ctx, snap, pos, proj)
	if !ok {
		return outputLocations(nil)
	}

	progress := sightline.Progress(func(phase sightline.SearchPhase) {
		fmt.Fprintf(os.Stderr, "%s...\n", phase)
	})
	result, ok := w.FindUsagesAcrossProjects(ctx, located.Symbol, file, proj, deps, progress)
	if !ok {
		return outputLocations(nil)
	}
	return outputLocations(result.Occurrences)
}

func runSymbols(cmd *cobra.Command, args []string) error {
	file := args[0]

	w, err := newWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	proj, err := descriptorFor(file)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(file)
	if err != nil {
		return err
	}

	occs, _, ok := w.AllSymbolUsesInFile(context.Background(), snap, file, proj, sightline.RequireFresh)
	if !ok {
		return outputLocations(nil)
	}
	return outputLocations(occs)
}

func runLocate(cmd *cobra.Command, args []string) error {
	file := args[0]
	pos, err := parsePosition(args[1], args[2])
	if err != nil {
		return err
	}

	w, err := newWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	proj, err := descriptorFor(file)
	if err != nil {
		return err
	}
	snap, err := loadSnapshot(file)
	if err != nil {
		return err
	}

	located, ok := w.SymbolAt(context.Background(), snap, pos, proj)
	if !ok {
		return outputSymbols(nil)
	}
	return outputSymbols([]cliSymbol{{
		Name: located.Symbol.Text,
		File: file,
		Line: located.Span.Start.Line + 1,
		Col:  located.Span.Start.Col + 1,
	}})
}

func runOutline(cmd *cobra.Command, args []string) error {
	if flagProject == "" {
		return fmt.Errorf("outline requires --project")
	}

	w, err := newWorkspace()
	if err != nil {
		return err
	}
	defer w.Close()

	proj, err := descriptorFor("")
	if err != nil {
		return err
	}

	var items []cliSymbol
	err = w.EachNavigableItemInProject(context.Background(), proj, func(item sightline.NavigableItem) bool {
		items = append(items, cliSymbol{
			Name: item.Name,
			Kind: item.Kind,
			File: item.Path,
			Line: item.Span.Start.Line + 1,
			Col:  item.Span.Start.Col + 1,
		})
		return true
	})
	if err != nil {
		return err
	}
	return outputSymbols(items)
}

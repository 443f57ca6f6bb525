package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jward/sightline"
	"github.com/jward/sightline/internal/project"
)

var (
	flagProject string
	flagDeps    []string
	flagFormat  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sightline",
	Short:         "Code-intelligence queries over projects and buffers",
	Long:          "Sightline locates symbols and finds their usages across a project and its dependents, using a tree-sitter analysis engine with configuration-keyed caches.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "project manifest path (default: treat the file as a standalone script)")
	rootCmd.PersistentFlags().StringSliceVar(&flagDeps, "deps", nil, "dependent project manifests to include in cross-project searches")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format: json|text")

	rootCmd.AddCommand(usagesCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(outlineCmd)
}

// newWorkspace builds a disk-backed workspace: no editor surface, so no
// dirty index and no buffer provider.
func newWorkspace() (*sightline.Workspace, error) {
	return sightline.New()
}

// descriptorFor returns the project descriptor governing file: the
// --project manifest when given, otherwise a standalone script.
func descriptorFor(file string) (sightline.ProjectDescriptor, error) {
	if flagProject == "" {
		return project.Script(file), nil
	}
	p, err := project.Load(flagProject)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// depDescriptors loads the --deps manifests.
func depDescriptors() ([]sightline.ProjectDescriptor, error) {
	var out []sightline.ProjectDescriptor
	for _, path := range flagDeps {
		p, err := project.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading dependent project %s: %w", path, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Package root provides the root command for the lawref CLI.
package root

import (
	"github.com/spf13/cobra"

	"github.com/dgallion1/lawref/internal/cmd/catalog"
	"github.com/dgallion1/lawref/internal/cmd/parse"
	"github.com/dgallion1/lawref/internal/cmd/preview"
)

// NewCmdRoot creates the root command for lawref.
func NewCmdRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lawref",
		Short: "Parse and browse Chinese statute files",
		Long: `lawref reads statute files (Markdown, text, Word, WPS, PDF, HTML),
splits them into chapters, sections and articles, and browses the
statute library by category.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringP("output", "o", "", "output format: outline, table, json, yaml, plain")
	cmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	// Subcommands
	cmd.AddCommand(parse.NewCmdParse())
	cmd.AddCommand(preview.NewCmdPreview())
	cmd.AddCommand(catalog.NewCmdCatalog())

	return cmd
}

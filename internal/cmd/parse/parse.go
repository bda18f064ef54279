// Package parse provides the parse command.
package parse

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/dgallion1/lawref/internal/parser"
	"github.com/dgallion1/lawref/internal/view"
)

type parseOptions struct {
	file      string
	legacy    bool
	pdftotext bool
	output    string
	noColor   bool
	out       io.Writer
}

// NewCmdParse creates the parse command.
func NewCmdParse() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a statute file into its table of contents and articles",
		Long: `Parse a statute file and print its structure.

The default outline output shows the chapter and section tree with the
article and word counts. Use -o json or -o yaml for the full parse result.`,
		Example: `  # Show the outline of a statute
  lawref parse 民法典.md

  # Full result as JSON
  lawref parse 刑法.docx -o json

  # Reproduce the original lookahead behaviour
  lawref parse 合同法.txt --legacy -o yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			opts.output, _ = cmd.Flags().GetString("output")
			opts.noColor, _ = cmd.Flags().GetBool("no-color")
			opts.out = cmd.OutOrStdout()
			return runParse(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "use the original lookahead behaviour")
	cmd.Flags().BoolVar(&opts.pdftotext, "pdftotext", true, "fall back to pdftotext for unreadable PDFs")

	return cmd
}

func runParse(opts *parseOptions) error {
	if err := view.ValidateFormat(opts.output); err != nil {
		return err
	}
	if opts.output == "" {
		opts.output = string(view.FormatOutline)
	}

	doc, err := ParseFile(opts.file, parser.Options{
		LegacyLookahead:      opts.legacy,
		PDFFallbackPdftotext: opts.pdftotext,
	})
	if err != nil {
		return err
	}

	renderer := view.NewRenderer(view.Format(opts.output), opts.noColor)
	renderer.SetWriter(opts.out)
	return renderer.RenderDocument(doc)
}

// ParseFile parses a statute file from the local filesystem.
func ParseFile(path string, popts parser.Options) (*doctree.Document, error) {
	p, err := parser.ForFile(path, popts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

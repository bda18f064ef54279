// Package preview provides the preview command.
package preview

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/lawref/internal/cmd/parse"
	"github.com/dgallion1/lawref/internal/parser"
	htmlpreview "github.com/dgallion1/lawref/internal/preview"
)

type previewOptions struct {
	file   string
	legacy bool
	out    io.Writer
}

// NewCmdPreview creates the preview command.
func NewCmdPreview() *cobra.Command {
	opts := &previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Render a statute file as an HTML page",
		Example: `  # Write a preview page
  lawref preview 民法典.docx > 民法典.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = args[0]
			opts.out = cmd.OutOrStdout()
			return runPreview(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.legacy, "legacy", false, "use the original lookahead behaviour")

	return cmd
}

func runPreview(opts *previewOptions) error {
	doc, err := parse.ParseFile(opts.file, parser.Options{
		LegacyLookahead:      opts.legacy,
		PDFFallbackPdftotext: true,
	})
	if err != nil {
		return err
	}
	return htmlpreview.RenderDocument(opts.out, doc)
}

package parser

import (
	"io"

	"github.com/dgallion1/lawref/internal/doctree"
)

// MarkdownParser handles the bundled Markdown statutes.
type MarkdownParser struct {
	Options Options
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	res, err := ParseStructure(r, p.Options)
	if err != nil {
		return nil, err
	}
	return newDocument(filename, res), nil
}

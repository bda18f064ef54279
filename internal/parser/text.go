package parser

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dgallion1/lawref/internal/doctree"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextParser handles plain text statutes, UTF-8 or GB18030 encoded.
type TextParser struct {
	Options Options
}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	res, err := ParseStructure(bytes.NewReader(text), p.Options)
	if err != nil {
		return nil, err
	}
	return newDocument(filename, res), nil
}

// decodeText returns UTF-8 bytes, treating invalid UTF-8 input as GB18030.
func decodeText(raw []byte) ([]byte, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	return simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
}

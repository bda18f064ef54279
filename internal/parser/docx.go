package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx statutes. Heading styles are turned into
// Markdown markers so the structural parser sees the same outline it would
// in the Markdown assets.
type DOCXParser struct {
	Options Options
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var lines []string
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		if marker := docxHeadingMarker(para); marker != "" {
			text = marker + " " + text
		}
		lines = append(lines, text)
	}

	return newDocument(filename, ParseLines(lines, p.Options)), nil
}

// docxHeadingMarker maps Title to "#" and HeadingN to N+1 markers, so that
// Heading1 parses as a level 1 entry.
func docxHeadingMarker(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return "#"
	}
	if !strings.HasPrefix(style, "heading") {
		return ""
	}
	switch strings.TrimPrefix(style, "heading") {
	case "1":
		return "##"
	case "2":
		return "###"
	case "3":
		return "####"
	case "4":
		return "#####"
	case "5":
		return "######"
	case "6":
		return "#######"
	}
	return ""
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/dgallion1/lawref/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles statutes saved as web pages. The page is converted to
// Markdown so <h1>..<h6> arrive as heading markers.
type HTMLParser struct {
	Options Options
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	root, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(string(src))
	if err != nil {
		return nil, fmt.Errorf("convert html: %w", err)
	}

	doc := newDocument(filename, ParseLines(strings.Split(markdown, "\n"), p.Options))
	if title := findTitle(root); title != "" {
		doc.Title = title
	}
	return doc, nil
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

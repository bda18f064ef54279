// Package preview renders parsed statutes as standalone HTML pages.
package preview

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

const documentCSS = `body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Arial,'Microsoft YaHei',sans-serif;padding:20px;line-height:1.8;color:#333;max-width:900px;margin:0 auto;background:#fff;}
h1{color:#1976d2;margin-bottom:20px;border-bottom:2px solid #1976d2;padding-bottom:10px;font-size:24px;}
h2{color:#1976d2;font-size:20px;margin-top:28px;}
h3{color:#1565c0;font-size:18px;margin-top:20px;}
h2.heading{color:#555;}
p{color:#333;margin:12px 0;text-align:justify;font-size:16px;}
nav.toc{background:#f5f5f5;padding:12px 20px;border-radius:5px;margin-bottom:20px;font-size:14px;}
nav.toc ul{list-style:none;padding-left:16px;margin:4px 0;}
nav.toc a{color:#1976d2;text-decoration:none;}
.file-info{background:#f5f5f5;padding:12px;border-radius:5px;margin-bottom:20px;font-size:14px;color:#666;}
@media (prefers-color-scheme: dark){
body{background:#121212;color:#e0e0e0;}
h1,h2{color:#90caf9;border-bottom-color:#90caf9;}
h3{color:#64b5f6;}
p{color:#e0e0e0;}
nav.toc,.file-info{background:#1e1e1e;color:#b0b0b0;}
nav.toc a{color:#90caf9;}
}`

const noticeCSS = `body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Arial,sans-serif;padding:20px;line-height:1.6;color:#333;}
h2{color:#1976d2;margin-bottom:10px;}
p{color:#666;margin:10px 0;}
.info{background:#f5f5f5;padding:15px;border-radius:5px;margin:15px 0;}
@media (prefers-color-scheme: dark){
body{background:#121212;color:#e0e0e0;}
h2{color:#90caf9;}
p{color:#b0b0b0;}
.info{background:#1e1e1e;}
}`

var markdown = goldmark.New(goldmark.WithRendererOptions(gmhtml.WithHardWraps()))

// Anchor returns the fragment id of the content item at a 1-based position.
func Anchor(position int) string {
	return "p-" + strconv.Itoa(position)
}

// RenderDocument writes doc as an HTML page with a linked outline.
func RenderDocument(w io.Writer, doc *doctree.Document) error {
	title := doc.Title
	if title == "" {
		title = "文档"
	}

	page, body := newPage(title, documentCSS)
	body.AppendChild(withText(elem("h1"), title))
	body.AppendChild(withText(elem("div", attr("class", "file-info")),
		fmt.Sprintf("文件类型: %s · 字数: %d", strings.ToUpper(doc.Format), doc.WordCount)))

	if outline := doctree.BuildOutline(doc.Toc); len(outline) > 0 {
		nav := elem("nav", attr("class", "toc"))
		nav.AppendChild(outlineList(outline))
		body.AppendChild(nav)
	}

	content := elem("main")
	for i, item := range doc.Content {
		n, err := contentNode(item, Anchor(i+1))
		if err != nil {
			return err
		}
		content.AppendChild(n)
	}
	body.AppendChild(content)

	return html.Render(w, page)
}

// RenderNotice writes the page shown when a file cannot be previewed.
func RenderNotice(w io.Writer, title, fileType, message string) error {
	if title == "" {
		title = "文档"
	}
	fileType = strings.ToUpper(fileType)
	if fileType == "" {
		fileType = "未知"
	}

	page, body := newPage(title, noticeCSS)
	body.AppendChild(withText(elem("h2"), title))

	info := elem("div", attr("class", "info"))
	kind := elem("p")
	kind.AppendChild(withText(elem("strong"), "文件类型:"))
	kind.AppendChild(text(" " + fileType))
	info.AppendChild(kind)
	info.AppendChild(withText(elem("p"), message))
	body.AppendChild(info)

	return html.Render(w, page)
}

func contentNode(item doctree.ContentItem, id string) (*html.Node, error) {
	switch item.Type {
	case doctree.Section:
		return withText(elem("h2", attr("id", id)), item.Text), nil
	case doctree.Node:
		return withText(elem("h3", attr("id", id)), item.Text), nil
	case doctree.Clause:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(item.Text), &buf); err != nil {
			return nil, fmt.Errorf("render clause %s: %w", id, err)
		}
		div := elem("div", attr("class", "clause"), attr("id", id))
		div.AppendChild(&html.Node{Type: html.RawNode, Data: buf.String()})
		return div, nil
	default:
		return withText(elem("h2", attr("class", "heading"), attr("id", id)), item.Text), nil
	}
}

func outlineList(nodes []*doctree.OutlineNode) *html.Node {
	ul := elem("ul")
	for _, n := range nodes {
		li := elem("li")
		li.AppendChild(withText(elem("a", attr("href", "#"+Anchor(n.Position))), n.Title))
		if len(n.Children) > 0 {
			li.AppendChild(outlineList(n.Children))
		}
		ul.AppendChild(li)
	}
	return ul
}

func newPage(title, css string) (page, body *html.Node) {
	page = &html.Node{Type: html.DocumentNode}
	page.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := elem("html", attr("lang", "zh-CN"))
	head := elem("head")
	head.AppendChild(elem("meta", attr("charset", "UTF-8")))
	head.AppendChild(elem("meta", attr("name", "viewport"), attr("content", "width=device-width, initial-scale=1.0")))
	head.AppendChild(withText(elem("title"), title))
	head.AppendChild(withText(elem("style"), css))
	root.AppendChild(head)

	body = elem("body")
	root.AppendChild(body)
	page.AppendChild(root)
	return page, body
}

func elem(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(text(s))
	return n
}

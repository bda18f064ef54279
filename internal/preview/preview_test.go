package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/dgallion1/lawref/internal/parser"
	"golang.org/x/net/html"
)

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findByID(c, id); f != nil {
			return f
		}
	}
	return nil
}

func collectHrefs(n *html.Node, out *[]string) {
	if n.Type == html.ElementNode && n.Data == "a" {
		for _, a := range n.Attr {
			if a.Key == "href" {
				*out = append(*out, a.Val)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHrefs(c, out)
	}
}

func renderParsed(t *testing.T, lines []string) (string, *html.Node) {
	t.Helper()
	doc := &doctree.Document{
		Title:       "测试法",
		Format:      "md",
		ParseResult: *parser.ParseLines(lines, parser.Options{}),
	}
	var buf bytes.Buffer
	if err := RenderDocument(&buf, doc); err != nil {
		t.Fatalf("render: %v", err)
	}
	root, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("re-parse output: %v", err)
	}
	return buf.String(), root
}

func TestRenderDocument_Structure(t *testing.T) {
	out, root := renderParsed(t, []string{
		"## 第一章 总则",
		"### 第一节 一般规定",
		"第一条 内容一。",
		"（一）细则；",
		"## 附则",
		"第二条 内容二。",
	})

	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("expected doctype, got %q", out[:20])
	}
	if !strings.Contains(out, "prefers-color-scheme: dark") {
		t.Error("expected dark mode styles")
	}

	tests := []struct {
		id   string
		tag  string
		text string
	}{
		{"p-1", "h2", "第一章 总则"},
		{"p-2", "h3", "第一节 一般规定"},
		{"p-3", "h2", "附则"},
		{"p-4", "div", ""},
	}
	for _, tt := range tests {
		n := findByID(root, tt.id)
		if n == nil {
			t.Fatalf("missing element #%s", tt.id)
		}
		if n.Data != tt.tag {
			t.Errorf("#%s: tag = %s, want %s", tt.id, n.Data, tt.tag)
		}
		if tt.text != "" && (n.FirstChild == nil || n.FirstChild.Data != tt.text) {
			t.Errorf("#%s: unexpected text", tt.id)
		}
	}

	unclassified := findByID(root, "p-3")
	if len(unclassified.Attr) == 0 || unclassified.Attr[0].Val != "heading" {
		t.Errorf("expected unclassified heading class, got %+v", unclassified.Attr)
	}

	if !strings.Contains(out, "第一条 内容一。<br") {
		t.Errorf("expected hard wrap inside the clause, got %s", out)
	}

	var hrefs []string
	collectHrefs(root, &hrefs)
	want := []string{"#p-1", "#p-2", "#p-3"}
	if strings.Join(hrefs, ",") != strings.Join(want, ",") {
		t.Errorf("outline links = %v, want %v", hrefs, want)
	}
}

func TestRenderDocument_EscapesText(t *testing.T) {
	out, _ := renderParsed(t, []string{"## <script>alert(1)</script>", "第一条 <b>粗体</b>"})

	if strings.Contains(out, "<script>alert") {
		t.Error("heading text was not escaped")
	}
	if strings.Contains(out, "<b>粗体</b>") {
		t.Error("raw html in clause was not dropped")
	}
}

func TestRenderDocument_NoOutline(t *testing.T) {
	out, _ := renderParsed(t, []string{"第一条 甲"})
	if strings.Contains(out, "<nav") {
		t.Error("expected no outline for a document without headings")
	}
}

func TestRenderNotice(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderNotice(&buf, "", "wps", "无法预览 <此文件>"); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"<h2>文档</h2>", "WPS", "无法预览 &lt;此文件&gt;"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %s", want, out)
		}
	}

	buf.Reset()
	RenderNotice(&buf, "x", "", "m")
	if !strings.Contains(buf.String(), "未知") {
		t.Error("expected unknown file type label")
	}
}

func TestAnchor(t *testing.T) {
	if got := Anchor(12); got != "p-12" {
		t.Errorf("Anchor(12) = %q", got)
	}
}

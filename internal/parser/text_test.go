package parser

import (
	"bytes"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestTextParser_UTF8(t *testing.T) {
	input := "## 第一章 总则\n第一条 内容一。\n第二条 内容二。"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "notes" {
		t.Errorf("expected title %q, got %q", "notes", doc.Title)
	}
	if len(doc.Toc) != 1 || doc.Clauses() != 2 {
		t.Errorf("expected 1 heading and 2 clauses, got %d and %d", len(doc.Toc), doc.Clauses())
	}
}

func TestTextParser_ByteOrderMark(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("## 第一章\n第一条 甲")...)
	p := &TextParser{}
	doc, err := p.Parse(bytes.NewReader(input), "bom.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Toc) != 1 {
		t.Fatalf("expected BOM to be stripped before the heading, got %d entries", len(doc.Toc))
	}
}

func TestTextParser_GB18030(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("## 第一章 总则\n第一条 内容一。\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(encoded), "gbk.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Toc) != 1 || doc.Toc[0].Title != "第一章 总则" {
		t.Fatalf("unexpected toc %+v", doc.Toc)
	}
	if doc.Content[1].Text != "第一条 内容一。" {
		t.Errorf("unexpected clause %q", doc.Content[1].Text)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Content) != 0 {
		t.Errorf("expected no content for empty input, got %d", len(doc.Content))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	input := "第一条 甲\n   \n\t\n乙"
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Content) != 1 || doc.Content[0].Text != "第一条 甲\n乙" {
		t.Fatalf("expected one clause joining both lines, got %+v", doc.Content)
	}
}

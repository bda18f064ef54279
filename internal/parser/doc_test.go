package parser

import (
	"bytes"
	"errors"
	"testing"
	"unicode/utf16"
)

func utf16le(s string) []byte {
	var buf bytes.Buffer
	for _, u := range utf16.Encode([]rune(s)) {
		buf.WriteByte(byte(u))
		buf.WriteByte(byte(u >> 8))
	}
	return buf.Bytes()
}

func TestDOCParser_UTF16Runs(t *testing.T) {
	var data bytes.Buffer
	data.Write([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}) // OLE header
	data.Write(bytes.Repeat([]byte{0x00, 0x01}, 16))
	data.Write(utf16le("## 第一章 总则\r第一条 内容一。\r第二条 内容二。\r"))
	data.Write(bytes.Repeat([]byte{0xFF, 0xFE}, 8))
	data.Write(utf16le("Times New Roman"))

	p := &DOCParser{}
	doc, err := p.Parse(bytes.NewReader(data.Bytes()), "条例.doc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Format != "doc" {
		t.Errorf("expected format doc, got %q", doc.Format)
	}
	if len(doc.Toc) != 1 || doc.Toc[0].Title != "第一章 总则" {
		t.Fatalf("unexpected toc %+v", doc.Toc)
	}
	if doc.Clauses() != 2 {
		t.Errorf("expected 2 clauses, got %d", doc.Clauses())
	}
	for _, c := range doc.Content {
		if c.Text == "Times New Roman" {
			t.Error("expected runs without CJK to be dropped")
		}
	}
}

func TestDOCParser_ASCIIFallback(t *testing.T) {
	data := append([]byte{0x01, 0x02, 0x03}, []byte("Article 1 applies to all persons.\x01short\x01")...)

	text, err := extractLegacyText(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Article 1 applies to all persons.\n" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestDOCParser_NoText(t *testing.T) {
	p := &DOCParser{}
	_, err := p.Parse(bytes.NewReader(bytes.Repeat([]byte{0x00, 0xFF}, 64)), "blank.wps")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

package library

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dgallion1/lawref/internal/parser"
)

const civilCode = "## 第一章 总则\n第一条 内容一。\n第二条 内容二。\n"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"民法/民法典.md":      {Data: []byte(civilCode)},
		"民法/副本.txt":      {Data: []byte(civilCode)},
		"民法/司法解释/解释.md": {Data: []byte("### 第一节\n第一条 甲。\n")},
		"民法/坏.doc":       {Data: []byte{0x00, 0x01, 0x02}},
		"刑法/刑法.md":       {Data: []byte("## 第一章 任务\n第一条 乙。\n")},
		"表格.xlsx":        {Data: []byte("x")},
	}
}

func newTestLibrary(fsys fstest.MapFS, opts Options) *Library {
	return New(fsys, NewMemoryCache(), NewParseStats(time.Hour), opts, discardLogger())
}

func TestLibrary_OpenParsesAndCaches(t *testing.T) {
	lib := newTestLibrary(testFS(), Options{})
	ctx := context.Background()

	doc, cached, err := lib.open(ctx, "民法/民法典.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cached {
		t.Error("first open should parse")
	}
	if doc.Title != "民法典" || len(doc.Toc) != 1 || doc.Clauses() != 2 {
		t.Errorf("unexpected document %+v", doc)
	}

	again, cached, err := lib.open(ctx, "民法/民法典.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cached || again != doc {
		t.Error("second open should come from the cache")
	}

	snap := lib.Stats().Snapshot()
	if snap.Count != 1 || snap.CacheHits != 1 || snap.Words != doc.WordCount {
		t.Errorf("unexpected stats %+v", snap)
	}
}

func TestLibrary_CacheKeySeparatesPathAndMode(t *testing.T) {
	fsys := testFS()
	cache := NewMemoryCache()
	def := New(fsys, cache, nil, Options{}, discardLogger())
	legacy := New(fsys, cache, nil, Options{Parse: parser.Options{LegacyLookahead: true}}, discardLogger())
	ctx := context.Background()

	md, _ := def.Open(ctx, "民法/民法典.md")
	txt, _ := def.Open(ctx, "民法/副本.txt")
	old, err := legacy.Open(ctx, "民法/民法典.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cache.Len() != 3 {
		t.Errorf("expected 3 cache entries, got %d", cache.Len())
	}
	if md.Format != "md" || txt.Format != "txt" {
		t.Errorf("unexpected formats %q %q", md.Format, txt.Format)
	}
	if old.Clauses() != 0 {
		t.Errorf("expected legacy parse to keep its own result, got %d clauses", old.Clauses())
	}
}

func TestLibrary_SameBytesKeepTheirTitles(t *testing.T) {
	fsys := fstest.MapFS{
		"民法/甲.md": {Data: []byte(civilCode)},
		"民法/乙.md": {Data: []byte(civilCode)},
	}
	lib := newTestLibrary(fsys, Options{})
	ctx := context.Background()

	a, err := lib.Open(ctx, "民法/甲.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	b, err := lib.Open(ctx, "民法/乙.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if a.Title != "甲" || b.Title != "乙" {
		t.Errorf("titles = %q, %q", a.Title, b.Title)
	}
}

func TestLibrary_OpenErrors(t *testing.T) {
	lib := newTestLibrary(testFS(), Options{MaxDocumentBytes: 16})
	ctx := context.Background()

	tests := []struct {
		path string
		want error
	}{
		{"民法/不存在.md", ErrNotFound},
		{"../etc/passwd.md", ErrNotFound},
		{"民法", parser.ErrUnsupportedFormat},
		{"表格.xlsx", parser.ErrUnsupportedFormat},
		{"民法/民法典.md", ErrTooLarge},
		{"民法/坏.doc", parser.ErrNoText},
	}
	for _, tt := range tests {
		_, err := lib.Open(ctx, tt.path)
		if !errors.Is(err, tt.want) {
			t.Errorf("Open(%q) error = %v, want %v", tt.path, err, tt.want)
		}
	}

	if snap := lib.Stats().Snapshot(); snap.Failures != 1 {
		t.Errorf("expected one parse failure, got %d", snap.Failures)
	}
}

func TestLibrary_OpenFolderWithExtension(t *testing.T) {
	fsys := fstest.MapFS{"a.md/b.md": {Data: []byte("x")}}
	lib := newTestLibrary(fsys, Options{})
	if _, err := lib.Open(context.Background(), "a.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a folder, got %v", err)
	}
}

func TestLibrary_OpenCancelled(t *testing.T) {
	lib := newTestLibrary(testFS(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := lib.Open(ctx, "刑法/刑法.md"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCache_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	cache, err := OpenCache(path)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	lib := New(testFS(), cache, nil, Options{}, discardLogger())
	first, err := lib.Open(ctx, "刑法/刑法.md")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}

	reopened, err := OpenCache(path)
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	defer reopened.Close()

	lib = New(testFS(), reopened, nil, Options{}, discardLogger())
	doc, cached, err := lib.open(ctx, "刑法/刑法.md")
	if err != nil {
		t.Fatalf("open after restart: %v", err)
	}
	if !cached {
		t.Error("expected document from the persisted cache")
	}
	if doc.Title != first.Title || doc.WordCount != first.WordCount || len(doc.Content) != len(first.Content) {
		t.Errorf("persisted document differs: %+v vs %+v", doc, first)
	}
	if doc.Content[0].Type != first.Content[0].Type {
		t.Errorf("content type lost: %s vs %s", doc.Content[0].Type, first.Content[0].Type)
	}
}

func TestCache_MissingKey(t *testing.T) {
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	if _, ok := cache.Get(strings.Repeat("0", 64)); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestLibrary_LongLineWithinDocumentLimit(t *testing.T) {
	line := "第一条 " + strings.Repeat("甲", parser.DefaultMaxLineBytes/3+1)
	fsys := fstest.MapFS{"民法/长.md": {Data: []byte("## 第一章\n" + line + "\n")}}
	ctx := context.Background()

	lib := newTestLibrary(fsys, Options{MaxDocumentBytes: 4 * parser.DefaultMaxLineBytes})
	doc, err := lib.Open(ctx, "民法/长.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Clauses() != 1 {
		t.Errorf("expected 1 clause, got %d", doc.Clauses())
	}

	unlimited := newTestLibrary(fsys, Options{})
	if _, err := unlimited.Open(ctx, "民法/长.md"); !errors.Is(err, parser.ErrLineTooLong) {
		t.Errorf("expected ErrLineTooLong without a document limit, got %v", err)
	}
}

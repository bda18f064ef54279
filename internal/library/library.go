// Package library opens statute files from the asset tree, parses them and
// keeps the results, and runs background index jobs over the catalog.
package library

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/dgallion1/lawref/internal/doctree"
	"github.com/dgallion1/lawref/internal/parser"
)

var (
	// ErrNotFound is returned when no law file exists at the requested path.
	ErrNotFound = errors.New("law not found")
	// ErrTooLarge is returned for files above the configured size limit.
	ErrTooLarge = errors.New("document too large")
)

// Options configures a Library.
type Options struct {
	Parse            parser.Options
	MaxDocumentBytes int64 // 0 means unlimited
}

// Library serves parsed statutes from an fs.FS rooted at the Laws folder.
type Library struct {
	fsys  fs.FS
	cache *Cache
	stats *ParseStats
	opts  Options
	log   *slog.Logger
}

func New(fsys fs.FS, cache *Cache, stats *ParseStats, opts Options, log *slog.Logger) *Library {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if stats == nil {
		stats = NewParseStats(time.Hour)
	}
	// A line can be as long as the whole document.
	if opts.Parse.MaxLineBytes == 0 && opts.MaxDocumentBytes > parser.DefaultMaxLineBytes {
		opts.Parse.MaxLineBytes = int(opts.MaxDocumentBytes)
	}
	return &Library{fsys: fsys, cache: cache, stats: stats, opts: opts, log: log}
}

// Stats returns the parse latency tracker.
func (l *Library) Stats() *ParseStats {
	return l.stats
}

// Open returns the parsed document at path, relative to the Laws folder.
func (l *Library) Open(ctx context.Context, path string) (*doctree.Document, error) {
	doc, _, err := l.open(ctx, path)
	return doc, err
}

func (l *Library) open(ctx context.Context, path string) (*doctree.Document, bool, error) {
	if !fs.ValidPath(path) || path == "." {
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	p, err := parser.ForFile(path, l.opts.Parse)
	if err != nil {
		return nil, false, err
	}

	data, err := l.read(path)
	if err != nil {
		return nil, false, err
	}

	key := cacheKey(data, path, l.opts.Parse)
	if doc, ok := l.cache.Get(key); ok {
		l.stats.RecordCacheHit()
		return doc, true, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	doc, err := p.Parse(bytes.NewReader(data), path)
	if err != nil {
		l.stats.RecordFailure()
		return nil, false, fmt.Errorf("parse %s: %w", path, err)
	}
	l.stats.Record(time.Since(start).Milliseconds(), doc.WordCount)

	if err := l.cache.Put(key, doc); err != nil {
		l.log.Warn("cache write failed", "path", path, "error", err)
	}
	return doc, false, nil
}

func (l *Library) read(path string) ([]byte, error) {
	f, err := l.fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", parser.ErrSourceUnavailable, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a folder", ErrNotFound, path)
	}

	var r io.Reader = f
	if limit := l.opts.MaxDocumentBytes; limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", parser.ErrSourceUnavailable, err)
	}
	if limit := l.opts.MaxDocumentBytes; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, limit)
	}
	return data, nil
}

// cacheKey ties a parse to the bytes, the file they came from and the
// lookahead mode. The path is part of the key since titles and formats
// derive from it.
func cacheKey(data []byte, path string, opts parser.Options) string {
	mode := "default"
	if opts.LegacyLookahead {
		mode = "legacy"
	}
	return ContentHashHex(data) + ":" + mode + ":" + path
}

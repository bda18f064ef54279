package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/lawref/internal/doctree"
)

// ErrSourceUnavailable is returned when the line source cannot be read.
// No partial result accompanies it.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrLineTooLong is returned when a single line exceeds Options.MaxLineBytes.
var ErrLineTooLong = errors.New("line too long")

// DefaultMaxLineBytes bounds a single input line when Options.MaxLineBytes is 0.
const DefaultMaxLineBytes = 1024 * 1024

// Line grammar of the bundled statutes.
var (
	markersOnlyPattern = regexp.MustCompile(`^#+$`)
	headingPattern     = regexp.MustCompile(`^#+\s`)
	clausePattern      = regexp.MustCompile(`^第[一二三四五六七八九十零百千万]*条`)
	sectionPattern     = regexp.MustCompile(`^第[一二三四五六七八九十零百千万]`)
)

// Options tunes parsing.
type Options struct {
	// LegacyLookahead reproduces the original reader exactly: the
	// end-of-input check after a body line consumes the following raw line,
	// trimming only ASCII control characters and spaces, marker-only lines
	// are left out of the word count, the first anchor is reported as parent
	// 0, and a continuation of an empty clause keeps its leading newline.
	LegacyLookahead bool

	// PDFFallbackPdftotext shells out to pdftotext when the Go PDF reader fails.
	PDFFallbackPdftotext bool

	// MaxLineBytes bounds one input line read by ParseStructure; 0 means
	// DefaultMaxLineBytes.
	MaxLineBytes int
}

// ParseStructure reads newline-delimited statute text and rebuilds its table
// of contents and content stream in a single pass. The caller owns r.
func ParseStructure(r io.Reader, opts Options) (*doctree.ParseResult, error) {
	limit := opts.MaxLineBytes
	if limit <= 0 {
		limit = DefaultMaxLineBytes
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, limit)), limit)

	src := &lineSource{next: func() (string, bool) {
		if scanner.Scan() {
			return scanner.Text(), true
		}
		return "", false
	}}

	res := parse(src, opts)
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: over %d bytes", ErrLineTooLong, limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return res, nil
}

// ParseLines runs the structural parser over lines already in memory.
func ParseLines(lines []string, opts Options) *doctree.ParseResult {
	i := 0
	src := &lineSource{next: func() (string, bool) {
		if i >= len(lines) {
			return "", false
		}
		i++
		return lines[i-1], true
	}}
	return parse(src, opts)
}

// lineSource hands out input lines with lookahead. Raw lines read ahead by
// hasMore stay queued until consumed.
type lineSource struct {
	next    func() (string, bool)
	pending []string
}

func (s *lineSource) raw() (string, bool) {
	if len(s.pending) > 0 {
		l := s.pending[0]
		s.pending = s.pending[1:]
		return l, true
	}
	return s.next()
}

// line returns the next non-blank line, trimmed.
func (s *lineSource) line(trim func(string) string) (string, bool) {
	for {
		l, ok := s.raw()
		if !ok {
			return "", false
		}
		if t := trim(l); t != "" {
			return t, true
		}
	}
}

// hasMore reports whether a non-blank line follows without consuming it.
func (s *lineSource) hasMore(trim func(string) string) bool {
	for _, l := range s.pending {
		if trim(l) != "" {
			return true
		}
	}
	for {
		l, ok := s.next()
		if !ok {
			return false
		}
		s.pending = append(s.pending, l)
		if trim(l) != "" {
			return true
		}
	}
}

// parseState is the per-call arena; nothing survives between parses.
type parseState struct {
	opts   Options
	result *doctree.ParseResult

	tocIndex     int
	tocID        int
	levelParent  map[int]int // level -> parent anchor id
	lastParentID int
	clause       strings.Builder
}

func parse(src *lineSource, opts Options) *doctree.ParseResult {
	st := &parseState{
		opts: opts,
		result: &doctree.ParseResult{
			Toc:     []doctree.TocEntry{},
			Content: []doctree.ContentItem{},
		},
		levelParent:  make(map[int]int, 8),
		lastParentID: -1,
	}

	trim := strings.TrimSpace
	if opts.LegacyLookahead {
		trim = trimASCII
	}

	for {
		line, ok := src.line(trim)
		if !ok {
			break
		}

		if markersOnlyPattern.MatchString(line) {
			if !opts.LegacyLookahead {
				st.result.WordCount += utf8.RuneCountInString(line)
			}
			continue
		}

		if headingPattern.MatchString(line) {
			st.heading(line)
		} else {
			st.body(line)
			if opts.LegacyLookahead {
				if _, more := src.raw(); !more {
					st.flush()
				}
			} else if !src.hasMore(trim) {
				st.flush()
			}
		}

		st.result.WordCount += st.lineLength(line)
	}

	// Input may end on a heading or a marker-only line with a clause still
	// pending. The legacy reader drops it.
	if !opts.LegacyLookahead {
		st.flush()
	}
	return st.result
}

func (st *parseState) heading(line string) {
	st.tocIndex++
	st.tocID++

	loc := headingPattern.FindStringIndex(line)
	headline := line[loc[1]:]
	level := splitSegments(line, "#") - 2

	cur, ok := st.levelParent[level]
	if !ok || cur != st.lastParentID {
		if level == 1 {
			clear(st.levelParent)
		}
		if !ok || st.lastParentID < cur {
			st.levelParent[level] = st.tocID - 1
			st.lastParentID = st.tocID - 1
		} else {
			st.levelParent[level] = cur
			st.lastParentID = cur
		}
	}

	parentID, ok := st.levelParent[level]
	if !ok || (parentID < 1 && !st.opts.LegacyLookahead) {
		parentID = -1
	}

	st.result.Toc = append(st.result.Toc, doctree.TocEntry{
		ID:       st.tocID,
		ParentID: parentID,
		Position: st.tocIndex,
		Title:    headline,
		Level:    level,
	})

	typ := doctree.Unclassified
	switch {
	case level == 1 && sectionPattern.MatchString(headline):
		typ = doctree.Section
	case level > 1:
		typ = doctree.Node
	}
	st.result.Content = append(st.result.Content, doctree.ContentItem{Type: typ, Text: headline})
}

func (st *parseState) body(line string) {
	if clausePattern.MatchString(line) {
		st.flush()
		st.clause.WriteString(line)
		return
	}
	if st.clause.Len() > 0 || st.opts.LegacyLookahead {
		st.clause.WriteByte('\n')
	}
	st.clause.WriteString(line)
}

// flush emits the pending clause, if any.
func (st *parseState) flush() {
	if st.clause.Len() == 0 {
		return
	}
	st.tocIndex++
	st.result.Content = append(st.result.Content, doctree.ContentItem{
		Type: doctree.Clause,
		Text: st.clause.String(),
	})
	st.clause.Reset()
}

func (st *parseState) lineLength(line string) int {
	if !st.opts.LegacyLookahead {
		return utf8.RuneCountInString(line)
	}
	// UTF-16 code units, as the original reader counted them.
	n := 0
	for _, r := range line {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// splitSegments counts the pieces of s split on sep, dropping trailing
// empty pieces. "## 第一章" yields 3.
func splitSegments(s, sep string) int {
	parts := strings.Split(s, sep)
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	return n
}

func trimASCII(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}

package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/lawref/internal/doctree"
	"golang.org/x/text/encoding/unicode"
)

// ErrNoText is returned when a legacy binary document yields no usable text.
var ErrNoText = errors.New("no readable text in document")

const (
	minUTF16Run  = 4  // code units
	minASCIIRun  = 8  // bytes
	minTextRunes = 10 // below this the extraction is treated as failed
)

// DOCParser handles legacy Word (.doc) and WPS files. There is no binary
// format reader here: text is recovered by scanning for UTF-16LE runs of
// CJK and printable characters, falling back to printable ASCII runs.
type DOCParser struct {
	Options Options
}

func (p *DOCParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	text, err := extractLegacyText(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return newDocument(filename, ParseLines(splitLines(text), p.Options)), nil
}

func extractLegacyText(data []byte) (string, error) {
	text, err := utf16Runs(data)
	if err != nil {
		return "", err
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextRunes {
		text = asciiRuns(data)
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minTextRunes {
		return "", ErrNoText
	}
	return text, nil
}

// utf16Runs collects UTF-16LE runs holding both a CJK unit and an ASCII
// unit. Plain 8-bit text read as UTF-16 lands in the CJK block too, but
// never produces a unit with a zero high byte. Carriage returns (Word
// paragraph marks) inside a run become newlines.
func utf16Runs(data []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

	var out strings.Builder
	start, units := -1, 0
	hasCJK, hasASCII := false, false

	emit := func(end int) error {
		if start >= 0 && units >= minUTF16Run && hasCJK && hasASCII {
			b, err := dec.Bytes(data[start:end])
			if err != nil {
				return fmt.Errorf("decode utf-16 run: %w", err)
			}
			out.WriteString(strings.ReplaceAll(string(b), "\r", "\n"))
			out.WriteByte('\n')
		}
		start, units = -1, 0
		hasCJK, hasASCII = false, false
		return nil
	}

	for i := 0; i+1 < len(data); i += 2 {
		u := rune(data[i]) | rune(data[i+1])<<8
		if isTextUnit(u) {
			if start < 0 {
				start = i
			}
			units++
			if isCJKUnit(u) {
				hasCJK = true
			} else if u < 0x80 {
				hasASCII = true
			}
			continue
		}
		if err := emit(i); err != nil {
			return "", err
		}
	}
	if err := emit(len(data) &^ 1); err != nil {
		return "", err
	}
	return out.String(), nil
}

// asciiRuns keeps runs of printable ASCII, line breaks preserved.
func asciiRuns(data []byte) string {
	var out strings.Builder
	var run []byte
	flush := func() {
		if len(strings.TrimSpace(string(run))) >= minASCIIRun {
			out.Write(run)
			out.WriteByte('\n')
		}
		run = run[:0]
	}
	for _, b := range data {
		if b >= 0x20 && b <= 0x7E {
			run = append(run, b)
			continue
		}
		flush()
	}
	flush()
	return out.String()
}

func isTextUnit(u rune) bool {
	switch {
	case u == '\r' || u == '\n' || u == '\t':
		return true
	case u >= 0x20 && u <= 0x7E:
		return true
	default:
		return isCJKUnit(u)
	}
}

func isCJKUnit(u rune) bool {
	switch {
	case u >= 0x4E00 && u <= 0x9FFF: // unified ideographs
		return true
	case u >= 0x3000 && u <= 0x303F: // CJK punctuation
		return true
	case u >= 0xFF00 && u <= 0xFFEF: // full-width forms
		return true
	}
	return false
}

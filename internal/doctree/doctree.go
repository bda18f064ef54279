package doctree

import "fmt"

// ContentType classifies an entry of the content stream.
type ContentType int

const (
	// Unclassified marks a heading that is neither a chapter-style section
	// nor a nested node (level <= 1 without a 第X ordinal).
	Unclassified ContentType = iota
	Section
	Node
	Clause
)

var contentTypeNames = map[ContentType]string{
	Unclassified: "unclassified",
	Section:      "section",
	Node:         "node",
	Clause:       "clause",
}

func (t ContentType) String() string {
	if s, ok := contentTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ContentType(%d)", int(t))
}

// IsHeading reports whether items of this type mirror a TocEntry.
func (t ContentType) IsHeading() bool {
	return t != Clause
}

func (t ContentType) MarshalText() ([]byte, error) {
	s, ok := contentTypeNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown content type %d", int(t))
	}
	return []byte(s), nil
}

func (t *ContentType) UnmarshalText(b []byte) error {
	for k, v := range contentTypeNames {
		if v == string(b) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown content type %q", string(b))
}

// TocEntry is one heading of the table of contents. Parent links are
// expressed by ID; -1 means the entry hangs off the root.
type TocEntry struct {
	ID       int    `json:"id" yaml:"id"`
	ParentID int    `json:"parentId" yaml:"parentId"`
	Position int    `json:"position" yaml:"position"` // 1-based index into the content stream
	Title    string `json:"title" yaml:"title"`
	Level    int    `json:"level" yaml:"level"`
}

// ContentItem is one heading or clause body of the content stream.
type ContentItem struct {
	Type ContentType `json:"type" yaml:"type"`
	Text string      `json:"text" yaml:"text"`
}

// ParseResult is the output of a single structural parse.
type ParseResult struct {
	Toc       []TocEntry    `json:"toc" yaml:"toc"`
	Content   []ContentItem `json:"content" yaml:"content"`
	WordCount int           `json:"wordCount" yaml:"wordCount"`
}

// Document is a parsed statute together with its source metadata.
type Document struct {
	Title  string `json:"title" yaml:"title"`   // from metadata or filename
	Format string `json:"format" yaml:"format"` // source extension without the dot
	ParseResult `yaml:",inline"`
}

// ItemAt returns the content item at a 1-based position.
func (r *ParseResult) ItemAt(position int) (ContentItem, bool) {
	if position < 1 || position > len(r.Content) {
		return ContentItem{}, false
	}
	return r.Content[position-1], true
}

// Clauses returns the number of clause bodies in the content stream.
func (r *ParseResult) Clauses() int {
	n := 0
	for _, c := range r.Content {
		if c.Type == Clause {
			n++
		}
	}
	return n
}

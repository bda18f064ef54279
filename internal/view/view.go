// Package view provides output formatting for lawref commands.
package view

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/lawref/internal/doctree"
)

// Format represents an output format.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatPlain   Format = "plain"
	FormatOutline Format = "outline"
)

var validFormats = []Format{FormatTable, FormatJSON, FormatYAML, FormatPlain, FormatOutline}

// ValidFormats returns the accepted values of --output.
func ValidFormats() []string {
	out := make([]string, len(validFormats))
	for i, f := range validFormats {
		out[i] = string(f)
	}
	return out
}

// ValidateFormat checks an --output value. Empty selects the command default.
func ValidateFormat(format string) error {
	if format == "" {
		return nil
	}
	for _, f := range validFormats {
		if Format(format) == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (valid: %s)", format, strings.Join(ValidFormats(), ", "))
}

// Renderer renders data in a specific format.
type Renderer struct {
	format  Format
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a new renderer with the specified format.
func NewRenderer(format Format, noColor bool) *Renderer {
	if noColor {
		color.NoColor = true
	}
	return &Renderer{
		format:  format,
		writer:  os.Stdout,
		noColor: noColor,
	}
}

// SetWriter sets the output writer.
func (r *Renderer) SetWriter(w io.Writer) {
	r.writer = w
}

// RenderTable renders rows under headers.
func (r *Renderer) RenderTable(headers []string, rows [][]string) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(tableRecords(headers, rows))
	case FormatYAML:
		return r.RenderYAML(tableRecords(headers, rows))
	case FormatPlain:
		for _, row := range rows {
			fmt.Fprintln(r.writer, strings.Join(row, "\t"))
		}
		return nil
	}

	bold := color.New(color.Bold)
	bold.Fprintln(r.writer, strings.Join(headers, "  "))
	for _, row := range rows {
		fmt.Fprintln(r.writer, strings.Join(row, "  "))
	}
	return nil
}

func tableRecords(headers []string, rows [][]string) []map[string]string {
	result := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		item := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				item[strings.ToLower(header)] = row[i]
			}
		}
		result = append(result, item)
	}
	return result
}

// RenderJSON renders an object as indented JSON.
func (r *Renderer) RenderJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(r.writer, string(data))
	return nil
}

// RenderYAML renders an object as YAML.
func (r *Renderer) RenderYAML(v any) error {
	enc := yaml.NewEncoder(r.writer)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// RenderDocument renders a parsed statute. The outline format prints the
// heading tree and a summary; plain prints the content stream line by line.
func (r *Renderer) RenderDocument(doc *doctree.Document) error {
	switch r.format {
	case FormatJSON:
		return r.RenderJSON(doc)
	case FormatYAML:
		return r.RenderYAML(doc)
	case FormatPlain:
		for _, item := range doc.Content {
			fmt.Fprintln(r.writer, item.Text)
		}
		return nil
	}

	title := color.New(color.Bold)
	section := color.New(color.FgCyan, color.Bold)
	node := color.New(color.FgYellow)
	faint := color.New(color.Faint)

	title.Fprintln(r.writer, doc.Title)
	doctree.Walk(doctree.BuildOutline(doc.Toc), func(n *doctree.OutlineNode, depth int) {
		indent := strings.Repeat("  ", depth+1)
		item, _ := doc.ItemAt(n.Position)
		switch item.Type {
		case doctree.Section:
			section.Fprintf(r.writer, "%s%s\n", indent, n.Title)
		case doctree.Node:
			node.Fprintf(r.writer, "%s%s\n", indent, n.Title)
		default:
			fmt.Fprintf(r.writer, "%s%s\n", indent, n.Title)
		}
	})
	faint.Fprintf(r.writer, "%s · %d 条 · 字数 %d\n", strings.ToUpper(doc.Format), doc.Clauses(), doc.WordCount)
	return nil
}

// RenderText renders plain text.
func (r *Renderer) RenderText(text string) {
	fmt.Fprintln(r.writer, text)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	green := color.New(color.FgGreen)
	green.Fprintln(r.writer, "✓ "+msg)
}

// Error prints an error message.
func (r *Renderer) Error(msg string) {
	red := color.New(color.FgRed)
	red.Fprintln(r.writer, "✗ "+msg)
}

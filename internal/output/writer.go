// Package output handles record serialization and output files.
package output

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

// Format represents output format types.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats, default first.
var Formats = []Format{FormatCSV, FormatJSON, FormatJSONL, FormatYAML}

// ParseFormat resolves a format name, case-insensitively. "yml" is
// accepted as YAML and the empty string selects CSV.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "":
		return FormatCSV, nil
	case "yml":
		return FormatYAML, nil
	}
	if slices.Contains(Formats, f) {
		return f, nil
	}
	return "", unsupported(name)
}

func unsupported(name string) error {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return fmt.Errorf("unsupported output format: %s (supported: %s)", name, strings.Join(names, ", "))
}

// Writer handles output serialization.
type Writer interface {
	// Write outputs a single record.
	Write(rec extractor.Record) error

	// WriteAll outputs multiple records.
	WriteAll(recs []extractor.Record) error

	// Flush pushes buffered bytes to the underlying writer. Formats that
	// emit a single document write it on Close.
	Flush() error

	// Close finishes the document and flushes.
	Close() error
}

// WriterOption configures a writer.
type WriterOption func(*writerConfig)

type writerConfig struct {
	pretty bool
	indent string
	bom    bool
}

// WithPretty enables pretty-printing.
func WithPretty(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.pretty = enabled
	}
}

// WithIndent sets the indentation string.
func WithIndent(indent string) WriterOption {
	return func(c *writerConfig) {
		c.indent = indent
	}
}

// WithBOM controls the UTF-8 byte order mark on CSV output, which
// spreadsheet tools need to detect the encoding.
func WithBOM(enabled bool) WriterOption {
	return func(c *writerConfig) {
		c.bom = enabled
	}
}

// NewWriter creates a writer for the specified format.
func NewWriter(w io.Writer, format Format, opts ...WriterOption) (Writer, error) {
	cfg := &writerConfig{
		pretty: true,
		indent: "  ",
		bom:    true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	switch format {
	case FormatCSV:
		return NewCSVWriter(w, cfg.bom), nil
	case FormatJSON:
		return NewJSONWriter(w, cfg.pretty, cfg.indent), nil
	case FormatJSONL:
		return NewJSONLWriter(w), nil
	case FormatYAML:
		return NewYAMLWriter(w), nil
	default:
		return nil, unsupported(string(format))
	}
}

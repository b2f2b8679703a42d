package output

import (
	"bufio"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

// YAMLWriter writes records as a YAML sequence.
type YAMLWriter struct {
	w      *bufio.Writer
	items  []extractor.Record
	closed bool
}

// NewYAMLWriter creates a YAML writer.
func NewYAMLWriter(w io.Writer) *YAMLWriter {
	return &YAMLWriter{
		w:     bufio.NewWriter(w),
		items: make([]extractor.Record, 0),
	}
}

// Write buffers a single record.
func (w *YAMLWriter) Write(rec extractor.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *YAMLWriter) WriteAll(recs []extractor.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Flush flushes bytes already written.
func (w *YAMLWriter) Flush() error {
	return w.w.Flush()
}

// Close writes the buffered records as YAML.
func (w *YAMLWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	encoder := yaml.NewEncoder(w.w)
	encoder.SetIndent(2)
	if err := encoder.Encode(w.items); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}

	return w.w.Flush()
}

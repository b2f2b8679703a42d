package output

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

// JSONWriter writes records as a single JSON array.
type JSONWriter struct {
	w      *bufio.Writer
	pretty bool
	indent string
	items  []extractor.Record
	closed bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(w io.Writer, pretty bool, indent string) *JSONWriter {
	return &JSONWriter{
		w:      bufio.NewWriter(w),
		pretty: pretty,
		indent: indent,
		items:  make([]extractor.Record, 0),
	}
}

// Write buffers a single record for array output.
func (w *JSONWriter) Write(rec extractor.Record) error {
	w.items = append(w.items, rec)
	return nil
}

// WriteAll buffers multiple records.
func (w *JSONWriter) WriteAll(recs []extractor.Record) error {
	w.items = append(w.items, recs...)
	return nil
}

// Flush flushes bytes already written.
func (w *JSONWriter) Flush() error {
	return w.w.Flush()
}

// Close writes the buffered records as a JSON array.
func (w *JSONWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var output []byte
	var err error
	if w.pretty {
		output, err = json.MarshalIndent(w.items, "", w.indent)
	} else {
		output, err = json.Marshal(w.items)
	}
	if err != nil {
		return err
	}

	if _, err := w.w.Write(output); err != nil {
		return err
	}
	if _, err := w.w.WriteString("\n"); err != nil {
		return err
	}

	return w.w.Flush()
}

// JSONLWriter writes newline-delimited JSON (JSONL).
type JSONLWriter struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewJSONLWriter creates a JSONL writer.
func NewJSONLWriter(w io.Writer) *JSONLWriter {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{w: bw, enc: enc}
}

// Write writes a single record as a JSON line.
func (w *JSONLWriter) Write(rec extractor.Record) error {
	return w.enc.Encode(rec)
}

// WriteAll writes multiple records as JSON lines.
func (w *JSONLWriter) WriteAll(recs []extractor.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the buffer.
func (w *JSONLWriter) Flush() error {
	return w.w.Flush()
}

// Close flushes the writer.
func (w *JSONLWriter) Close() error {
	return w.Flush()
}

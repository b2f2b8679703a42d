package output

import (
	"encoding/csv"
	"io"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

const utf8BOM = "\uFEFF"

// CSVWriter writes records as rows under the localized header.
type CSVWriter struct {
	out    io.Writer
	w      *csv.Writer
	bom    bool
	header bool
}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter(w io.Writer, bom bool) *CSVWriter {
	return &CSVWriter{
		out: w,
		w:   csv.NewWriter(w),
		bom: bom,
	}
}

func (w *CSVWriter) writeHeader() error {
	if w.header {
		return nil
	}
	w.header = true
	if w.bom {
		if _, err := io.WriteString(w.out, utf8BOM); err != nil {
			return err
		}
	}
	return w.w.Write(extractor.Header())
}

// Write writes one record row, preceded by the header on first use.
func (w *CSVWriter) Write(rec extractor.Record) error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.w.Write(rec.Row())
}

// WriteAll writes multiple record rows.
func (w *CSVWriter) WriteAll(recs []extractor.Record) error {
	for _, rec := range recs {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered rows.
func (w *CSVWriter) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Close writes the header if no rows were written, then flushes.
func (w *CSVWriter) Close() error {
	if err := w.writeHeader(); err != nil {
		return err
	}
	return w.Flush()
}

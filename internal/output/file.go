package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

var unsafeName = strings.NewReplacer("/", "_", "\\", "_", string(os.PathSeparator), "_")

// Ext returns the file extension for format, without the dot.
func Ext(format Format) string {
	if format == "" {
		return string(FormatCSV)
	}
	return string(format)
}

// FileName returns the output file name for a search, for example
// fund_电动汽车_2022-2026.csv.
func FileName(keyword string, startYear, endYear int, format Format) string {
	return fmt.Sprintf("fund_%s_%d-%d.%s", unsafeName.Replace(keyword), startYear, endYear, Ext(format))
}

// WriteFile writes recs to dir/name in format, creating dir if needed.
// It returns the path written.
func WriteFile(dir, name string, format Format, recs []extractor.Record, opts ...WriterOption) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w, err := NewWriter(f, format, opts...)
	if err != nil {
		return "", err
	}
	if err := w.WriteAll(recs); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

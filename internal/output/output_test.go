package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/fundscrape/internal/extractor"
)

func strPtr(s string) *string { return &s }

func testRecords() []extractor.Record {
	return []extractor.Record{
		{
			Title:       "面向电动汽车的固态电池研究",
			Institution: "清华大学",
			PI:          "张三",
			Funder:      "国家自然科学基金委员会",
			Amount:      "58.00万元",
			Year:        "2023",
			Field:       strPtr("工程与材料科学部"),
		},
		{Title: "充电网络, \"协同\" 调度", Year: "2022", Field: strPtr("")},
		{Title: "车用燃料电池寿命预测"},
	}
}

// --- NewWriter Factory Tests ---

func TestNewWriter_Formats(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatCSV, "*output.CSVWriter"},
		{FormatJSON, "*output.JSONWriter"},
		{FormatJSONL, "*output.JSONLWriter"},
		{FormatYAML, "*output.YAMLWriter"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			w, err := NewWriter(&bytes.Buffer{}, tt.format)
			if err != nil {
				t.Fatalf("NewWriter() error = %v", err)
			}
			if got := fmt.Sprintf("%T", w); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, Format("xlsx"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
	if !strings.Contains(err.Error(), "csv, json, jsonl, yaml") {
		t.Errorf("error should list the supported formats, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{" jsonl ", FormatJSONL, false},
		{"yml", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// --- CSVWriter Tests ---

func TestCSVWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf, true)

	if err := w.WriteAll(testRecords()); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatal("expected UTF-8 BOM at start of output")
	}

	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\uFEFF"))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	want := [][]string{
		{"题目", "受资机构", "负责人", "资助机构", "金额", "立项年份", "申报领域"},
		{"面向电动汽车的固态电池研究", "清华大学", "张三", "国家自然科学基金委员会", "58.00万元", "2023", "工程与材料科学部"},
		{"充电网络, \"协同\" 调度", "", "", "", "", "2022", ""},
		{"车用燃料电池寿命预测", "", "", "", "", "", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("CSV rows mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVWriter_NoBOM(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatCSV, WithBOM(false))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write(testRecords()[2]); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "题目,") {
		t.Errorf("expected header first without BOM, got %q", buf.String())
	}
}

func TestCSVWriter_HeaderOnce(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf, false)

	for _, r := range testRecords() {
		if err := w.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "题目"); n != 1 {
		t.Errorf("expected header once, found %d times", n)
	}
}

func TestCSVWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewCSVWriter(buf, false)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != strings.Join(extractor.Header(), ",") {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.WriteAll(testRecords()); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []extractor.Record
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if diff := cmp.Diff(testRecords(), result); diff != "" {
		t.Errorf("JSON mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONWriter_SingleRecordIsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	if err := w.Write(testRecords()[2]); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "[") {
		t.Errorf("expected array output, got %q", buf.String())
	}
	if strings.Contains(buf.String(), "\n ") {
		t.Error("compact output should not be indented")
	}
}

func TestJSONWriter_FieldPresence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")
	if err := w.WriteAll(testRecords()[1:]); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	if v, ok := raw[0]["field"]; !ok || v != "" {
		t.Errorf("blank field should be present and empty, got %v (present=%v)", v, ok)
	}
	if _, ok := raw[1]["field"]; ok {
		t.Error("absent field should be omitted")
	}
}

func TestJSONWriter_CloseTwice(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")
	_ = w.Write(testRecords()[0])
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	n := buf.Len()
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != n {
		t.Error("second Close() should not write again")
	}
}

func TestJSONWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.WriteAll(testRecords()); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	var first extractor.Record
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not valid JSON: %v", err)
	}
	if first.Institution != "清华大学" {
		t.Errorf("unexpected first record %+v", first)
	}
}

func TestJSONLWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	for _, r := range testRecords() {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var result []extractor.Record
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if diff := cmp.Diff(testRecords(), result); diff != "" {
		t.Errorf("YAML mismatch (-want +got):\n%s", diff)
	}
}

// --- Option Tests ---

func TestWriterOptions(t *testing.T) {
	cfg := &writerConfig{pretty: true, indent: "  ", bom: true}
	WithPretty(false)(cfg)
	WithIndent("\t")(cfg)
	WithBOM(false)(cfg)
	if cfg.pretty || cfg.indent != "\t" || cfg.bom {
		t.Errorf("options not applied: %+v", cfg)
	}
}

// --- File Tests ---

func TestFileName(t *testing.T) {
	tests := []struct {
		keyword string
		format  Format
		want    string
	}{
		{"电动汽车", FormatCSV, "fund_电动汽车_2022-2026.csv"},
		{"电动汽车", FormatJSONL, "fund_电动汽车_2022-2026.jsonl"},
		{"a/b", "", "fund_a_b_2022-2026.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.keyword, 2022, 2026, tt.format); got != tt.want {
			t.Errorf("FileName(%q, %q) = %q, want %q", tt.keyword, tt.format, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	name := FileName("电动汽车", 2022, 2026, FormatCSV)

	path, err := WriteFile(dir, name, FormatCSV, testRecords())
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if path != filepath.Join(dir, name) {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\uFEFF")))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("expected header plus 3 rows, got %d", len(rows))
	}
}

func TestWriteFile_UnsupportedFormat(t *testing.T) {
	if _, err := WriteFile(t.TempDir(), "x.bin", Format("bin"), testRecords()); err == nil {
		t.Error("expected error for unsupported format")
	}
}

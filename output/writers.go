// Package output exports stock reports to files.
package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-stock-locator/models"
)

// Writer defines the interface for report output.
type Writer interface {
	Write(report *models.Report) error
	Close() error
	Validate() error
}

// Row is one reported store of a stock check.
type Row struct {
	ProductID    string `json:"product_id" yaml:"product_id"`
	ProductTitle string `json:"product_title" yaml:"product_title"`
	VariantID    string `json:"variant_id" yaml:"variant_id"`
	StoreID      string `json:"store_id" yaml:"store_id"`
	Address      string `json:"address" yaml:"address"`
	PostalCode   string `json:"postal_code" yaml:"postal_code"`
	Status       string `json:"status" yaml:"status"`
	CheckedAt    string `json:"checked_at" yaml:"checked_at"`
}

// Rows flattens a report into export rows in report order.
func Rows(report *models.Report) []Row {
	rows := make([]Row, 0, len(report.Entries))
	for _, e := range report.Entries {
		rows = append(rows, Row{
			ProductID:    report.Product.ID,
			ProductTitle: report.Product.Title,
			VariantID:    report.Variant.ID,
			StoreID:      e.Store.ID,
			Address:      e.Store.Address,
			PostalCode:   e.Store.PostalCode,
			Status:       e.Status.String(),
			CheckedAt:    report.CheckedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// ValidateFormat reports whether format names a supported writer. It touches
// no files.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case "csv", "json", "yaml", "yml":
		return nil
	default:
		return eris.Errorf("unsupported format: %s", format)
	}
}

// NewWriter returns a writer for format (csv, json or yaml).
func NewWriter(format, filename string) (Writer, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "csv":
		return NewCSVWriter(filename)
	case "json":
		return NewJSONWriter(filename)
	default:
		return NewYAMLWriter(filename)
	}
}

// Export writes report to filename and checks the result is not empty.
func Export(format, filename string, report *models.Report) (err error) {
	writer, err := NewWriter(format, filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := writer.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := writer.Write(report); err != nil {
		return err
	}
	return writer.Validate()
}

// CSVWriter writes report rows to CSV.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter initialises a CSV writer and writes the header row.
func NewCSVWriter(filename string) (*CSVWriter, error) {
	f, err := createFile(filename)
	if err != nil {
		return nil, err
	}

	writer := csv.NewWriter(f)
	header := []string{"product_id", "product_title", "variant_id", "store_id", "address", "postal_code", "status", "checked_at"}
	if err := writer.Write(header); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "write csv header")
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return nil, eris.Wrap(err, "flush csv header")
	}

	return &CSVWriter{
		file:   f,
		writer: writer,
	}, nil
}

// Write appends the report's rows.
func (cw *CSVWriter) Write(report *models.Report) error {
	for _, r := range Rows(report) {
		record := []string{r.ProductID, r.ProductTitle, r.VariantID, r.StoreID, r.Address, r.PostalCode, r.Status, r.CheckedAt}
		if err := cw.writer.Write(record); err != nil {
			return eris.Wrap(err, "write csv record")
		}
	}
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return eris.Wrap(err, "flush csv records")
	}
	return nil
}

// Close flushes and closes the file handle.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	if err := cw.writer.Error(); err != nil {
		return eris.Wrap(err, "flush csv writer")
	}
	return cw.file.Close()
}

// Validate ensures the file has content.
func (cw *CSVWriter) Validate() error {
	return validateNonEmpty(cw.file, "csv")
}

// JSONWriter writes newline-delimited JSON rows.
type JSONWriter struct {
	file    *os.File
	writer  *bufio.Writer
	encoder *json.Encoder
}

// NewJSONWriter initialises the JSON writer.
func NewJSONWriter(filename string) (*JSONWriter, error) {
	f, err := createFile(filename)
	if err != nil {
		return nil, err
	}

	buffer := bufio.NewWriter(f)
	return &JSONWriter{
		file:    f,
		writer:  buffer,
		encoder: json.NewEncoder(buffer),
	}, nil
}

// Write appends the report's rows in JSONL format.
func (jw *JSONWriter) Write(report *models.Report) error {
	for _, r := range Rows(report) {
		if err := jw.encoder.Encode(r); err != nil {
			return eris.Wrap(err, "encode json record")
		}
	}
	if err := jw.writer.Flush(); err != nil {
		return eris.Wrap(err, "flush json writer")
	}
	return nil
}

// Close flushes buffers and closes the underlying file.
func (jw *JSONWriter) Close() error {
	if err := jw.writer.Flush(); err != nil {
		return eris.Wrap(err, "flush json writer")
	}
	return jw.file.Close()
}

// Validate ensures the JSON file has data.
func (jw *JSONWriter) Validate() error {
	return validateNonEmpty(jw.file, "json")
}

// YAMLWriter writes one YAML document per report.
type YAMLWriter struct {
	file    *os.File
	encoder *yaml.Encoder
}

// NewYAMLWriter initialises the YAML writer.
func NewYAMLWriter(filename string) (*YAMLWriter, error) {
	f, err := createFile(filename)
	if err != nil {
		return nil, err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return &YAMLWriter{file: f, encoder: enc}, nil
}

// Write appends the report's rows as a YAML list document.
func (yw *YAMLWriter) Write(report *models.Report) error {
	if err := yw.encoder.Encode(Rows(report)); err != nil {
		return eris.Wrap(err, "encode yaml document")
	}
	return nil
}

// Close finishes the YAML stream and closes the file.
func (yw *YAMLWriter) Close() error {
	if err := yw.encoder.Close(); err != nil {
		return eris.Wrap(err, "close yaml encoder")
	}
	return yw.file.Close()
}

// Validate ensures the YAML file has data.
func (yw *YAMLWriter) Validate() error {
	return validateNonEmpty(yw.file, "yaml")
}

func createFile(filename string) (*os.File, error) {
	if err := ensureDir(filename); err != nil {
		return nil, err
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, eris.Wrapf(err, "create %s", filename)
	}
	return f, nil
}

func validateNonEmpty(f *os.File, kind string) error {
	info, err := f.Stat()
	if err != nil {
		return eris.Wrapf(err, "stat %s file", kind)
	}
	if info.Size() <= 0 {
		return eris.Errorf("%s file is empty", kind)
	}
	return nil
}

func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create directory %q", dir)
	}
	return nil
}

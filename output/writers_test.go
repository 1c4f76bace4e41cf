package output

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aluiziolira/go-stock-locator/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Product: models.Product{ID: "100200", Title: "Espresso Machine X"},
		Variant: models.Variant{ID: "100201", Title: "black"},
		Entries: []models.ReportEntry{
			{Store: models.Store{ID: "A", Address: "Hauptstraße 1, 1010 Wien", PostalCode: "1010"}, Status: models.StatusAvailable},
			{Store: models.Store{ID: "B", Address: "Ringweg 5, 1020 Wien", PostalCode: "1020"}, Status: models.StatusLowStock},
		},
		InStock:   2,
		CheckedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestCSVWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")

	writer, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.Write(sampleReport()))
	require.NoError(t, writer.Validate())
	require.NoError(t, writer.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "product_id", records[0][0])
	assert.Equal(t, []string{"100200", "Espresso Machine X", "100201", "B", "Ringweg 5, 1020 Wien", "1020", "low_stock", "2026-10-15T12:00:00Z"}, records[2])
}

func TestJSONWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")

	writer, err := NewJSONWriter(path)
	require.NoError(t, err)
	require.NoError(t, writer.Write(sampleReport()))
	require.NoError(t, writer.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var rows []Row
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Row
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		rows = append(rows, r)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].StoreID)
	assert.Equal(t, "available", rows[0].Status)
}

func TestYAMLWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")

	writer, err := NewWriter("yaml", path)
	require.NoError(t, err)
	require.NoError(t, writer.Write(sampleReport()))
	require.NoError(t, writer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []Row
	require.NoError(t, yaml.Unmarshal(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "100201", rows[1].VariantID)
}

func TestNewWriterRejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter("xml", filepath.Join(t.TempDir(), "report.xml"))
	assert.Error(t, err)
}

func TestValidateEmptyJSON(t *testing.T) {
	writer, err := NewJSONWriter(filepath.Join(t.TempDir(), "empty.jsonl"))
	require.NoError(t, err)
	defer writer.Close()
	assert.Error(t, writer.Validate())
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"csv", "json", "yaml", "YML"} {
		assert.NoError(t, ValidateFormat(format), format)
	}
	assert.Error(t, ValidateFormat("dual"))
	assert.Error(t, ValidateFormat(""))
}

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	require.NoError(t, Export("csv", path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestExportEmptyReportFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.jsonl")
	empty := &models.Report{Entries: []models.ReportEntry{}}

	err := Export("json", path, empty)
	assert.Error(t, err)
}

func TestExportUnknownFormatCreatesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xml")

	require.Error(t, Export("xml", path, sampleReport()))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resonance/internal/domain"
)

const reportBaseName = "Resonance_Food_Report"

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX, "excel", "spreadsheet":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q (want pdf or xlsx)", s)
}

// Filename names an export for a patient and test date.
func Filename(patientName string, testDate time.Time, format Format) string {
	var parts []string
	if name := strings.Join(strings.Fields(patientName), "_"); name != "" {
		parts = append(parts, sanitizeFilename(name))
	}
	if !testDate.IsZero() {
		parts = append(parts, testDate.Format("20060102"))
	}
	parts = append(parts, reportBaseName)
	return strings.Join(parts, "_") + "." + string(format)
}

// WriteFile stores export bytes under outputDir and returns the full path.
func WriteFile(outputDir, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, sanitizeFilename(filename))
	return path, os.WriteFile(path, content, 0644)
}

func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return replacer.Replace(s)
}

// Render encodes rows in format. Header is used by PDF only.
func Render(format Format, h Header, rows []domain.Row) ([]byte, error) {
	switch format {
	case FormatPDF:
		return PDF(h, rows)
	case FormatXLSX:
		return XLSX(rows)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

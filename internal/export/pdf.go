package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"resonance/internal/domain"
)

const testDateLayout = "2006-01-02"

// Header is the identity block printed at the top of a PDF report.
type Header struct {
	Clinic  string
	Title   string
	Patient domain.Patient
	Summary string // optional narrative paragraph
}

// PDF renders rows as a one-line-per-item report.
func PDF(h Header, rows []domain.Row) ([]byte, error) {
	if !h.Patient.HasIdentity() {
		return nil, fmt.Errorf("pdf: %w", domain.ErrMissingPatientIdentity)
	}

	if err := checkEncodable(h, rows); err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(h.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(reportHeading(h)), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.Ln(5)
	pdf.CellFormat(0, 10, tr("Patient Name: "+h.Patient.Name), "", 1, "", false, 0, "")
	if email := strings.TrimSpace(h.Patient.Email); email != "" {
		pdf.CellFormat(0, 10, tr("Email: "+email), "", 1, "", false, 0, "")
	}
	if !h.Patient.TestDate.IsZero() {
		pdf.CellFormat(0, 10, tr("Test Date: "+h.Patient.TestDate.Format(testDateLayout)), "", 1, "", false, 0, "")
	}

	if summary := strings.TrimSpace(h.Summary); summary != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "I", 11)
		pdf.MultiCell(0, 6, tr(summary), "", "L", false)
		pdf.SetFont("Arial", "", 12)
	}

	pdf.Ln(5)
	for _, row := range rows {
		pdf.CellFormat(0, 10, tr(RowLine(row)), "", 1, "", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: pdf: %v", domain.ErrExportEncoding, err)
	}
	return buf.Bytes(), nil
}

// checkEncodable rejects text the core PDF fonts cannot print. Those fonts are
// cp1252, and the translator would otherwise print unknown runes as dots.
func checkEncodable(h Header, rows []domain.Row) error {
	fields := []struct{ name, text string }{
		{"heading", reportHeading(h)},
		{"patient name", h.Patient.Name},
		{"email", h.Patient.Email},
		{"summary", h.Summary},
	}
	for _, r := range rows {
		fields = append(fields, struct{ name, text string }{"row " + r.Item, RowLine(r)})
	}
	for _, f := range fields {
		for _, r := range f.text {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return fmt.Errorf("%w: pdf: %s contains %q, which cp1252 cannot encode", domain.ErrExportEncoding, f.name, r)
			}
		}
	}
	return nil
}

func reportHeading(h Header) string {
	title := strings.TrimSpace(h.Title)
	if title == "" {
		title = "Personalized Food Resonance Report"
	}
	if clinic := strings.TrimSpace(h.Clinic); clinic != "" {
		return clinic + " - " + title
	}
	return title
}

// RowLine is the single-line description of a row used in PDF and text reports.
func RowLine(r domain.Row) string {
	return fmt.Sprintf("%s (%s) - Score: %d - Resonance: %s", r.Item, r.Category, r.Score, r.Resonance)
}

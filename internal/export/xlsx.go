package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"resonance/internal/domain"
)

const SheetName = "Resonance"

// Columns is the header row of spreadsheet and table exports.
var Columns = []string{
	"Patient Name", "Email", "Test Date",
	"Item", "Category", "Super Category",
	"Dosha Compatibility", "Metabolic Typing Compatibility", "Glandular Compatibility",
	"Score", "Resonance Category",
}

func rowValues(r domain.Row) []interface{} {
	testDate := ""
	if !r.TestDate.IsZero() {
		testDate = r.TestDate.Format(testDateLayout)
	}
	return []interface{}{
		r.PatientName, r.PatientEmail, testDate,
		r.Item, r.Category, r.SuperCategory,
		r.DoshaCompatibility, r.MetabolicTypingCompatibility, r.GlandularCompatibility,
		r.Score, string(r.Resonance),
	}
}

// XLSX writes rows into a single-sheet workbook.
func XLSX(rows []domain.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", domain.ErrExportEncoding, err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("%w: xlsx header: %v", domain.ErrExportEncoding, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("%w: xlsx: %v", domain.ErrExportEncoding, err)
		}
		values := rowValues(r)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("%w: xlsx row %d: %v", domain.ErrExportEncoding, i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", domain.ErrExportEncoding, err)
	}
	return buf.Bytes(), nil
}

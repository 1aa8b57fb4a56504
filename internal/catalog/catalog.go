// Package catalog loads the ordered list of food items reviewed in a session.
package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"resonance/internal/domain"
)

const (
	HeaderItem          = "Item"
	HeaderCategory      = "Category"
	HeaderSuperCategory = "Super Category"
	HeaderDosha         = "Dosha Compatibility"
	HeaderMetabolic     = "Metabolic Typing Compatibility"
	HeaderGlandular     = "Glandular Compatibility"
)

// Headers lists the required columns in ItemRecord field order.
var Headers = []string{HeaderItem, HeaderCategory, HeaderSuperCategory, HeaderDosha, HeaderMetabolic, HeaderGlandular}

// Load reads the catalog at path. .xlsx workbooks use sheet (or the first sheet
// when sheet is empty); .csv files are read as a single table.
func Load(path, sheet string) ([]domain.ItemRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, sheet)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCatalogLoad, path, err)
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", domain.ErrCatalogLoad, filepath.Ext(path))
	}
}

func loadWorkbook(path, sheet string) ([]domain.ItemRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrCatalogLoad, path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", domain.ErrCatalogLoad, path)
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", domain.ErrCatalogLoad, sheet, err)
	}
	return parseRows(rows)
}

// ReadCSV parses a catalog table with a header row.
func ReadCSV(r io.Reader) ([]domain.ItemRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", domain.ErrCatalogLoad, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]domain.ItemRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: missing header row", domain.ErrCatalogLoad)
	}
	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []string, header string) string {
		i := index[header]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var items []domain.ItemRecord
	for n, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec := domain.ItemRecord{
			Item:                         cell(row, HeaderItem),
			Category:                     cell(row, HeaderCategory),
			SuperCategory:                cell(row, HeaderSuperCategory),
			DoshaCompatibility:           cell(row, HeaderDosha),
			MetabolicTypingCompatibility: cell(row, HeaderMetabolic),
			GlandularCompatibility:       cell(row, HeaderGlandular),
		}
		if rec.Item == "" {
			return nil, fmt.Errorf("%w: row %d has no item name", domain.ErrCatalogLoad, n+2)
		}
		items = append(items, rec)
	}
	return items, nil
}

func headerIndex(header []string) (map[string]int, error) {
	found := make(map[string]int, len(Headers))
	for i, h := range header {
		key := normalizeHeader(h)
		for _, want := range Headers {
			if key == normalizeHeader(want) {
				if _, dup := found[want]; !dup {
					found[want] = i
				}
			}
		}
	}
	var missing []string
	for _, want := range Headers {
		if _, ok := found[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrCatalogLoad, strings.Join(missing, ", "))
	}
	return found, nil
}

// normalizeHeader folds case and compatibility forms so "DOSHA  compatibility"
// and full-width variants match the canonical header.
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(norm.NFKC.String(s))), " ")
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Cache loads the catalog once per process and hands out the same slice to
// every session. Callers must not modify it.
type Cache struct {
	path  string
	sheet string

	once  sync.Once
	items []domain.ItemRecord
	err   error
}

func NewCache(path, sheet string) *Cache {
	return &Cache{path: path, sheet: sheet}
}

func (c *Cache) Items() ([]domain.ItemRecord, error) {
	c.once.Do(func() {
		c.items, c.err = Load(c.path, c.sheet)
		if c.err == nil && len(c.items) == 0 {
			c.err = domain.ErrEmptyCatalog
		}
	})
	return c.items, c.err
}

package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"resonance/internal/domain"
)

const sampleCSV = `Item,Category,Super Category,Dosha Compatibility,Metabolic Typing Compatibility,Glandular Compatibility
Basmati Rice,Grains,Plant,"Pitta, Tridoshic",Slow Oxidizer,Thyroid
Salmon,Fish,Animal,Vata,Fast Oxidizer,Adrenal
,,,,,
`

func TestReadCSV(t *testing.T) {
	items, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Basmati Rice", items[0].Item)
	assert.Equal(t, "Pitta, Tridoshic", items[0].DoshaCompatibility)
	assert.Equal(t, "Fast Oxidizer", items[1].MetabolicTypingCompatibility)
	assert.Equal(t, "Adrenal", items[1].GlandularCompatibility)
}

func TestReadCSVHeaderIsCaseAndSpaceInsensitive(t *testing.T) {
	in := "glandular compatibility, ITEM,category,super  category,dosha compatibility,metabolic typing compatibility\nPancreas,Oats,Grains,Plant,Kapha,Mixed Oxidizer\n"
	items, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oats", items[0].Item)
	assert.Equal(t, "Pancreas", items[0].GlandularCompatibility)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Item,Category\nRice,Grains\n"))
	require.ErrorIs(t, err, domain.ErrCatalogLoad)
	assert.Contains(t, err.Error(), "Super Category")
}

func TestReadCSVRowWithoutItem(t *testing.T) {
	in := strings.Join(Headers, ",") + "\n,Grains,Plant,Vata,Slow Oxidizer,Thyroid\n"
	_, err := ReadCSV(strings.NewReader(in))
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestLoadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	f := excelize.NewFile()
	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Ghee", "Fats", "Dairy", "Vata, Pitta", "Slow Oxidizer", "Adrenal"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	items, err := Load(path, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemRecord{
		Item:                         "Ghee",
		Category:                     "Fats",
		SuperCategory:                "Dairy",
		DoshaCompatibility:           "Vata, Pitta",
		MetabolicTypingCompatibility: "Slow Oxidizer",
		GlandularCompatibility:       "Adrenal",
	}, items[0])

	_, err = Load(path, "NoSuchSheet")
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.xlsx"), "")
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	_, err = Load(filepath.Join(dir, "missing.csv"), "")
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)

	txt := filepath.Join(dir, "catalog.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))
	_, err = Load(txt, "")
	assert.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestCacheLoadsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	c := NewCache(path, "")
	first, err := c.Items()
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	second, err := c.Items()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCacheEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(Headers, ",")+"\n"), 0o644))

	_, err := NewCache(path, "").Items()
	assert.ErrorIs(t, err, domain.ErrEmptyCatalog)
}

func TestNormalizeHeaderFoldsWidthAndCase(t *testing.T) {
	assert.Equal(t, "dosha compatibility", normalizeHeader("  DOSHA   Compatibility "))
	assert.Equal(t, "item", normalizeHeader("ＩＴＥＭ"))
}

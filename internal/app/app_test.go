package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resonance/internal/domain"
	"resonance/internal/storage/sqlite"
)

const catalogCSV = `Item,Category,Super Category,Dosha Compatibility,Metabolic Typing Compatibility,Glandular Compatibility
Basmati Rice,Grains,Carbohydrates,"Pitta, Tridoshic",Slow Oxidizer,Pituitary
Salmon,Fish,Proteins,Vata,Fast Oxidizer,Thyroid
`

type env struct {
	dir    string
	config string
	db     string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	dir := t.TempDir()
	e := env{
		dir:    dir,
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "history.db"),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.csv"), []byte(catalogCSV), 0o644))
	cfg := strings.Join([]string{
		"catalog_path: " + filepath.Join(dir, "catalog.csv"),
		"export_dir: " + filepath.Join(dir, "exports"),
		"db_path: " + e.db,
		"log_file: " + filepath.Join(dir, "resonance.log"),
		"timezone: UTC",
		"clinic_name: Test Clinic",
	}, "\n")
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e env) seed(t *testing.T) domain.HistoryEntry {
	t.Helper()
	db, err := sqlite.InitDB(e.db)
	require.NoError(t, err)
	defer db.Close()

	testDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	entry := domain.HistoryEntry{
		ID:          "7f1c2a4e-1111-4222-8333-944455556666",
		CommittedAt: time.Now().UTC().Add(-time.Hour).Truncate(time.Second),
		Patient:     domain.Patient{Name: "Jane Roe", TestDate: testDate},
		Filters:     map[string]string{"dosha": "Vata"},
		Rows: []domain.Row{
			{Position: 1, PatientName: "Jane Roe", TestDate: testDate, Item: "Salmon", Category: "Fish", DoshaCompatibility: "Vata", Score: 85, Resonance: domain.CategoryHighlyCompatible},
		},
	}
	require.NoError(t, sqlite.InsertHistoryEntry(db, "session-1", entry))
	return entry
}

func TestCatalogCommand(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "catalog")
	require.NoError(t, err)
	assert.Contains(t, out, "Basmati Rice")
	assert.Contains(t, out, "Salmon")
	assert.Contains(t, out, "2 item(s)")
}

func TestCatalogCommandMissingFile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.Remove(filepath.Join(e.dir, "catalog.csv")))
	_, err := e.run(t, "catalog")
	require.ErrorIs(t, err, domain.ErrCatalogLoad)
}

func TestHistoryCommandEmpty(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history yet.")
}

func TestHistoryCommandListsAndShows(t *testing.T) {
	e := newEnv(t)
	entry := e.seed(t)

	out, err := e.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, entry.ID)
	assert.Contains(t, out, "Jane Roe")
	assert.Contains(t, out, "dosha=Vata")

	out, err = e.run(t, "history", entry.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Salmon")
	assert.Contains(t, out, string(domain.CategoryHighlyCompatible))
}

func TestExportCommandWritesFile(t *testing.T) {
	e := newEnv(t)
	entry := e.seed(t)

	out, err := e.run(t, "export", entry.ID, "--format", "xlsx")
	require.NoError(t, err)
	path := strings.TrimSpace(out)
	assert.Equal(t, "Jane_Roe_20260302_Resonance_Food_Report.xlsx", filepath.Base(path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestExportCommandRejectsUnknownFormat(t *testing.T) {
	e := newEnv(t)
	entry := e.seed(t)
	_, err := e.run(t, "export", entry.ID, "--format", "docx")
	require.Error(t, err)
}

func TestExportCommandSlackNeedsConfig(t *testing.T) {
	e := newEnv(t)
	entry := e.seed(t)
	_, err := e.run(t, "export", entry.ID, "--slack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack_bot_token")
}

func TestDigestDryRun(t *testing.T) {
	e := newEnv(t)
	e.seed(t)

	out, err := e.run(t, "digest", "--dry-run", "--since", "24h")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Roe: 1 item(s)")
}

func TestHistoryDisabled(t *testing.T) {
	e := newEnv(t)
	t.Setenv("HISTORY_PERSIST", "false")
	_, err := e.run(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestInvalidConfigFails(t *testing.T) {
	e := newEnv(t)
	t.Setenv("LOG_LEVEL", "loud")
	_, err := e.run(t, "catalog")
	require.Error(t, err)
}

func TestReviewFlagsPatient(t *testing.T) {
	f := &reviewFlags{patientName: "Jane Roe", testDate: "2026-03-02"}
	p, err := f.patient(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), p.TestDate)

	f.testDate = "03/02/2026"
	_, err = f.patient(time.UTC)
	require.Error(t, err)
}

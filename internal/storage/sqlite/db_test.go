package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"resonance/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "resonance-test.db")
	db, err := InitDB(dbPath)
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleEntry(id string, at time.Time) domain.HistoryEntry {
	testDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return domain.HistoryEntry{
		ID:          id,
		CommittedAt: at,
		Patient:     domain.Patient{Name: "Jane Roe", Email: "jane@example.com", TestDate: testDate},
		Filters:     map[string]string{"dosha": "Pitta"},
		Rows: []domain.Row{
			{Position: 0, PatientName: "Jane Roe", TestDate: testDate, Item: "Basmati Rice", DoshaCompatibility: "Pitta, Tridoshic", Score: 15, Resonance: domain.CategoryHarmful},
			{Position: 2, PatientName: "Jane Roe", TestDate: testDate, Item: "Spinach", DoshaCompatibility: "Kapha, Pitta", Score: 95, Resonance: domain.CategoryNecessary},
		},
	}
}

func TestHistoryInsertAndGet(t *testing.T) {
	db := newTestDB(t)
	at := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	entry := sampleEntry("h-1", at)

	if err := InsertHistoryEntry(db, "session-a", entry); err != nil {
		t.Fatalf("InsertHistoryEntry failed: %v", err)
	}

	got, err := GetHistoryEntry(db, "h-1")
	if err != nil {
		t.Fatalf("GetHistoryEntry failed: %v", err)
	}
	if diff := cmp.Diff(entry.Rows, got.Rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if got.Filters["dosha"] != "Pitta" {
		t.Fatalf("unexpected filters: %v", got.Filters)
	}
	if !got.CommittedAt.Equal(at) {
		t.Fatalf("committed_at = %s, want %s", got.CommittedAt, at)
	}
	if got.Patient.Email != "jane@example.com" || !got.Patient.TestDate.Equal(entry.Patient.TestDate) {
		t.Fatalf("unexpected patient: %+v", got.Patient)
	}
}

func TestHistoryDuplicateIDRejected(t *testing.T) {
	db := newTestDB(t)
	entry := sampleEntry("h-1", time.Now().UTC())
	if err := InsertHistoryEntry(db, "s", entry); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if err := InsertHistoryEntry(db, "s", entry); err == nil {
		t.Fatalf("expected duplicate id to be rejected")
	}
}

func TestHistoryGetMissing(t *testing.T) {
	db := newTestDB(t)
	_, err := GetHistoryEntry(db, "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestHistoryListAndSince(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := InsertHistoryEntry(db, "s", sampleEntry(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("insert %s failed: %v", id, err)
		}
	}

	list, err := ListHistoryEntries(db, 2)
	if err != nil {
		t.Fatalf("ListHistoryEntries failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c" || list[1].ID != "b" {
		t.Fatalf("unexpected list order: %+v", list)
	}

	since, err := GetHistorySince(db, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetHistorySince failed: %v", err)
	}
	if len(since) != 2 || since[0].ID != "b" || since[1].ID != "c" {
		t.Fatalf("unexpected since result: %+v", since)
	}
}

func TestHistoryEmptyRows(t *testing.T) {
	db := newTestDB(t)
	entry := sampleEntry("empty", time.Now().UTC())
	entry.Rows = nil
	entry.Filters = nil
	if err := InsertHistoryEntry(db, "s", entry); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	got, err := GetHistoryEntry(db, "empty")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Rows) != 0 || got.Filters == nil {
		t.Fatalf("unexpected empty entry: %+v", got)
	}
}

func TestHistoryTestDateKeepsCalendarDay(t *testing.T) {
	db := newTestDB(t)
	zones := []*time.Location{
		time.FixedZone("UTC+2", 2*60*60),
		time.FixedZone("UTC+13", 13*60*60),
		time.FixedZone("UTC-5", -5*60*60),
	}
	for i, loc := range zones {
		entry := sampleEntry(fmt.Sprintf("zone-%d", i), time.Now().UTC())
		entry.Patient.TestDate = time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
		if err := InsertHistoryEntry(db, "s", entry); err != nil {
			t.Fatalf("insert %s failed: %v", loc, err)
		}
		got, err := GetHistoryEntry(db, entry.ID)
		if err != nil {
			t.Fatalf("get %s failed: %v", loc, err)
		}
		if day := got.Patient.TestDate.Format("2006-01-02"); day != "2026-03-02" {
			t.Fatalf("%s: test date reloaded as %s, want 2026-03-02", loc, day)
		}
	}
}

func TestHistoryZeroTestDate(t *testing.T) {
	db := newTestDB(t)
	entry := sampleEntry("no-date", time.Now().UTC())
	entry.Patient.TestDate = time.Time{}
	if err := InsertHistoryEntry(db, "s", entry); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	got, err := GetHistoryEntry(db, "no-date")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Patient.TestDate.IsZero() {
		t.Fatalf("test date = %s, want zero", got.Patient.TestDate)
	}
}

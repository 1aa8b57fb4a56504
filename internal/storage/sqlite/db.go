package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"resonance/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS history_entries (
		id            TEXT PRIMARY KEY,
		session_id    TEXT NOT NULL DEFAULT '',
		patient_name  TEXT NOT NULL,
		patient_email TEXT DEFAULT '',
		test_date     TEXT NOT NULL DEFAULT '',
		filters       TEXT NOT NULL DEFAULT '{}',
		rows          TEXT NOT NULL DEFAULT '[]',
		row_count     INTEGER NOT NULL DEFAULT 0,
		committed_at  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_history_committed_at ON history_entries(committed_at);
	CREATE INDEX IF NOT EXISTS idx_history_patient ON history_entries(patient_name);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// testDateLayout stores the test date as a calendar date so it reads back the
// same day whatever zone it was entered in.
const testDateLayout = "2006-01-02"

func formatTestDate(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(testDateLayout)
}

func parseTestDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(testDateLayout, s)
}

// InsertHistoryEntry persists a committed export. Entries are never updated.
func InsertHistoryEntry(db *sql.DB, sessionID string, entry domain.HistoryEntry) error {
	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	rows := entry.Rows
	if rows == nil {
		rows = []domain.Row{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO history_entries (id, session_id, patient_name, patient_email, test_date, filters, rows, row_count, committed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, sessionID, entry.Patient.Name, entry.Patient.Email, formatTestDate(entry.Patient.TestDate),
		string(filters), string(rowsJSON), len(entry.Rows), entry.CommittedAt.UTC(),
	)
	return err
}

const historyColumns = `id, patient_name, patient_email, test_date, filters, rows, committed_at`

func GetHistoryEntry(db *sql.DB, id string) (domain.HistoryEntry, error) {
	row := db.QueryRow(`SELECT `+historyColumns+` FROM history_entries WHERE id = ?`, id)
	return scanHistoryEntry(row)
}

// ListHistoryEntries returns the most recent entries first.
func ListHistoryEntries(db *sql.DB, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT `+historyColumns+` FROM history_entries ORDER BY committed_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryEntries(rows)
}

// GetHistorySince returns entries committed at or after since, oldest first.
func GetHistorySince(db *sql.DB, since time.Time) ([]domain.HistoryEntry, error) {
	rows, err := db.Query(
		`SELECT `+historyColumns+` FROM history_entries WHERE committed_at >= ? ORDER BY committed_at, id`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHistoryEntries(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHistoryEntry(s scanner) (domain.HistoryEntry, error) {
	var (
		entry    domain.HistoryEntry
		testDate string
		filters  string
		rowsJSON string
	)
	err := s.Scan(
		&entry.ID, &entry.Patient.Name, &entry.Patient.Email, &testDate,
		&filters, &rowsJSON, &entry.CommittedAt,
	)
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	entry.Patient.TestDate, err = parseTestDate(testDate)
	if err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("decode test date for %s: %w", entry.ID, err)
	}
	if err := json.Unmarshal([]byte(filters), &entry.Filters); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("decode filters for %s: %w", entry.ID, err)
	}
	if entry.Filters == nil {
		entry.Filters = map[string]string{}
	}
	if err := json.Unmarshal([]byte(rowsJSON), &entry.Rows); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("decode rows for %s: %w", entry.ID, err)
	}
	return entry, nil
}

func scanHistoryEntries(rows *sql.Rows) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

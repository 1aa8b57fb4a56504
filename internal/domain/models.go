package domain

import (
	"strings"
	"time"
)

// ItemRecord is one catalog row. Rows are identified by their position in the catalog.
type ItemRecord struct {
	Item                         string
	Category                     string
	SuperCategory                string
	DoshaCompatibility           string // may list several doshas, e.g. "Pitta, Tridoshic"
	MetabolicTypingCompatibility string
	GlandularCompatibility       string
}

type Patient struct {
	Name     string
	Email    string // optional
	TestDate time.Time
}

// HasIdentity reports whether the patient can be attached to judgments.
func (p Patient) HasIdentity() bool {
	return strings.TrimSpace(p.Name) != ""
}

// Judgment is the scored assessment of one catalog row. Patient and Record are
// copies taken at save time.
type Judgment struct {
	Position int
	Score    int
	Category Category
	Patient  Patient
	Record   ItemRecord
	SavedAt  time.Time
}

// Row is the flattened form of a Judgment handed to filters and exporters.
type Row struct {
	Position                     int       `json:"position"`
	PatientName                  string    `json:"patient_name"`
	PatientEmail                 string    `json:"patient_email,omitempty"`
	TestDate                     time.Time `json:"test_date"`
	Item                         string    `json:"item"`
	Category                     string    `json:"category"`
	SuperCategory                string    `json:"super_category"`
	DoshaCompatibility           string    `json:"dosha_compatibility"`
	MetabolicTypingCompatibility string    `json:"metabolic_typing_compatibility"`
	GlandularCompatibility       string    `json:"glandular_compatibility"`
	Score                        int       `json:"score"`
	Resonance                    Category  `json:"resonance"`
}

func (j Judgment) Row() Row {
	return Row{
		Position:                     j.Position,
		PatientName:                  j.Patient.Name,
		PatientEmail:                 j.Patient.Email,
		TestDate:                     j.Patient.TestDate,
		Item:                         j.Record.Item,
		Category:                     j.Record.Category,
		SuperCategory:                j.Record.SuperCategory,
		DoshaCompatibility:           j.Record.DoshaCompatibility,
		MetabolicTypingCompatibility: j.Record.MetabolicTypingCompatibility,
		GlandularCompatibility:       j.Record.GlandularCompatibility,
		Score:                        j.Score,
		Resonance:                    j.Category,
	}
}

// HistoryEntry is a committed, filtered export. Entries are never modified once appended.
type HistoryEntry struct {
	ID          string
	CommittedAt time.Time
	Patient     Patient
	Filters     map[string]string
	Rows        []Row
}

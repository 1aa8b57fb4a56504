// Package session holds the review state of one operator working through a
// catalog for one patient: cursor, saved judgments, active filters and the
// committed history. A Session shares nothing with other sessions except the
// read-only catalog slice it was created with.
package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"resonance/internal/domain"
)

type Session struct {
	ID string

	catalog []domain.ItemRecord
	cursor  *Cursor
	store   *Store
	history *History
	filters Filters
	patient domain.Patient
	now     func() time.Time
}

type Option func(*Session)

// WithClock replaces time.Now for save and commit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithPatient(p domain.Patient) Option {
	return func(s *Session) { s.patient = p }
}

func New(catalog []domain.ItemRecord, opts ...Option) (*Session, error) {
	if len(catalog) == 0 {
		return nil, domain.ErrEmptyCatalog
	}
	s := &Session{
		ID:      uuid.NewString(),
		catalog: catalog,
		cursor:  NewCursor(len(catalog)),
		store:   NewStore(),
		history: &History{},
		filters: NewFilters(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) Len() int {
	return len(s.catalog)
}

func (s *Session) Patient() domain.Patient {
	return s.patient
}

// SetPatient changes the identity attached to future saves. Judgments already
// saved keep the identity they were saved with.
func (s *Session) SetPatient(p domain.Patient) {
	s.patient = p
}

func (s *Session) Position() (int, error) {
	return s.cursor.Current()
}

func (s *Session) CurrentItem() (domain.ItemRecord, error) {
	pos, err := s.cursor.Current()
	if err != nil {
		return domain.ItemRecord{}, err
	}
	return s.catalog[pos], nil
}

func (s *Session) Advance() (atEnd bool) {
	return s.cursor.Advance()
}

func (s *Session) Retreat() {
	s.cursor.Retreat()
}

// Save records score for the item under the cursor. Nothing is stored when the
// patient has no name or the score is out of range.
func (s *Session) Save(score int) (domain.Judgment, error) {
	if !s.patient.HasIdentity() {
		return domain.Judgment{}, domain.ErrMissingPatientIdentity
	}
	category, err := domain.Classify(score)
	if err != nil {
		return domain.Judgment{}, err
	}
	pos, err := s.cursor.Current()
	if err != nil {
		return domain.Judgment{}, err
	}
	j := domain.Judgment{
		Position: pos,
		Score:    score,
		Category: category,
		Patient:  s.patient,
		Record:   s.catalog[pos],
		SavedAt:  s.now(),
	}
	s.store.Save(pos, j)
	return j, nil
}

func (s *Session) Get(position int) (domain.Judgment, bool) {
	return s.store.Get(position)
}

// Draft is the score to prefill when the cursor lands on a row: the saved score
// if the row was saved before, otherwise 0 with saved=false.
func (s *Session) Draft() (score int, saved bool) {
	pos, err := s.cursor.Current()
	if err != nil {
		return 0, false
	}
	if j, ok := s.store.Get(pos); ok {
		return j.Score, true
	}
	return 0, false
}

func (s *Session) Saved() int {
	return s.store.Len()
}

func (s *Session) Rows() []domain.Row {
	return s.store.Rows()
}

func (s *Session) SetFilter(column Column, value string) error {
	return s.filters.Set(column, value)
}

// Filters returns a copy of the active filters; change them with SetFilter.
func (s *Session) Filters() Filters {
	return s.filters.clone()
}

// Filtered returns the saved rows that pass the active filters, in position order.
func (s *Session) Filtered() []domain.Row {
	return s.filters.Apply(s.store.Rows())
}

// Commit appends the current filtered view to the history. The store and
// cursor are left untouched.
func (s *Session) Commit() (domain.HistoryEntry, error) {
	if !s.patient.HasIdentity() {
		return domain.HistoryEntry{}, fmt.Errorf("commit: %w", domain.ErrMissingPatientIdentity)
	}
	entry := domain.HistoryEntry{
		ID:          uuid.NewString(),
		CommittedAt: s.now(),
		Patient:     s.patient,
		Filters:     s.filters.Map(),
		Rows:        s.Filtered(),
	}
	s.history.Append(entry)
	return entry, nil
}

func (s *Session) History() []domain.HistoryEntry {
	return s.history.Entries()
}

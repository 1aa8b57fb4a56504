package session

import (
	"sort"

	"resonance/internal/domain"
)

// Store maps catalog positions to saved judgments.
type Store struct {
	judgments map[int]domain.Judgment
}

func NewStore() *Store {
	return &Store{judgments: make(map[int]domain.Judgment)}
}

// Save overwrites any judgment already stored at position.
func (s *Store) Save(position int, j domain.Judgment) {
	j.Position = position
	s.judgments[position] = j
}

func (s *Store) Get(position int) (domain.Judgment, bool) {
	j, ok := s.judgments[position]
	return j, ok
}

func (s *Store) Len() int {
	return len(s.judgments)
}

// Rows flattens the stored judgments in ascending position order.
func (s *Store) Rows() []domain.Row {
	positions := make([]int, 0, len(s.judgments))
	for p := range s.judgments {
		positions = append(positions, p)
	}
	sort.Ints(positions)
	rows := make([]domain.Row, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, s.judgments[p].Row())
	}
	return rows
}

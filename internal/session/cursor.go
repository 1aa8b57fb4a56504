package session

import "resonance/internal/domain"

// Cursor is the review position within a catalog of fixed length.
// It never leaves [0, length-1] and never wraps.
type Cursor struct {
	index  int
	length int
}

func NewCursor(length int) *Cursor {
	return &Cursor{length: length}
}

func (c *Cursor) Current() (int, error) {
	if c.length == 0 {
		return 0, domain.ErrEmptyCatalog
	}
	return c.index, nil
}

// Advance moves forward one row. At the last row it leaves the index alone and
// returns atEnd=true.
func (c *Cursor) Advance() (atEnd bool) {
	if c.index >= c.length-1 {
		return true
	}
	c.index++
	return false
}

// Retreat moves back one row; it is a no-op at position 0.
func (c *Cursor) Retreat() {
	if c.index > 0 {
		c.index--
	}
}

func (c *Cursor) Last() int {
	if c.length == 0 {
		return 0
	}
	return c.length - 1
}

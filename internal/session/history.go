package session

import "resonance/internal/domain"

// History is the append-only list of committed exports for one session.
type History struct {
	entries []domain.HistoryEntry
}

func (h *History) Append(entry domain.HistoryEntry) {
	h.entries = append(h.entries, cloneEntry(entry))
}

func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns copies, so callers cannot reach into committed snapshots.
func (h *History) Entries() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(h.entries))
	for i, e := range h.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

func cloneEntry(e domain.HistoryEntry) domain.HistoryEntry {
	rows := make([]domain.Row, len(e.Rows))
	copy(rows, e.Rows)
	filters := make(map[string]string, len(e.Filters))
	for k, v := range e.Filters {
		filters[k] = v
	}
	e.Rows = rows
	e.Filters = filters
	return e
}

package session

import (
	"fmt"
	"sort"
	"strings"

	"resonance/internal/domain"
)

type Column string

const (
	ColumnDosha         Column = "dosha"
	ColumnMetabolic     Column = "metabolic"
	ColumnGlandular     Column = "glandular"
	ColumnCategory      Column = "category"
	ColumnSuperCategory Column = "super_category"
	ColumnResonance     Column = "resonance"
)

// FilterAll is the value that removes the constraint on a column.
const FilterAll = "All"

var (
	DoshaOptions     = []string{FilterAll, "Vata", "Pitta", "Kapha", "Tridoshic"}
	MetabolicOptions = []string{FilterAll, "Fast Oxidizer", "Slow Oxidizer", "Mixed Oxidizer"}
)

// Options lists the values offered for column: fixed lists for dosha,
// metabolic type and resonance, otherwise the distinct values present in rows.
func Options(column Column, rows []domain.Row) []string {
	switch column {
	case ColumnDosha:
		return DoshaOptions
	case ColumnMetabolic:
		return MetabolicOptions
	case ColumnResonance:
		out := []string{FilterAll}
		for _, c := range domain.Categories() {
			out = append(out, string(c))
		}
		return out
	}
	spec, ok := columns[column]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var values []string
	for _, r := range rows {
		v := spec.value(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return append([]string{FilterAll}, values...)
}

type columnSpec struct {
	value     func(domain.Row) string
	substring bool
}

var columns = map[Column]columnSpec{
	// An item may list several doshas in one field, so dosha matches by containment.
	ColumnDosha:         {value: func(r domain.Row) string { return r.DoshaCompatibility }, substring: true},
	ColumnMetabolic:     {value: func(r domain.Row) string { return r.MetabolicTypingCompatibility }},
	ColumnGlandular:     {value: func(r domain.Row) string { return r.GlandularCompatibility }},
	ColumnCategory:      {value: func(r domain.Row) string { return r.Category }},
	ColumnSuperCategory: {value: func(r domain.Row) string { return r.SuperCategory }},
	ColumnResonance:     {value: func(r domain.Row) string { return string(r.Resonance) }},
}

// Columns lists the filterable columns in a stable order.
func Columns() []Column {
	return []Column{ColumnDosha, ColumnMetabolic, ColumnGlandular, ColumnCategory, ColumnSuperCategory, ColumnResonance}
}

// Filters is a set of per-column constraints combined with AND.
type Filters struct {
	terms map[Column]string
}

func NewFilters() Filters {
	return Filters{terms: make(map[Column]string)}
}

func (f Filters) clone() Filters {
	out := NewFilters()
	for column, term := range f.terms {
		out.terms[column] = term
	}
	return out
}

// Set constrains column to value. "All" or an empty value clears the constraint.
func (f *Filters) Set(column Column, value string) error {
	if _, ok := columns[column]; !ok {
		return fmt.Errorf("unknown filter column %q", column)
	}
	if f.terms == nil {
		f.terms = make(map[Column]string)
	}
	value = strings.TrimSpace(value)
	if value == "" || value == FilterAll {
		delete(f.terms, column)
		return nil
	}
	f.terms[column] = value
	return nil
}

// Get returns the active term for column, or "All".
func (f Filters) Get(column Column) string {
	if v, ok := f.terms[column]; ok {
		return v
	}
	return FilterAll
}

func (f Filters) Match(row domain.Row) bool {
	for column, term := range f.terms {
		spec := columns[column]
		got := spec.value(row)
		if spec.substring {
			if !strings.Contains(got, term) {
				return false
			}
			continue
		}
		if got != term {
			return false
		}
	}
	return true
}

// Apply keeps the rows that match every active constraint, preserving order.
func (f Filters) Apply(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, row)
		}
	}
	return out
}

// Map returns the active constraints keyed by column name.
func (f Filters) Map() map[string]string {
	out := make(map[string]string, len(f.terms))
	for column, term := range f.terms {
		out[string(column)] = term
	}
	return out
}

// FiltersFromMap rebuilds Filters from Map output. Unknown columns are rejected.
func FiltersFromMap(m map[string]string) (Filters, error) {
	f := NewFilters()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := f.Set(Column(k), m[k]); err != nil {
			return Filters{}, err
		}
	}
	return f, nil
}

func (f Filters) String() string {
	if len(f.terms) == 0 {
		return FilterAll
	}
	var parts []string
	for _, column := range Columns() {
		if term, ok := f.terms[column]; ok {
			parts = append(parts, fmt.Sprintf("%s=%s", column, term))
		}
	}
	return strings.Join(parts, ", ")
}

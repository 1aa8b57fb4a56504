package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resonance/internal/domain"
)

func TestDoshaFilterMatchesSubstring(t *testing.T) {
	f := NewFilters()
	require.NoError(t, f.Set(ColumnDosha, "Pitta"))
	assert.True(t, f.Match(domain.Row{DoshaCompatibility: "Pitta, Tridoshic"}))
	assert.False(t, f.Match(domain.Row{DoshaCompatibility: "Vata"}))
}

func TestMetabolicFilterIsExact(t *testing.T) {
	f := NewFilters()
	require.NoError(t, f.Set(ColumnMetabolic, "Fast Oxidizer"))
	assert.False(t, f.Match(domain.Row{MetabolicTypingCompatibility: "Mixed Oxidizer"}))
	assert.False(t, f.Match(domain.Row{MetabolicTypingCompatibility: "Fast Oxidizer, Mixed"}))
	assert.True(t, f.Match(domain.Row{MetabolicTypingCompatibility: "Fast Oxidizer"}))
}

func TestFiltersComposeWithAnd(t *testing.T) {
	rows := []domain.Row{
		{Position: 0, DoshaCompatibility: "Pitta", Resonance: domain.CategoryNeutral},
		{Position: 1, DoshaCompatibility: "Pitta, Kapha", Resonance: domain.CategoryHarmful},
		{Position: 2, DoshaCompatibility: "Vata", Resonance: domain.CategoryNeutral},
		{Position: 3, DoshaCompatibility: "Kapha, Pitta", Resonance: domain.CategoryNeutral},
	}
	f := NewFilters()
	require.NoError(t, f.Set(ColumnDosha, "Pitta"))
	require.NoError(t, f.Set(ColumnResonance, string(domain.CategoryNeutral)))

	got := f.Apply(rows)
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Position)
	assert.Equal(t, 3, got[1].Position)
}

func TestZeroFiltersReturnAllRows(t *testing.T) {
	rows := []domain.Row{{Position: 4}, {Position: 7}}
	assert.Equal(t, rows, NewFilters().Apply(rows))

	var zero Filters
	assert.Equal(t, rows, zero.Apply(rows))
}

func TestFilterAllClearsConstraint(t *testing.T) {
	f := NewFilters()
	require.NoError(t, f.Set(ColumnGlandular, "Adrenal"))
	assert.Equal(t, "Adrenal", f.Get(ColumnGlandular))
	require.NoError(t, f.Set(ColumnGlandular, FilterAll))
	assert.Equal(t, FilterAll, f.Get(ColumnGlandular))
	assert.Empty(t, f.Map())
	assert.Equal(t, FilterAll, f.String())
}

func TestFilterUnknownColumn(t *testing.T) {
	f := NewFilters()
	assert.Error(t, f.Set(Column("colour"), "red"))
}

func TestFiltersFromMapRoundTrip(t *testing.T) {
	f := NewFilters()
	require.NoError(t, f.Set(ColumnDosha, "Vata"))
	require.NoError(t, f.Set(ColumnCategory, "Grains"))

	back, err := FiltersFromMap(f.Map())
	require.NoError(t, err)
	assert.Equal(t, "Vata", back.Get(ColumnDosha))
	assert.Equal(t, "Grains", back.Get(ColumnCategory))
	assert.Equal(t, "dosha=Vata, category=Grains", back.String())

	_, err = FiltersFromMap(map[string]string{"bogus": "x"})
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	assert.Equal(t, DoshaOptions, Options(ColumnDosha, nil))
	assert.Equal(t, MetabolicOptions, Options(ColumnMetabolic, nil))

	res := Options(ColumnResonance, nil)
	require.Len(t, res, 9)
	assert.Equal(t, FilterAll, res[0])
	assert.Equal(t, string(domain.CategoryNecessary), res[8])

	rows := []domain.Row{{Category: "Grains"}, {Category: "Fish"}, {Category: "Grains"}, {}}
	assert.Equal(t, []string{FilterAll, "Fish", "Grains"}, Options(ColumnCategory, rows))
	assert.Nil(t, Options(Column("bogus"), rows))
}

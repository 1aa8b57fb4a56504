package export

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"resonance/internal/domain"
)

var tableColumns = []string{"#", "Item", "Category", "Dosha", "Metabolic", "Glandular", "Score", "Resonance"}

var tableCell = lipgloss.NewStyle().Padding(0, 1)

// Table renders rows as an aligned plain-text table with one-based positions.
func Table(rows []domain.Row) string {
	if len(rows) == 0 {
		return "(no rows)\n"
	}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			strconv.Itoa(r.Position + 1),
			r.Item,
			r.Category,
			r.DoshaCompatibility,
			r.MetabolicTypingCompatibility,
			r.GlandularCompatibility,
			strconv.Itoa(r.Score),
			string(r.Resonance),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(func(row, col int) lipgloss.Style { return tableCell }).
		Headers(tableColumns...).
		Rows(cells...)
	return t.Render() + "\n"
}

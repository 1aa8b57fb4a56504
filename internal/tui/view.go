package tui

import (
	"fmt"
	"strings"

	"resonance/internal/domain"
	"resonance/internal/session"
)

var patientLabels = [...]string{"Name", "Email", "Test date"}

func (m Model) View() string {
	var b strings.Builder
	header := "Resonance Review"
	if m.clinic != "" {
		header = m.clinic + " - " + header
	}
	style := m.styles.Header
	if m.width > 0 {
		style = style.Width(m.width)
	}
	b.WriteString(style.Render(header))
	b.WriteString("\n\n")

	switch m.screen {
	case screenPatient:
		m.viewPatient(&b)
	case screenReview:
		m.viewReview(&b)
	case screenReport:
		m.viewReport(&b)
	case screenHistory:
		m.viewHistory(&b)
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(m.styles.Error.Render(m.status))
		} else {
			b.WriteString(m.styles.Success.Render(m.status))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewPatient(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("Patient"))
	b.WriteString("\n")
	for i, in := range m.patient {
		fmt.Fprintf(b, "%s %s\n", m.styles.Label.Render(fmt.Sprintf("%-10s", patientLabels[i])), in.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("tab: next field  enter: continue  esc: quit"))
	b.WriteString("\n")
}

func (m Model) viewReview(b *strings.Builder) {
	v := m.desk.View()
	fmt.Fprintf(b, "%s  %s\n",
		m.styles.Title.Render(fmt.Sprintf("Item %d of %d", v.Position+1, v.Total)),
		m.styles.Muted.Render(fmt.Sprintf("%d saved", v.Saved)))
	fmt.Fprintf(b, "%s\n", m.styles.Selected.Render(v.Item.Item))
	fields := []struct{ label, value string }{
		{"Category", v.Item.Category},
		{"Super category", v.Item.SuperCategory},
		{"Dosha", v.Item.DoshaCompatibility},
		{"Metabolic", v.Item.MetabolicTypingCompatibility},
		{"Glandular", v.Item.GlandularCompatibility},
	}
	for _, f := range fields {
		fmt.Fprintf(b, "  %s %s\n", m.styles.Label.Render(fmt.Sprintf("%-15s", f.label)), f.value)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "Score %s  %s\n", m.score.View(), m.preview())
	b.WriteString("\n")
	help := "enter: save  up/down: navigate  tab: report  ctrl+p: patient  esc: quit"
	if m.allDone {
		help = "all items processed  " + help
	}
	b.WriteString(m.styles.Muted.Render(help))
	b.WriteString("\n")
}

// preview shows the classification the typed score would get.
func (m Model) preview() string {
	raw := strings.TrimSpace(m.score.Value())
	if raw == "" {
		return ""
	}
	score, err := domain.ParseScore(raw)
	if err != nil {
		return m.styles.Error.Render("invalid")
	}
	cat, err := domain.Classify(score)
	if err != nil {
		return m.styles.Error.Render("invalid")
	}
	return m.styles.Category.Render(cat.String())
}

func (m Model) viewReport(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("Filters"))
	b.WriteString("\n")
	filters := m.desk.Filters()
	for i, column := range session.Columns() {
		line := fmt.Sprintf("%-16s %s", column, filters.Get(column))
		if i == m.filterRow {
			b.WriteString(m.styles.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.desk.Table())
	b.WriteString("\n\n")
	help := "up/down: column  left/right: value  p: PDF  x: XLSX  c: commit  h: history  tab: review"
	if m.busy {
		help = "working..."
	}
	b.WriteString(m.styles.Muted.Render(help))
	b.WriteString("\n")
}

func (m Model) viewHistory(b *strings.Builder) {
	b.WriteString(m.styles.Title.Render("History"))
	b.WriteString("\n")
	entries := m.desk.History()
	if len(entries) == 0 {
		b.WriteString(m.styles.Muted.Render("nothing committed yet"))
		b.WriteString("\n")
	}
	for i, e := range entries {
		fmt.Fprintf(b, "%d. %s  %s  %d row(s)  [%s]\n",
			i+1, e.CommittedAt.Format("2006-01-02 15:04"), e.Patient.Name, len(e.Rows), formatFilters(e.Filters))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("esc: back"))
	b.WriteString("\n")
}

func formatFilters(m map[string]string) string {
	f, err := session.FiltersFromMap(m)
	if err != nil {
		return ""
	}
	return f.String()
}

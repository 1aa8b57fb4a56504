// Package tui is the terminal front end. Every state change goes through
// desk.Desk; the model only holds input widgets and what to show next.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"resonance/internal/desk"
	"resonance/internal/domain"
	"resonance/internal/export"
	"resonance/internal/session"
)

type screen int

const (
	screenPatient screen = iota
	screenReview
	screenReport
	screenHistory
)

const dateLayout = "2006-01-02"

const (
	fieldName = iota
	fieldEmail
	fieldDate
)

type exportDoneMsg struct {
	result desk.ExportResult
	err    error
}

type Model struct {
	ctx    context.Context
	desk   *desk.Desk
	styles Styles
	clinic string
	now    func() time.Time

	screen  screen
	patient []textinput.Model
	focus   int
	score   textinput.Model

	filterRow int
	busy      bool
	allDone   bool
	status    string
	statusErr bool
	width     int
	err       error
}

func New(ctx context.Context, d *desk.Desk, clinic string) Model {
	name := textinput.New()
	name.Placeholder = "Full name"
	name.Focus()
	email := textinput.New()
	email.Placeholder = "Email (optional)"
	date := textinput.New()
	date.Placeholder = dateLayout + " (blank = today)"

	score := textinput.New()
	score.Placeholder = "0-100"
	score.CharLimit = 3

	p := d.View().Patient
	name.SetValue(p.Name)
	email.SetValue(p.Email)
	if !p.TestDate.IsZero() {
		date.SetValue(p.TestDate.Format(dateLayout))
	}

	return Model{
		ctx:     ctx,
		desk:    d,
		styles:  DefaultStyles(),
		clinic:  clinic,
		now:     time.Now,
		patient: []textinput.Model{name, email, date},
		score:   score,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case exportDoneMsg:
		m.busy = false
		switch {
		case msg.err != nil && msg.result.Path != "":
			m.setError(fmt.Errorf("saved %s but %w", msg.result.Path, msg.err))
		case msg.err != nil:
			cmd := m.fail(msg.err)
			return m, cmd
		default:
			text := fmt.Sprintf("Exported %s (%d bytes)", msg.result.Path, msg.result.Size)
			if msg.result.Delivered {
				text += ", uploaded to Slack"
			}
			m.setStatus(text)
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.screen {
		case screenPatient:
			return m.updatePatient(msg)
		case screenReview:
			return m.updateReview(msg)
		case screenReport:
			return m.updateReport(msg)
		case screenHistory:
			return m.updateHistory(msg)
		}
	}
	return m.updateFocused(msg)
}

// updateFocused hands other messages, such as cursor blinks, to the input
// that has focus on the current screen.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case screenPatient:
		m.patient[m.focus], cmd = m.patient[m.focus].Update(msg)
	case screenReview:
		m.score, cmd = m.score.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

// fail shows err and quits when the session cannot continue.
func (m *Model) fail(err error) tea.Cmd {
	m.setError(err)
	if desk.IsRecoverable(err) {
		return nil
	}
	m.err = err
	return tea.Quit
}

// Err is the error that ended the program, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) updatePatient(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "down":
		m.focusPatient((m.focus + 1) % len(m.patient))
		return m, nil
	case "shift+tab", "up":
		m.focusPatient((m.focus + len(m.patient) - 1) % len(m.patient))
		return m, nil
	case "enter":
		if m.focus < len(m.patient)-1 {
			m.focusPatient(m.focus + 1)
			return m, nil
		}
		return m.submitPatient()
	}
	var cmd tea.Cmd
	m.patient[m.focus], cmd = m.patient[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusPatient(i int) {
	m.patient[m.focus].Blur()
	m.focus = i
	m.patient[m.focus].Focus()
}

func (m Model) submitPatient() (tea.Model, tea.Cmd) {
	p := domain.Patient{
		Name:  strings.TrimSpace(m.patient[fieldName].Value()),
		Email: strings.TrimSpace(m.patient[fieldEmail].Value()),
	}
	if !p.HasIdentity() {
		m.setError(domain.ErrMissingPatientIdentity)
		m.focusPatient(fieldName)
		return m, nil
	}
	rawDate := strings.TrimSpace(m.patient[fieldDate].Value())
	if rawDate == "" {
		now := m.now()
		p.TestDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		d, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			m.setError(fmt.Errorf("test date must look like %s", dateLayout))
			m.focusPatient(fieldDate)
			return m, nil
		}
		p.TestDate = d
	}
	m.desk.SetPatient(p)
	m.setStatus("Patient: " + p.Name)
	m.screen = screenReview
	m.loadDraft()
	return m, textinput.Blink
}

// loadDraft prefills the score input with the saved score for the current row.
func (m *Model) loadDraft() {
	v := m.desk.View()
	if v.HasDraft {
		m.score.SetValue(fmt.Sprintf("%d", v.Draft))
	} else {
		m.score.SetValue("")
	}
	m.score.CursorEnd()
	m.score.Focus()
}

func (m Model) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "up":
		m.desk.NavigateBack()
		m.allDone = false
		m.loadDraft()
		return m, nil
	case "down":
		if _, atEnd := m.desk.NavigateNext(); atEnd {
			m.setStatus("Already at the last item")
		}
		m.loadDraft()
		return m, nil
	case "enter":
		score, err := domain.ParseScore(m.score.Value())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		j, done, err := m.desk.SaveAndNext(score)
		if err != nil {
			cmd := m.fail(err)
			return m, cmd
		}
		m.allDone = done
		if done {
			m.setStatus("All items processed!")
		} else {
			m.setStatus(fmt.Sprintf("Saved %s: %d (%s)", j.Record.Item, j.Score, j.Category))
		}
		m.loadDraft()
		return m, nil
	case "tab":
		m.screen = screenReport
		m.score.Blur()
		return m, nil
	case "ctrl+p":
		m.screen = screenPatient
		m.score.Blur()
		m.focusPatient(fieldName)
		return m, nil
	}
	var cmd tea.Cmd
	m.score, cmd = m.score.Update(msg)
	return m, cmd
}

func (m Model) updateReport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := session.Columns()
	switch msg.String() {
	case "esc", "tab":
		m.screen = screenReview
		m.loadDraft()
		return m, nil
	case "up":
		m.filterRow = (m.filterRow + len(columns) - 1) % len(columns)
	case "down":
		m.filterRow = (m.filterRow + 1) % len(columns)
	case "left", "right":
		step := 1
		if msg.String() == "left" {
			step = -1
		}
		column := columns[m.filterRow]
		if err := m.desk.SetFilter(column, m.cycle(column, step)); err != nil {
			cmd := m.fail(err)
			return m, cmd
		}
	case "p":
		return m.startExport(export.FormatPDF)
	case "x":
		return m.startExport(export.FormatXLSX)
	case "c":
		entry, err := m.desk.Commit()
		if err != nil {
			cmd := m.fail(err)
			return m, cmd
		}
		m.setStatus(fmt.Sprintf("Committed %d row(s) to history", len(entry.Rows)))
	case "h":
		m.screen = screenHistory
	}
	return m, nil
}

func (m Model) cycle(column session.Column, step int) string {
	options := m.desk.FilterOptions(column)
	if len(options) == 0 {
		return session.FilterAll
	}
	current := m.desk.Filters().Get(column)
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	idx = (idx + step + len(options)) % len(options)
	return options[idx]
}

func (m Model) startExport(format export.Format) (tea.Model, tea.Cmd) {
	m.busy = true
	m.setStatus(fmt.Sprintf("Exporting %s...", strings.ToUpper(string(format))))
	d, ctx := m.desk, m.ctx
	return m, func() tea.Msg {
		res, err := d.Export(ctx, format)
		return exportDoneMsg{result: res, err: err}
	}
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "tab", "h":
		m.screen = screenReport
	}
	return m, nil
}

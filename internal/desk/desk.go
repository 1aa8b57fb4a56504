// Package desk is the operator command set: navigate, save, filter, export and
// commit. Presentation layers call these methods and render View after each one.
package desk

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"resonance/internal/domain"
	"resonance/internal/export"
	"resonance/internal/session"
)

type Deliverer interface {
	Deliver(ctx context.Context, filename, title string, content []byte) error
}

type Summarizer interface {
	Summarize(ctx context.Context, patient domain.Patient, rows []domain.Row) (string, error)
}

// HistoryRecorder persists a committed entry beyond the process lifetime.
type HistoryRecorder func(sessionID string, entry domain.HistoryEntry) error

type Options struct {
	Clinic    string
	Title     string
	ExportDir string

	Deliverer  Deliverer
	Summarizer Summarizer
	Recorder   HistoryRecorder
	Logger     *zap.Logger
}

type Desk struct {
	session *session.Session
	opts    Options
	logger  *zap.Logger
}

func New(sess *session.Session, opts Options) *Desk {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Desk{
		session: sess,
		opts:    opts,
		logger:  logger.With(zap.String("session", sess.ID)),
	}
}

// View is the state a presentation layer renders after each action.
type View struct {
	Position int
	Total    int
	Item     domain.ItemRecord
	Draft    int
	HasDraft bool
	Saved    int
	AtEnd    bool
	Patient  domain.Patient
}

func (d *Desk) View() View {
	pos, _ := d.session.Position()
	item, _ := d.session.CurrentItem()
	draft, saved := d.session.Draft()
	return View{
		Position: pos,
		Total:    d.session.Len(),
		Item:     item,
		Draft:    draft,
		HasDraft: saved,
		Saved:    d.session.Saved(),
		AtEnd:    pos == d.session.Len()-1,
		Patient:  d.session.Patient(),
	}
}

func (d *Desk) SessionID() string {
	return d.session.ID
}

func (d *Desk) SetPatient(p domain.Patient) {
	d.session.SetPatient(p)
	d.logger.Debug("patient set", zap.Bool("has_identity", p.HasIdentity()))
}

func (d *Desk) NavigateBack() View {
	d.session.Retreat()
	return d.View()
}

// NavigateNext moves forward; atEnd reports an attempt to move past the last item.
func (d *Desk) NavigateNext() (View, bool) {
	atEnd := d.session.Advance()
	return d.View(), atEnd
}

func (d *Desk) Save(score int) (domain.Judgment, error) {
	j, err := d.session.Save(score)
	if err != nil {
		d.logger.Info("save rejected", zap.Int("score", score), zap.Error(err))
		return domain.Judgment{}, err
	}
	d.logger.Info("judgment saved",
		zap.Int("position", j.Position),
		zap.String("item", j.Record.Item),
		zap.Int("score", j.Score),
		zap.String("category", string(j.Category)))
	return j, nil
}

// SaveAndNext saves then advances. allDone is true when the save happened on
// the last item, which is the signal that every item has been processed.
func (d *Desk) SaveAndNext(score int) (j domain.Judgment, allDone bool, err error) {
	j, err = d.Save(score)
	if err != nil {
		return domain.Judgment{}, false, err
	}
	return j, d.session.Advance(), nil
}

func (d *Desk) SetFilter(column session.Column, value string) error {
	return d.session.SetFilter(column, value)
}

func (d *Desk) Filters() session.Filters {
	return d.session.Filters()
}

// FilterOptions lists the values an operator can pick for column.
func (d *Desk) FilterOptions(column session.Column) []string {
	return session.Options(column, d.session.Rows())
}

func (d *Desk) Filtered() []domain.Row {
	return d.session.Filtered()
}

func (d *Desk) Table() string {
	return export.Table(d.session.Filtered())
}

type ExportResult struct {
	Filename  string
	Path      string
	Size      int
	Delivered bool
}

// Export encodes the filtered view, writes it under the export directory and,
// when a Deliverer is configured, uploads it. The store and history are never
// touched, whatever fails.
func (d *Desk) Export(ctx context.Context, format export.Format) (ExportResult, error) {
	patient := d.session.Patient()
	if !patient.HasIdentity() {
		return ExportResult{}, fmt.Errorf("export: %w", domain.ErrMissingPatientIdentity)
	}
	rows := d.session.Filtered()

	header := export.Header{Clinic: d.opts.Clinic, Title: d.opts.Title, Patient: patient}
	if format == export.FormatPDF && d.opts.Summarizer != nil {
		summary, err := d.opts.Summarizer.Summarize(ctx, patient, rows)
		if err != nil {
			d.logger.Warn("summary unavailable, exporting without it", zap.Error(err))
		}
		header.Summary = summary
	}

	content, err := export.Render(format, header, rows)
	if err != nil {
		d.logger.Error("export encoding failed", zap.String("format", string(format)), zap.Error(err))
		return ExportResult{}, err
	}

	res := ExportResult{
		Filename: export.Filename(patient.Name, patient.TestDate, format),
		Size:     len(content),
	}
	res.Path, err = export.WriteFile(d.opts.ExportDir, res.Filename, content)
	if err != nil {
		return ExportResult{}, fmt.Errorf("write export: %w", err)
	}
	d.logger.Info("export written", zap.String("path", res.Path), zap.Int("rows", len(rows)), zap.Int("bytes", res.Size))

	if d.opts.Deliverer != nil {
		title := fmt.Sprintf("%s - %s", d.opts.Title, patient.Name)
		if err := d.opts.Deliverer.Deliver(ctx, res.Filename, title, content); err != nil {
			return res, fmt.Errorf("deliver export: %w", err)
		}
		res.Delivered = true
	}
	return res, nil
}

// Commit appends the filtered view to the session history and, when a
// recorder is configured, persists it. A persistence failure is returned but
// the in-memory entry stays.
func (d *Desk) Commit() (domain.HistoryEntry, error) {
	entry, err := d.session.Commit()
	if err != nil {
		return domain.HistoryEntry{}, err
	}
	d.logger.Info("history committed", zap.String("entry", entry.ID), zap.Int("rows", len(entry.Rows)))
	if d.opts.Recorder != nil {
		if err := d.opts.Recorder(d.session.ID, entry); err != nil {
			d.logger.Error("history persist failed", zap.String("entry", entry.ID), zap.Error(err))
			return entry, fmt.Errorf("persist history: %w", err)
		}
	}
	return entry, nil
}

func (d *Desk) History() []domain.HistoryEntry {
	return d.session.History()
}

// IsRecoverable reports whether err should be shown to the operator and the
// action retried, as opposed to aborting the program.
func IsRecoverable(err error) bool {
	return !errors.Is(err, domain.ErrCatalogLoad) && !errors.Is(err, domain.ErrEmptyCatalog)
}

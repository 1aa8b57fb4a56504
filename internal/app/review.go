package app

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resonance/internal/catalog"
	"resonance/internal/desk"
	"resonance/internal/digest"
	"resonance/internal/domain"
	"resonance/internal/httpx"
	"resonance/internal/integrations/llm"
	slackbot "resonance/internal/integrations/slack"
	"resonance/internal/session"
	"resonance/internal/storage/sqlite"
	"resonance/internal/tui"
)

type reviewFlags struct {
	patientName  string
	patientEmail string
	testDate     string
}

func newReviewCmd(rt *runtime) *cobra.Command {
	f := &reviewFlags{}
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Start the interactive review (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.runReview(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.patientName, "patient", "", "Patient name to prefill")
	cmd.Flags().StringVar(&f.patientEmail, "email", "", "Patient email to prefill")
	cmd.Flags().StringVar(&f.testDate, "test-date", "", "Test date to prefill (YYYY-MM-DD)")
	return cmd
}

func (f *reviewFlags) patient(loc *time.Location) (domain.Patient, error) {
	p := domain.Patient{Name: f.patientName, Email: f.patientEmail}
	if f.testDate != "" {
		d, err := time.ParseInLocation("2006-01-02", f.testDate, loc)
		if err != nil {
			return domain.Patient{}, fmt.Errorf("invalid --test-date %q: %w", f.testDate, err)
		}
		p.TestDate = d
	}
	return p, nil
}

func (rt *runtime) runReview(cmd *cobra.Command, f *reviewFlags) error {
	cfg := rt.cfg
	ctx := cmd.Context()

	logger, err := rt.fileLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	patient, err := f.patient(cfg.Location)
	if err != nil {
		return err
	}

	items, err := catalog.NewCache(cfg.CatalogPath, cfg.CatalogSheet).Items()
	if err != nil {
		logger.Error("catalog unavailable", zap.String("path", cfg.CatalogPath), zap.Error(err))
		return err
	}
	sess, err := session.New(items,
		session.WithClock(func() time.Time { return time.Now().In(cfg.Location) }),
		session.WithPatient(patient),
	)
	if err != nil {
		return err
	}
	logger.Info("session started",
		zap.String("session", sess.ID),
		zap.Int("items", sess.Len()),
		zap.String("catalog", cfg.CatalogPath),
		zap.Duration("http_timeout", httpx.Client().Timeout))

	opts := desk.Options{
		Clinic:    cfg.ClinicName,
		Title:     cfg.ReportTitle,
		ExportDir: cfg.ExportDir,
		Logger:    logger,
	}

	var notifier *slackbot.Notifier
	if cfg.SlackConfigured() {
		notifier = slackbot.New(cfg.SlackBotToken, cfg.SlackChannelID, httpx.Client(), logger)
		opts.Deliverer = notifier
	}
	if cfg.LLMSummaryEnabled {
		opts.Summarizer = llm.New(cfg.AnthropicAPIKey, cfg.LLMModel, httpx.Client(), logger)
	}

	if cfg.PersistHistory() {
		db, err := rt.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Recorder = func(sessionID string, entry domain.HistoryEntry) error {
			return sqlite.InsertHistoryEntry(db, sessionID, entry)
		}

		if cfg.DigestEnabled() {
			source := func(since time.Time) ([]domain.HistoryEntry, error) {
				return sqlite.GetHistorySince(db, since)
			}
			sched, err := digest.New(cfg.DigestSchedule, source, notifier, cfg.Location, logger)
			if err != nil {
				return err
			}
			sched.Start(ctx)
			defer sched.Stop()
		}
	}

	d := desk.New(sess, opts)
	program := tea.NewProgram(tui.New(ctx, d, cfg.ClinicName), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("run review: %w", err)
	}
	if m, ok := final.(tui.Model); ok && m.Err() != nil {
		logger.Error("review aborted", zap.Error(m.Err()))
		return m.Err()
	}
	logger.Info("session closed", zap.String("session", sess.ID), zap.Int("saved", sess.Saved()), zap.Int("committed", len(sess.History())))
	return nil
}

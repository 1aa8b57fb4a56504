// Package digest posts a periodic summary of committed history entries.
package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"resonance/internal/config"
	"resonance/internal/domain"
)

// HistorySource returns entries committed at or after since.
type HistorySource func(since time.Time) ([]domain.HistoryEntry, error)

type Poster interface {
	Post(ctx context.Context, text string) error
}

type Scheduler struct {
	schedule cron.Schedule
	source   HistorySource
	poster   Poster
	logger   *zap.Logger
	loc      *time.Location

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// New parses expr as a 5-field cron expression.
func New(expr string, source HistorySource, poster Poster, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	sched, err := config.ParseSchedule(expr)
	if err != nil {
		return nil, fmt.Errorf("digest schedule %q: %w", expr, err)
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		schedule: sched,
		source:   source,
		poster:   poster,
		logger:   logger.Named("digest"),
		loc:      loc,
		now:      time.Now,
		after:    time.After,
	}, nil
}

// Start runs the schedule in a goroutine until Stop or ctx is cancelled.
// Each tick covers entries committed since the previous tick.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	since := s.now().In(s.loc)

	go func() {
		defer close(s.done)
		for {
			now := s.now().In(s.loc)
			next := s.schedule.Next(now)
			wait := next.Sub(now)
			s.logger.Info("next digest scheduled", zap.Time("at", next), zap.Duration("in", wait.Round(time.Minute)))

			select {
			case <-ctx.Done():
				return
			case <-s.after(wait):
			}

			if err := s.RunOnce(ctx, since); err != nil {
				s.logger.Error("digest failed", zap.Error(err))
				continue
			}
			since = next
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// RunOnce posts a digest of entries committed since the given instant. Nothing
// is posted when there are none.
func (s *Scheduler) RunOnce(ctx context.Context, since time.Time) error {
	entries, err := s.source(since)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(entries) == 0 {
		s.logger.Debug("no history since last digest", zap.Time("since", since))
		return nil
	}
	if err := s.poster.Post(ctx, Format(entries, since, s.loc)); err != nil {
		return err
	}
	s.logger.Info("digest posted", zap.Int("entries", len(entries)))
	return nil
}

// Format renders entries as a Slack message, one line per committed export.
func Format(entries []domain.HistoryEntry, since time.Time, loc *time.Location) string {
	sorted := make([]domain.HistoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CommittedAt.Before(sorted[j].CommittedAt) })

	var b strings.Builder
	fmt.Fprintf(&b, "*Resonance history since %s*: %d committed export(s)\n", since.In(loc).Format("Mon Jan 2 15:04"), len(sorted))
	for _, e := range sorted {
		counts := make(map[domain.Category]int)
		for _, r := range e.Rows {
			counts[r.Resonance]++
		}
		var parts []string
		for _, c := range domain.Categories() {
			if n := counts[c]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", c, n))
			}
		}
		breakdown := "no rows"
		if len(parts) > 0 {
			breakdown = strings.Join(parts, ", ")
		}
		fmt.Fprintf(&b, "- %s %s: %d item(s) (%s)\n", e.CommittedAt.In(loc).Format("15:04"), e.Patient.Name, len(e.Rows), breakdown)
	}
	return b.String()
}

package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"resonance/internal/digest"
	"resonance/internal/domain"
	"resonance/internal/httpx"
	slackbot "resonance/internal/integrations/slack"
	"resonance/internal/storage/sqlite"
)

const defaultDigestSchedule = "0 8 * * 1-5"

// stdoutPoster prints the digest instead of posting it.
type stdoutPoster struct{ w io.Writer }

func (p stdoutPoster) Post(_ context.Context, text string) error {
	_, err := fmt.Fprintln(p.w, text)
	return err
}

func newDigestCmd(rt *runtime) *cobra.Command {
	var (
		window time.Duration
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Post one digest of recently committed exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := rt.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()

			db, err := rt.openHistory()
			if err != nil {
				return err
			}
			defer db.Close()

			var poster digest.Poster = stdoutPoster{w: cmd.OutOrStdout()}
			if !dryRun {
				if !rt.cfg.SlackConfigured() {
					return fmt.Errorf("digest needs slack_bot_token and slack_channel_id (or --dry-run)")
				}
				poster = slackbot.New(rt.cfg.SlackBotToken, rt.cfg.SlackChannelID, httpx.Client(), logger)
			}

			source := func(since time.Time) ([]domain.HistoryEntry, error) {
				return sqlite.GetHistorySince(db, since)
			}
			expr := rt.cfg.DigestSchedule
			if expr == "" {
				expr = defaultDigestSchedule
			}
			sched, err := digest.New(expr, source, poster, rt.cfg.Location, logger)
			if err != nil {
				return err
			}
			return sched.RunOnce(cmd.Context(), time.Now().Add(-window))
		},
	}
	cmd.Flags().DurationVar(&window, "since", 24*time.Hour, "How far back to look for committed exports")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the digest instead of posting it")
	return cmd
}

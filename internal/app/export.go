package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resonance/internal/export"
	"resonance/internal/httpx"
	slackbot "resonance/internal/integrations/slack"
	"resonance/internal/storage/sqlite"
)

func newExportCmd(rt *runtime) *cobra.Command {
	var (
		format  string
		outDir  string
		deliver bool
	)
	cmd := &cobra.Command{
		Use:   "export <history-id>",
		Short: "Re-render a committed history entry as PDF or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
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

			entry, err := sqlite.GetHistoryEntry(db, args[0])
			if err != nil {
				return fmt.Errorf("load history entry %s: %w", args[0], err)
			}
			header := export.Header{Clinic: rt.cfg.ClinicName, Title: rt.cfg.ReportTitle, Patient: entry.Patient}
			content, err := export.Render(f, header, entry.Rows)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = rt.cfg.ExportDir
			}
			filename := export.Filename(entry.Patient.Name, entry.Patient.TestDate, f)
			path, err := export.WriteFile(outDir, filename, content)
			if err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			logger.Info("export written", zap.String("entry", entry.ID), zap.String("path", path), zap.Int("rows", len(entry.Rows)))
			fmt.Fprintln(cmd.OutOrStdout(), path)

			if deliver {
				if !rt.cfg.SlackConfigured() {
					return fmt.Errorf("--slack needs slack_bot_token and slack_channel_id")
				}
				n := slackbot.New(rt.cfg.SlackBotToken, rt.cfg.SlackChannelID, httpx.Client(), logger)
				title := fmt.Sprintf("%s - %s", rt.cfg.ReportTitle, entry.Patient.Name)
				if err := n.Deliver(cmd.Context(), filename, title, content); err != nil {
					return fmt.Errorf("deliver export: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatPDF), "Output format: pdf or xlsx")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: export_dir)")
	cmd.Flags().BoolVar(&deliver, "slack", false, "Also upload the file to the configured Slack channel")
	return cmd
}

package app

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"resonance/internal/domain"
	"resonance/internal/export"
	"resonance/internal/session"
	"resonance/internal/storage/sqlite"
)

func newHistoryCmd(rt *runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history [history-id]",
		Short: "List committed exports, or show the rows of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := rt.openHistory()
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				entry, err := sqlite.GetHistoryEntry(db, args[0])
				if err != nil {
					return fmt.Errorf("load history entry %s: %w", args[0], err)
				}
				fmt.Fprintf(out, "%s  %s  %s\n", entry.ID, entry.Patient.Name, entry.CommittedAt.In(rt.cfg.Location).Format("2006-01-02 15:04"))
				fmt.Fprintf(out, "Filters: %s\n\n", filterSummary(entry.Filters))
				fmt.Fprintln(out, export.Table(entry.Rows))
				return nil
			}

			entries, err := sqlite.ListHistoryEntries(db, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			fmt.Fprintln(out, historyTable(entries, rt.cfg.Location))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to list")
	return cmd
}

func historyTable(entries []domain.HistoryEntry, loc *time.Location) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			e.CommittedAt.In(loc).Format("2006-01-02 15:04"),
			e.Patient.Name,
			strconv.Itoa(len(e.Rows)),
			filterSummary(e.Filters),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Committed", "Patient", "Rows", "Filters").
		Rows(rows...).
		Render()
}

func filterSummary(m map[string]string) string {
	f, err := session.FiltersFromMap(m)
	if err != nil {
		return fmt.Sprint(m)
	}
	return f.String()
}

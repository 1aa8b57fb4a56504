package app

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"resonance/internal/catalog"
)

func newCatalogCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Load the catalog and print its items in review order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := catalog.NewCache(rt.cfg.CatalogPath, rt.cfg.CatalogSheet).Items()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(items))
			for i, it := range items {
				rows = append(rows, []string{
					fmt.Sprint(i + 1),
					it.Item,
					it.Category,
					it.SuperCategory,
					it.DoshaCompatibility,
					it.MetabolicTypingCompatibility,
					it.GlandularCompatibility,
				})
			}
			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers(append([]string{"#"}, catalog.Headers...)...).
				Rows(rows...)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, t.Render())
			fmt.Fprintf(out, "%d item(s) from %s\n", len(items), rt.cfg.CatalogPath)
			return nil
		},
	}
}

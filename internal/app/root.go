package app

import (
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resonance/internal/config"
	"resonance/internal/httpx"
	"resonance/internal/logging"
	"resonance/internal/storage/sqlite"
)

// runtime carries what the persistent flags resolve to for every subcommand.
type runtime struct {
	configPath string
	verbose    bool

	cfg config.Config
}

func NewRootCommand() *cobra.Command {
	rt := &runtime{}
	review := newReviewCmd(rt)

	root := &cobra.Command{
		Use:   "resonance",
		Short: "Record resonance scores for a food catalog and export patient reports",
		Long: `resonance walks an operator through a food catalog one item at a time,
classifies each resonance score, and exports the filtered results as PDF or XLSX.

Run without a subcommand to start the interactive review.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rt.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt.cfg = cfg
			httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
			return nil
		},
		RunE: review.RunE,
	}
	root.Flags().AddFlagSet(review.Flags())

	root.PersistentFlags().StringVarP(&rt.configPath, "config", "c", config.DefaultPath, "Path to the YAML config file (CONFIG_PATH wins when set)")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(review)
	root.AddCommand(newExportCmd(rt))
	root.AddCommand(newHistoryCmd(rt))
	root.AddCommand(newCatalogCmd(rt))
	root.AddCommand(newDigestCmd(rt))
	return root
}

func (rt *runtime) level() string {
	if rt.verbose {
		return "debug"
	}
	return rt.cfg.LogLevel
}

// logger writes JSON to stderr for one-shot commands.
func (rt *runtime) logger() (*zap.Logger, error) {
	return logging.New(rt.level())
}

// fileLogger is used while the terminal UI owns the screen.
func (rt *runtime) fileLogger() (*zap.Logger, error) {
	return logging.NewFile(rt.level(), rt.cfg.LogFile)
}

// openHistory opens the history database, failing when persistence is disabled.
func (rt *runtime) openHistory() (*sql.DB, error) {
	if !rt.cfg.PersistHistory() {
		return nil, fmt.Errorf("history persistence is disabled (history_persist=false)")
	}
	db, err := sqlite.InitDB(rt.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database %s: %w", rt.cfg.DBPath, err)
	}
	return db, nil
}

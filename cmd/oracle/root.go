package main

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/oracle/internal/config"
	"github.com/Harshitk-cp/oracle/internal/service"
	"github.com/Harshitk-cp/oracle/internal/store/sqlitestore"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgDBPath  string
	outputJSON bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Oracle - hypothesis tracking over journal entries",
	Long: `Oracle mines journal entries for statistically significant patterns
and tracks each one as a hypothesis whose confidence moves with evidence.

Data is kept in a local SQLite file (default: ~/.oracle/oracle.db).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db", "", "Path to local database (default: $LOCAL_DB_PATH or ~/.oracle/oracle.db)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")

	rootCmd.AddCommand(observeCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(hypothesesCmd)
	rootCmd.AddCommand(confirmCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(evidenceCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(versionCmd)
}

func dbPath() string {
	if cfgDBPath != "" {
		return cfgDBPath
	}
	return config.LocalDBPath()
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// workspace bundles the local store with services loaded from it.
type workspace struct {
	store      *sqlitestore.Store
	hypotheses *service.HypothesisService
	runner     *service.ObservationRunner
	logger     *zap.Logger
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	s, err := sqlitestore.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	logger := newLogger()
	hs := service.NewHypothesisService(service.NewHypothesisEngine(logger), s, logger)
	if err := hs.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}

	runner := service.NewObservationRunner(s, service.NewObserver(logger), hs, logger)
	runner.SetLookbackDays(config.LookbackDays())

	return &workspace{store: s, hypotheses: hs, runner: runner, logger: logger}, nil
}

func (w *workspace) Close() error {
	_ = w.logger.Sync()
	return w.store.Close()
}

// Package cli implements the habit-tracker command line.
package cli

import (
	"context"
	"fmt"

	"github.com/HendryAvila/habit-tracker/internal/config"
	"github.com/HendryAvila/habit-tracker/internal/logging"
	"github.com/HendryAvila/habit-tracker/internal/report"
	"github.com/HendryAvila/habit-tracker/internal/store"
	"github.com/HendryAvila/habit-tracker/internal/updater"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds the per-invocation state shared by the subcommands.
type app struct {
	version    string
	v          *viper.Viper
	configFile string
	verbose    bool

	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	reporter *report.Reporter

	updaterOpts []updater.Option
}

// Execute runs the command line with os.Args and releases the store
// afterwards, whether or not the command failed.
func Execute(ctx context.Context, version string) error {
	a := &app{version: version, v: config.New()}
	err := newRootCommand(a).ExecuteContext(ctx)
	if cerr := a.teardown(); err == nil {
		err = cerr
	}
	return err
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "habit-tracker",
		Short: "Log time spent on activities and review your streak",
		Long: `habit-tracker records what you spent time on and renders a dashboard:
current streak, totals, a bar chart of the last 7 days and the last 3 months.`,
		Version:           a.version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetVersionTemplate("habit-tracker v{{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default <data-dir>/config.yaml)")
	flags.String("data-dir", "", "directory holding activities.json (default: per-user data directory)")
	flags.String("backend", "", "storage backend: json or sqlite")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging on stderr")

	_ = a.v.BindPFlag("data_dir", flags.Lookup("data-dir"))
	_ = a.v.BindPFlag("store.backend", flags.Lookup("backend"))

	root.AddCommand(
		newLogCommand(a),
		newViewCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newPathCommand(a),
		newServeCommand(a),
		newUpdateCommand(a),
		newVersionCommand(a),
	)
	return root
}

// setup loads configuration and builds the logger. The store is opened
// lazily by the commands that need it.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: a.verbose,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	a.reporter = report.New()

	a.logger.Debug("config loaded",
		zap.String("data_dir", cfg.DataDir),
		zap.String("backend", cfg.Store.Backend),
		zap.Bool("strict", cfg.Store.Strict),
	)
	return nil
}

// openStore opens and loads the configured store.
func (a *app) openStore() (store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	s, err := store.Open(a.cfg.Backend(), a.cfg.DataDir,
		store.WithStrict(a.cfg.Store.Strict),
		store.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	res, err := s.Load()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	a.logger.Debug("store loaded",
		zap.String("path", s.Path()),
		zap.String("state", string(res.State)),
		zap.Int("activities", len(res.Activities)),
	)

	a.store = s
	return s, nil
}

func (a *app) teardown() error {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/smartstudy/internal/config"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/logging"
	"github.com/abhisek/smartstudy/internal/store"
)

// annotationTUI marks commands that take over the terminal. Their logs go
// to a file instead of stderr.
const annotationTUI = "smartstudy/tui"

// env holds what the root command resolved for its subcommands.
type env struct {
	v          *viper.Viper
	configFile string
	envFile    string

	cfg      *config.Config
	logger   *slog.Logger
	closeLog func() error
}

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	e := &env{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "smartstudy",
		Short: "Spaced-repetition study for multiple-choice questions",
		Long: "SmartStudy schedules multiple-choice questions on a session-based interval\n" +
			"ladder. Run it without a command to open the terminal UI.",
		SilenceUsage:       true,
		Annotations:        map[string]string{annotationTUI: "true"},
		PersistentPreRunE:  e.setup,
		PersistentPostRunE: e.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runTUI(cmd, tuiOptions{})
		},
	}

	pf := root.PersistentFlags()
	pf.String("db", "", "Path to the SQLite database file (overrides SMARTSTUDY_DB)")
	pf.String("driver", "", "Database driver: sqlite or postgres")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&e.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/smartstudy/config.yaml)")
	pf.StringVar(&e.envFile, "env-file", "", "dotenv file to load (default .env)")
	cobra.CheckErr(e.v.BindPFlag("db.path", pf.Lookup("db")))
	cobra.CheckErr(e.v.BindPFlag("db.driver", pf.Lookup("driver")))
	cobra.CheckErr(e.v.BindPFlag("log.level", pf.Lookup("log-level")))

	root.AddCommand(
		newStudyCmd(e),
		newExamCmd(e),
		newSetsCmd(e),
		newImportCmd(e),
		newExportCmd(e),
		newDueCmd(e),
		newSessionCmd(e),
		newStatsCmd(e),
		newGenerateCmd(e),
		newServeCmd(e),
		newLLMCmd(e),
		newResetCmd(e),
		newVersionCmd(),
	)
	return root
}

func (e *env) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(e.v, config.LoadOptions{ConfigFile: e.configFile, EnvFile: e.envFile})
	if err != nil {
		return err
	}
	logOpts := cfg.Log
	if cmd.Annotations[annotationTUI] == "true" {
		if logOpts.File, err = cfg.TUILogFile(); err != nil {
			return fmt.Errorf("resolve log file: %w", err)
		}
	}
	logger, closeLog, err := logging.Setup(logOpts)
	if err != nil {
		return err
	}
	e.cfg, e.logger, e.closeLog = cfg, logger, closeLog
	return nil
}

func (e *env) teardown(*cobra.Command, []string) error {
	if e.closeLog == nil {
		return nil
	}
	return e.closeLog()
}

// openStore opens the configured database.
func (e *env) openStore(ctx context.Context) (*store.Store, error) {
	sc, err := e.cfg.StoreConfig(e.logger)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// withStore runs fn against an open store and closes it afterwards.
func (e *env) withStore(ctx context.Context, fn func(st *store.Store) error) (err error) {
	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, st.Close())
	}()
	return fn(st)
}

func (e *env) progress(st *store.Store) *gamify.Service {
	return gamify.NewService(st, gamify.Options{Sets: st, Logger: e.logger})
}

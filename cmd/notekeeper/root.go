package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notekeeper"
	"github.com/aretw0/notekeeper/internal/config"
	"github.com/aretw0/notekeeper/internal/logging"
	"github.com/aretw0/notekeeper/internal/platform"
	"github.com/aretw0/notekeeper/pkg/core"
)

// app carries configuration and the lazily built service shared by all
// subcommands of one invocation.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	svc    *core.Service

	envFile    string
	path       string
	adapter    string
	versioning bool
	verbose    bool
	logFormat  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "notekeeper",
		Short: "Keep categorized rich-text notes in a local file",
		Long: `notekeeper stores short notes (title, category, HTML content) in a single
JSON or YAML file, serves them over a REST API and can record every change
in git.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.StringVarP(&a.path, "file", "f", "", "Notes file, or directory for the kv adapter (env NOTES_PATH)")
	pf.StringVar(&a.adapter, "adapter", "", "Storage adapter: fs, kv or memory (env NOTES_ADAPTER)")
	pf.BoolVar(&a.versioning, "versioning", false, "Commit every write to git (env NOTES_VERSIONING)")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: json or pretty (env LOG_FORMAT)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(
		newServeCmd(a),
		newAddCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newRmCmd(a),
		newSearchCmd(a),
		newStatsCmd(a),
		newImportCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// setup loads configuration, applies flag overrides and installs the
// global logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Parse(a.envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.Notes.Path = a.path
	}
	if flags.Changed("adapter") {
		cfg.Notes.Adapter = a.adapter
	}
	if flags.Changed("versioning") {
		cfg.Notes.Versioning = a.versioning
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.InitGlobal(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// service builds the notes service from the resolved configuration.
func (a *app) service() (*core.Service, error) {
	if a.svc != nil {
		return a.svc, nil
	}

	path := a.cfg.Notes.Path
	if a.cfg.Notes.Adapter == notekeeper.AdapterFS {
		path = platform.ResolveNotesPath(path)
	}
	a.logger.Debug("opening notes", "adapter", a.cfg.Notes.Adapter, "path", path)

	svc, err := notekeeper.New(path,
		notekeeper.WithAdapter(a.cfg.Notes.Adapter),
		notekeeper.WithVersioning(a.cfg.Notes.Versioning),
		notekeeper.WithLockTimeout(a.cfg.Notes.LockTimeout),
		notekeeper.WithLogger(a.logger),
		notekeeper.WithWatcherErrorHandler(func(err error) {
			a.logger.Error("watcher error", "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("open notes: %w", err)
	}
	a.svc = svc
	return svc, nil
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

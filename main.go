package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/skykid17/smartlp-sub005/internal/api"
	"github.com/skykid17/smartlp-sub005/internal/commands"
	"github.com/skykid17/smartlp-sub005/internal/console"
	"github.com/skykid17/smartlp-sub005/internal/core/config"
	"github.com/skykid17/smartlp-sub005/internal/core/eventbus"
	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/styles"
	"github.com/skykid17/smartlp-sub005/internal/data/db"
	"github.com/skykid17/smartlp-sub005/internal/data/stores"
	"github.com/skykid17/smartlp-sub005/internal/store/jsonfile"
	"github.com/skykid17/smartlp-sub005/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, buildInfo() reads
	// them from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func buildInfo() console.BuildInfo {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	return console.BuildInfo{Version: v, Commit: c, Date: d}
}

func build(info console.BuildInfo) string {
	short := info.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s) %s", info.Version, short, info.Date)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		info      = buildInfo()
		smartApp  = &console.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "smartlp",
		Usage:     "Browse, select and manage parsed log entries and rules",
		UsageText: "smartlp [global options] command [command options]",
		Description: `smartlp is a terminal console for the SmartLP log parsing backend.

Select entries and rules across pages and searches, inspect the parser
configuration generated for the selected entries, highlight regex matches and
bulk delete records.

Run 'smartlp' with no arguments to open the interactive console.
Run 'smartlp devserver' to start an in-memory backend for local use.`,
		Version: build(info),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("SMARTLP_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/smartlp.log)",
				Sources:     cli.EnvVars("SMARTLP_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("SMARTLP_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("SMARTLP_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "api-url",
				Usage:       "backend base URL (overrides api.base_url)",
				Sources:     cli.EnvVars("SMARTLP_API_URL"),
				Destination: &flags.APIURL,
			},
			&cli.StringFlag{
				Name:        "backend",
				Usage:       "selection store backend, sqlite or json (overrides selection.backend)",
				Sources:     cli.EnvVars("SMARTLP_BACKEND"),
				Destination: &flags.Backend,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/smartlp.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = (&config.Config{DataDir: flags.DataDir}).LogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			// config validate reads the file itself so it can report errors
			// that would stop Load.
			if c.Args().First() == "config" {
				return ctx, nil
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			if flags.APIURL != "" {
				cfg.API.BaseURL = flags.APIURL
			}
			if flags.Backend != "" {
				cfg.Selection.Backend = flags.Backend
			}
			if err := cfg.Validate(); err != nil {
				return ctx, fmt.Errorf("invalid flags: %w", err)
			}

			// Apply configured theme (validation ensures name is valid)
			if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
				styles.SetTheme(palette)
			}

			var store kv.KV
			switch cfg.Selection.Backend {
			case config.BackendJSON:
				store = jsonfile.NewKVStore(cfg.SelectionFile())
			default:
				opts := db.OpenOptions{
					MaxOpenConns: cfg.Database.MaxOpenConns,
					MaxIdleConns: cfg.Database.MaxIdleConns,
					BusyTimeout:  cfg.Database.BusyTimeout,
				}
				database, err = db.Open(cfg.DataDir, opts)
				if stores.IsCorruptionError(err) {
					log.Warn().Err(err).Msg("selection database corrupted, starting fresh")
					if rerr := stores.RecoverFromCorruption(cfg.DataDir); rerr != nil {
						return ctx, fmt.Errorf("recover database: %w", rerr)
					}
					database, err = db.Open(cfg.DataDir, opts)
				}
				if err != nil {
					return ctx, fmt.Errorf("open database: %w", err)
				}
				store = stores.NewKVStore(database)
			}

			client := api.New(api.Options{
				BaseURL: cfg.API.BaseURL,
				Token:   cfg.API.Token,
				Timeout: cfg.API.Timeout,
			})

			bus := eventbus.New()
			eventbus.RegisterDebugLogger(bus, logging.Component("eventbus"))

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*smartApp = *console.NewApp(cfg, client, store, bus, info)

			log.Debug().
				Str("backend", cfg.Selection.Backend).
				Str("api", client.BaseURL()).
				Msg("console ready")

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, smartApp)

	app = commands.NewSelectionCmd(flags, smartApp).Register(app)
	app = commands.NewMatchCmd(flags, smartApp).Register(app)
	app = commands.NewDeleteCmd(flags, smartApp).Register(app)
	app = commands.NewDevserverCmd(flags, smartApp).Register(app)
	app = commands.NewDoctorCmd(flags, smartApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'smartlp --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}

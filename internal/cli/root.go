// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/kbochat-tui/internal/api"
	"github.com/jeranaias/kbochat-tui/internal/config"
	"github.com/jeranaias/kbochat-tui/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION STATE
// =============================================================================

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	// Global flags
	apiURL     string
	configPath string
	logFile    string
	logLevel   string

	cfg       *config.Config
	logCloser io.Closer
}

// client returns an answer service client for the configured base URL.
func (a *app) client() *api.Client {
	return api.NewClient(a.cfg.API.BaseURL)
}

// resolvePath settles the config file location without reading it.
func (a *app) resolvePath() error {
	if a.configPath != "" {
		return nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	a.configPath = path
	return nil
}

// load reads the config file and applies flag overrides.
func (a *app) load() error {
	if err := a.resolvePath(); err != nil {
		return err
	}

	cfg, err := config.LoadFromPath(a.configPath)
	if err != nil {
		return err
	}

	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.logFile != "" {
		cfg.Log.File = a.logFile
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid flags")
	}

	a.cfg = cfg
	return nil
}

// wrapWidth is the markdown width for line-mode output: the terminal width,
// capped by ui.word_wrap.
func (a *app) wrapWidth() int {
	w := GetTerminalWidth()
	if a.cfg.UI.WordWrap > 0 && a.cfg.UI.WordWrap < w {
		w = a.cfg.UI.WordWrap
	}
	return w
}

// setupFileLogging logs to the configured file. The TUI owns the terminal, so
// it always logs this way.
func (a *app) setupFileLogging() error {
	path, err := a.cfg.LogPath()
	if err != nil {
		return err
	}
	closer, err := logging.Setup(a.cfg.Log.Level, path)
	if err != nil {
		return err
	}
	a.logCloser = closer
	return nil
}

// setupLineLogging logs to the file when one was asked for, otherwise to
// stderr at warn and above.
func (a *app) setupLineLogging(stderr io.Writer) error {
	if a.cfg.Log.File != "" {
		return a.setupFileLogging()
	}
	logging.SetupConsole(stderr, a.cfg.Log.Level)
	return nil
}

// close releases the log file. Subcommands defer it after setting up logging.
func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the kbochat command tree. Without a subcommand it
// starts the full-screen chat.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "kbochat",
		Short: "Terminal chat client for the KBO matchup analysis service",
		Long: `kbochat asks the KBO matchup service (rule engine + RAG hybrid) questions
about pitcher/batter matchups and shows its answers with their sources.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), a)
		},
	}
	root.SetVersionTemplate("kbochat {{.Version}} (" + GitCommit + ", " + BuildDate + ")\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.apiURL, "api-url", "", "answer service base URL (default from config, "+config.DefaultBaseURL+")")
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.kbochat/config.toml)")
	flags.StringVar(&a.logFile, "log-file", "", "log file (default ~/.kbochat/kbochat.log for the TUI)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, off")

	root.AddCommand(
		newTUICommand(a),
		newAskCommand(a),
		newREPLCommand(a),
		newHealthCommand(a),
		newConfigCommand(a),
		newSearchCommand(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			root.PrintErrln("오류:", err)
		}
		log.Debug().Err(err).Msg("cli: command failed")
		return 1
	}
	return 0
}

// errReported marks failures whose message was already shown to the user.
var errReported = errors.New("already reported")

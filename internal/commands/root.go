package commands

import (
	"context"
	"fmt"
	"log/slog"

	configCmd "github.com/livyctl/livyctl/internal/commands/config"
	"github.com/livyctl/livyctl/internal/ui"
	"github.com/livyctl/livyctl/internal/version"
	"github.com/livyctl/livyctl/pkg/bugsnag"
	"github.com/livyctl/livyctl/pkg/config"
	"github.com/livyctl/livyctl/pkg/logrium"
	"github.com/spf13/cobra"
)

// autoLogFile is the value of a bare --log-file flag.
const autoLogFile = "auto"

// session owns what PersistentPreRunE sets up and Execute tears down.
type session struct {
	cleanup func()
}

func (s *session) close() {
	if s.cleanup != nil {
		s.cleanup()
		s.cleanup = nil
	}
}

// Execute runs the CLI with ctx and releases the log sinks afterwards.
func Execute(ctx context.Context, args []string) error {
	s := &session{}
	defer s.close()

	rootCmd := newRootCmd(s)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&session{})
}

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "livy",
		Short: "Apache Livy batch CLI",
		Long:  "Command line interface for submitting, watching and killing Apache Livy batches",
		// Silence errors - we handle them in main.go
		SilenceErrors: true,
		// Load config once and store in context for all subcommands
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.preRun(cmd, args)
		},
	}

	// Global flags (persistent flags are inherited by all subcommands)
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Base-URL for Livy API server")
	flags.String("tz", "", "Time zone of timestamps in server logs, e.g. Asia/Taipei")
	flags.BoolP("verbose", "v", false, "Show debug messages on the console")
	flags.BoolP("quiet", "q", false, "Only show warnings and errors on the console")
	flags.Bool("no-color", false, "Disable colored output")
	flags.String("log-file", "", "Write logs into a file, --log-file=PATH picks the path")
	flags.Lookup("log-file").NoOptDefVal = autoLogFile
	flags.Bool("no-log-file", false, "Do not write logs into a file")
	flags.String("log-file-level", "", "Minimum level written to the log file")
	flags.StringSlice("highlight-logger", nil, "Highlight records from these loggers")
	flags.StringSlice("hide-logger", nil, "Hide records from these loggers")
	flags.Bool("pb", false, "Render Spark task progress as a progress bar")
	flags.Bool("no-pb", false, "Print Spark task progress as plain log lines")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.MarkFlagsMutuallyExclusive("log-file", "no-log-file")
	rootCmd.MarkFlagsMutuallyExclusive("pb", "no-pb")

	rootCmd.AddCommand(NewSubmitCmd())
	rootCmd.AddCommand(NewReadLogCmd())
	rootCmd.AddCommand(NewKillCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())

	return rootCmd
}

func (s *session) preRun(cmd *cobra.Command, args []string) error {
	display := ui.NewDisplayConfig(cmd)

	cfg, err := config.Load()
	if err != nil {
		return ui.NewConfigurationError(fmt.Errorf("failed to load config: %w", err))
	}
	if err := applyServerFlags(cmd, cfg); err != nil {
		return ui.NewValidationError(err)
	}

	bugsnag.Initialize(cfg)
	bugsnag.SetCommandContext(cmd.CommandPath(), args)

	opts, err := logOptions(cmd, cfg, display)
	if err != nil {
		return ui.NewValidationError(err)
	}
	cleanup, logFile, err := logrium.Setup(opts)
	if err != nil {
		return ui.NewFileSystemError(err)
	}
	s.close()
	s.cleanup = cleanup
	if logFile != "" {
		slog.Info("Writing logs into file", "path", logFile)
	}

	slog.Debug("Config loaded successfully")

	// Store config and display options in context so subcommands can access them
	ctx := context.WithValue(cmd.Context(), config.GetContextKey(), cfg)
	ctx = context.WithValue(ctx, ui.GetDisplayConfigContextKey(), display)
	cmd.SetContext(ctx)

	// Run version check (skip for version and config commands)
	if cmd.Name() != "version" && (cmd.Parent() == nil || cmd.Parent().Name() != "config") {
		version.PrintUpdateNotification(ctx, cmd.ErrOrStderr(), cfg.Root.SkipVersionCheck)
	}
	return nil
}

// applyServerFlags lets --api-url and --tz override the config file.
func applyServerFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("api-url") {
		cfg.Root.APIURL, _ = cmd.Flags().GetString("api-url")
	}
	if cmd.Flags().Changed("tz") {
		cfg.Root.Timezone, _ = cmd.Flags().GetString("tz")
	}
	_, err := cfg.Location()
	return err
}

func logOptions(cmd *cobra.Command, cfg *config.Config, display ui.DisplayConfig) (logrium.Options, error) {
	flags := cmd.Flags()

	opts := logrium.Options{
		Level:            slog.LevelInfo,
		TimeFormat:       cfg.Logs.FormatTime,
		NoColor:          !display.ColorEnabled(),
		HighlightLoggers: cfg.Logs.HighlightLoggers,
		HideLoggers:      cfg.Logs.HideLoggers,
		WithProgressbar:  cfg.Logs.WithProgressbar,
		OutputFile:       cfg.Logs.OutputFile,
		FileLevel:        cfg.LogfileLevel(),
		Writer:           cmd.ErrOrStderr(),
	}

	if v, _ := flags.GetBool("verbose"); v {
		opts.Level = slog.LevelDebug
	}
	if q, _ := flags.GetBool("quiet"); q {
		opts.Level = slog.LevelWarn
	}

	if flags.Changed("log-file") {
		opts.OutputFile = true
		if path, _ := flags.GetString("log-file"); path != autoLogFile {
			opts.LogFile = path
		}
	}
	if off, _ := flags.GetBool("no-log-file"); off {
		opts.OutputFile = false
	}
	if flags.Changed("log-file-level") {
		raw, _ := flags.GetString("log-file-level")
		level, err := config.ParseLevel(raw)
		if err != nil {
			return opts, err
		}
		opts.FileLevel = level
	}

	highlight, _ := flags.GetStringSlice("highlight-logger")
	opts.HighlightLoggers = append(append([]string{}, opts.HighlightLoggers...), highlight...)
	hide, _ := flags.GetStringSlice("hide-logger")
	opts.HideLoggers = append(append([]string{}, opts.HideLoggers...), hide...)

	if on, _ := flags.GetBool("pb"); on {
		opts.WithProgressbar = true
	}
	if off, _ := flags.GetBool("no-pb"); off {
		opts.WithProgressbar = false
	}

	return opts, nil
}

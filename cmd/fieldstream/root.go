package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deepankarm/fieldstream/pkg/fieldstream"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	field      string
	typed      bool
	salvage    bool

	cfg    *Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "fieldstream",
		Short:         "Stream one string field out of a model's JSON output",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `fieldstream reads a model's output token by token and prints the text of
one JSON field as soon as it arrives. Output that is not a JSON object is
printed unchanged.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console, json")
	flags.StringVar(&a.field, "field", "", "JSON field to stream")
	flags.BoolVar(&a.typed, "typed", false, "expect a SpokenResponse object and validate it")
	flags.BoolVar(&a.salvage, "salvage", false, "try to recover trailing text from malformed output")

	cmd.AddCommand(newExtractCmd(a), newServeCmd(a), newChatCmd(a))
	return cmd
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if a.field != "" {
		cfg.Field = a.field
	}
	if a.typed {
		cfg.Schema = "typed"
	}
	if a.salvage {
		cfg.Salvage = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// streamOptions returns the extraction options shared by every command.
func (a *app) streamOptions() ([]fieldstream.Option, error) {
	s, err := a.cfg.StreamSchema()
	if err != nil {
		return nil, err
	}
	opts := []fieldstream.Option{
		fieldstream.WithSchema(s),
		fieldstream.WithLogger(a.logger),
	}
	if a.cfg.Salvage {
		opts = append(opts, fieldstream.WithSalvage())
	}
	return opts, nil
}

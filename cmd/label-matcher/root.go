package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/label-matcher/constants"
	"github.com/joseph-ayodele/label-matcher/internal/common"
)

// version is set at build time via -ldflags.
var version = "dev"

type globalFlags struct {
	catalog   string
	source    string
	sheet     string
	oracle    string
	model     string
	logLevel  string
	logFormat string
}

type cli struct {
	flags  globalFlags
	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "label-matcher",
		Short: "Match OCR text from flower box labels to catalog varieties",
		Long: "label-matcher resolves OCR text captured from flower box labels to a variety\n" +
			"in the offers catalog, asking a local language model first and falling back\n" +
			"to heuristic scoring and label layout rules.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&c.flags.catalog, "catalog", "", "catalog file, or sqlite database (overrides CATALOG_PATH)")
	f.StringVar(&c.flags.source, "source", "", "catalog source: json, xlsx, postgres, mysql, sqlite (overrides CATALOG_SOURCE)")
	f.StringVar(&c.flags.sheet, "sheet", "", "xlsx sheet name (overrides CATALOG_SHEET)")
	f.StringVar(&c.flags.oracle, "oracle", "", "oracle provider: ollama, openai, none (overrides ORACLE_PROVIDER)")
	f.StringVar(&c.flags.model, "model", "", "oracle model (overrides ORACLE_MODEL)")
	f.StringVar(&c.flags.logLevel, "log-level", "", "debug, info, warn, error (overrides LOG_LEVEL)")
	f.StringVar(&c.flags.logFormat, "log-format", "", "text or json (overrides LOG_FORMAT)")

	root.AddCommand(newServeCmd(c))
	root.AddCommand(newResolveCmd(c))
	root.AddCommand(newBatchCmd(c))
	root.AddCommand(newCatalogCmd(c))
	return root
}

// setup loads the environment config, applies flag overrides and installs the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg := common.LoadConfig()
	fl := cmd.Flags()

	if fl.Changed("catalog") {
		cfg.Catalog.Path = c.flags.catalog
		if !fl.Changed("source") {
			if kind, ok := constants.SourceKindFromPath(c.flags.catalog); ok {
				cfg.Catalog.Source = kind
			}
		}
	}
	if fl.Changed("source") {
		kind, ok := constants.ParseSourceKind(c.flags.source)
		if !ok {
			return fmt.Errorf("unknown catalog source %q", c.flags.source)
		}
		cfg.Catalog.Source = kind
	}
	if fl.Changed("sheet") {
		cfg.Catalog.Sheet = c.flags.sheet
	}
	if fl.Changed("oracle") {
		cfg.Oracle.Provider = strings.ToLower(c.flags.oracle)
	}
	if fl.Changed("model") {
		cfg.Oracle.Model = c.flags.model
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = c.flags.logLevel
	}
	if fl.Changed("log-format") {
		cfg.Log.Format = c.flags.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = newLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(c.logger)
	return nil
}

// newLogger writes to w so command output on stdout stays machine readable.
func newLogger(cfg common.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

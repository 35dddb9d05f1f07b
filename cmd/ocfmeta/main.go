package main

import (
	"os"
	"path/filepath"

	"github.com/bsm/ocfmeta"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg *Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := new(app)

	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:          "ocfmeta",
		Short:        "Inspect Avro object container files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}

			// flags take precedence over the config file
			flags := cmd.Flags()
			if flags.Changed("max-rows") {
				cfg.Parse.MaxRows, _ = flags.GetInt64("max-rows")
			}
			if flags.Changed("first-row") {
				cfg.Parse.FirstRow, _ = flags.GetInt64("first-row")
			}
			if flags.Changed("format") {
				cfg.Output.Format, _ = flags.GetString("format")
			}
			if verbose {
				cfg.Log.Level = "debug"
			}
			if err := cfg.validate(); err != nil {
				return err
			}

			if a.log, err = newLogger(cfg.Log.Level); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a TOML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.Int64("max-rows", 0, "stop indexing blocks after this many rows (0 = unlimited)")
	pf.Int64("first-row", 0, "number of leading rows to skip")

	root.AddCommand(
		inspectCommand(a),
		schemaCommand(a),
	)
	return root
}

func inspectCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>...",
		Short: "Print header metadata and the block index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]*fileReport, 0, len(args))
			for _, path := range args {
				md, err := a.parseFile(path)
				if err != nil {
					return err
				}
				reports = append(reports, newFileReport(filepath.Base(path), md))
			}
			return writeReports(cmd.OutOrStdout(), a.cfg.Output.Format, reports)
		},
	}
	cmd.Flags().String("format", formatTable, "output format: table, yaml or json")
	return cmd
}

func schemaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <file>",
		Short: "Print the schema tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := a.parseFile(args[0])
			if err != nil {
				return err
			}
			return writeSchemaTree(cmd.OutOrStdout(), md.Schema)
		},
	}
}

func (a *app) parseFile(path string) (*ocfmeta.FileMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		a.log.Error("read failed", zap.String("file", path), zap.Error(err))
		return nil, err
	}

	md, err := ocfmeta.Parse(data, a.cfg.parseOptions())
	if err != nil {
		a.log.Error("parse failed", zap.String("file", path), zap.Error(err))
		return nil, err
	}

	a.log.Debug("parsed",
		zap.String("file", path),
		zap.Int("size", len(data)),
		zap.String("codec", md.Codec),
		zap.Int("schema_entries", len(md.Schema)),
		zap.Int("blocks", len(md.Blocks)),
		zap.Int64("rows", md.NumRows),
	)
	return md, nil
}

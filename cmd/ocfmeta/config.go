package main

import (
	"github.com/BurntSushi/toml"
	"github.com/bsm/ocfmeta"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Output formats.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// Config is the tool configuration, usually loaded from a TOML file.
type Config struct {
	Parse struct {
		MaxRows        int64 `toml:"max_rows"`
		FirstRow       int64 `toml:"first_row"`
		MaxSchemaDepth int   `toml:"max_schema_depth"`
	} `toml:"parse"`

	Output struct {
		Format string `toml:"format"`
	} `toml:"output"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func defaultConfig() *Config {
	cfg := new(Config)
	cfg.Parse.MaxSchemaDepth = ocfmeta.DefaultMaxSchemaDepth
	cfg.Output.Format = formatTable
	cfg.Log.Level = "warn"
	return cfg
}

// LoadConfig reads a config file on top of the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) != 0 {
		return nil, errors.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Output.Format {
	case formatTable, formatYAML, formatJSON:
	default:
		return errors.Errorf("unknown output format %q", c.Output.Format)
	}
	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func (c *Config) parseOptions() *ocfmeta.ParseOptions {
	return &ocfmeta.ParseOptions{
		MaxRows:        c.Parse.MaxRows,
		FirstRow:       c.Parse.FirstRow,
		MaxSchemaDepth: c.Parse.MaxSchemaDepth,
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

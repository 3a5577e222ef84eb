// Package config loads the generator settings.
//
// A config file is optional. YAML files are decoded strictly; CUE and JSON
// files are compiled with CUE, so a .cue file may use CUE defaults and
// comments. Unset fields take the defaults of Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Default locations, relative to the working directory of the run.
const (
	DefaultBPPath   = "BP"
	DefaultRPPath   = "RP"
	DefaultDataPath = "data/shapescape_content_guide_generator"
	DefaultDatabase = ":memory:"

	templateFile = "TEMPLATE.md"
	outputFile   = "OUTPUT.md"
)

// Config holds the settings of a generation run.
type Config struct {
	BPPath   string `yaml:"bp_path" json:"bp_path"`
	RPPath   string `yaml:"rp_path" json:"rp_path"`
	DataPath string `yaml:"data_path" json:"data_path"`

	// Template and Output default to files in DataPath.
	Template string `yaml:"template" json:"template"`
	Output   string `yaml:"output" json:"output"`

	// Database is the SQLite file of the pack index.
	Database string `yaml:"database" json:"database"`

	KeepCustomFields bool `yaml:"keep_custom_fields" json:"keep_custom_fields"`

	// BreakOnWarnings turns any reported diagnostic into a failed run.
	BreakOnWarnings bool `yaml:"break_on_warnings" json:"break_on_warnings"`

	LogMode string `yaml:"log_mode" json:"log_mode"`
}

// Default returns the settings used without a config file.
func Default() Config {
	return Config{
		BPPath:   DefaultBPPath,
		RPPath:   DefaultRPPath,
		DataPath: DefaultDataPath,
		Database: DefaultDatabase,
		LogMode:  "development",
	}
}

// Load reads the config file at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".cue", ".json":
		v := cuecontext.New().CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return cfg, fmt.Errorf("failed to compile config: %w", err)
		}
		if err := v.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to decode config: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that every path is set and the log mode is known.
func (c Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"bp_path", c.BPPath},
		{"rp_path", c.RPPath},
		{"data_path", c.DataPath},
		{"database", c.Database},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s is empty", f.name)
		}
	}
	switch c.LogMode {
	case "", "development", "dev", "production", "prod":
	default:
		return fmt.Errorf("unknown log_mode %q", c.LogMode)
	}
	return nil
}

// TemplatePath returns the template file of the run.
func (c Config) TemplatePath() string {
	if c.Template != "" {
		return c.Template
	}
	return filepath.Join(c.DataPath, templateFile)
}

// OutputPath returns the file the guide is written to.
func (c Config) OutputPath() string {
	if c.Output != "" {
		return c.Output
	}
	return filepath.Join(c.DataPath, outputFile)
}

// Package config loads relapse settings from layered TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrNotANumber is reported for a NaN gap threshold.
var ErrNotANumber = errors.New("value is not a number")

// ProjectFile is looked up in the current working directory.
const ProjectFile = ".relapse.toml"

// Config holds all configurable relapse settings.
type Config struct {
	MaxGapSeconds  *float64 `toml:"max_gap_seconds"` // nil means unset
	Filter         string   `toml:"filter"`          // "all" | "docs" | "code"
	Format         string   `toml:"format"`          // "relative" | "absolute" | "name"
	Output         string   `toml:"output"`          // archive path for zip
	Tool           string   `toml:"tool"`            // external program for code2prompt
	Bins           int      `toml:"bins"`
	Width          int      `toml:"width"`
	Height         int      `toml:"height"`
	IgnorePatterns []string `toml:"ignore_patterns"`
	LogLevel       string   `toml:"log_level"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	gap := 120.0
	return Config{
		MaxGapSeconds:  &gap,
		Filter:         "all",
		Format:         "relative",
		Output:         "batch.tar.gz",
		Tool:           "code2prompt",
		Bins:           60,
		Width:          100,
		Height:         20,
		IgnorePatterns: []string{},
		LogLevel:       "warn",
	}
}

// Gap returns the configured gap threshold in seconds.
func (c Config) Gap() float64 {
	if c.MaxGapSeconds == nil {
		return *Defaults().MaxGapSeconds
	}
	return *c.MaxGapSeconds
}

// GlobalPath returns $XDG_CONFIG_HOME/relapse/config.toml, falling back to
// ~/.config/relapse/config.toml.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "relapse", "config.toml"), nil
}

// LoadGlobal reads the user config file.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads .relapse.toml in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(ProjectFile, false)
}

// loadFile reads and parses a TOML config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if cfg.MaxGapSeconds != nil && math.IsNaN(*cfg.MaxGapSeconds) {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("max_gap_seconds: %w", ErrNotANumber)}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer != nil {
			apply(&result, layer)
		}
	}
	return result
}

// apply copies every set field of src over dst.
func apply(dst, src *Config) {
	if src.MaxGapSeconds != nil {
		v := *src.MaxGapSeconds
		dst.MaxGapSeconds = &v
	}
	if src.Filter != "" {
		dst.Filter = src.Filter
	}
	if src.Format != "" {
		dst.Format = src.Format
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.Tool != "" {
		dst.Tool = src.Tool
	}
	if src.Bins != 0 {
		dst.Bins = src.Bins
	}
	if src.Width != 0 {
		dst.Width = src.Width
	}
	if src.Height != 0 {
		dst.Height = src.Height
	}
	if len(src.IgnorePatterns) > 0 {
		dst.IgnorePatterns = src.IgnorePatterns
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
}

// ApplyEnv overlays RELAPSE_* environment variables onto cfg.
// Returns an error if a numeric variable cannot be parsed.
func ApplyEnv(cfg *Config) error {
	var env Config

	if v := os.Getenv("RELAPSE_MAX_GAP_SECONDS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RELAPSE_MAX_GAP_SECONDS: %w", err)
		}
		if math.IsNaN(f) {
			return fmt.Errorf("RELAPSE_MAX_GAP_SECONDS: %w", ErrNotANumber)
		}
		env.MaxGapSeconds = &f
	}
	for name, dst := range map[string]*int{
		"RELAPSE_BINS":   &env.Bins,
		"RELAPSE_WIDTH":  &env.Width,
		"RELAPSE_HEIGHT": &env.Height,
	} {
		if v := os.Getenv(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = n
		}
	}
	env.Filter = os.Getenv("RELAPSE_FILTER")
	env.Format = os.Getenv("RELAPSE_FORMAT")
	env.Output = os.Getenv("RELAPSE_OUTPUT")
	env.Tool = os.Getenv("RELAPSE_TOOL")
	env.LogLevel = os.Getenv("RELAPSE_LOG_LEVEL")
	if v := os.Getenv("RELAPSE_IGNORE"); v != "" {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				env.IgnorePatterns = append(env.IgnorePatterns, p)
			}
		}
	}

	apply(cfg, &env)
	return nil
}

// Load merges defaults, the global file, the project file and the
// environment, in increasing order of precedence.
func Load() (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, fmt.Errorf("loading global config: %w", err)
	}
	project, err := LoadProject()
	if err != nil {
		return Config{}, fmt.Errorf("loading project config: %w", err)
	}
	cfg := Merge(global, project)
	if err := ApplyEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	return cfg, nil
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

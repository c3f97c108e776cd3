package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/blockstorm/internal/dnd"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "BLOCKSTORM_"

// Config holds all settings.
type Config struct {
	Drag     DragConfig     `toml:"drag"`
	History  HistoryConfig  `toml:"history"`
	Log      LogConfig      `toml:"log"`
	Handlers HandlersConfig `toml:"handlers"`
	Store    StoreConfig    `toml:"store"`
}

// DragConfig holds the drag classification thresholds, as fractions of
// the target rectangle, and the indicator metrics in pixels.
type DragConfig struct {
	VerticalTop        float64  `toml:"vertical_top"`
	VerticalBottom     float64  `toml:"vertical_bottom"`
	HorizontalLeft     float64  `toml:"horizontal_left"`
	HorizontalRight    float64  `toml:"horizontal_right"`
	IndicatorWidth     float64  `toml:"indicator_width"`
	IndicatorThickness float64  `toml:"indicator_thickness"`
	NestIndent         float64  `toml:"nest_indent"`
	NestGap            float64  `toml:"nest_gap"`
	NonNestable        []string `toml:"non_nestable"`
}

// HistoryConfig configures undo.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// HandlersConfig lists Lua scripts that register node-type handlers.
type HandlersConfig struct {
	Scripts []string `toml:"scripts"`
}

// StoreConfig configures the change log database.
type StoreConfig struct {
	// Path is the sqlite file; empty disables persistence.
	Path string `toml:"path"`
}

// Default returns the built-in settings.
func Default() *Config {
	d := dnd.DefaultConfig()
	return &Config{
		Drag: DragConfig{
			VerticalTop:        d.VerticalTop,
			VerticalBottom:     d.VerticalBottom,
			HorizontalLeft:     d.HorizontalLeft,
			HorizontalRight:    d.HorizontalRight,
			IndicatorWidth:     d.IndicatorWidth,
			IndicatorThickness: d.IndicatorThickness,
			NestIndent:         d.NestIndent,
			NestGap:            d.NestGap,
			NonNestable:        append([]string(nil), d.NonNestable...),
		},
		History: HistoryConfig{MaxEntries: 1000},
		Log:     LogConfig{Level: "info"},
	}
}

// Resolver converts the drag section to resolver settings.
func (d DragConfig) Resolver() dnd.Config {
	return dnd.Config{
		VerticalTop:        d.VerticalTop,
		VerticalBottom:     d.VerticalBottom,
		HorizontalLeft:     d.HorizontalLeft,
		HorizontalRight:    d.HorizontalRight,
		IndicatorWidth:     d.IndicatorWidth,
		IndicatorThickness: d.IndicatorThickness,
		NestIndent:         d.NestIndent,
		NestGap:            d.NestGap,
		NonNestable:        append([]string(nil), d.NonNestable...),
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		data = nil
	}
	cfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults. Unknown keys are rejected.
func Parse(source string, data []byte) (*Config, error) {
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		var serr *toml.StrictMissingError
		if errors.As(err, &serr) {
			perr.Message = serr.String()
		}
		return nil, perr
	}
	return cfg, nil
}

// Encode returns the settings as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// applyEnv overrides settings from BLOCKSTORM_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvPrefix + "STORE_PATH"); ok {
		c.Store.Path = v
	}
	if v, ok := lookup(EnvPrefix + "HISTORY_MAX"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &ValidationError{Path: "history.max_entries", Message: "not an integer", Value: v}
		}
		c.History.MaxEntries = n
	}
	return nil
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks every section and returns all problems joined.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Drag.Resolver().Validate(); err != nil {
		errs = append(errs, &ValidationError{Path: "drag", Message: err.Error(), Value: c.Drag})
	}
	if c.History.MaxEntries <= 0 {
		errs = append(errs, &ValidationError{Path: "history.max_entries", Message: "must be positive", Value: c.History.MaxEntries})
	}
	valid := false
	for _, l := range logLevels {
		if strings.EqualFold(c.Log.Level, l) {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "unknown level", Value: c.Log.Level})
	}
	for i, s := range c.Handlers.Scripts {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, &ValidationError{Path: fmt.Sprintf("handlers.scripts[%d]", i), Message: "empty path", Value: s})
		}
	}
	return errors.Join(errs...)
}

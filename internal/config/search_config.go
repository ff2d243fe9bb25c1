// Package config loads the traitcalc command configuration.
//
// Values resolve with the precedence flags > TRAITCALC_* environment
// variables > config file > defaults. Keys use the flag spelling
// ("max-cost"); the environment form upper-cases them and replaces dashes
// with underscores (TRAITCALC_MAX_COST).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/traitcalc/traitcalc/internal/logging"
	pkgconfig "github.com/traitcalc/traitcalc/pkg/config"
	"github.com/traitcalc/traitcalc/pkg/core"
	"github.com/traitcalc/traitcalc/pkg/solver"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRAITCALC"

// Configuration keys.
const (
	KeyConfig              = "config"
	KeyTraits              = "traits"
	KeyCosts               = "costs"
	KeyOutput              = "output"
	KeyStartUnits          = "start-units"
	KeyMaxUnits            = "max-units"
	KeyMaxCost             = "max-cost"
	KeyRequired            = "required"
	KeySkipUnknownRequired = "skip-unknown-required"
	KeyMinRegions          = "min-regions"
	KeyRegions             = "regions"
	KeyWorkers             = "workers"
	KeyTimeout             = "timeout"
	KeyMetricsFile         = "metrics-file"
	KeyLogLevel            = "log-level"
	KeyLogFormat           = "log-format"
	KeyBest                = "best"
	KeyTop                 = "top"
	KeyUnits               = "units"
	KeyLimit               = "limit"
	KeyTraitsOut           = "traits-out"
	KeyCostsOut            = "costs-out"
)

// Defaults for the command level settings. Search parameter defaults live in
// pkg/config.
const (
	DefaultTraitsPath = "traits.json"
	DefaultCostsPath  = "costs.json"
	DefaultOutputPath = "combos.json"
	DefaultWorkers    = 1
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultBest       = 5
	DefaultTop        = 10
	DefaultLimit      = 100
)

// LoggingConfig selects the log output.
type LoggingConfig struct {
	Level  string
	Format string
}

// Validate checks the level and format names.
func (c *LoggingConfig) Validate() error {
	if _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "text", "console", "json":
		return nil
	default:
		return fmt.Errorf("log format must be one of text, console, json, got %q", c.Format)
	}
}

// TablesConfig locates the reference tables and names the target regions.
type TablesConfig struct {
	TraitsPath string
	CostsPath  string

	// Regions replaces the default target-region list when non-empty.
	Regions []string
}

// Validate checks that both table paths are set.
func (c *TablesConfig) Validate() error {
	if c.TraitsPath == "" {
		return fmt.Errorf("%s path must be set", KeyTraits)
	}
	if c.CostsPath == "" {
		return fmt.Errorf("%s path must be set", KeyCosts)
	}
	return nil
}

// RegionSet returns the configured target regions, or the default list.
func (c *TablesConfig) RegionSet() core.RegionSet {
	if len(c.Regions) == 0 {
		return core.DefaultRegionSet()
	}
	return core.NewRegionSet(c.Regions...)
}

// TablesFromViper resolves a TablesConfig from v and validates it.
func TablesFromViper(v *viper.Viper) (*TablesConfig, error) {
	c := &TablesConfig{
		TraitsPath: v.GetString(KeyTraits),
		CostsPath:  v.GetString(KeyCosts),
		Regions:    StringList(v, KeyRegions),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// SearchConfig is the resolved configuration of a search run.
type SearchConfig struct {
	TablesConfig

	OutputPath string

	Search pkgconfig.SearchSpec

	// SkipUnknownRequired drops required units that are not eligible
	// candidates instead of failing.
	SkipUnknownRequired bool

	// Workers bounds the concurrent search tasks.
	Workers int

	// Timeout stops the search early, keeping partial results. Zero disables it.
	Timeout time.Duration

	// MetricsFile receives a Prometheus text dump of the run when set.
	MetricsFile string

	Logging LoggingConfig
}

// NewViper returns a viper instance with defaults and environment
// overrides wired.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyTraits, DefaultTraitsPath)
	v.SetDefault(KeyCosts, DefaultCostsPath)
	v.SetDefault(KeyOutput, DefaultOutputPath)
	v.SetDefault(KeyStartUnits, pkgconfig.DefaultStartUnits)
	v.SetDefault(KeyMaxUnits, pkgconfig.DefaultMaxUnits)
	v.SetDefault(KeyMaxCost, pkgconfig.DefaultMaxCost)
	v.SetDefault(KeyRequired, []string{})
	v.SetDefault(KeySkipUnknownRequired, false)
	v.SetDefault(KeyMinRegions, pkgconfig.DefaultMinRegions)
	v.SetDefault(KeyRegions, []string{})
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyTimeout, time.Duration(0))
	v.SetDefault(KeyMetricsFile, "")
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyBest, DefaultBest)
	v.SetDefault(KeyTop, DefaultTop)
	v.SetDefault(KeyUnits, []string{})
	v.SetDefault(KeyLimit, DefaultLimit)
}

// BindFlags makes the flags in fs override every other source.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// ReadConfigFile merges the config file at path into v. The format follows
// the file extension (YAML, JSON or TOML). An empty path is a no-op.
func ReadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	logging.Log.V(logging.DEBUG).Info("Loaded config file", "path", path)
	return nil
}

// LoggingFromViper resolves the logging section only. Commands call it
// before anything else so that later failures are logged as configured.
func LoggingFromViper(v *viper.Viper) (LoggingConfig, error) {
	c := LoggingConfig{Level: v.GetString(KeyLogLevel), Format: v.GetString(KeyLogFormat)}
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid logging config: %w", err)
	}
	return c, nil
}

// FromViper resolves a SearchConfig from v and validates it.
func FromViper(v *viper.Viper) (*SearchConfig, error) {
	c := &SearchConfig{
		TablesConfig: TablesConfig{
			TraitsPath: v.GetString(KeyTraits),
			CostsPath:  v.GetString(KeyCosts),
			Regions:    StringList(v, KeyRegions),
		},
		OutputPath: v.GetString(KeyOutput),
		Search: pkgconfig.SearchSpec{
			StartUnits:    v.GetInt(KeyStartUnits),
			MaxUnits:      v.GetInt(KeyMaxUnits),
			MaxCost:       v.GetInt(KeyMaxCost),
			RequiredUnits: StringList(v, KeyRequired),
			MinRegions:    v.GetInt(KeyMinRegions),
		},
		SkipUnknownRequired: v.GetBool(KeySkipUnknownRequired),
		Workers:             v.GetInt(KeyWorkers),
		Timeout:             v.GetDuration(KeyTimeout),
		MetricsFile:         v.GetString(KeyMetricsFile),
		Logging: LoggingConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks for invalid configuration values.
func (c *SearchConfig) Validate() error {
	if err := c.TablesConfig.Validate(); err != nil {
		return err
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%s path must be set", KeyOutput)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("invalid search parameters: %w", err)
	}
	return nil
}

// RequiredPolicy maps SkipUnknownRequired to the solver policy.
func (c *SearchConfig) RequiredPolicy() solver.RequiredPolicy {
	if c.SkipUnknownRequired {
		return solver.RequiredPolicySkip
	}
	return solver.RequiredPolicyFail
}

// StringList reads a list value. Strings, as they come from the
// environment, are split on commas; identifiers may contain spaces.
func StringList(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
	case string:
		raw = strings.Split(val, ",")
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, fmt.Sprint(item))
		}
	default:
		raw = v.GetStringSlice(key)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

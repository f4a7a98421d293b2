// Package config loads and validates engine configuration. A Config is
// built once at engine construction and treated as immutable for the
// lifetime of a search; bad settings are rejected here, never
// discovered mid-search.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the parameter bag for the search engine. Heuristic toggles
// are explicit fields checked at decision points, so behavior stays
// testable and swappable at runtime.
type Config struct {
	// TTMemFraction is the fraction of system memory given to the
	// transposition table. Zero disables the table.
	TTMemFraction float64 `mapstructure:"tt-mem-fraction"`
	// TTMinPower floors the table at 2^TTMinPower entries regardless of
	// memory fraction, so small machines still get a usable table.
	TTMinPower int `mapstructure:"tt-min-power"`

	Threads int `mapstructure:"threads"`

	UseNullMove          bool `mapstructure:"use-null-move"`
	NullMoveMinDepth     int  `mapstructure:"null-move-min-depth"`
	NullMoveVerifyDepth  int  `mapstructure:"null-move-verify-depth"`
	UseIID               bool `mapstructure:"use-iid"`
	IIDMinDepth          int  `mapstructure:"iid-min-depth"`
	UseLMR               bool `mapstructure:"use-lmr"`
	LMRMinDepth          int  `mapstructure:"lmr-min-depth"`
	LMRMoveThreshold     int  `mapstructure:"lmr-move-threshold"`
	UseFutility          bool `mapstructure:"use-futility"`
	FutilityMargins      []int `mapstructure:"futility-margins"`
	UseAspiration        bool  `mapstructure:"use-aspiration"`
	AspirationWindow     int   `mapstructure:"aspiration-window"`
	UseKillers           bool  `mapstructure:"use-killers"`
	UseHistory           bool  `mapstructure:"use-history"`
	UseCounterMoves      bool  `mapstructure:"use-counter-moves"`
	UseOrderingCache     bool  `mapstructure:"use-ordering-cache"`
	OrderingCacheEntries int   `mapstructure:"ordering-cache-entries"`

	// QSMaxPly hard-caps quiescence recursion independent of tactical
	// activity; QSCheckDepth is how many quiescence plies may include
	// checking moves.
	QSMaxPly     int   `mapstructure:"qs-max-ply"`
	QSCheckDepth int   `mapstructure:"qs-check-depth"`
	DeltaMargin  int   `mapstructure:"delta-margin"`

	// ZugzwangMaterial is the side-to-move non-pawn material threshold
	// below which null-move pruning is skipped.
	ZugzwangMaterial int `mapstructure:"zugzwang-material"`

	MaxDepth int `mapstructure:"max-depth"`
}

const envPrefix = "SENTE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("tt-mem-fraction", 0.10)
	v.SetDefault("tt-min-power", 18)
	v.SetDefault("threads", 1)
	v.SetDefault("use-null-move", true)
	v.SetDefault("null-move-min-depth", 3)
	v.SetDefault("null-move-verify-depth", 6)
	v.SetDefault("use-iid", true)
	v.SetDefault("iid-min-depth", 5)
	v.SetDefault("use-lmr", true)
	v.SetDefault("lmr-min-depth", 3)
	v.SetDefault("lmr-move-threshold", 4)
	v.SetDefault("use-futility", true)
	v.SetDefault("futility-margins", []int{0, 150, 400})
	v.SetDefault("use-aspiration", true)
	v.SetDefault("aspiration-window", 50)
	v.SetDefault("use-killers", true)
	v.SetDefault("use-history", true)
	v.SetDefault("use-counter-moves", true)
	v.SetDefault("use-ordering-cache", false)
	v.SetDefault("ordering-cache-entries", 1<<14)
	v.SetDefault("qs-max-ply", 16)
	v.SetDefault("qs-check-depth", 2)
	v.SetDefault("delta-margin", 200)
	v.SetDefault("zugzwang-material", 600)
	v.SetDefault("max-depth", 40)
}

// Default returns the built-in configuration, already validated.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		panic(err) // defaults always decode
	}
	return c
}

// Load reads configuration from an optional file plus SENTE_* env
// overrides, merged over the defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects configurations the search cannot run with.
func (c Config) Validate() error {
	if c.TTMemFraction < 0 || c.TTMemFraction > 0.9 {
		return fmt.Errorf("tt-mem-fraction %v out of range [0, 0.9]", c.TTMemFraction)
	}
	if c.TTMinPower < 10 || c.TTMinPower > 32 {
		return fmt.Errorf("tt-min-power %d out of range [10, 32]", c.TTMinPower)
	}
	if c.Threads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", c.Threads)
	}
	if c.UseNullMove && c.NullMoveMinDepth < 2 {
		return fmt.Errorf("null-move-min-depth must be at least 2, got %d", c.NullMoveMinDepth)
	}
	if c.UseIID && c.IIDMinDepth < 3 {
		return fmt.Errorf("iid-min-depth must be at least 3, got %d", c.IIDMinDepth)
	}
	if c.UseFutility {
		if len(c.FutilityMargins) < 2 {
			return errors.New("futility-margins needs an entry per frontier depth")
		}
		for i, m := range c.FutilityMargins {
			if m < 0 {
				return fmt.Errorf("futility-margins[%d] = %d is negative", i, m)
			}
		}
	}
	if c.UseAspiration && c.AspirationWindow <= 0 {
		return fmt.Errorf("aspiration-window must be positive, got %d", c.AspirationWindow)
	}
	if c.QSMaxPly < 1 || c.QSMaxPly > 64 {
		return fmt.Errorf("qs-max-ply %d out of range [1, 64]", c.QSMaxPly)
	}
	if c.QSCheckDepth < 0 || c.QSCheckDepth > c.QSMaxPly {
		return fmt.Errorf("qs-check-depth %d out of range [0, qs-max-ply]", c.QSCheckDepth)
	}
	if c.DeltaMargin < 0 {
		return fmt.Errorf("delta-margin %d is negative", c.DeltaMargin)
	}
	if c.UseOrderingCache && c.OrderingCacheEntries < 1 {
		return errors.New("ordering-cache-entries must be positive when the cache is enabled")
	}
	if c.MaxDepth < 1 || c.MaxDepth > 64 {
		return fmt.Errorf("max-depth %d out of range [1, 64]", c.MaxDepth)
	}
	return nil
}

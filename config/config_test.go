package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func TestDefaultIsValid(t *testing.T) {
	is := is.New(t)
	cfg := Default()
	is.NoErr(cfg.Validate())
	is.Equal(cfg.Threads, 1)
	is.True(cfg.UseNullMove)
	is.True(cfg.QSMaxPly > 0)
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative tt fraction", func(c *Config) { c.TTMemFraction = -0.5 }},
		{"tt power too small", func(c *Config) { c.TTMinPower = 4 }},
		{"zero threads", func(c *Config) { c.Threads = 0 }},
		{"null move depth", func(c *Config) { c.NullMoveMinDepth = 1 }},
		{"iid depth", func(c *Config) { c.IIDMinDepth = 1 }},
		{"no futility margins", func(c *Config) { c.FutilityMargins = nil }},
		{"negative futility margin", func(c *Config) { c.FutilityMargins = []int{0, -10} }},
		{"aspiration window", func(c *Config) { c.AspirationWindow = 0 }},
		{"qs max ply", func(c *Config) { c.QSMaxPly = 0 }},
		{"qs check depth", func(c *Config) { c.QSCheckDepth = 100 }},
		{"delta margin", func(c *Config) { c.DeltaMargin = -1 }},
		{"ordering cache entries", func(c *Config) { c.UseOrderingCache = true; c.OrderingCacheEntries = 0 }},
		{"max depth", func(c *Config) { c.MaxDepth = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "sente.yaml")
	err := os.WriteFile(path, []byte("threads: 3\nqs-max-ply: 8\n"), 0o644)
	is.NoErr(err)

	cfg, err := Load(path)
	is.NoErr(err)
	is.Equal(cfg.Threads, 3)
	is.Equal(cfg.QSMaxPly, 8)
	// untouched keys keep their defaults
	is.Equal(cfg.MaxDepth, Default().MaxDepth)
}

func TestEnvOverride(t *testing.T) {
	is := is.New(t)
	t.Setenv("SENTE_THREADS", "5")
	t.Setenv("SENTE_USE_NULL_MOVE", "false")

	cfg, err := Load("")
	is.NoErr(err)
	is.Equal(cfg.Threads, 5)
	is.True(!cfg.UseNullMove)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sente.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("threads: 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries the engine tunables. The zero value is not usable; start
// from DefaultConfig and override fields, or load overrides from YAML with
// LoadConfig.
type Config struct {
	// MaxParticles is the global ceiling on live particles across all
	// sessions. Spawning is refused past this point regardless of any
	// individual session's remaining capacity headroom.
	MaxParticles int `yaml:"max_particles"`

	// PoolBound caps the pool free list; released records above the bound
	// are dropped rather than pooled.
	PoolBound int `yaml:"pool_bound"`

	// Prewarm is the number of records manufactured up front.
	Prewarm int `yaml:"prewarm"`

	// PerfWindow is the rolling frame-time sample count.
	PerfWindow int `yaml:"perf_window"`

	// FrameBudgetMs is the hard per-frame budget (16 ms for 60 FPS).
	// Frames past it count as dropped; a rolling average past it is the
	// critical state that triggers automatic intensity downgrade.
	FrameBudgetMs float64 `yaml:"frame_budget_ms"`

	// SoftBudgetMs is the degraded-state threshold for the rolling average.
	SoftBudgetMs float64 `yaml:"soft_budget_ms"`

	// DeltaClampMs caps the wall-time delta fed into physics so a stalled
	// frame cannot produce a non-physical leap.
	DeltaClampMs float64 `yaml:"delta_clamp_ms"`

	// PreSpawnRatio is the share of an effect's capacity spawned
	// immediately when a session starts, so the effect looks "full" faster
	// than organic continuous spawning alone would achieve. A tunable, not
	// a load-bearing invariant.
	PreSpawnRatio float64 `yaml:"pre_spawn_ratio"`
}

// frameUnitMs is the wall time of one normalized frame unit (60 FPS).
const frameUnitMs = 1000.0 / 60.0

// DefaultConfig returns the stock tunables.
func DefaultConfig() Config {
	return Config{
		MaxParticles:  100,
		PoolBound:     120,
		Prewarm:       50,
		PerfWindow:    60,
		FrameBudgetMs: 16,
		SoftBudgetMs:  12,
		DeltaClampMs:  32,
		PreSpawnRatio: 0.5,
	}
}

// Validate reports the first nonsensical field, if any.
func (c Config) Validate() error {
	if c.MaxParticles <= 0 {
		return fmt.Errorf("config: max_particles must be > 0, got %d", c.MaxParticles)
	}
	if c.PoolBound <= 0 {
		return fmt.Errorf("config: pool_bound must be > 0, got %d", c.PoolBound)
	}
	if c.Prewarm < 0 {
		return fmt.Errorf("config: prewarm must be >= 0, got %d", c.Prewarm)
	}
	if c.PerfWindow <= 0 {
		return fmt.Errorf("config: perf_window must be > 0, got %d", c.PerfWindow)
	}
	if c.FrameBudgetMs <= 0 {
		return fmt.Errorf("config: frame_budget_ms must be > 0, got %g", c.FrameBudgetMs)
	}
	if c.SoftBudgetMs <= 0 || c.SoftBudgetMs > c.FrameBudgetMs {
		return fmt.Errorf("config: soft_budget_ms must be in (0, frame_budget_ms], got %g", c.SoftBudgetMs)
	}
	if c.DeltaClampMs < c.FrameBudgetMs {
		return fmt.Errorf("config: delta_clamp_ms must be >= frame_budget_ms, got %g", c.DeltaClampMs)
	}
	if c.PreSpawnRatio < 0 || c.PreSpawnRatio > 1 {
		return fmt.Errorf("config: pre_spawn_ratio must be in [0, 1], got %g", c.PreSpawnRatio)
	}
	return nil
}

// LoadConfig reads YAML overrides from path on top of DefaultConfig.
// Fields absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

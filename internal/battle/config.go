// Package battle is the single source of truth for tick-rate, grid sizing,
// and victory-check tunables. When changing a default, only modify this
// file; everything else reads through Config.
package battle

import (
	"os"
	"strconv"
)

// TickConfig holds the fixed-dt real-time loop's pacing knobs.
type TickConfig struct {
	DT             float64 // seconds per tick, 0.05-0.2 nominal
	SnapInterval   float64 // seconds between positional snapshots (nominal)
	SnapThrottled  float64 // snapshot interval once the event log is under backpressure
	FixedRoundSecs float64 // total_sim_time advance per executed round (legacy mode)
}

// DefaultTick returns the nominal tick configuration.
func DefaultTick() TickConfig {
	return TickConfig{
		DT:             0.1,
		SnapInterval:   2.0,
		SnapThrottled:  5.0,
		FixedRoundSecs: 5.0,
	}
}

// TickFromEnv overlays environment variable overrides onto DefaultTick.
func TickFromEnv() TickConfig {
	cfg := DefaultTick()
	if v := getEnvFloat("BATTLE_TICK_DT", -1); v > 0 {
		cfg.DT = v
	}
	if v := getEnvFloat("BATTLE_SNAP_INTERVAL", -1); v > 0 {
		cfg.SnapInterval = v
	}
	return cfg
}

// VictoryConfig holds the ceilings that force a decision.
type VictoryConfig struct {
	StalemateRounds   int64 // rounds_since_last_damage threshold
	ForcedDecRounds   int64 // rounds_since_last_kill threshold
	MaxRounds         int64 // legacy round-based ceiling
	MaxSimTimeSeconds float64
}

// DefaultVictory returns the default victory-check ceilings.
func DefaultVictory() VictoryConfig {
	return VictoryConfig{
		StalemateRounds:   500,
		ForcedDecRounds:   300,
		MaxRounds:         2000,
		MaxSimTimeSeconds: 3600,
	}
}

// GridConfig controls the spatial index / map sizing.
type GridConfig struct {
	QuadtreeMaxObjects int
	QuadtreeMaxDepth   int
}

// DefaultGrid returns the default quadtree tuning.
func DefaultGrid() GridConfig {
	return GridConfig{QuadtreeMaxObjects: 10, QuadtreeMaxDepth: 8}
}

// Config aggregates every tunable the battle core reads.
type Config struct {
	Tick    TickConfig
	Victory VictoryConfig
	Grid    GridConfig
}

// Load returns the complete configuration with environment overrides.
func Load() Config {
	return Config{
		Tick:    TickFromEnv(),
		Victory: DefaultVictory(),
		Grid:    DefaultGrid(),
	}
}

// gridDimensions maps total unit count to map size.
func gridDimensions(totalUnits int) (w, h int) {
	switch {
	case totalUnits < 20:
		return 30, 30
	case totalUnits < 60:
		return 50, 50
	case totalUnits >= 150:
		return 100, 100
	default:
		return 80, 80
	}
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

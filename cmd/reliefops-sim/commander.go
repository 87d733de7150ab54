package main

import (
	"context"
	"errors"
	"os"
	"time"

	"reliefops-sim/internal/commander"
	"reliefops-sim/internal/config"
	"reliefops-sim/internal/logging"
)

// newCommander picks the decision maker. A Gemini provider without an API key
// falls back to the scripted commander so the simulation still runs offline.
func newCommander(ctx context.Context, cfg *config.SimulationConfig, provider string) (commander.Commander, error) {
	if provider == "" {
		provider = cfg.Commander.Provider
	}
	log := logging.FromContext(ctx)
	if provider == config.ProviderGemini {
		c, err := commander.NewGeminiCommander(ctx, "", cfg.Commander.Model, cfg.Commander.LowFuelThreshold)
		if err == nil {
			log.Info("using gemini commander", "model", c.Model())
			return c, nil
		}
		if !errors.Is(err, commander.ErrNoAPIKey) {
			return nil, err
		}
		log.Warn("GOOGLE_API_KEY not set, falling back to scripted commander")
	}
	return commander.NewScriptedCommander(cfg.Commander.LowFuelThreshold), nil
}

// applyEnv applies CLUSTER_ID and TICK_INTERVAL overrides.
func applyEnv(cfg *config.SimulationConfig, tick time.Duration) (time.Duration, error) {
	if id := os.Getenv("CLUSTER_ID"); id != "" {
		cfg.ClusterID = id
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return 0, err
		}
		tick = d
	}
	return tick, nil
}

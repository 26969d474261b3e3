package config

import (
	"errors"
	"fmt"
)

var knownStrategies = map[string]struct{}{
	"exact":    {},
	"album":    {},
	"year":     {},
	"duration": {},
	"fuzzy":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	return c.validateMatching()
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.LockTimeout <= 0 {
		return errors.New("database.lock_timeout must be positive")
	}
	return nil
}

func (c *Config) validateMatching() error {
	m := c.Matching
	if m.FuzzyThreshold < 0 || m.FuzzyThreshold > 1 {
		return errors.New("matching.fuzzy_threshold must be between 0 and 1")
	}
	if m.DurationTolerance < 0 {
		return errors.New("matching.duration_tolerance must not be negative")
	}
	if m.MaxCandidatesPerTrack < 0 {
		return errors.New("matching.max_candidates_per_track must not be negative")
	}
	if len(m.Strategies) == 0 {
		return errors.New("matching.strategies must name at least one strategy")
	}
	seen := make(map[string]struct{}, len(m.Strategies))
	for _, name := range m.Strategies {
		if _, ok := knownStrategies[name]; !ok {
			return fmt.Errorf("matching.strategies: unknown strategy %q", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("matching.strategies: strategy %q listed twice", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

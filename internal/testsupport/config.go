// Package testsupport provides shared helpers for package tests: temp-dir
// seeded configs and pre-opened stores with registered cleanup.
package testsupport

import (
	"path/filepath"
	"testing"

	"harmonia/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

// Package config loads, validates, and defaults the TOML configuration for
// harmonia. Paths are expanded (including ~) and directories can be created
// on demand via EnsureDirectories.
package config

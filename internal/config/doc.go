// Package config loads and validates the kiln configuration.
//
// kiln runs out of the box with no configuration at all: every setting
// defaults to the constants of the manual setup procedure it replaces (the
// trellis conda environment, the studio checkout, the u2net model asset,
// the pinned PyTorch triple, and the two native extension modules).
// An optional kiln.jsonc file overrides any subset of those defaults.
//
// The configuration file is JSONC (JSON with Comments), matching the
// devcontainer.json convention, so this package uses github.com/tidwall/jsonc
// to strip comments before parsing with the standard encoding/json library.
// Paths may use a leading "~", which is expanded via go-homedir. A .env
// file next to the configuration is loaded with godotenv so the mirror
// endpoint and similar variables can be overridden per machine.
package config

// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/rebasectl/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/rebasectl/config.cue on macOS, %APPDATA%\rebasectl\config.cue
// on Windows). The package provides type-safe configuration access covering the staging
// directory for component checkouts, the manifest location, GitHub API access, and UI
// settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config

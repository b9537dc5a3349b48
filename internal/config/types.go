// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidStagingDirPath is returned when a StagingDirPath value is whitespace-only.
	ErrInvalidStagingDirPath = errors.New("invalid staging dir path")
	// ErrInvalidManifestFilePath is returned when a ManifestFilePath value is whitespace-only.
	ErrInvalidManifestFilePath = errors.New("invalid manifest file path")
	// ErrInvalidUIConfig is the sentinel error wrapped by InvalidUIConfigError.
	ErrInvalidUIConfig = errors.New("invalid UI config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// StagingDirPath represents the directory where component checkouts are
	// staged during a rebase run. The zero value ("") is valid and means
	// "use the default staging directory". Non-zero values must not be
	// whitespace-only.
	StagingDirPath string

	// InvalidStagingDirPathError is returned when a StagingDirPath value is
	// non-empty but whitespace-only.
	InvalidStagingDirPathError struct {
		Value StagingDirPath
	}

	// ManifestFilePath represents the path to the manifest (go.mod) the
	// rebase engine mutates. The zero value ("") is valid and means
	// "the go.mod in the working directory".
	ManifestFilePath string

	// InvalidManifestFilePathError is returned when a ManifestFilePath value
	// is non-empty but whitespace-only.
	InvalidManifestFilePathError struct {
		Value ManifestFilePath
	}

	// GitHubConfig holds GitHub API access settings.
	GitHubConfig struct {
		// Token authenticates changelog API requests; empty means
		// unauthenticated, which rate-limits but works for public forks.
		Token string `mapstructure:"token"`
	}

	// UIConfig holds user interface settings.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// InvalidUIConfigError is returned when a UIConfig has invalid fields.
	// It wraps ErrInvalidUIConfig for errors.Is() compatibility.
	InvalidUIConfigError struct {
		FieldErrors []error
	}

	// Config is the application configuration.
	Config struct {
		StagingDir   StagingDirPath   `mapstructure:"staging_dir"`
		ManifestPath ManifestFilePath `mapstructure:"manifest_path"`
		GitHub       GitHubConfig     `mapstructure:"github"`
		UI           UIConfig         `mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (must be %q, %q, or %q)",
		e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Validate returns nil if the ColorScheme is recognized.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// IsValid reports whether the ColorScheme is recognized.
func (c ColorScheme) IsValid() bool { return c.Validate() == nil }

// Error implements the error interface.
func (e *InvalidStagingDirPathError) Error() string {
	return fmt.Sprintf("invalid staging dir path %q (must not be whitespace-only)", e.Value)
}

// Unwrap returns ErrInvalidStagingDirPath for errors.Is() compatibility.
func (e *InvalidStagingDirPathError) Unwrap() error { return ErrInvalidStagingDirPath }

// Validate returns nil if the StagingDirPath is empty or a usable path.
func (p StagingDirPath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidStagingDirPathError{Value: p}
	}
	return nil
}

// String returns the string representation of the StagingDirPath.
func (p StagingDirPath) String() string { return string(p) }

// Error implements the error interface.
func (e *InvalidManifestFilePathError) Error() string {
	return fmt.Sprintf("invalid manifest file path %q (must not be whitespace-only)", e.Value)
}

// Unwrap returns ErrInvalidManifestFilePath for errors.Is() compatibility.
func (e *InvalidManifestFilePathError) Unwrap() error { return ErrInvalidManifestFilePath }

// Validate returns nil if the ManifestFilePath is empty or a usable path.
func (p ManifestFilePath) Validate() error {
	if p != "" && strings.TrimSpace(string(p)) == "" {
		return &InvalidManifestFilePathError{Value: p}
	}
	return nil
}

// String returns the string representation of the ManifestFilePath.
func (p ManifestFilePath) String() string { return string(p) }

// Error implements the error interface.
func (e *InvalidUIConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid UI config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidUIConfig for errors.Is() compatibility.
func (e *InvalidUIConfigError) Unwrap() error { return ErrInvalidUIConfig }

// Validate returns nil if all UIConfig fields are valid.
func (u UIConfig) Validate() error {
	var fieldErrors []error
	if err := u.ColorScheme.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if len(fieldErrors) > 0 {
		return &InvalidUIConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate returns nil if all Config fields are valid.
func (c *Config) Validate() error {
	var fieldErrors []error
	if err := c.StagingDir.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.ManifestPath.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if err := c.UI.Validate(); err != nil {
		fieldErrors = append(fieldErrors, err)
	}
	if len(fieldErrors) > 0 {
		return &InvalidConfigError{FieldErrors: fieldErrors}
	}
	return nil
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		StagingDir:   "_output/staging",
		ManifestPath: "go.mod",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

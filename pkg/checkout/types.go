// SPDX-License-Identifier: MPL-2.0

package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidRemoteURL is the sentinel error wrapped by InvalidRemoteURLError.
	ErrInvalidRemoteURL = errors.New("invalid remote URL")
	// ErrInvalidCommitSHA is the sentinel error wrapped by InvalidCommitSHAError.
	ErrInvalidCommitSHA = errors.New("invalid commit SHA")

	// commitSHAPattern validates a 40-character lowercase hex SHA.
	commitSHAPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

type (
	// RemoteURL represents a component's Git repository URL (HTTPS, SSH, or
	// git@ format).
	RemoteURL string

	// InvalidRemoteURLError is returned when a RemoteURL value does not
	// match the expected URL format.
	InvalidRemoteURLError struct {
		Value RemoteURL
	}

	// CommitSHA represents a 40-character lowercase hexadecimal Git commit SHA.
	CommitSHA string

	// InvalidCommitSHAError is returned when a CommitSHA value does not
	// match the expected 40-character lowercase hex format.
	InvalidCommitSHAError struct {
		Value CommitSHA
	}
)

// Error implements the error interface.
func (e *InvalidRemoteURLError) Error() string {
	return fmt.Sprintf("invalid remote URL %q (must start with https://, git@, or ssh://)", e.Value)
}

// Unwrap returns ErrInvalidRemoteURL so callers can use errors.Is for
// programmatic detection.
func (e *InvalidRemoteURLError) Unwrap() error { return ErrInvalidRemoteURL }

// Validate returns nil if the RemoteURL is a valid Git repository URL,
// or an error describing the validation failure.
func (u RemoteURL) Validate() error {
	s := string(u)
	if s == "" || (!strings.HasPrefix(s, "https://") && !strings.HasPrefix(s, "git@") && !strings.HasPrefix(s, "ssh://")) {
		return &InvalidRemoteURLError{Value: u}
	}
	return nil
}

// String returns the string representation of the RemoteURL.
func (u RemoteURL) String() string { return string(u) }

// ModulePath returns the Go module path form of the remote: scheme and
// user stripped, ":" separators normalized, ".git" suffix removed.
// For example "https://github.com/example/kubernetes.git" becomes
// "github.com/example/kubernetes".
func (u RemoteURL) ModulePath() string {
	path := string(u)
	path = strings.TrimPrefix(path, "https://")
	path = strings.TrimPrefix(path, "ssh://")
	path = strings.TrimPrefix(path, "git@")
	path = strings.TrimSuffix(path, ".git")
	path = strings.ReplaceAll(path, ":", "/")
	return path
}

// Error implements the error interface.
func (e *InvalidCommitSHAError) Error() string {
	return fmt.Sprintf("invalid commit SHA %q (must be a 40-character lowercase hex SHA)", e.Value)
}

// Unwrap returns ErrInvalidCommitSHA so callers can use errors.Is for
// programmatic detection.
func (e *InvalidCommitSHAError) Unwrap() error { return ErrInvalidCommitSHA }

// Validate returns nil if the CommitSHA is a valid 40-character lowercase
// hex SHA, or an error describing the validation failure.
func (c CommitSHA) Validate() error {
	if !commitSHAPattern.MatchString(string(c)) {
		return &InvalidCommitSHAError{Value: c}
	}
	return nil
}

// String returns the string representation of the CommitSHA.
func (c CommitSHA) String() string { return string(c) }

// Short returns the abbreviated 7-character form of the SHA.
func (c CommitSHA) Short() string {
	if len(c) < 7 {
		return string(c)
	}
	return string(c[:7])
}

// IsCommitSHA reports whether s looks like a full 40-hex commit SHA.
func IsCommitSHA(s string) bool {
	return commitSHAPattern.MatchString(s)
}

// SPDX-License-Identifier: MPL-2.0

// Package release loads the pinned release metadata that drives a rebase
// run: one upstream release identifier plus, per component, the source
// remote and the exact commit its published image was built from.
package release

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"rebasectl/pkg/checkout"
)

var (
	// ErrMissingRelease flags metadata without a release identifier.
	ErrMissingRelease = errors.New("release metadata has no release identifier")

	// ErrNoComponents flags metadata without any component pins.
	ErrNoComponents = errors.New("release metadata has no components")
)

type (
	// Component is one pinned component source in a release.
	Component struct {
		// Image is the published image reference the commit was discovered
		// from; informational only.
		Image string `json:"image,omitempty"`

		// Commit is the exact source commit the component is built at.
		Commit checkout.CommitSHA `json:"commit"`

		// Remote is the git remote holding the component's fork.
		Remote checkout.RemoteURL `json:"remote"`
	}

	// Info is the parsed release metadata file.
	Info struct {
		// Release identifies the upstream release, e.g. "4.17.9".
		Release string `json:"release"`

		// Components maps component name to its pinned source.
		Components map[string]Component `json:"components"`
	}
)

// Load reads and validates release metadata from a JSON file.
func Load(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read release metadata %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates release metadata.
func Parse(data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse release metadata: %w", err)
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &info, nil
}

// Validate checks the metadata is complete enough to drive a run: a
// release identifier plus a valid remote and commit for every component.
func (i *Info) Validate() error {
	if i.Release == "" {
		return ErrMissingRelease
	}
	if len(i.Components) == 0 {
		return ErrNoComponents
	}
	for name, c := range i.Components {
		if err := c.Remote.Validate(); err != nil {
			return fmt.Errorf("component %q: %w", name, err)
		}
		if err := c.Commit.Validate(); err != nil {
			return fmt.Errorf("component %q: %w", name, err)
		}
	}
	return nil
}

// Names returns the component names in sorted order so iteration over the
// release is deterministic.
func (i *Info) Names() []string {
	names := make([]string, 0, len(i.Components))
	for name := range i.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Component returns the pinned source for a named component.
func (i *Info) Component(name string) (Component, bool) {
	c, ok := i.Components[name]
	return c, ok
}

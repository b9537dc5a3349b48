// SPDX-License-Identifier: MPL-2.0

package component

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

const (
	// PolicyEmbedded marks a component compiled directly into the
	// distribution binary.
	PolicyEmbedded PolicyClass = "embedded-component"
	// PolicyEmbeddedOperator marks a component that is vendored for its
	// bindata/config assets, not its binary.
	PolicyEmbeddedOperator PolicyClass = "embedded-component-operator"
	// PolicyLoaded marks a component loaded at runtime as an image
	// reference, never vendored.
	PolicyLoaded PolicyClass = "loaded-component"

	// KubernetesComponent is the component that carries the nested staging
	// monorepo tree. All `staging` directives resolve against it.
	KubernetesComponent = "kubernetes"

	// EtcdComponent publishes multiple Go submodules from one repository;
	// the resolver redirects go.etcd.io/etcd/* module paths at its fork.
	EtcdComponent = "etcd"
)

// BootstrapComponents are depended on directly by the distribution with no
// pre-existing replace directive; every rebase run forces their require
// directives to the pinned checkout commit before anything else.
var BootstrapComponents = []string{"cluster-policy-controller", "route-controller-manager"}

var (
	// ErrInvalidPolicyClass is the sentinel error wrapped by InvalidPolicyClassError.
	ErrInvalidPolicyClass = errors.New("invalid policy class")
	// ErrUnknownComponent is the sentinel error wrapped by UnknownComponentError.
	ErrUnknownComponent = errors.New("unknown component")
)

//go:embed components.toml
var defaultTable []byte

type (
	// PolicyClass decides how the distribution consumes a component.
	PolicyClass string

	// InvalidPolicyClassError is returned when a PolicyClass value is not
	// one of the three recognized classes. It wraps ErrInvalidPolicyClass
	// for errors.Is() compatibility.
	InvalidPolicyClassError struct {
		Value PolicyClass
	}

	// UnknownComponentError is returned when a directive names a component
	// that is not in the registry. This is a configuration error: the run
	// must abort. It wraps ErrUnknownComponent for errors.Is().
	UnknownComponentError struct {
		Name string
	}

	// Entry is one tracked component in the registry.
	Entry struct {
		// Name uniquely identifies the component.
		Name string `toml:"name"`
		// Policy is the component's policy class.
		Policy PolicyClass `toml:"policy"`
	}

	// Registry is the static table of tracked components.
	Registry struct {
		entries map[string]Entry
	}

	// registryTable is the on-disk TOML shape of the registry.
	registryTable struct {
		Components []Entry `toml:"components"`
	}
)

// String returns the string representation of the PolicyClass.
func (p PolicyClass) String() string { return string(p) }

// Validate returns nil if the PolicyClass is one of the recognized classes,
// or an error describing the validation failure.
func (p PolicyClass) Validate() error {
	switch p {
	case PolicyEmbedded, PolicyEmbeddedOperator, PolicyLoaded:
		return nil
	default:
		return &InvalidPolicyClassError{Value: p}
	}
}

// Error implements the error interface.
func (e *InvalidPolicyClassError) Error() string {
	return fmt.Sprintf("invalid policy class %q (valid: %s, %s, %s)",
		e.Value, PolicyEmbedded, PolicyEmbeddedOperator, PolicyLoaded)
}

// Unwrap returns ErrInvalidPolicyClass for errors.Is() compatibility.
func (e *InvalidPolicyClassError) Unwrap() error { return ErrInvalidPolicyClass }

// Error implements the error interface.
func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("unknown component %q: not in the tracked component table", e.Name)
}

// Unwrap returns ErrUnknownComponent for errors.Is() compatibility.
func (e *UnknownComponentError) Unwrap() error { return ErrUnknownComponent }

// NewRegistry builds a registry from explicit entries. Entry names must be
// unique and every policy class must be valid.
func NewRegistry(entries []Entry) (*Registry, error) {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, fmt.Errorf("registry entry with empty name")
		}
		if err := e.Policy.Validate(); err != nil {
			return nil, fmt.Errorf("component %q: %w", e.Name, err)
		}
		if _, dup := m[e.Name]; dup {
			return nil, fmt.Errorf("duplicate component %q in registry", e.Name)
		}
		m[e.Name] = e
	}
	return &Registry{entries: m}, nil
}

// ParseRegistry decodes a TOML component table.
func ParseRegistry(data []byte) (*Registry, error) {
	var table registryTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse component table: %w", err)
	}
	return NewRegistry(table.Components)
}

// DefaultRegistry returns the registry built from the embedded component
// table. The embedded table is validated at build time by tests, so a parse
// failure here is a programming error.
func DefaultRegistry() *Registry {
	r, err := ParseRegistry(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("embedded components.toml is invalid: %v", err))
	}
	return r
}

// Lookup returns the entry for name, or an UnknownComponentError.
func (r *Registry) Lookup(name string) (Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, &UnknownComponentError{Name: name}
	}
	return e, nil
}

// IsEmbedded reports whether name is a tracked embedded component. Only
// embedded components may be named by `from` and `release` directives.
func (r *Registry) IsEmbedded(name string) bool {
	e, ok := r.entries[name]
	return ok && e.Policy == PolicyEmbedded
}

// Names returns all tracked component names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SPDX-License-Identifier: MPL-2.0

package resolver

// PseudoversionCache memoizes derived pseudoversions per component for one
// rebase run. Derivation costs a full manifest-normalization round trip, so
// it must happen at most once per component; the cache is created fresh with
// each Resolver and never persisted.
type PseudoversionCache struct {
	entries map[string]string
}

// NewPseudoversionCache returns an empty cache.
func NewPseudoversionCache() *PseudoversionCache {
	return &PseudoversionCache{entries: make(map[string]string)}
}

// Lookup returns the cached pseudoversion for a component.
func (c *PseudoversionCache) Lookup(component string) (string, bool) {
	version, ok := c.entries[component]
	return version, ok
}

// Store records the derived pseudoversion for a component.
func (c *PseudoversionCache) Store(component, version string) {
	c.entries[component] = version
}

// Len reports how many components have a cached pseudoversion.
func (c *PseudoversionCache) Len() int {
	return len(c.entries)
}
